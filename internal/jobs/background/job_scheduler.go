package background

import (
	"context"
	"log"
	"sync"
	"time"

	"harborlink/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the recurring maintenance jobs
type JobScheduler struct {
	scheduler      gocron.Scheduler
	licenseRepo    repositories.LicenseRepository
	invitationRepo repositories.InvitationRepository
	jobs           map[string]gocron.Job
	mu             sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(licenseRepo repositories.LicenseRepository, invitationRepo repositories.InvitationRepository) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		licenseRepo:    licenseRepo,
		invitationRepo: invitationRepo,
		jobs:           make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// License expiry sweep - every 10 minutes
	licenseJob, err := js.scheduler.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(js.sweepExpiredLicenses, context.Background()),
		gocron.WithName("license-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create license expiry job: %v", err)
	} else {
		js.registerJob("license-expiry", licenseJob)
	}

	// Invitation expiry sweep - hourly
	invitationJob, err := js.scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(js.sweepExpiredInvitations, context.Background()),
		gocron.WithName("invitation-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create invitation expiry job: %v", err)
	} else {
		js.registerJob("invitation-expiry", invitationJob)
	}
}

func (js *JobScheduler) registerJob(name string, job gocron.Job) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.jobs[name] = job
}

// sweepExpiredLicenses marks active licenses past their expiry date as
// expired. Expired licenses no longer block a fresh issuance.
func (js *JobScheduler) sweepExpiredLicenses(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := js.licenseRepo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("License expiry sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("License expiry sweep: expired %d licenses", n)
	}
}

// sweepExpiredInvitations marks pending invitations past their expiry
// as expired.
func (js *JobScheduler) sweepExpiredInvitations(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := js.invitationRepo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("Invitation expiry sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Invitation expiry sweep: expired %d invitations", n)
	}
}
