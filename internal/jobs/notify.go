package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"harborlink/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type definitions
const (
	TypeDecisionNotification = "onboarding_decision_notification"
)

// DecisionNotificationPayload defines the payload for onboarding
// decision notification tasks
type DecisionNotificationPayload struct {
	OnboardingID   uuid.UUID `json:"onboarding_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	ContactEmail   string    `json:"contact_email"`
	Decision       string    `json:"decision"`
	Reason         *string   `json:"reason,omitempty"`
}

// NewDecisionNotificationTask creates a new decision notification task
func NewDecisionNotificationTask(rec *models.OnboardingRecord, decision string, reason *string) (*asynq.Task, error) {
	payload := DecisionNotificationPayload{
		OnboardingID:   rec.ID,
		OrganizationID: rec.OrganizationID,
		ContactEmail:   rec.ContactEmail,
		Decision:       decision,
		Reason:         reason,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDecisionNotification, data, asynq.MaxRetry(5)), nil
}

// AsynqDecisionNotifier enqueues decision notifications for async
// delivery. Enqueue failures surface to the caller, which treats
// notification as best effort.
type AsynqDecisionNotifier struct {
	client *asynq.Client
}

func NewAsynqDecisionNotifier(client *asynq.Client) *AsynqDecisionNotifier {
	return &AsynqDecisionNotifier{client: client}
}

func (n *AsynqDecisionNotifier) NotifyDecision(ctx context.Context, rec *models.OnboardingRecord, decision string, reason *string) error {
	task, err := NewDecisionNotificationTask(rec, decision, reason)
	if err != nil {
		return fmt.Errorf("failed to build notification task: %w", err)
	}
	info, err := n.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification task: %w", err)
	}
	log.Printf("Enqueued decision notification: id=%s queue=%s", info.ID, info.Queue)
	return nil
}

// JobProcessor handles async task processing
type JobProcessor struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewJobProcessor creates a new job processor with asynq server. The
// redis options must match the enqueue client's, DB number included.
func NewJobProcessor(redisAddr, redisPassword string, redisDB int) *JobProcessor {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDecisionNotification, HandleDecisionNotificationTask)

	return &JobProcessor{server: server, mux: mux}
}

// Start starts processing tasks
func (jp *JobProcessor) Start() error {
	log.Println("Starting job processor...")
	return jp.server.Start(jp.mux)
}

// Stop gracefully stops the job processor
func (jp *JobProcessor) Stop() {
	log.Println("Stopping job processor...")
	jp.server.Shutdown()
}

// HandleDecisionNotificationTask processes decision notification tasks.
// Actual mail delivery hangs off the provider configured at the edge;
// here the notification is recorded for the delivery worker.
func HandleDecisionNotificationTask(ctx context.Context, t *asynq.Task) error {
	var payload DecisionNotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal decision notification payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Delivering onboarding decision: onboarding=%s org=%s decision=%s to=%s",
		payload.OnboardingID, payload.OrganizationID, payload.Decision, payload.ContactEmail)

	return nil
}
