package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/hibiken/asynq"

	"harborlink/internal/authz"
	"harborlink/internal/caching"
	"harborlink/internal/config"
	"harborlink/internal/handlers"
	"harborlink/internal/jobs"
	"harborlink/internal/jobs/background"
	"harborlink/internal/middleware"
	"harborlink/internal/repositories"
	"harborlink/internal/services"
	"harborlink/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := database.NewPool(ctx, cfg.Database.URL)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Object storage for onboarding documents
	documentSvc, err := services.NewDocumentService(
		cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.UseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize document storage: %v", err)
	}

	// Create repositories
	orgRepo := repositories.NewOrganizationRepo(pool)
	onboardingRepo := repositories.NewOnboardingRepo(pool)
	licenseRepo := repositories.NewLicenseRepo(pool)
	roleRepo := repositories.NewRoleRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	invitationRepo := repositories.NewInvitationRepo(pool)
	vesselRepo := repositories.NewVesselRepo(pool)
	rfqRepo := repositories.NewRFQRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// Async task queue for decision notifications
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()
	notifier := jobs.NewAsynqDecisionNotifier(asynqClient)

	// Create services
	rbacSvc := services.NewRBACService(userRepo, roleRepo, cacheSvc)
	orgSvc := services.NewOrganizationService(orgRepo, userRepo, licenseRepo, cacheSvc)
	licenseSvc := services.NewLicenseService(pool, licenseRepo, orgRepo)
	onboardingSvc := services.NewOnboardingService(pool, onboardingRepo, licenseRepo, orgRepo, rbacSvc, notifier)
	invitationSvc := services.NewInvitationService(pool, invitationRepo, onboardingRepo, orgSvc, cfg.Auth.JWTSecret)
	userSvc := services.NewUserService(pool, userRepo, licenseSvc, cacheSvc)
	vesselSvc := services.NewVesselService(pool, vesselRepo, orgRepo, licenseSvc)
	rfqSvc := services.NewRFQService(rfqRepo, orgRepo)
	roleSvc := services.NewRoleService(roleRepo)
	auditSvc := services.NewAuditLogsService(auditLogsRepo)

	// Token verification, optionally against a remote JWKS
	verifier, err := middleware.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWKSURL)
	if err != nil {
		log.Fatalf("Failed to initialize token verifier: %v", err)
	}

	rbacMiddleware := middleware.NewRBACMiddleware(rbacSvc)
	auditMiddleware := middleware.NewAuditMiddleware(auditSvc)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(userSvc, verifier)
	orgHandlers := handlers.NewOrganizationHandlers(orgSvc)
	onboardingHandlers := handlers.NewOnboardingHandlers(onboardingSvc, documentSvc)
	licenseHandlers := handlers.NewLicenseHandlers(licenseSvc)
	roleHandlers := handlers.NewRoleHandlers(roleSvc, rbacSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	invitationHandlers := handlers.NewInvitationHandlers(invitationSvc)
	vesselHandlers := handlers.NewVesselHandlers(vesselSvc)
	rfqHandlers := handlers.NewRFQHandlers(rfqSvc)
	auditHandlers := handlers.NewAuditLogsHandlers(auditSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", healthHandlers.GetMetrics)

	// API routes
	versionMiddleware := middleware.NewVersionMiddleware()
	v1 := versionMiddleware.VersionRoute(e, "v1")

	// Authentication routes (no JWT required for signup/login)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Invitation redemption is public; the token is the credential
	v1.POST("/onboarding/submit", invitationHandlers.RedeemInvitation)

	// Protected routes
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: verifier.ParseToken,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}))
	protected.Use(middleware.PopulateClaims())
	protected.Use(auditMiddleware.Audit())

	// Session routes
	protected.GET("/me/permissions", roleHandlers.GetMyPermissions)
	protected.GET("/permissions/resolve", roleHandlers.ResolvePermissions)

	// Organization routes
	protected.GET("/organizations", orgHandlers.ListOrganizations)
	protected.POST("/organizations", orgHandlers.CreateOrganization,
		rbacMiddleware.RequireAnyPermission(authz.PermCustomerOrgsManage, authz.PermVendorOrgsManage))
	protected.GET("/organizations/:id", orgHandlers.GetOrganization)
	protected.PUT("/organizations/:id", orgHandlers.UpdateOrganization,
		rbacMiddleware.RequireAnyPermission(authz.PermCustomerOrgsManage, authz.PermVendorOrgsManage))
	protected.DELETE("/organizations/:id", orgHandlers.DeleteOrganization,
		rbacMiddleware.RequireAnyPermission(authz.PermCustomerOrgsManage, authz.PermVendorOrgsManage))

	// Invitation routes
	protected.POST("/invitations", invitationHandlers.IssueInvitation,
		rbacMiddleware.RequirePermission(authz.PermOnboardingReview))
	protected.GET("/invitations", invitationHandlers.ListInvitations,
		rbacMiddleware.RequirePermission(authz.PermOnboardingReview))

	// Onboarding review routes
	protected.GET("/onboardings", onboardingHandlers.ListOnboardings,
		rbacMiddleware.RequirePermission(authz.PermOnboardingReview))
	protected.GET("/onboardings/:id", onboardingHandlers.GetOnboarding,
		rbacMiddleware.RequirePermission(authz.PermOnboardingReview))
	protected.POST("/onboardings/:id/approve", onboardingHandlers.ApproveOnboarding)
	protected.POST("/onboardings/:id/reject", onboardingHandlers.RejectOnboarding)
	protected.POST("/onboardings/:id/documents", onboardingHandlers.UploadDocument)
	protected.GET("/onboardings/documents/url", onboardingHandlers.GetDocumentURL,
		rbacMiddleware.RequirePermission(authz.PermOnboardingReview))

	// License routes
	protected.GET("/licenses", licenseHandlers.ListLicenses)
	protected.GET("/licenses/:id", licenseHandlers.GetLicense)
	protected.POST("/licenses", licenseHandlers.IssueLicense,
		rbacMiddleware.RequirePermission(authz.PermLicensesIssue))
	protected.POST("/licenses/:id/suspend", licenseHandlers.SuspendLicense,
		rbacMiddleware.RequirePermission(authz.PermLicensesRevoke))
	protected.POST("/licenses/:id/revoke", licenseHandlers.RevokeLicense,
		rbacMiddleware.RequirePermission(authz.PermLicensesRevoke))

	// Role routes
	protected.GET("/roles", roleHandlers.ListRoles)
	protected.GET("/roles/:id", roleHandlers.GetRole)
	protected.POST("/roles", roleHandlers.CreateRole,
		rbacMiddleware.RequirePermission(authz.PermRolesManage))
	protected.PUT("/roles/:id", roleHandlers.UpdateRole,
		rbacMiddleware.RequirePermission(authz.PermRolesManage))
	protected.DELETE("/roles/:id", roleHandlers.DeleteRole,
		rbacMiddleware.RequirePermission(authz.PermRolesManage))

	// User routes
	protected.GET("/users", userHandlers.ListUsers)
	protected.GET("/users/:id", userHandlers.GetUser)
	protected.POST("/users", userHandlers.CreateUser,
		rbacMiddleware.RequirePermission(authz.PermUsersManage))
	protected.PUT("/users/:id", userHandlers.UpdateUser,
		rbacMiddleware.RequirePermission(authz.PermUsersManage))
	protected.DELETE("/users/:id", userHandlers.DeleteUser,
		rbacMiddleware.RequirePermission(authz.PermUsersManage))

	// Vessel routes
	protected.GET("/vessels", vesselHandlers.ListVessels)
	protected.GET("/vessels/:id", vesselHandlers.GetVessel)
	protected.POST("/vessels", vesselHandlers.CreateVessel,
		rbacMiddleware.RequirePermission(authz.PermVesselsManage))
	protected.PUT("/vessels/:id", vesselHandlers.UpdateVessel,
		rbacMiddleware.RequirePermission(authz.PermVesselsManage))
	protected.DELETE("/vessels/:id", vesselHandlers.DeleteVessel,
		rbacMiddleware.RequirePermission(authz.PermVesselsManage))

	// RFQ routes
	protected.GET("/rfqs", rfqHandlers.ListRFQs)
	protected.GET("/rfqs/:id", rfqHandlers.GetRFQ)
	protected.POST("/rfqs", rfqHandlers.CreateRFQ,
		rbacMiddleware.RequirePermission(authz.PermRFQsManage))
	protected.PUT("/rfqs/:id", rfqHandlers.UpdateRFQ,
		rbacMiddleware.RequirePermission(authz.PermRFQsManage))
	protected.POST("/rfqs/:id/close", rfqHandlers.CloseRFQ,
		rbacMiddleware.RequirePermission(authz.PermRFQsManage))

	// Audit trail
	protected.GET("/audit-logs", auditHandlers.ListAuditLogs,
		rbacMiddleware.RequirePermission(authz.PermViewAllAnalytics))

	// Background jobs
	scheduler := background.NewJobScheduler(licenseRepo, invitationRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Job scheduler shutdown error: %v", err)
		}
	}()

	processor := jobs.NewJobProcessor(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := processor.Start(); err != nil {
		log.Fatalf("Failed to start job processor: %v", err)
	}
	defer processor.Stop()

	// Serve until interrupted
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}
