// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/havenwellness/haven-go/internal/application/services"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/manager"
	"github.com/havenwellness/haven-go/internal/infrastructure/email"
	analyticspersist "github.com/havenwellness/haven-go/internal/infrastructure/persistence/analytics"
	contentpersist "github.com/havenwellness/haven-go/internal/infrastructure/persistence/content"
	"github.com/havenwellness/haven-go/internal/infrastructure/persistence/database"
	userpersist "github.com/havenwellness/haven-go/internal/infrastructure/persistence/user"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/internal/infrastructure/sink"
	"github.com/havenwellness/haven-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services
	SessionService     *services.SessionService
	ExperimentService  *services.ExperimentService
	EventTracking      *services.EventTrackingService
	InteractionService *services.InteractionService
	BookingService     *services.BookingService
	PromoService       *services.PromoService
	ContentService     *services.ContentService
	ContactService     *services.ContactService
	AnalyticsService   *services.AnalyticsService
	AuthService        *services.AuthService

	// Infrastructure
	Logger       *logging.ChanneledLogger
	PerfTracker  *performance.Tracker
	DB           *database.DB
	CacheManager *manager.Manager
	EventSink    sink.Sink
}

// NewContainer creates and wires all singleton services
func NewContainer(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, db *database.DB, cacheManager *manager.Manager) *Container {
	// Repositories
	visitorRepo := userpersist.NewSQLVisitorRepository(db, logger)
	leadRepo := userpersist.NewSQLLeadRepository(db, logger)
	dismissalRepo := userpersist.NewSQLDismissalRepository(db, logger)
	eventRepo := analyticspersist.NewSQLEventRepository(db, logger)
	treatmentRepo := contentpersist.NewTreatmentRepository(db.DB, logger)
	categoryRepo := contentpersist.NewCategoryRepository(db.DB, logger)
	offerRepo := contentpersist.NewOfferRepository(db.DB, logger)

	// Event sink: GA4 when credentials are configured, otherwise a no-op.
	var eventSink sink.Sink
	if config.GA4MeasurementID != "" && config.GA4APISecret != "" {
		eventSink = sink.NewGA4Sink(config.GA4Endpoint, config.GA4MeasurementID, config.GA4APISecret, config.SinkTimeout, logger)
		logger.Startup().Info("GA4 event sink configured", "measurementId", config.GA4MeasurementID)
	} else {
		eventSink = sink.NewNoop()
		logger.Startup().Info("No GA4 credentials, events stay local")
	}

	// Email: best-effort. Missing provider credentials degrade to a no-op
	// so lead capture keeps working.
	emailService, err := email.NewService()
	if err != nil {
		logger.Startup().Warn("Email service not configured, notifications disabled", "error", err.Error())
		emailService = email.NewNoopService()
	}

	// Services
	experimentService := services.NewExperimentService(logger)
	eventTracking := services.NewEventTrackingService(logger, perfTracker, eventSink, eventRepo)
	sessionService := services.NewSessionService(logger, perfTracker, cacheManager.Sessions(), visitorRepo, experimentService, eventTracking)
	interactionService := services.NewInteractionService(logger, perfTracker, eventTracking)
	contentService := services.NewContentService(logger, perfTracker, cacheManager.Content(), treatmentRepo, categoryRepo, offerRepo)
	bookingService := services.NewBookingService(logger, perfTracker, contentService, eventTracking)
	promoService := services.NewPromoService(logger, perfTracker, contentService, dismissalRepo, eventTracking)
	contactService := services.NewContactService(logger, perfTracker, leadRepo, emailService, eventTracking)
	analyticsService := services.NewAnalyticsService(logger, perfTracker, eventRepo)
	authService := services.NewAuthService(logger, perfTracker)

	return &Container{
		SessionService:     sessionService,
		ExperimentService:  experimentService,
		EventTracking:      eventTracking,
		InteractionService: interactionService,
		BookingService:     bookingService,
		PromoService:       promoService,
		ContentService:     contentService,
		ContactService:     contactService,
		AnalyticsService:   analyticsService,
		AuthService:        authService,

		Logger:       logger,
		PerfTracker:  perfTracker,
		DB:           db,
		CacheManager: cacheManager,
		EventSink:    eventSink,
	}
}
