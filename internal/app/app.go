// Package app builds the service graph and owns its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	"github.com/chasmapasal/chasmapasal-api/internal/config"
	dbpkg "github.com/chasmapasal/chasmapasal-api/internal/db"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/account"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/appointment"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/cart"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/catalog"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/notification"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/order"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/payment"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/review"
	"github.com/chasmapasal/chasmapasal-api/internal/handlers"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/cache"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/khalti"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/mailer"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/memory"
	infraRepo "github.com/chasmapasal/chasmapasal-api/internal/infra/repository"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/storage"
	"github.com/chasmapasal/chasmapasal-api/internal/middleware"
	"github.com/chasmapasal/chasmapasal-api/internal/notify"
	"github.com/chasmapasal/chasmapasal-api/internal/otp"
	"github.com/chasmapasal/chasmapasal-api/internal/routes"
	"github.com/chasmapasal/chasmapasal-api/internal/timezone"
	ucAccount "github.com/chasmapasal/chasmapasal-api/internal/usecase/account"
	ucAppointment "github.com/chasmapasal/chasmapasal-api/internal/usecase/appointment"
	ucCart "github.com/chasmapasal/chasmapasal-api/internal/usecase/cart"
	ucNotification "github.com/chasmapasal/chasmapasal-api/internal/usecase/notification"
	ucOrder "github.com/chasmapasal/chasmapasal-api/internal/usecase/order"
	ucPayment "github.com/chasmapasal/chasmapasal-api/internal/usecase/payment"
	ucProduct "github.com/chasmapasal/chasmapasal-api/internal/usecase/product"
	ucReview "github.com/chasmapasal/chasmapasal-api/internal/usecase/review"
	ucStats "github.com/chasmapasal/chasmapasal-api/internal/usecase/stats"
)

const shutdownTimeout = 10 * time.Second

// Repositories is one implementation of every store the use cases need.
type Repositories struct {
	Users         account.Repository
	Products      catalog.Repository
	Carts         cart.Repository
	Orders        order.Repository
	Payments      payment.Repository
	Appointments  appointment.Repository
	Notifications notification.Repository
	Reviews       review.Repository
}

func GormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         infraRepo.NewUserGormRepository(db),
		Products:      infraRepo.NewProductGormRepository(db),
		Carts:         infraRepo.NewCartGormRepository(db),
		Orders:        infraRepo.NewOrderGormRepository(db),
		Payments:      infraRepo.NewPaymentGormRepository(db),
		Appointments:  infraRepo.NewAppointmentGormRepository(db),
		Notifications: infraRepo.NewNotificationGormRepository(db),
		Reviews:       infraRepo.NewReviewGormRepository(db),
	}
}

func MemoryRepositories(s *memory.Store) Repositories {
	return Repositories{
		Users:         memory.NewUsers(s),
		Products:      memory.NewProducts(s),
		Carts:         memory.NewCarts(s),
		Orders:        memory.NewOrders(s),
		Payments:      memory.NewPayments(s),
		Appointments:  memory.NewAppointments(s),
		Notifications: memory.NewNotifications(s),
		Reviews:       memory.NewReviews(s),
	}
}

// Deps are the outside collaborators. New fills in whatever is nil from the
// config; tests pass their own.
type Deps struct {
	Repos    *Repositories
	Gateway  payment.Gateway
	Mailer   mailer.Mailer
	OTPStore otp.Store
	Storage  storage.Storage

	// UploadDir is served at /uploads when Storage is local disk.
	UploadDir string

	DomainChecker func(email string) bool
}

type App struct {
	cfg    *config.Config
	log    *logrus.Logger
	engine *gin.Engine
	server *http.Server

	db         *gorm.DB
	redis      *redis.Client
	dispatcher *notify.Dispatcher
}

func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	return NewWithDeps(cfg, log, Deps{})
}

func NewWithDeps(cfg *config.Config, log *logrus.Logger, deps Deps) (a *App, err error) {
	a = &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.release()
		}
	}()

	// ======================================================
	// INFRA
	// ======================================================
	if deps.Repos == nil {
		repos, err := a.repositories()
		if err != nil {
			return nil, err
		}
		deps.Repos = &repos
	}
	repos := *deps.Repos

	if deps.OTPStore == nil {
		deps.OTPStore, err = a.otpStore()
		if err != nil {
			return nil, err
		}
	}

	if deps.Mailer == nil {
		if cfg.SendGrid.APIKey != "" {
			deps.Mailer = mailer.NewSendGrid(cfg.SendGrid)
		} else {
			log.Warn("SENDGRID_API_KEY not set, e-mails will only be logged")
			deps.Mailer = mailer.NewLogMailer(log)
		}
	}

	if deps.Storage == nil {
		if cfg.S3.Bucket != "" {
			deps.Storage = storage.NewS3(cfg.S3)
		} else {
			disk, err := storage.NewLocalDisk(cfg.UploadDir)
			if err != nil {
				return nil, err
			}
			deps.Storage = disk
			deps.UploadDir = disk.Dir()
		}
	}

	if deps.Gateway == nil {
		if cfg.Khalti.SecretKey == "" {
			log.Warn("KHALTI_SECRET_KEY not set, online payments will fail")
		}
		deps.Gateway = khalti.NewClient(cfg.Khalti, log)
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	otps := otp.NewService(deps.OTPStore)
	a.dispatcher = notify.NewDispatcher(repos.Notifications, log)
	uploader := ucProduct.NewUploader(deps.Storage, log)

	clinic, tzErr := timezone.Load(cfg.Timezone)
	if tzErr != nil {
		log.Warnf("CLINIC_TIMEZONE: %v", tzErr)
	}

	// ======================================================
	// USE CASES
	// ======================================================
	accounts := ucAccount.NewService(repos.Users, tokens, otps, deps.Mailer, uploader, log)
	if deps.DomainChecker != nil {
		accounts.WithDomainChecker(deps.DomainChecker)
	}

	reconcile := ucPayment.NewReconcile(repos.Payments, log)

	// ======================================================
	// HANDLERS
	// ======================================================
	h := routes.Handlers{
		Auth: handlers.NewAuthHandler(accounts),
		User: handlers.NewUserHandler(accounts),
		Appointment: handlers.NewAppointmentHandler(
			ucAppointment.NewBookAppointment(repos.Appointments, a.dispatcher, log),
			ucAppointment.NewGetAvailability(repos.Appointments),
			ucAppointment.NewListAppointments(repos.Appointments),
			ucAppointment.NewListUserAppointments(repos.Appointments),
			ucAppointment.NewUpdateAppointment(repos.Appointments, log),
			ucAppointment.NewDeleteAppointment(repos.Appointments, log),
			ucAppointment.NewClearPastAppointments(repos.Appointments, clinic, log),
		),
		Payment: handlers.NewPaymentHandler(
			ucPayment.NewCheckout(repos.Payments, deps.Gateway, ucPayment.URLs{
				ReturnURL:  cfg.OrderStatusURL(),
				WebsiteURL: cfg.FrontendURL,
			}, log),
			ucPayment.NewVerifyPayment(deps.Gateway, reconcile, log),
			ucPayment.NewHandleWebhook(deps.Gateway, reconcile, cfg.OrderStatusURL(), log),
		),
		Order: handlers.NewOrderHandler(
			ucOrder.NewCreateOrder(repos.Orders, log),
			ucOrder.NewListUserOrders(repos.Orders),
			ucOrder.NewListAllOrders(repos.Orders),
			ucOrder.NewUpdateOrder(repos.Orders, log),
			ucOrder.NewCancelOrder(repos.Orders, log),
			ucOrder.NewDeleteOrder(repos.Orders, log),
		),
		Cart: handlers.NewCartHandler(
			ucCart.NewGetCart(repos.Carts),
			ucCart.NewAddCartItem(repos.Carts, log),
			ucCart.NewRemoveCartItem(repos.Carts),
			ucCart.NewClearCart(repos.Carts),
		),
		Notification: handlers.NewNotificationHandler(ucNotification.NewService(repos.Notifications, log)),
		Review:       handlers.NewReviewHandler(ucReview.NewService(repos.Reviews, log)),
		Product: handlers.NewProductHandler(
			ucProduct.NewService(repos.Products, uploader, log),
			uploader,
		),
		Stats: handlers.NewStatsHandler(ucStats.NewService(
			repos.Products, repos.Users, repos.Appointments, repos.Orders, repos.Reviews,
		)),
	}

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a.engine = gin.New()
	a.engine.Use(gin.Recovery())
	a.engine.Use(middleware.RequestLogger(log))
	a.engine.Use(middleware.CORSMiddleware(cfg.FrontendURL))

	routes.RegisterRoutes(a.engine, h, tokens, deps.UploadDir)

	a.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.engine
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("Server running on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Close()
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		a.log.Info("shutting down")
	}

	return a.Close()
}

// Close stops the server, drains pending notifications and releases
// connections.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
		}
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain notifications: %w", err))
		}
	}
	errs = append(errs, a.release()...)

	return errors.Join(errs...)
}

func (a *App) release() []error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		a.redis = nil
	}
	if a.db != nil {
		if err := dbpkg.Close(a.db); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		a.db = nil
	}
	return errs
}

func (a *App) repositories() (Repositories, error) {
	if a.cfg.Store == "memory" {
		a.log.Warn("STORE=memory, data is lost on restart")
		return MemoryRepositories(memory.NewStore()), nil
	}

	db, err := dbpkg.NewDB(a.cfg)
	if err != nil {
		return Repositories{}, err
	}
	a.db = db
	return GormRepositories(db), nil
}

func (a *App) otpStore() (otp.Store, error) {
	if a.cfg.Redis.Addr == "" {
		a.log.Warn("REDIS_ADDR not set, OTPs are kept in memory")
		return otp.NewMemoryStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := cache.NewRedisClient(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.redis = rdb
	return otp.NewRedisStore(rdb), nil
}
