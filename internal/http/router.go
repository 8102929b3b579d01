package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/labourhub/backend/internal/auth"
	"github.com/labourhub/backend/internal/config"
	"github.com/labourhub/backend/internal/http/handlers"
	"github.com/labourhub/backend/internal/http/middlewares"
	"github.com/labourhub/backend/internal/notify"
	"github.com/labourhub/backend/internal/observability"
	"github.com/labourhub/backend/internal/otp"
	"github.com/labourhub/backend/internal/queue/redisclient"
	"github.com/labourhub/backend/internal/repo/postgres"
)

// Deps carries everything the router wires together, built once in main.
type Deps struct {
	Cfg      config.Config
	Log      *slog.Logger
	Pool     *pgxpool.Pool
	Redis    *redisclient.Client
	Prom     *observability.Prom
	PromReg  *prometheus.Registry
	JWT      *auth.Manager
	Enqueuer *notify.Enqueuer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(otelgin.Middleware("labourhub-api"))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB

	// ops surface
	ping := func() error {
		if d.Pool == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		return d.Pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if d.PromReg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.PromReg, promhttp.HandlerOpts{})))
	}

	// repositories
	usersRepo := postgres.NewUsersRepo(d.Pool, d.Prom)
	jobsRepo := postgres.NewJobsRepo(d.Pool, d.Prom)
	appsRepo := postgres.NewApplicationsRepo(d.Pool, d.Prom)
	reviewsRepo := postgres.NewReviewsRepo(d.Pool, d.Prom)
	activitiesRepo := postgres.NewActivitiesRepo(d.Pool, d.Prom)

	// otp storage: redis when configured, in-process map otherwise
	var otpStore otp.Store
	if d.Cfg.OTPStore == "redis" && d.Redis != nil {
		otpStore = otp.NewRedisStore(d.Redis)
	} else {
		otpStore = otp.NewMemoryStore()
	}

	otpService := otp.NewService(otpStore, usersRepo, usersRepo, d.Enqueuer, d.Cfg.OTPTTL, d.Prom)

	// handlers
	authHandler := handlers.NewAuthHandler(otpService, usersRepo, usersRepo, d.JWT, d.Cfg)
	usersHandler := handlers.NewUsersHandler(usersRepo, activitiesRepo, reviewsRepo)
	workersHandler := handlers.NewWorkersHandler(usersRepo, reviewsRepo, appsRepo)
	jobsHandler := handlers.NewJobsHandler(jobsRepo, usersRepo, activitiesRepo)
	appsHandler := handlers.NewApplicationsHandler(appsRepo, jobsRepo, usersRepo, activitiesRepo, d.Enqueuer)
	reviewsHandler := handlers.NewReviewsHandler(reviewsRepo, usersRepo, activitiesRepo, d.Enqueuer)
	recsHandler := handlers.NewRecommendationsHandler(usersRepo, jobsRepo)

	authMW := middlewares.NewAuthMiddleware(d.JWT)

	// the code endpoints are the abuse magnet; everything else rides on auth
	otpLimiter := middlewares.NewRateLimiter(5, time.Minute)
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)
	writeLimiter := middlewares.NewRateLimiter(60, time.Minute)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/send-otp", otpLimiter.Middleware(middlewares.KeyByIP), authHandler.SendOTP)
		authGroup.POST("/verify-otp-register", otpLimiter.Middleware(middlewares.KeyByIP), authHandler.VerifyOTPRegister)
		authGroup.POST("/send-reset-otp", otpLimiter.Middleware(middlewares.KeyByIP), authHandler.SendResetOTP)
		authGroup.POST("/reset-password", otpLimiter.Middleware(middlewares.KeyByIP), authHandler.ResetPassword)
		authGroup.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	}

	// public reads
	api.GET("/jobs", jobsHandler.ListJobs)
	api.GET("/workers", workersHandler.ListWorkers)
	api.GET("/workers/:id", workersHandler.GetWorker)
	api.GET("/user/:id", usersHandler.GetUser)
	api.GET("/reviews/user/:id", reviewsHandler.ListForUser)

	// authenticated surface
	authed := api.Group("")
	authed.Use(authMW.RequireAuth(), writeLimiter.Middleware(middlewares.KeyByUserOrIP))
	{
		authed.PUT("/user/:id", usersHandler.UpdateUser)
		authed.GET("/user/:id/activities", usersHandler.GetActivities)

		authed.POST("/jobs", jobsHandler.CreateJob)
		authed.DELETE("/jobs/:id", jobsHandler.DeleteJob)
		authed.GET("/jobs/:id/applications", appsHandler.ListForJob)

		authed.POST("/applications", appsHandler.Apply)
		authed.GET("/applications", appsHandler.ListMine)
		authed.PUT("/applications/:id", appsHandler.UpdateStatus)

		authed.POST("/reviews", reviewsHandler.CreateReview)

		authed.GET("/recommendations/worker/:id", recsHandler.ForWorker)
	}

	return r
}
