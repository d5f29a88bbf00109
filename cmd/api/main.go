package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"talentflow/internal/app"
	"talentflow/internal/config"
	"talentflow/internal/database"
	apphttp "talentflow/internal/http"
	"talentflow/internal/http/handlers"
	"talentflow/internal/http/metrics"
	httpmw "talentflow/internal/http/middleware"
	"talentflow/internal/notify"
	"talentflow/internal/observability"
	"talentflow/internal/repository/postgres"
	"talentflow/internal/security"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()
	policy, err := config.LoadSchedulingPolicy(cfg.SchedulePolicy)
	if err != nil {
		log.Fatal(err)
	}
	db := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()

	candidateRepo := postgres.NewCandidateRepository(db)
	interviewRepo := postgres.NewInterviewRepository(db)
	assessmentRepo := postgres.NewAssessmentRepository(db)
	offerRepo := postgres.NewOfferRepository(db)
	sprintRepo := postgres.NewSprintRepository(db)

	hub := notify.NewHub()
	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	fanout := notify.Fanout{Hub: hub}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		limiter = httpmw.NewRedisLimiter(redisClient)
		bridge := notify.NewRedisBridge(redisClient, hub, logger)
		fanout.Bridge = bridge
		go bridge.Run(ctx)
	}

	stageService := app.NewStageService(candidateRepo, sprintRepo, offerRepo, fanout, logger)
	scheduleService := app.NewScheduleService(interviewRepo, candidateRepo, policy, fanout, logger)
	assessmentService, err := app.NewAssessmentService(assessmentRepo, interviewRepo, fanout, logger)
	if err != nil {
		log.Fatal(err)
	}
	offerService := app.NewOfferService(offerRepo, candidateRepo, fanout, logger)
	sprintService := app.NewSprintService(sprintRepo, candidateRepo, fanout, logger)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	collector := metrics.NewCollector()

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		CandidateHandler:  handlers.NewCandidateHandler(stageService, limiter),
		InterviewHandler:  handlers.NewInterviewHandler(scheduleService, limiter),
		AssessmentHandler: handlers.NewAssessmentHandler(assessmentService),
		OfferHandler:      handlers.NewOfferHandler(offerService),
		SprintHandler:     handlers.NewSprintHandler(sprintService),
		ChangesHandler:    handlers.NewChangesHandler(hub),
		AuthMiddleware:    httpmw.NewAuthMiddleware(jwtProvider),
		Limiter:           limiter,
		Metrics:           collector,
		Logger:            logger,
		RequestTimeout:    cfg.RequestTimeout,
	})
	// No WriteTimeout: the change stream holds its response open
	// indefinitely; per-request deadlines live in the timeout
	// middleware instead.
	server := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
