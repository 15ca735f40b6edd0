package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raedalotaibi/mashary-backend/api/controllers"
	"github.com/raedalotaibi/mashary-backend/api/routes"
	"github.com/raedalotaibi/mashary-backend/internal/activity"
	"github.com/raedalotaibi/mashary-backend/internal/catalog"
	"github.com/raedalotaibi/mashary-backend/internal/conversions"
	"github.com/raedalotaibi/mashary-backend/internal/notifications"
	"github.com/raedalotaibi/mashary-backend/internal/projects"
	"github.com/raedalotaibi/mashary-backend/pkg/config"
	"github.com/raedalotaibi/mashary-backend/pkg/db"
	"github.com/raedalotaibi/mashary-backend/pkg/logger"
	"github.com/raedalotaibi/mashary-backend/pkg/metrics"
	"github.com/raedalotaibi/mashary-backend/pkg/migrate"
	"github.com/raedalotaibi/mashary-backend/pkg/outbox"
	"github.com/raedalotaibi/mashary-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	draftLock, err := redis.NewLock(redisClient, cfg.DraftLock)
	if err != nil {
		logg.Error(context.Background(), "failed to create draft lock", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	recorder := activity.NewRecorder(dbClient.DB())

	projectsService, err := projects.NewService(
		projects.NewRepository(dbClient.DB()),
		dbClient,
		draftLock,
		catalog.NewRepository(dbClient.DB()),
		conversions.NewService(),
		recorder,
		outboxService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create projects service", err)
		os.Exit(1)
	}

	manpowerService, err := projects.NewManpowerService(projectsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create manpower service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			HTTPMetrics: httpMetrics,
			MetricsHTTP: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadyPingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			Projects:      projectsService,
			Manpower:      manpowerService,
			Notifications: notificationsService,
			Activity:      recorder,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
