package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/infrastructure/persistence"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/infrastructure/spreadsheet"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/presentation/controllers"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/services"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/application"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/configuration"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/metrics"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/middleware"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := newOrgChartService(ctx, conf, logger)
	if err != nil {
		log.Fatalf("failed to set up org chart service: %v", err)
	}
	defer cleanup()

	app := application.New(&application.ApplicationOptions{Logger: logger})
	app.RegisterServices(svc)
	app.RegisterMiddleware(
		middleware.WithLogger(logger, middleware.LoggerOptions{
			MaxBodyLength:   512,
			RequestIDHeader: conf.RequestIDHeader,
			RealIPHeader:    conf.RealIPHeader,
			APIPrefix:       "/api/",
		}),
	)
	app.RegisterControllers(
		controllers.NewOrgChartAPIController(app, controllers.OrgChartAPIControllerOptions{
			MaxUpload:  conf.OrgChart.MaxUpload,
			ReadUpload: spreadsheet.ReadRecords,
		}),
	)
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if _, err := svc.Snapshot(warmCtx); err != nil {
		logger.WithError(err).Warn("orgchart: initial build failed; serving errors until the source recovers")
	}
	cancel()

	serverInstance := server.NewHTTPServer(app, nil, nil)
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Serve(ctx, conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// newOrgChartService wires the configured record source, cache and bucket
// table. cleanup releases database and redis connections.
func newOrgChartService(
	ctx context.Context,
	conf *configuration.Configuration,
	logger *logrus.Logger,
) (*services.OrgChartService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	classifier := services.MustDefaultClassifier()
	if conf.OrgChart.BucketsPath != "" {
		buckets, err := services.LoadBucketsFile(conf.OrgChart.BucketsPath)
		if err != nil {
			return nil, cleanup, err
		}
		if classifier, err = services.NewClassifier(buckets); err != nil {
			return nil, cleanup, err
		}
	}

	opts := services.OrgChartServiceOptions{
		Classifier: classifier,
		Logger:     logger,
		TTL:        conf.OrgChart.CacheTTL,
	}

	switch conf.OrgChart.Source {
	case configuration.SourceFile:
		opts.Source = spreadsheet.NewFileSource(conf.OrgChart.SourceFile)
	default:
		dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		repo, err := persistence.OpenRecordRepository(dbCtx, conf.Database.ConnectionString())
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = repo.Close() })
		if err := repo.EnsureSchema(dbCtx); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		opts.Source = repo
		opts.Store = repo
	}

	switch conf.OrgChart.Cache {
	case configuration.CacheRedis:
		client, err := persistence.NewRedisClient(conf.RedisURL)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = client.Close() })
		opts.Cache = persistence.NewRedisSnapshotCache(client, conf.OrgChart.CacheTTL)
	case configuration.CacheMemory:
		opts.Cache = persistence.NewMemorySnapshotCache(conf.OrgChart.CacheTTL)
	}

	logger.WithFields(logrus.Fields{
		"source": conf.OrgChart.Source,
		"cache":  conf.OrgChart.Cache,
		"ttl":    conf.OrgChart.CacheTTL,
	}).Info("orgchart: service configured")
	return services.NewOrgChartService(opts), cleanup, nil
}
