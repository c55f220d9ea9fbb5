package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/infrastructure/persistence"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/infrastructure/spreadsheet"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/services"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/configuration"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/logging"
)

// runtime is what every read command needs: a record source, the bucket
// table and a stderr logger.
type runtime struct {
	logger     *logrus.Logger
	classifier *services.Classifier
	source     services.RecordSource
	closers    []func()
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

func loadClassifier(path string) (*services.Classifier, error) {
	if strings.TrimSpace(path) == "" {
		return services.MustDefaultClassifier(), nil
	}
	buckets, err := services.LoadBucketsFile(path)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("load buckets: %w", err))
	}
	c, err := services.NewClassifier(buckets)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("load buckets: %w", err))
	}
	return c, nil
}

// openRuntime reads --file directly; without it the configured source is
// used, which requires a valid environment.
func openRuntime(ctx context.Context, g *globalOptions) (*runtime, error) {
	rt := &runtime{logger: logging.ConsoleLogger(logging.ParseLevel(g.logLevel))}

	bucketsPath := g.buckets
	if strings.TrimSpace(g.file) != "" {
		rt.source = spreadsheet.NewFileSource(g.file)
	} else {
		conf, err := configuration.Load()
		if err != nil {
			return nil, withCode(exitUsage, err)
		}
		rt.closers = append(rt.closers, conf.Unload)
		if bucketsPath == "" {
			bucketsPath = conf.OrgChart.BucketsPath
		}
		switch conf.OrgChart.Source {
		case configuration.SourceFile:
			rt.source = spreadsheet.NewFileSource(conf.OrgChart.SourceFile)
		default:
			repo, err := persistence.OpenRecordRepository(ctx, conf.Database.ConnectionString())
			if err != nil {
				rt.Close()
				return nil, withCode(exitSource, err)
			}
			rt.closers = append(rt.closers, func() { _ = repo.Close() })
			rt.source = repo
		}
	}

	c, err := loadClassifier(bucketsPath)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.classifier = c
	return rt, nil
}

func (rt *runtime) snapshot(ctx context.Context) (*services.Snapshot, error) {
	records, err := rt.source.FetchRecords(ctx)
	if err != nil {
		return nil, withCode(exitSource, fmt.Errorf("fetch records: %w", err))
	}
	snap, err := services.Build(records, services.BuildOptions{Classifier: rt.classifier, Logger: rt.logger})
	if err != nil {
		return nil, withCode(exitValidation, err)
	}
	return snap, nil
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return withCode(exitUsage, errors.New("--"+name+" is required"))
	}
	return nil
}
