package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/infrastructure/persistence"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/infrastructure/spreadsheet"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/services"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/configuration"
	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/pkg/logging"
)

type importResult struct {
	File    string       `json:"file"`
	Applied bool         `json:"applied"`
	Stored  int          `json:"stored"`
	Build   buildSummary `json:"build"`
}

func newImportCmd(g *globalOptions) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Validate a spreadsheet and (with --apply) replace the stored records",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireFlag("file", g.file)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, g, apply)
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Write the records to the database (default is dry-run)")
	return cmd
}

func readSpreadsheet(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	defer func() { _ = f.Close() }()
	records, err := spreadsheet.ReadRecords(f, filepath.Base(path))
	if err != nil {
		return nil, withCode(exitValidation, fmt.Errorf("read %s: %w", path, err))
	}
	if len(records) == 0 {
		return nil, withCode(exitValidation, fmt.Errorf("read %s: %w", path, services.ErrEmptyImport))
	}
	return records, nil
}

func runImport(cmd *cobra.Command, g *globalOptions, apply bool) error {
	logger := logging.ConsoleLogger(logging.ParseLevel(g.logLevel))
	classifier, err := loadClassifier(g.buckets)
	if err != nil {
		return err
	}

	records, err := readSpreadsheet(g.file)
	if err != nil {
		return err
	}
	snap, err := services.Build(records, services.BuildOptions{Classifier: classifier, Logger: logger})
	if err != nil {
		return withCode(exitValidation, err)
	}

	res := importResult{File: g.file, Build: summarize(snap)}
	if apply {
		n, err := storeRecords(cmd.Context(), records, logger)
		if err != nil {
			return err
		}
		res.Applied = true
		res.Stored = n
	}
	return writeJSONLine(cmd.OutOrStdout(), res)
}

func storeRecords(ctx context.Context, records []domain.RawRecord, logger *logrus.Logger) (int, error) {
	conf, err := configuration.Load()
	if err != nil {
		return 0, withCode(exitUsage, err)
	}
	defer conf.Unload()

	repo, err := persistence.OpenRecordRepository(ctx, conf.Database.ConnectionString())
	if err != nil {
		return 0, withCode(exitStore, err)
	}
	defer func() { _ = repo.Close() }()

	if err := repo.EnsureSchema(ctx); err != nil {
		return 0, withCode(exitStore, err)
	}
	n, err := repo.ImportRecords(ctx, records)
	if err != nil {
		return 0, withCode(exitStore, err)
	}
	logger.WithField("records", n).Info("orgchart: records stored")
	return n, nil
}
