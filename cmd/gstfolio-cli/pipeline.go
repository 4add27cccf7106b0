package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	"github.com/username/gstfolio/src/database"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/processors"
	"github.com/username/gstfolio/src/services"
)

const (
	cliAccountID      = "cli"
	maxConcurrentFile = 4
)

var cliKey = services.SessionKey{AccountID: cliAccountID}

// pipeline is the service stack the server runs, wired to a local store.
type pipeline struct {
	store    *database.Store
	settings *services.SettingsService
	uploads  services.UploadService
	reports  services.ReportService
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	store, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}
	settings := services.NewSettingsService(store, cache.New(cache.NoExpiration, 0))
	if _, err := settings.EnsureAccount(ctx, cliAccountID); err != nil {
		store.Close()
		return nil, err
	}
	sessions := services.NewSessionStore(cache.NoExpiration, 0)
	return &pipeline{
		store:    store,
		settings: settings,
		uploads: services.NewUploadService(settings, sessions,
			processors.NewClassifier(processors.DefaultKeywordRules), maxConcurrentFile, time.Now),
		reports: services.NewReportService(settings, sessions,
			processors.NewSummaryProcessor(), processors.NewGSTReturnProcessor(), processors.NewJournalProcessor()),
	}, nil
}

func (p *pipeline) Close() error { return p.store.Close() }

// load applies the mapping file, if any, and ingests the CSV files. Files that
// fail to parse are reported on stderr; the rest still count.
func (p *pipeline) load(ctx context.Context, stderr io.Writer, paths []string) error {
	if mappingPath != "" {
		mapping, err := readMapping(mappingPath)
		if err != nil {
			return err
		}
		if err := p.settings.SaveMapping(ctx, cliKey, mapping); err != nil {
			return err
		}
	}

	files := make([]models.FileInput, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, models.FileInput{Name: filepath.Base(path), Bank: bankName, Data: data})
	}

	res, err := p.uploads.ProcessUpload(ctx, cliKey, files)
	if res != nil {
		for _, f := range res.Files {
			if f.Error != "" {
				fmt.Fprintln(stderr, f.Error)
			}
		}
	}
	return err
}

func readMapping(path string) (models.PayeeMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: invalid mapping file: %w", path, err)
	}
	mapping := models.PayeeMapping{}
	for payee, category := range raw {
		mapping = mapping.With(payee, category)
	}
	return mapping, nil
}

// output returns stdout or the --out file.
func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outPath == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func requiredFiles() cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return fmt.Errorf("no files to process")
		}
		for _, f := range args {
			if _, err := os.Stat(f); err != nil {
				return err
			}
		}
		return nil
	}
}

// withPipeline runs fn over a loaded pipeline.
func withPipeline(fn func(ctx context.Context, p *pipeline, w io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()
		if err := p.load(ctx, cmd.ErrOrStderr(), args); err != nil {
			return err
		}

		w, closeOut, err := output(cmd)
		if err != nil {
			return err
		}
		if err := fn(ctx, p, w); err != nil {
			closeOut()
			return err
		}
		return closeOut()
	}
}
