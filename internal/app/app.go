package app

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"wizdiff/internal/config"
	"wizdiff/internal/database"
	"wizdiff/internal/tracker"
)

// WizDiffApp is the application layer between the CLI and the tracker
// service. It constructs all dependencies from config and manages the
// store lifecycle on Close.
type WizDiffApp struct {
	cfg     *config.Config
	store   *database.SQLiteStore
	service *tracker.Service
	logFile *os.File
}

// NewWizDiffApp creates a fully wired WizDiffApp from the given config.
// operation identifies the CLI command being run (e.g. "Ingest", "Diff").
// The caller must call Close when done.
func NewWizDiffApp(cfg *config.Config, operation string) (*WizDiffApp, error) {
	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("database schema out of date (run 'wizdiff db init'): %w", err)
	}

	opID := uuid.New().String()
	logger, logFile, err := newLogger(cfg.LogDir, operation+"/"+opID[:8])
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := tracker.NewService(store, &slogAdapter{l: logger}, tracker.RealClock{})

	return &WizDiffApp{
		cfg:     cfg,
		store:   store,
		service: svc,
		logFile: logFile,
	}, nil
}

// Service exposes the tracker service for the CLI commands.
func (a *WizDiffApp) Service() *tracker.Service {
	return a.service
}

// Close closes the store and the log file.
func (a *WizDiffApp) Close() error {
	var firstErr error

	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
