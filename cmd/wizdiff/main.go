package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"wizdiff/internal/app"
	"wizdiff/internal/config"
	"wizdiff/internal/database"
	"wizdiff/internal/manifest"
	"wizdiff/internal/model"
	"wizdiff/internal/report"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig loads the config from the default (or env-overridden) path.
func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a WizDiffApp. The caller must defer
// app.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.WizDiffApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewWizDiffApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "wizdiff",
	Short: "Track file metadata across revisions and diff them",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Database: %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the metadata database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or migrate the metadata database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		if cfg.Database.Type == "sqlite" {
			if err := os.MkdirAll(cfg.Database.DataDir, 0755); err != nil {
				return fmt.Errorf("creating data directory: %w", err)
			}
		}

		store, err := database.NewStoreFromConfig(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer store.Close()

		if err := store.MigrateUp(); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}

		fmt.Printf("Database ready at %s\n", store.Path())
		return nil
	},
}

// ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest MANIFEST",
	Short: "Ingest a scan manifest as a revision capture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		revOverride, _ := cmd.Flags().GetString("revision")
		dateOverride, _ := cmd.Flags().GetString("date")

		m, err := manifest.ReadFromFile(args[0])
		if err != nil {
			return err
		}

		revision := m.Revision
		if revOverride != "" {
			revision = revOverride
		}
		if revision == "" {
			return fmt.Errorf("manifest has no revision; pass --revision")
		}

		if dateOverride != "" {
			m.Date = dateOverride
		}
		date, err := m.ParseDate(time.Now())
		if err != nil {
			return err
		}

		loose, wads, err := m.Records()
		if err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}

		a, err := newApp("Ingest")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().Ingest(cmd.Context(), revision, date, loose, wads); err != nil {
			return err
		}

		fmt.Printf("Ingested revision %s (%s): %d file(s), %d wad member(s)\n",
			revision, date.Format(model.DateFormat), len(loose), len(wads))
		return nil
	},
}

// diff command
var diffCmd = &cobra.Command{
	Use:   "diff [OLD NEW]",
	Short: "Diff two revisions (defaults to the two most recent)",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if len(args) == 1 {
			return fmt.Errorf("diff takes either no revisions or exactly two")
		}

		a, err := newApp("Diff")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		var oldRev, newRev string
		if len(args) == 2 {
			oldRev, newRev = args[0], args[1]
		} else {
			prev, latest, err := a.Service().Latest(ctx)
			if err != nil {
				return err
			}
			oldRev, newRev = prev.Name, latest.Name
		}

		result, err := a.Service().Diff(ctx, oldRev, newRev)
		if err != nil {
			return err
		}

		return report.Render(os.Stdout, result)
	},
}

// revisions command
var revisionsCmd = &cobra.Command{
	Use:   "revisions",
	Short: "List recorded revision captures",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Revisions")
		if err != nil {
			return err
		}
		defer a.Close()

		revs, err := a.Service().Revisions(cmd.Context())
		if err != nil {
			return err
		}

		if len(revs) == 0 {
			fmt.Println("No revisions recorded.")
			return nil
		}

		for _, r := range revs {
			fmt.Printf("%s  %s\n", r.Date.Format(model.DateFormat), r.Name)
		}
		return nil
	},
}

// prune command
var pruneCmd = &cobra.Command{
	Use:   "prune REVISION",
	Short: "Delete a revision and all of its file records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Prune")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().Prune(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Pruned revision %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	dbCmd.AddCommand(dbInitCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().String("revision", "", "Override the manifest's revision label")
	ingestCmd.Flags().String("date", "", "Override the capture date (YYYY-MM-DD)")
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().Duration("timeout", 0, "Abort the diff after this long (e.g. 30s)")
	rootCmd.AddCommand(revisionsCmd)
	rootCmd.AddCommand(pruneCmd)
}
