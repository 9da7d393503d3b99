package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ayushbridge/ayushbridge/internal/config"
	"github.com/ayushbridge/ayushbridge/internal/mapping"
	"github.com/ayushbridge/ayushbridge/internal/platform/db"
	"github.com/ayushbridge/ayushbridge/internal/platform/export"
	"github.com/ayushbridge/ayushbridge/migrations"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ayushbridge",
		Short:         "NAMASTE to ICD-11 terminology service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a dotenv file applied before reading the environment")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(validateCmd())
	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "ayushbridge").Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the terminology API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, newLogger(cfg, os.Stdout))
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the mapping table schema",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetInt("to")
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator) error {
				var (
					count int
					err   error
				)
				if target > 0 {
					count, err = m.UpTo(ctx, target)
				} else {
					count, err = m.Up(ctx)
				}
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().Int("to", 0, "Stop after this migration version")
	cmd.AddCommand(upCmd)

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				printMigrationStatus(cmd.OutOrStdout(), statuses)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(ctx context.Context, m *db.Migrator) error) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}

	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: 2,
		AppName:  "ayushbridge-migrate",
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Schema: %s\n", cfg.DBSchema)
	return fn(ctx, db.NewMigrator(pool, migrations.FS, cfg.DBSchema))
}

func printMigrationStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the loaded mappings as a ConceptMap or a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatFlag, _ := cmd.Flags().GetString("format")
			conceptMap, _ := cmd.Flags().GetString("concept-map")
			outPath, _ := cmd.Flags().GetString("out")

			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			if format == export.FormatXLSX && outPath == "" {
				return fmt.Errorf("--out is required for xlsx exports")
			}

			cfg, store, err := loadStoreForCmd(cmd)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}
			return export.Write(w, store, export.Options{
				Format:       format,
				ConceptMapID: conceptMap,
				BaseURL:      cfg.BaseURL,
			})
		},
	}
	cmd.Flags().String("format", "json", "Output format: json or xlsx")
	cmd.Flags().String("concept-map", "namaste-to-icd11", "ConceptMap id for json output")
	cmd.Flags().StringP("out", "o", "", "Output file (stdout when empty)")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print mapping statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadStoreForCmd(cmd)
			if err != nil {
				return err
			}
			printStatistics(cmd.OutOrStdout(), store.Statistics())
			return nil
		},
	}
}

func printStatistics(w io.Writer, st mapping.Statistics) {
	fmt.Fprintf(w, "Total mappings:   %d\n", st.TotalMappings)
	fmt.Fprintf(w, "Reverse mappings: %d\n", st.ReverseMappings)
	printCounts(w, "By traditional system", st.ByTraditionalSystem)
	printCounts(w, "By equivalence", st.ByEquivalence)
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-12s %d\n", k, counts[k])
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configured mapping source and report the first invalid record",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := loadStoreForCmd(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d mappings, %d ICD-11 codes\n", store.Len(), store.ReverseLen())
			return nil
		},
	}
}

// loadStoreForCmd builds a Store from the configured source for the offline
// commands.
func loadStoreForCmd(cmd *cobra.Command) (*config.Config, *mapping.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()
	src, err := newStoreSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	store, err := src.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}
