package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/yukikurage/release-planner/internal/cache"
	"github.com/yukikurage/release-planner/internal/config"
	"github.com/yukikurage/release-planner/internal/database"
	"github.com/yukikurage/release-planner/internal/realtime"
	"github.com/yukikurage/release-planner/internal/services"
)

// openWorkspace loads every collection, from the remote store described by
// the server environment unless --local is set.
func openWorkspace(ctx context.Context, v *viper.Viper, logger *slog.Logger) (*services.Workspace, func(), error) {
	snaps, err := cache.Open(v.GetString("cache"))
	if err != nil {
		return nil, nil, err
	}

	var db *gorm.DB
	cfg := config.Load()
	if !v.GetBool("local") && !cfg.LocalOnly() {
		db, err = database.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, err
		}
	}

	bus := realtime.NewBus()
	ws := services.NewWorkspace(services.WorkspaceConfig{DB: db, Feed: bus, Cache: snaps, Logger: logger})
	if err := ws.Start(ctx); err != nil {
		logger.Warn("some collections were loaded from the cache", "error", err)
	}
	return ws, func() {
		ws.Stop()
		bus.Close()
	}, nil
}

func cliLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func exportCmd(v *viper.Viper) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export <kind>",
		Short:     "Write a collection to an xlsx workbook",
		Args:      cobra.ExactArgs(1),
		ValidArgs: services.ExportKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cliLogger(cmd.ErrOrStderr())
			ws, closeWS, err := openWorkspace(cmd.Context(), v, logger)
			if err != nil {
				return err
			}
			defer closeWS()

			data, filename, err := services.NewExportService(ws, &services.Effects{Logger: logger}).Workbook(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: <kind>-<date>.xlsx)")
	return cmd
}

func cacheCmd(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{Use: "cache", Short: "Manage the local cache"}
	c.AddCommand(cacheListCmd(v), cacheImportCmd(v), cacheMigrateCmd(v))
	return c
}

func cacheListCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := cache.Open(v.GetString("cache"))
			if err != nil {
				return err
			}
			names, err := snaps.Collections(cmd.Context())
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), names)
			}
			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Collection"})
			for _, n := range names {
				tw.AppendRow(table.Row{n})
			}
			tw.Render()
			return nil
		},
	}
}

func cacheImportCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:       "import <collection> <file.json>",
		Short:     "Import a JSON export from an older version into the cache",
		Args:      cobra.ExactArgs(2),
		ValidArgs: services.LegacyCollections,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			snaps, err := cache.Open(v.GetString("cache"))
			if err != nil {
				return err
			}
			n, err := services.ImportLegacy(cmd.Context(), snaps, args[0], data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s (pending upload)\n", n, args[0])
			return nil
		},
	}
}

func cacheMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Upload pending cached collections to the remote store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if v.GetBool("local") || config.Load().LocalOnly() {
				return fmt.Errorf("migrate needs a remote store; unset --local and DB_DRIVER=none")
			}
			logger := cliLogger(cmd.ErrOrStderr())
			ws, closeWS, err := openWorkspace(cmd.Context(), v, logger)
			if err != nil {
				return err
			}
			defer closeWS()

			counts, err := ws.MigrateLocalCache(cmd.Context())
			if v.GetBool("json") {
				if jerr := printJSON(cmd.OutOrStdout(), counts); jerr != nil {
					return jerr
				}
				return err
			}
			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)

			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Collection", "Uploaded"})
			for _, name := range names {
				tw.AppendRow(table.Row{name, counts[name]})
			}
			tw.Render()
			return err
		},
	}
}
