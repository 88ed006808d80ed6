/*
main.go - Application entry point

PURPOSE:
  CLI for the personal billing ledger. Subcommands:

    serve     Run the HTTP API with graceful shutdown
    migrate   Apply database migrations and exit
    export    Write all time entries as CSV to stdout or a file
    import    Load time entries from a CSV file

STARTUP SEQUENCE (serve):
  1. Load TOML config (flags override)
  2. Open SQLite store, apply migrations
  3. Wire services and HTTP router
  4. Start server; SIGINT/SIGTERM drains requests (30s timeout)

EXAMPLES:
  # Run with file database
  timepe serve --db ~/.timepe/timepe.sqlite

  # Run with in-memory database
  timepe serve --db ":memory:"

  # Move data between machines
  timepe export -o entries.csv
  timepe import entries.csv

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Config file format
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrFrey75/TimePE/api"
	"github.com/MrFrey75/TimePE/config"
	"github.com/MrFrey75/TimePE/ledger"
	"github.com/MrFrey75/TimePE/store/sqlite"
)

var (
	flagConfig string
	flagDB     string
	flagPort   int
)

var rootCmd = &cobra.Command{
	Use:   "timepe",
	Short: "Personal time tracking and billing ledger",
	Long: `TimePE tracks billable hours against an effective-dated pay rate
timeline and keeps a running balance of what you are owed.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		app, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer app.store.Close()

		router := api.NewRouter(app.handler, cfg.CORSOrigins)
		server := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			log.Printf("Server starting on http://localhost:%d", cfg.Port)
			log.Printf("API available at http://localhost:%d/api/v1", cfg.Port)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server failed: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("forced shutdown: %w", err)
		}
		log.Println("Server stopped")
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Opening the store applies pending migrations.
		store, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		fmt.Println("Database is up to date.")
		return nil
	},
}

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:       "export {entries|projects}",
	Short:     "Write time entries or projects as CSV",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"entries", "projects"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		app, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer app.store.Close()

		out := os.Stdout
		if flagExportOut != "" {
			f, err := os.Create(flagExportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if args[0] == "projects" {
			return api.WriteProjectsCSV(cmd.Context(), out, app.projects)
		}
		return api.WriteEntriesCSV(cmd.Context(), out, app.entries, app.projects)
	},
}

var importCmd = &cobra.Command{
	Use:   "import {entries|projects} <file.csv>",
	Short: "Load time entries or projects from a CSV file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := args[0]
		if kind != "entries" && kind != "projects" {
			return fmt.Errorf("unknown import kind %q (want entries or projects)", kind)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		app, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer app.store.Close()

		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		var result *api.ImportResultDTO
		if kind == "projects" {
			result, err = api.ImportProjectsCSVFrom(cmd.Context(), f, app.projects)
		} else {
			result, err = api.ImportEntriesCSV(cmd.Context(), f, app.entries, app.projects)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d %s.\n", result.Imported, kind)
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "skipped %s\n", e)
		}
		return nil
	},
}

// app bundles the store and services so every subcommand wires them the
// same way.
type app struct {
	store    *sqlite.Store
	handler  *api.Handler
	entries  *ledger.EntryService
	projects *ledger.ProjectService
}

func openApp(cfg *config.Config) (*app, error) {
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	rates := ledger.NewRateService(store)
	projects := ledger.NewProjectService(store)
	entries := ledger.NewEntryService(store, rates, projects)
	payments := ledger.NewPaymentService(store)
	incidentals := ledger.NewIncidentalService(store)
	dashboard := ledger.NewDashboardService(store, store, store, store)

	return &app{
		store:    store,
		handler:  api.NewHandler(rates, entries, projects, payments, incidentals, dashboard),
		entries:  entries,
		projects: projects,
	}, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDB != "" {
		cfg.DatabasePath = flagDB
	}
	if flagPort != 0 {
		cfg.Port = flagPort
	}
	if cfg.DatabasePath != ":memory:" {
		if err := config.EnsureDirectories(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.toml")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	serveCmd.Flags().IntVar(&flagPort, "port", 0, "HTTP server port (overrides config)")
	exportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "write CSV to file instead of stdout")

	rootCmd.AddCommand(serveCmd, migrateCmd, exportCmd, importCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
