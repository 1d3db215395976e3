package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hasiripi/insight-engine/internal/actions"
	"github.com/hasiripi/insight-engine/internal/logging"
	"github.com/hasiripi/insight-engine/internal/mock"
	"github.com/hasiripi/insight-engine/internal/models"
	"github.com/hasiripi/insight-engine/internal/notifybus"
	"github.com/hasiripi/insight-engine/internal/personalization"
	"github.com/hasiripi/insight-engine/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	flagSnapshot        string
	flagRole            string
	flagOperationalRole string
	flagDepartment      string
	flagTags            []string
	flagLimit           int
	flagExecute         bool
	flagListen          string
	flagLogLevel        string
	flagLogFormat       string
)

var rootCmd = &cobra.Command{
	Use:     "insight-engine",
	Short:   "Insight generation and personalization pipeline",
	Long:    `insight-engine recomputes ranked, audience-filtered insights from a snapshot of financial records, tasks, capacity readings and customer profiles.`,
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("insight-engine %s (built %s)\n", Version, BuildTime)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "path to a JSON snapshot of source entities (defaults to built-in sample data)")
	rootCmd.Flags().StringVar(&flagRole, "role", "admin", "viewer role for personalization")
	rootCmd.Flags().StringVar(&flagOperationalRole, "operational-role", "admin", "viewer operational role")
	rootCmd.Flags().StringVar(&flagDepartment, "department", "", "viewer department")
	rootCmd.Flags().StringSliceVar(&flagTags, "tag", nil, "viewer tags (repeatable)")
	rootCmd.Flags().IntVar(&flagLimit, "limit", 0, "maximum number of insights to show (0 = all)")
	rootCmd.Flags().BoolVar(&flagExecute, "execute", false, "execute the top insight's actions against mock collaborators")
	rootCmd.Flags().StringVar(&flagListen, "listen", "", "serve /metrics and the /ws notification bus on this address")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", envOr("INSIGHT_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", envOr("INSIGHT_LOG_FORMAT", "auto"), "log format (auto, console, json)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logging.Init(logging.Config{Level: flagLogLevel, Format: flagLogFormat, Component: "insight-engine"})

	input, err := loadSnapshot(flagSnapshot)
	if err != nil {
		return err
	}

	result := pipeline.Run(input)

	viewer := personalization.Context{
		Role:            models.NormalizeRole(flagRole),
		OperationalRole: models.OperationalRole(flagOperationalRole),
		Department:      flagDepartment,
		Tags:            flagTags,
	}
	ranked := personalization.SelectForAudience(result.Insights, viewer, personalization.Options{Limit: flagLimit})

	fmt.Printf("%d insights (%d visible to %s/%s)\n\n", len(result.Insights), len(ranked), viewer.Role, viewer.OperationalRole)
	for i, insight := range ranked {
		fmt.Printf("%2d. [%-8s] %.2f  %s\n", i+1, insight.Severity, insight.Score, insight.Title)
		if insight.Narrative != "" {
			fmt.Printf("    %s\n", insight.Narrative)
		}
		for _, action := range insight.Actions {
			fmt.Printf("    - %s (%s)\n", action.Label, action.Type)
		}
	}

	notifier, shutdown, err := buildNotifier(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	if flagExecute && len(ranked) > 0 {
		if err := executeActions(ctx, ranked[0], notifier); err != nil {
			return err
		}
	}

	if flagListen != "" {
		// Keep serving metrics and the bus until interrupted.
		<-ctx.Done()
	}
	return nil
}

// executeActions runs every action of the insight concurrently against the
// mock collaborators. Actions are independent; no ordering is guaranteed.
func executeActions(ctx context.Context, insight models.InsightRecord, notifier notifybus.Publisher) error {
	tasks := mock.NewTaskDirectory()
	executor := actions.NewExecutor(tasks, mock.NewAutomationEngine(tasks), mock.Chatbot{}, notifier)

	fmt.Printf("\nExecuting %d actions for %s\n", len(insight.Actions), insight.ID)

	group, groupCtx := errgroup.WithContext(ctx)
	results := make([]actions.Result, len(insight.Actions))
	for i, action := range insight.Actions {
		i, action := i, action
		group.Go(func() error {
			result, err := executor.Execute(groupCtx, insight, action)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for i, action := range insight.Actions {
		fmt.Printf("  %s -> ok=%t %s\n", action.ID, results[i].OK, results[i].Message)
	}
	fmt.Printf("  %d mock tasks created\n", len(tasks.Tasks()))
	return nil
}

// buildNotifier returns the notification publisher: the structured log by
// default, plus a WebSocket broadcaster and /metrics when --listen is set.
func buildNotifier(ctx context.Context) (notifybus.Publisher, func(), error) {
	if flagListen == "" {
		return notifybus.LogPublisher{}, func() {}, nil
	}

	broadcaster := notifybus.NewWebSocketBroadcaster()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/ws", broadcaster)

	server := &http.Server{Addr: flagListen, Handler: mux}
	go func() {
		log.Info().Str("addr", flagListen).Msg("Serving metrics and notification bus")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	return notifybus.MultiPublisher{notifybus.LogPublisher{}, broadcaster}, shutdown, nil
}

// loadSnapshot reads a JSON snapshot of source entities, or returns the
// built-in sample when path is empty.
func loadSnapshot(path string) (pipeline.Input, error) {
	if path == "" {
		return sampleSnapshot(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot struct {
		Financials        []models.FinancialRecord  `json:"financials"`
		Tasks             []models.Task             `json:"tasks"`
		CapacitySnapshots []models.CapacitySnapshot `json:"capacitySnapshots"`
		Customers         []models.CustomerProfile  `json:"customers"`
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return pipeline.Input{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return pipeline.Input{
		Financials:        snapshot.Financials,
		Tasks:             snapshot.Tasks,
		CapacitySnapshots: snapshot.CapacitySnapshots,
		Customers:         snapshot.Customers,
	}, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
