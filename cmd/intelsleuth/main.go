// cmd/intelsleuth/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Berrypatches/IntelSleuth/internal/adapters/export"
	"github.com/Berrypatches/IntelSleuth/internal/adapters/output"
	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
	"github.com/Berrypatches/IntelSleuth/internal/core/usecases"
	"github.com/Berrypatches/IntelSleuth/internal/platform/config"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
	"github.com/Berrypatches/IntelSleuth/internal/platform/registry"
	"github.com/Berrypatches/IntelSleuth/internal/sources/webcontent"

	// Import sources for auto-registration via init()
	_ "github.com/Berrypatches/IntelSleuth/internal/sources/bing"
	_ "github.com/Berrypatches/IntelSleuth/internal/sources/duckduckgo"
	_ "github.com/Berrypatches/IntelSleuth/internal/sources/hibp"
	_ "github.com/Berrypatches/IntelSleuth/internal/sources/hunter"
	_ "github.com/Berrypatches/IntelSleuth/internal/sources/ipinfo"
	_ "github.com/Berrypatches/IntelSleuth/internal/sources/whois"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration load failed: %v\n", err)
		return 2
	}

	if cfg.PrintVersion {
		fmt.Printf("intelsleuth %s (commit %s, built %s)\n", version, commit, date)
		return 0
	}

	logger := logx.NewWithLevel(logx.ParseLevel(cfg.LogLevel))

	ctx, cancel := rootContextWithSignals()
	defer cancel()

	// Modos auxiliares que no corren el pipeline
	if cfg.ShowHistory {
		return showHistory(ctx, cfg, logger)
	}
	if cfg.ExtractURL != "" {
		return extractURL(ctx, cfg, logger)
	}

	if cfg.Query == "" {
		fmt.Fprintln(os.Stderr, "Error: query is required")
		fmt.Fprintln(os.Stderr, "Usage: intelsleuth <query>")
		fmt.Fprintln(os.Stderr, "Try: intelsleuth --help")
		return 2
	}

	logger.Info("intelsleuth starting",
		"version", version,
		"timeout_s", cfg.TimeoutS,
	)

	sources, err := registry.Global().Build(cfg.Sources, logger)
	if err != nil {
		logger.Err(err, "phase", "source-build")
		return 2
	}

	extractor := webcontent.New(cfg.Sources[domain.SourceWebContent], logger)

	pipeline := usecases.NewPipeline(usecases.PipelineOptions{
		Orchestrator: usecases.NewOrchestrator(usecases.OrchestratorOptions{
			Sources: sources,
			Content: extractor,
			Logger:  logger,
			Timeout: cfg.Timeout(),
		}),
		Normalizer: usecases.NewNormalizer(logger),
		Exporters:  buildExporters(cfg, logger),
		Logger:     logger,
	})

	report, err := pipeline.Run(ctx, cfg.Query, cfg.SourceOverrides)
	if err != nil {
		logger.Err(err, "phase", "run")
		return 2
	}

	if !cfg.TableDisabled {
		output.RenderTable(report)
	} else {
		output.RenderSummary(report)
	}

	if cfg.JSONFile != "" {
		if err := output.WriteJSONFile(cfg.JSONFile, report); err != nil {
			logger.Err(err, "phase", "output")
			return 1
		}
		logger.Info("report written", "path", cfg.JSONFile)
	}

	return 0
}

// buildExporters arma la lista de exporters según la configuración. Los
// fallos de construcción degradan el exporter, nunca abortan el programa.
func buildExporters(cfg config.Config, logger logx.Logger) []ports.Exporter {
	var exporters []ports.Exporter

	if cfg.HistoryEnabled && cfg.HistoryDB != "" {
		history, err := export.NewHistoryExporter(cfg.HistoryDB, logger)
		if err != nil {
			logger.Warn("history disabled", "error", err.Error())
		} else {
			exporters = append(exporters, history)
		}
	}

	if cfg.WebhookURL != "" {
		exporters = append(exporters, export.NewWebhookExporter(cfg.WebhookURL, cfg.Timeout(), logger))
	}

	return exporters
}

// extractURL corre el modo standalone de extracción de contenido.
func extractURL(ctx context.Context, cfg config.Config, logger logx.Logger) int {
	extractor := webcontent.New(cfg.Sources[domain.SourceWebContent], logger)

	cctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	result := extractor.Extract(cctx, cfg.ExtractURL)
	if result.Status == domain.StatusError {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Reason)
		return 1
	}
	if result.Status == domain.StatusNotFound {
		fmt.Println("No readable content found.")
		return 0
	}

	content := result.Payload.(*domain.WebContent)
	if content.Title != "" {
		fmt.Printf("# %s\n\n", content.Title)
	}
	fmt.Println(content.Text)
	return 0
}

// showHistory lista las consultas recientes del historial.
func showHistory(ctx context.Context, cfg config.Config, logger logx.Logger) int {
	history, err := export.NewHistoryExporter(cfg.HistoryDB, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer history.Close()

	entries, err := history.ListRecent(ctx, 20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Println("History is empty.")
		return 0
	}

	for _, e := range entries {
		fmt.Printf("%s  %-8s  %-40s  %d findings  (%dms)\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.QueryType,
			truncateQuery(e.Raw, 40),
			e.EntityCount,
			e.ElapsedMS,
		)
	}
	return 0
}

func truncateQuery(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// rootContextWithSignals crea el contexto raíz cancelable por SIGINT/SIGTERM.
func rootContextWithSignals() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
			cancel()
			// Segundo señalazo fuerza la salida inmediata.
			select {
			case <-ch:
				os.Exit(130)
			case <-time.After(10 * time.Second):
				os.Exit(130)
			}
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
