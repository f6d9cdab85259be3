// internal/core/usecases/pipeline.go
package usecases

import (
	"context"
	"time"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
)

// Pipeline encadena clasificación, recolección, normalización y resumen,
// y entrega el report final a los exporters registrados.
type Pipeline struct {
	orchestrator *Orchestrator
	normalizer   *Normalizer
	exporters    []ports.Exporter
	logger       logx.Logger
}

// PipelineOptions configura el pipeline.
type PipelineOptions struct {
	Orchestrator *Orchestrator
	Normalizer   *Normalizer
	Exporters    []ports.Exporter
	Logger       logx.Logger
}

// NewPipeline crea una nueva instancia del pipeline.
func NewPipeline(opts PipelineOptions) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Normalizer == nil {
		opts.Normalizer = NewNormalizer(opts.Logger)
	}

	return &Pipeline{
		orchestrator: opts.Orchestrator,
		normalizer:   opts.Normalizer,
		exporters:    opts.Exporters,
		logger:       opts.Logger.With("component", "pipeline"),
	}
}

// Run ejecuta el pipeline completo para un input crudo. Retorna error solo
// si el input no es clasificable; los fallos de fuentes individuales se
// reportan como diagnostics dentro del report.
func (p *Pipeline) Run(ctx context.Context, raw string, overrides map[string]bool) (*domain.Report, error) {
	start := time.Now()

	q, err := domain.NewQuery(raw, overrides)
	if err != nil {
		return nil, err
	}

	p.logger.Info("query classified", "type", q.Type, "hash", q.Hash[:12])

	all := p.orchestrator.Gather(ctx, q)
	results := p.normalizer.Categorize(all)
	summary := Summarize(q, results)

	report := &domain.Report{
		Query:       q,
		Results:     results,
		Summary:     summary,
		Diagnostics: all.Diagnostics,
		Elapsed:     time.Since(start),
		GeneratedAt: time.Now(),
	}

	p.export(ctx, report)

	p.logger.Info("pipeline completed",
		"entities", results.Total(),
		"failures", all.FailureCount(),
		"elapsed_ms", report.Elapsed.Milliseconds(),
	)

	return report, nil
}

// export entrega el report a cada exporter. Los fallos de entrega se
// registran y nunca invalidan el report.
func (p *Pipeline) export(ctx context.Context, report *domain.Report) {
	for _, exp := range p.exporters {
		if err := exp.Export(ctx, report); err != nil {
			p.logger.Warn("export failed", "exporter", exp.Name(), "error", err.Error())
		}
	}
}
