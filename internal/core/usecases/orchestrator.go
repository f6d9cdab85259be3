// internal/core/usecases/orchestrator.go
package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
)

// maxContentFetch es el número de URLs de búsqueda que se pasan a la
// extracción de contenido en el fetch secundario de consultas de dominio.
const maxContentFetch = 3

// Orchestrator coordina la ejecución concurrente de todas las fuentes
// aplicables a una consulta. Cada fuente corre en su propia goroutine con
// timeout acotado; el fallo de una nunca aborta el batch.
type Orchestrator struct {
	sources []ports.Source
	content ports.ContentExtractor
	logger  logx.Logger
	timeout time.Duration
}

// OrchestratorOptions configura el orchestrator.
type OrchestratorOptions struct {
	Sources []ports.Source
	Content ports.ContentExtractor
	Logger  logx.Logger

	// Timeout por invocación de fuente (uniforme)
	Timeout time.Duration
}

// NewOrchestrator crea una nueva instancia del orchestrator.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Orchestrator{
		sources: opts.Sources,
		content: opts.Content,
		logger:  opts.Logger.With("component", "orchestrator"),
		timeout: opts.Timeout,
	}
}

// Gather despacha concurrentemente todas las fuentes habilitadas cuyo campo
// requerido está presente, espera a que todas terminen y agrega los
// resultados. La agregación ocurre en orden de despacho, con un único
// recolector, así que la salida es determinista para entradas idénticas.
func (o *Orchestrator) Gather(ctx context.Context, q *domain.Query) *domain.AllResults {
	all := domain.NewAllResults(q)

	selected := o.selectSources(q)
	if len(selected) == 0 {
		o.logger.Warn("no sources applicable", "query_type", q.Type)
		return all
	}

	o.logger.Info("dispatching sources",
		"query_type", q.Type,
		"sources", len(selected),
		"timeout", o.timeout,
	)

	// Cada goroutine escribe solo en su slot; no hay escritores
	// concurrentes sobre el agregado.
	results := make([]*domain.SourceResult, len(selected))
	var wg sync.WaitGroup

	for i, src := range selected {
		wg.Add(1)
		go func(i int, src ports.Source) {
			defer wg.Done()
			results[i] = o.runSource(ctx, src, q)
		}(i, src)
	}

	wg.Wait()

	for _, r := range results {
		all.Absorb(r)
	}

	// Fetch secundario: consultas de dominio con resultados de búsqueda
	// pasan sus primeras URLs por la extracción de contenido. Es la única
	// dependencia entre adapters del pipeline.
	if q.Type == domain.InputTypeDomain && o.content != nil {
		o.fetchTopContent(ctx, all)
	}

	o.logger.Info("gather completed",
		"dispatched", len(selected),
		"failures", all.FailureCount(),
	)

	return all
}

// selectSources filtra las fuentes habilitadas para la consulta cuyo campo
// requerido fue extraído por el clasificador.
func (o *Orchestrator) selectSources(q *domain.Query) []ports.Source {
	selected := make([]ports.Source, 0, len(o.sources))
	for _, src := range o.sources {
		if !q.Enabled(src.Name()) {
			continue
		}
		if field := src.RequiredField(); field != "" && !q.HasField(field) {
			o.logger.Debug("skipping source, required field absent",
				"source", src.Name(),
				"field", field,
			)
			continue
		}
		selected = append(selected, src)
	}
	return selected
}

// runSource ejecuta una fuente con timeout propio y contención de pánicos.
// Siempre retorna un SourceResult, nunca propaga fallos.
func (o *Orchestrator) runSource(ctx context.Context, src ports.Source, q *domain.Query) (result *domain.SourceResult) {
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Warn("source panicked", "source", src.Name(), "panic", fmt.Sprintf("%v", rec))
			result = domain.NewSourceError(src.Name(), src.Kind(), fmt.Sprintf("internal failure: %v", rec))
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	result = src.Run(cctx, *q)
	elapsed := time.Since(start)

	if result == nil {
		result = domain.NewSourceError(src.Name(), src.Kind(), "source returned no result")
	}

	o.logger.Debug("source completed",
		"source", src.Name(),
		"status", result.Status,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return result
}

// fetchTopContent corre la extracción de contenido sobre las primeras URLs
// de los resultados de búsqueda y absorbe el texto en el agregado.
func (o *Orchestrator) fetchTopContent(ctx context.Context, all *domain.AllResults) {
	urls := topSearchURLs(all, maxContentFetch)
	if len(urls) == 0 {
		return
	}

	o.logger.Debug("secondary content fetch", "urls", len(urls))

	results := make([]*domain.SourceResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()
			results[i] = o.content.Extract(cctx, url)
		}(i, url)
	}

	wg.Wait()

	for _, r := range results {
		all.Absorb(r)
	}
}

// topSearchURLs retorna hasta n URLs de los resultados de búsqueda,
// priorizando duckduckgo y completando con bing.
func topSearchURLs(all *domain.AllResults, n int) []string {
	seen := make(map[string]bool, n)
	urls := make([]string, 0, n)

	for _, engine := range []string{domain.SourceDuckDuckGo, domain.SourceBing} {
		for _, item := range all.SearchResults[engine] {
			if len(urls) >= n {
				return urls
			}
			if item.URL == "" || seen[item.URL] {
				continue
			}
			seen[item.URL] = true
			urls = append(urls, item.URL)
		}
	}
	return urls
}
