// internal/adapters/export/webhook.go
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/platform/httpclient"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
)

// WebhookExporter entrega el reporte a un endpoint HTTP externo como JSON
// aplanado: consulta, timestamp, resumen y solo las categorías con datos.
type WebhookExporter struct {
	client *httpclient.Client
	logger logx.Logger
	url    string
}

// webhookPayload es el cuerpo que recibe el webhook.
type webhookPayload struct {
	Query      string                               `json:"query"`
	QueryType  string                               `json:"query_type"`
	Timestamp  time.Time                            `json:"timestamp"`
	Summary    string                               `json:"summary"`
	Categories map[domain.Category][]*domain.Entity `json:"categories"`
}

// NewWebhookExporter crea un exporter hacia la URL dada.
func NewWebhookExporter(url string, timeout time.Duration, logger logx.Logger) *WebhookExporter {
	httpConfig := httpclient.Config{
		Timeout:      timeout,
		MaxRetries:   1,
		RetryBackoff: time.Second,
	}

	return &WebhookExporter{
		client: httpclient.New(httpConfig, logger),
		logger: logger.With("exporter", "webhook"),
		url:    url,
	}
}

// Name retorna el nombre del exporter.
func (w *WebhookExporter) Name() string { return "webhook" }

// Export entrega el reporte al webhook. Un status fuera de 2xx es un error
// del exporter, no del pipeline.
func (w *WebhookExporter) Export(ctx context.Context, report *domain.Report) error {
	if w.url == "" {
		return domain.ErrNoWebhookURL
	}

	payload := webhookPayload{
		Query:      report.Query.Raw,
		QueryType:  report.Query.Type.String(),
		Timestamp:  report.GeneratedAt,
		Summary:    report.Summary,
		Categories: report.Results.Flatten(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	resp, err := w.client.Post(ctx, w.url, bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	defer resp.Body.Close()

	if err := httpclient.CheckStatus(resp); err != nil {
		return fmt.Errorf("%w: webhook returned %v", domain.ErrExportFailed, err)
	}

	w.logger.Debug("report delivered", "url", w.url, "bytes", len(body))
	return nil
}
