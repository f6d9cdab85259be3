// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
)

// jsonReport es la forma serializable del reporte. Las categorías vacías se
// omiten; las presentes conservan el orden interno de sus entidades.
type jsonReport struct {
	Query       jsonQuery                           `json:"query"`
	Summary     string                              `json:"summary"`
	Categories  map[domain.Category][]*domain.Entity `json:"categories"`
	Diagnostics []jsonDiagnostic                    `json:"diagnostics,omitempty"`
	ElapsedMS   int64                               `json:"elapsed_ms"`
	GeneratedAt time.Time                           `json:"generated_at"`
}

type jsonQuery struct {
	Raw  string            `json:"raw"`
	Type string            `json:"type"`
	Hash string            `json:"hash"`
	Fields map[string]string `json:"fields,omitempty"`
}

type jsonDiagnostic struct {
	Source string `json:"source"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// toJSONReport convierte el reporte del dominio a su forma serializable.
func toJSONReport(report *domain.Report) jsonReport {
	out := jsonReport{
		Query: jsonQuery{
			Raw:    report.Query.Raw,
			Type:   report.Query.Type.String(),
			Hash:   report.Query.Hash,
			Fields: report.Query.Fields,
		},
		Summary:     report.Summary,
		Categories:  report.Results.Flatten(),
		ElapsedMS:   report.Elapsed.Milliseconds(),
		GeneratedAt: report.GeneratedAt,
	}

	for _, d := range report.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, jsonDiagnostic{
			Source: d.SourceID,
			Status: string(d.Status),
			Reason: d.Reason,
		})
	}
	return out
}

// RenderJSON escribe el reporte como JSON indentado en el writer.
func RenderJSON(w io.Writer, report *domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSONReport(report)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	return nil
}

// WriteJSONFile escribe el reporte como JSON en una ruta, creando los
// directorios intermedios si hace falta.
func WriteJSONFile(path string, report *domain.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	defer f.Close()

	return RenderJSON(f, report)
}
