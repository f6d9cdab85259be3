// internal/core/ports/exporter.go
package ports

import (
	"context"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
)

// Exporter es el port para entregar un Report a un colaborador externo
// (webhook, historial en disco, render). El éxito o fracaso de la entrega
// no es responsabilidad del pipeline: los exporters registran sus propios
// fallos y nunca los propagan como fatales.
type Exporter interface {
	// Name retorna el nombre del exporter (ej: "webhook", "history")
	Name() string

	// Export entrega el report al destino del exporter.
	Export(ctx context.Context, report *domain.Report) error
}
