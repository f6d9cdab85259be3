// internal/core/ports/source.go
package ports

import (
	"context"
	"time"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
)

// Source es el port primario para todas las fuentes de datos en IntelSleuth.
// Cualquier fuente (motor de búsqueda, API, whois) debe implementar esta interfaz.
type Source interface {
	// Name retorna el nombre único de la fuente (ej: "duckduckgo", "hibp")
	Name() string

	// Kind retorna la forma del payload que produce la fuente
	Kind() domain.SourceKind

	// RequiredField retorna el campo del query que la fuente necesita
	// ("" = opera sobre el texto crudo). El orchestrator omite fuentes
	// cuyo campo requerido no fue extraído por el clasificador.
	RequiredField() string

	// Run ejecuta la fuente contra la consulta. Nunca propaga fallos:
	// todo error de transporte o parseo se convierte en un SourceResult
	// con status error y razón legible.
	Run(ctx context.Context, q domain.Query) *domain.SourceResult
}

// ContentExtractor extrae texto legible de una URL arbitraria. Lo usa el
// orchestrator para el fetch secundario sobre los primeros resultados de
// búsqueda de una consulta de dominio.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) *domain.SourceResult
}

// SourceConfig contiene la configuración específica de una fuente.
type SourceConfig struct {
	// Enabled indica si la fuente puede usarse
	Enabled bool

	// Timeout tiempo máximo por invocación
	Timeout time.Duration

	// RateLimit límite de peticiones por segundo (0 = sin límite)
	RateLimit float64

	// MaxResults tope de items por fuente
	MaxResults int

	// APIKey credencial de la fuente, si requiere autenticación.
	// Su ausencia degrada la fuente a "not configured", nunca a un crash.
	APIKey string

	// UserAgent cabecera User-Agent para las peticiones
	UserAgent string
}

// DefaultSourceConfig retorna una configuración por defecto.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Enabled:    true,
		Timeout:    30 * time.Second,
		RateLimit:  0,
		MaxResults: 10,
		UserAgent:  "IntelSleuth/1.0",
	}
}

// SourceMetadata contiene metadatos sobre una fuente registrada.
type SourceMetadata struct {
	Name          string
	Description   string
	Kind          domain.SourceKind
	RequiresAuth  bool
	RequiredField string
}
