// internal/core/domain/errors.go
package domain

import "errors"

// Errores de dominio comunes.
var (
	// Query errors
	ErrInvalidQuery = errors.New("query is empty or not classifiable")

	// Source errors
	ErrSourceNotFound      = errors.New("source not found")
	ErrSourceNotApplicable = errors.New("source not applicable to query type")
	ErrNoSourcesEnabled    = errors.New("no sources enabled for query")

	// Result errors
	ErrInvalidEntity   = errors.New("invalid entity")
	ErrInvalidCategory = errors.New("unknown result category")

	// Configuration errors
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrConfigLoadFailed = errors.New("failed to load configuration")

	// Export errors
	ErrExportFailed    = errors.New("export failed")
	ErrNoWebhookURL    = errors.New("no webhook URL configured")
	ErrHistoryDisabled = errors.New("query history is disabled")
)
