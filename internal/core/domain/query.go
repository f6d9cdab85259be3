// internal/core/domain/query.go
package domain

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Berrypatches/IntelSleuth/internal/platform/validator"
)

// InputType clasifica la consulta según su tipo semántico.
type InputType string

const (
	InputTypeName     InputType = "name"
	InputTypeEmail    InputType = "email"
	InputTypePhone    InputType = "phone"
	InputTypeUsername InputType = "username"
	InputTypeDomain   InputType = "domain"
	InputTypeIP       InputType = "ip"
	InputTypeUnknown  InputType = "unknown"
)

// IsValid verifica si el tipo de input es válido.
func (t InputType) IsValid() bool {
	switch t {
	case InputTypeName, InputTypeEmail, InputTypePhone, InputTypeUsername,
		InputTypeDomain, InputTypeIP, InputTypeUnknown:
		return true
	default:
		return false
	}
}

// String retorna la representación string del tipo.
func (t InputType) String() string {
	return string(t)
}

// Classification es el resultado de clasificar un input crudo.
type Classification struct {
	// Valid indica si el input es procesable
	Valid bool

	// Type tipo semántico detectado
	Type InputType

	// Fields campos extraídos del input (ej: {"email": ..., "domain": ...})
	Fields map[string]string

	// Sources habilitación por defecto de cada fuente para este tipo
	Sources map[string]bool
}

// Classify clasifica un input crudo de forma determinista y sin I/O.
// Orden de precedencia (primera coincidencia gana, sobre el input recortado):
// email → IP (v4/v6) → dominio registrable → teléfono → username →
// nombre libre → término de búsqueda genérico. Input vacío es inválido.
func Classify(raw string) Classification {
	query := strings.TrimSpace(raw)

	if query == "" {
		return Classification{
			Valid:   false,
			Type:    InputTypeUnknown,
			Fields:  map[string]string{},
			Sources: map[string]bool{},
		}
	}

	// Email primero: un string con '@' y segmento de dominio válido
	// siempre se clasifica como email antes de probar otras reglas.
	if strings.Contains(query, "@") && strings.Contains(query, ".") {
		if validator.IsEmail(query) {
			email := validator.NormalizeEmail(query)
			return classified(InputTypeEmail, map[string]string{
				"email":  email,
				"domain": validator.EmailDomain(email),
			})
		}
	}

	// IP literal (v4 o v6)
	if validator.IsIP(query) {
		ip := validator.NormalizeIP(query)
		version := "4"
		if validator.IsIPv6(query) {
			version = "6"
		}
		return classified(InputTypeIP, map[string]string{
			"ip":         ip,
			"ip_version": version,
		})
	}

	// Dominio registrable (sufijo público reconocido)
	if validator.IsRegistrableDomain(query) {
		return classified(InputTypeDomain, map[string]string{
			"domain": validator.NormalizeDomain(query),
		})
	}

	// Teléfono
	if validator.IsPhone(query) {
		return classified(InputTypePhone, map[string]string{
			"phone": validator.NormalizePhone(query),
		})
	}

	// Username / handle
	if validator.IsUsername(query) {
		return classified(InputTypeUsername, map[string]string{
			"username": query,
		})
	}

	// Nombre libre: contiene espacios y solo letras
	if strings.Contains(query, " ") && isAlphaSpace(query) {
		return classified(InputTypeName, map[string]string{
			"name": query,
		})
	}

	// Fallback: término de búsqueda genérico
	return classified(InputTypeUnknown, map[string]string{
		"search_query": query,
	})
}

func classified(t InputType, fields map[string]string) Classification {
	return Classification{
		Valid:   true,
		Type:    t,
		Fields:  fields,
		Sources: defaultSourcesFor(t),
	}
}

func isAlphaSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// defaultSourcesFor retorna la tabla estática de habilitación de fuentes
// por tipo de input. Es configuración, no lógica.
func defaultSourcesFor(t InputType) map[string]bool {
	sources := map[string]bool{
		SourceWhois:      false,
		SourceDuckDuckGo: false,
		SourceBing:       false,
		SourceIPInfo:     false,
		SourceHunter:     false,
		SourceHIBP:       false,
	}

	switch t {
	case InputTypeEmail:
		sources[SourceDuckDuckGo] = true
		sources[SourceBing] = true
		sources[SourceHunter] = true
		sources[SourceHIBP] = true
	case InputTypeDomain:
		sources[SourceWhois] = true
		sources[SourceDuckDuckGo] = true
		sources[SourceBing] = true
		sources[SourceHunter] = true
	case InputTypeIP:
		sources[SourceWhois] = true
		sources[SourceIPInfo] = true
	case InputTypeUsername:
		sources[SourceDuckDuckGo] = true
		sources[SourceBing] = true
		sources[SourceHIBP] = true
	case InputTypeName, InputTypePhone, InputTypeUnknown:
		sources[SourceDuckDuckGo] = true
		sources[SourceBing] = true
	}

	return sources
}

// Query representa una consulta inmutable ya clasificada.
type Query struct {
	// Raw input original saneado
	Raw string

	// Type tipo semántico
	Type InputType

	// Fields campos extraídos por el clasificador
	Fields map[string]string

	// Sources conjunto de fuentes habilitadas para esta consulta
	Sources map[string]bool

	// Hash sha256 del input, usado por el historial
	Hash string

	// CreatedAt momento de creación
	CreatedAt time.Time
}

// NewQuery sanea y clasifica un input crudo. Retorna ErrInvalidQuery si el
// input está vacío o no es clasificable. Los overrides permiten al caller
// forzar habilitación/deshabilitación de fuentes individuales.
func NewQuery(raw string, overrides map[string]bool) (*Query, error) {
	sanitized := validator.SanitizeQuery(raw)

	c := Classify(sanitized)
	if !c.Valid {
		return nil, fmt.Errorf("%w: %q", ErrInvalidQuery, raw)
	}

	sources := make(map[string]bool, len(c.Sources))
	for name, enabled := range c.Sources {
		sources[name] = enabled
	}
	for name, enabled := range overrides {
		sources[name] = enabled
	}

	return &Query{
		Raw:       sanitized,
		Type:      c.Type,
		Fields:    c.Fields,
		Sources:   sources,
		Hash:      hashQuery(sanitized),
		CreatedAt: time.Now(),
	}, nil
}

// Field retorna el valor de un campo extraído, o "" si no existe.
func (q *Query) Field(name string) string {
	return q.Fields[name]
}

// HasField indica si el clasificador extrajo el campo dado.
func (q *Query) HasField(name string) bool {
	_, ok := q.Fields[name]
	return ok
}

// Enabled indica si una fuente está habilitada para esta consulta.
func (q *Query) Enabled(source string) bool {
	return q.Sources[source]
}

// SearchTerm retorna el texto a usar en motores de búsqueda.
func (q *Query) SearchTerm() string {
	return q.Raw
}

// String retorna una representación legible de la consulta.
func (q *Query) String() string {
	return fmt.Sprintf("Query{type=%s, raw=%q}", q.Type, q.Raw)
}

func hashQuery(query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%x", sum)
}
