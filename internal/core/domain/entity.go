// internal/core/domain/entity.go
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category es una de las categorías fijas del resultado. El conjunto es
// cerrado: ninguna categoría fuera de esta lista aparece jamás en la salida.
type Category string

const (
	CategoryEmails       Category = "emails"
	CategoryPhoneNumbers Category = "phone_numbers"
	CategorySocialLinks  Category = "social_links"
	CategoryAddresses    Category = "addresses"
	CategoryBusinessInfo Category = "business_info"
	CategoryLeaks        Category = "leaks"
	CategoryDomains      Category = "domains"
	CategoryIPs          Category = "ips"
	CategoryRawResults   Category = "raw_results"
)

// CategoryOrder es el orden fijo de presentación de las categorías.
var CategoryOrder = []Category{
	CategoryEmails,
	CategoryPhoneNumbers,
	CategorySocialLinks,
	CategoryAddresses,
	CategoryBusinessInfo,
	CategoryLeaks,
	CategoryDomains,
	CategoryIPs,
	CategoryRawResults,
}

// IsValid verifica si la categoría pertenece al conjunto cerrado.
func (c Category) IsValid() bool {
	switch c {
	case CategoryEmails, CategoryPhoneNumbers, CategorySocialLinks,
		CategoryAddresses, CategoryBusinessInfo, CategoryLeaks,
		CategoryDomains, CategoryIPs, CategoryRawResults:
		return true
	default:
		return false
	}
}

// String retorna la representación string de la categoría.
func (c Category) String() string {
	return string(c)
}

// Entity es un dato extraído de una fuente, ya normalizado y categorizado.
// Invariante: toda entidad lleva la fuente que la originó (procedencia).
type Entity struct {
	// Category categoría destino
	Category Category `json:"category"`

	// Value valor principal (email, teléfono, URL, línea de dirección...)
	Value string `json:"value"`

	// Title título asociado, para items estilo resultado de búsqueda
	Title string `json:"title,omitempty"`

	// URL enlace asociado, para items estilo resultado de búsqueda
	URL string `json:"url,omitempty"`

	// Name nombre de persona asociado, para items estilo contacto
	Name string `json:"name,omitempty"`

	// Source fuente que produjo la entidad (procedencia, obligatorio)
	Source string `json:"source"`

	// Context texto circundante opcional
	Context string `json:"context,omitempty"`

	// Confidence confianza opcional [0.0-1.0]; 0 = sin valorar
	Confidence float64 `json:"confidence,omitempty"`
}

// NewEntity crea una entidad con categoría, valor y procedencia.
func NewEntity(category Category, value, source string) *Entity {
	return &Entity{
		Category: category,
		Value:    strings.TrimSpace(value),
		Source:   source,
	}
}

// IsValid verifica los invariantes mínimos de la entidad.
func (e *Entity) IsValid() bool {
	return e.Category.IsValid() && e.Value != "" && e.Source != ""
}

// Fingerprint retorna la huella canónica usada para deduplicar.
// Reglas: items estilo búsqueda usan "title|url"; items estilo contacto
// con nombre y email usan "name|email"; el resto usa "categoría:valor".
func (e *Entity) Fingerprint() string {
	if e.Title != "" || e.URL != "" {
		return e.Title + "|" + e.URL
	}
	if e.Name != "" && strings.Contains(e.Value, "@") {
		return e.Name + "|" + e.Value
	}
	return string(e.Category) + ":" + e.Value
}

// String retorna una representación legible de la entidad.
func (e *Entity) String() string {
	return fmt.Sprintf("[%s] %s (source: %s)", e.Category, e.Value, e.Source)
}

// CategorizedResult es el mapa de categorías fijas a entidades deduplicadas,
// construido fresco por consulta. El orden dentro de cada categoría es el
// orden de llegada desde los adapters.
type CategorizedResult struct {
	categories map[Category][]*Entity
	seen       map[Category]map[string]bool // fingerprints por categoría
}

// NewCategorizedResult crea un resultado vacío con el conjunto cerrado
// de categorías predeclarado.
func NewCategorizedResult() *CategorizedResult {
	c := &CategorizedResult{
		categories: make(map[Category][]*Entity, len(CategoryOrder)),
		seen:       make(map[Category]map[string]bool, len(CategoryOrder)),
	}
	for _, cat := range CategoryOrder {
		c.categories[cat] = []*Entity{}
		c.seen[cat] = make(map[string]bool)
	}
	return c
}

// Add incorpora una entidad si es válida y su huella no se vio antes en la
// categoría. Entidades con huella repetida se colapsan en la primera
// aparición; la procedencia posterior se descarta.
func (c *CategorizedResult) Add(e *Entity) bool {
	if e == nil || !e.IsValid() {
		return false
	}

	fp := e.Fingerprint()
	if c.seen[e.Category][fp] {
		return false
	}

	c.seen[e.Category][fp] = true
	c.categories[e.Category] = append(c.categories[e.Category], e)
	return true
}

// Get retorna las entidades de una categoría en orden de llegada.
func (c *CategorizedResult) Get(cat Category) []*Entity {
	return c.categories[cat]
}

// Total retorna el número total de entidades en todas las categorías.
func (c *CategorizedResult) Total() int {
	n := 0
	for _, entities := range c.categories {
		n += len(entities)
	}
	return n
}

// IsEmpty indica si no hay ninguna entidad.
func (c *CategorizedResult) IsEmpty() bool {
	return c.Total() == 0
}

// NonEmpty retorna las categorías con al menos una entidad, en orden fijo.
func (c *CategorizedResult) NonEmpty() []Category {
	out := make([]Category, 0, len(CategoryOrder))
	for _, cat := range CategoryOrder {
		if len(c.categories[cat]) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// Flatten retorna el mapa categoría → entidades solo con categorías no
// vacías, apto para serializar (export a webhook, JSON, historial).
func (c *CategorizedResult) Flatten() map[Category][]*Entity {
	out := make(map[Category][]*Entity)
	for _, cat := range c.NonEmpty() {
		out[cat] = c.categories[cat]
	}
	return out
}

// Report es el resultado completo de una consulta: lo que el pipeline
// entrega a los colaboradores externos (render, historial, webhook).
type Report struct {
	Query       *Query             `json:"query"`
	Results     *CategorizedResult `json:"-"`
	Summary     string             `json:"summary"`
	Diagnostics []*SourceResult    `json:"diagnostics,omitempty"`
	Elapsed     time.Duration      `json:"elapsed"`
	GeneratedAt time.Time          `json:"generated_at"`
}
