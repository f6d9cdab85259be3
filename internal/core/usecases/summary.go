// internal/core/usecases/summary.go
package usecases

import (
	"fmt"
	"strings"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
)

// maxSummaryEntries es el máximo de entradas listadas por categoría; el
// resto se colapsa en una línea de conteo.
const maxSummaryEntries = 5

// categoryLabels son las etiquetas legibles de cada categoría en el resumen.
var categoryLabels = map[domain.Category]string{
	domain.CategoryEmails:       "Email addresses",
	domain.CategoryPhoneNumbers: "Phone numbers",
	domain.CategorySocialLinks:  "Social profiles",
	domain.CategoryAddresses:    "Addresses",
	domain.CategoryBusinessInfo: "Business info",
	domain.CategoryLeaks:        "Data breaches",
	domain.CategoryDomains:      "Domains",
	domain.CategoryIPs:          "IP addresses",
	domain.CategoryRawResults:   "Search results",
}

// Summarize genera el resumen textual de un resultado categorizado.
// Es una función pura del resultado: idéntico input produce idéntico
// resumen, y no muta el resultado.
func Summarize(q *domain.Query, results *domain.CategorizedResult) string {
	if results == nil || results.IsEmpty() {
		return fmt.Sprintf("No findings for %q (%s query).", q.Raw, q.Type)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Findings for %q (%s query): %d items across %d categories.\n",
		q.Raw, q.Type, results.Total(), len(results.NonEmpty()))

	for _, cat := range results.NonEmpty() {
		entities := results.Get(cat)
		fmt.Fprintf(&b, "\n%s (%d):\n", categoryLabels[cat], len(entities))

		for i, e := range entities {
			if i >= maxSummaryEntries {
				fmt.Fprintf(&b, "  ...and %d more\n", len(entities)-maxSummaryEntries)
				break
			}
			b.WriteString("  " + summaryLine(e) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// summaryLine formatea una entidad individual para el resumen.
func summaryLine(e *domain.Entity) string {
	switch {
	case e.Title != "" && e.URL != "":
		return e.Title + " - " + e.URL
	case e.Name != "":
		return e.Value + " (" + e.Name + ")"
	case e.Context != "":
		return e.Value + " (" + e.Context + ")"
	default:
		return e.Value
	}
}
