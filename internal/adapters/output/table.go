// internal/adapters/output/table.go
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
)

// categoryTitles son los títulos de sección por categoría.
var categoryTitles = map[domain.Category]string{
	domain.CategoryEmails:       "Email Addresses",
	domain.CategoryPhoneNumbers: "Phone Numbers",
	domain.CategorySocialLinks:  "Social Profiles",
	domain.CategoryAddresses:    "Addresses",
	domain.CategoryBusinessInfo: "Business Info",
	domain.CategoryLeaks:        "Data Breaches",
	domain.CategoryDomains:      "Domains",
	domain.CategoryIPs:          "IP Addresses",
	domain.CategoryRawResults:   "Search Results",
}

// RenderTable imprime el reporte completo en la terminal: cabecera con la
// consulta, una tabla por categoría no vacía y los diagnósticos de fuentes.
func RenderTable(report *domain.Report) {
	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("IntelSleuth - OSINT Report")

	pterm.Println()
	pterm.Println(fmt.Sprintf("Query:   %s", pterm.Cyan(report.Query.Raw)))
	pterm.Println(fmt.Sprintf("Type:    %s", pterm.Yellow(report.Query.Type)))
	pterm.Println(fmt.Sprintf("Elapsed: %s", report.Elapsed.Round(time.Millisecond)))
	pterm.Println()

	if report.Results.IsEmpty() {
		pterm.Info.Println("No findings for this query.")
	}

	for _, cat := range report.Results.NonEmpty() {
		entities := report.Results.Get(cat)
		pterm.DefaultSection.WithLevel(2).Println(
			fmt.Sprintf("%s (%d)", categoryTitles[cat], len(entities)))

		table := pterm.TableData{{"Value", "Details", "Source"}}
		for _, e := range entities {
			table = append(table, []string{
				truncate(e.Value, 60),
				truncate(entityDetails(e), 50),
				e.Source,
			})
		}

		if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
			pterm.Warning.Println("table render failed: " + err.Error())
		}
	}

	renderDiagnostics(report)
}

// entityDetails compone la columna de detalles según los campos presentes.
func entityDetails(e *domain.Entity) string {
	switch {
	case e.Title != "":
		return e.Title
	case e.Name != "":
		return e.Name
	default:
		return e.Context
	}
}

// renderDiagnostics lista las fuentes fallidas como warnings al pie.
func renderDiagnostics(report *domain.Report) {
	var failed []*domain.SourceResult
	for _, d := range report.Diagnostics {
		if d.Status == domain.StatusError {
			failed = append(failed, d)
		}
	}
	if len(failed) == 0 {
		return
	}

	pterm.Println()
	pterm.Warning.Println(fmt.Sprintf("%d source(s) failed:", len(failed)))
	for _, d := range failed {
		pterm.Println(fmt.Sprintf("  - %s: %s", d.SourceID, d.Reason))
	}
}

// RenderSummary imprime solo el resumen textual, sin tablas.
func RenderSummary(report *domain.Report) {
	pterm.Println(report.Summary)
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
