// internal/adapters/output/json_test.go
package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/testutil"
)

func sampleReport(t *testing.T) *domain.Report {
	t.Helper()

	q, err := domain.NewQuery("example.com", nil)
	testutil.AssertNoError(t, err, "NewQuery")

	results := domain.NewCategorizedResult()
	results.Add(domain.NewEntity(domain.CategoryEmails, "info@example.com", domain.SourceHunter))
	e := domain.NewEntity(domain.CategoryRawResults, "https://example.com", domain.SourceDuckDuckGo)
	e.Title = "Example Domain"
	e.URL = "https://example.com"
	results.Add(e)

	return &domain.Report{
		Query:   q,
		Results: results,
		Summary: "Findings for example.com",
		Diagnostics: []*domain.SourceResult{
			domain.NewSourceError(domain.SourceHIBP, domain.SourceKindAPI, "api key missing"),
		},
		Elapsed:     1500 * time.Millisecond,
		GeneratedAt: time.Now(),
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	testutil.AssertNoError(t, RenderJSON(&buf, sampleReport(t)), "render")

	var decoded map[string]interface{}
	testutil.AssertNoError(t, json.Unmarshal(buf.Bytes(), &decoded), "valid json")

	query := decoded["query"].(map[string]interface{})
	testutil.AssertEqual(t, query["raw"], "example.com", "query raw")
	testutil.AssertEqual(t, query["type"], "domain", "query type")

	categories := decoded["categories"].(map[string]interface{})
	testutil.AssertEqual(t, len(categories), 2, "only non-empty categories serialized")

	emails := categories["emails"].([]interface{})
	first := emails[0].(map[string]interface{})
	testutil.AssertEqual(t, first["value"], "info@example.com", "email value")
	testutil.AssertEqual(t, first["source"], domain.SourceHunter, "provenance serialized")

	diags := decoded["diagnostics"].([]interface{})
	testutil.AssertEqual(t, len(diags), 1, "diagnostics serialized")
	testutil.AssertEqual(t, decoded["elapsed_ms"], float64(1500), "elapsed in ms")
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.json")

	testutil.AssertNoError(t, WriteJSONFile(path, sampleReport(t)), "write")

	data, err := os.ReadFile(path)
	testutil.AssertNoError(t, err, "read back")

	var decoded map[string]interface{}
	testutil.AssertNoError(t, json.Unmarshal(data, &decoded), "valid json on disk")
	testutil.AssertEqual(t, decoded["summary"], "Findings for example.com", "summary persisted")
}

func TestEntityDetails(t *testing.T) {
	withTitle := &domain.Entity{Title: "A page", Context: "ctx"}
	testutil.AssertEqual(t, entityDetails(withTitle), "A page", "title preferred")

	withName := &domain.Entity{Name: "Jane Doe", Context: "ctx"}
	testutil.AssertEqual(t, entityDetails(withName), "Jane Doe", "name second")

	withContext := &domain.Entity{Context: "registrar"}
	testutil.AssertEqual(t, entityDetails(withContext), "registrar", "context fallback")
}

func TestTruncate(t *testing.T) {
	testutil.AssertEqual(t, truncate("short", 10), "short", "no-op under limit")
	testutil.AssertEqual(t, truncate("abcdefghij", 8), "abcde...", "long values trimmed")
	testutil.AssertEqual(t, truncate("two\nlines", 20), "two lines", "newlines flattened")
}
