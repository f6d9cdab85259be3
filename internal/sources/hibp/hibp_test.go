// internal/sources/hibp/hibp_test.go
package hibp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
	"github.com/Berrypatches/IntelSleuth/internal/testutil"
)

const breachFixture = `[
  {
    "Name": "ExampleBreach",
    "Title": "Example Breach",
    "Domain": "example-breach.com",
    "BreachDate": "2021-06-01",
    "PwnCount": 1000000,
    "DataClasses": ["Email addresses", "Passwords"],
    "Description": "An example incident."
  }
]`

func newTestSource(t *testing.T, apiKey string, handler http.HandlerFunc) *HIBP {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ports.DefaultSourceConfig()
	cfg.APIKey = apiKey
	return New(cfg, logx.NewSilent()).WithBaseURL(server.URL)
}

func testQuery(t *testing.T, raw string) domain.Query {
	t.Helper()
	q, err := domain.NewQuery(raw, nil)
	testutil.AssertNoError(t, err, "NewQuery")
	return *q
}

func TestRunParsesBreaches(t *testing.T) {
	src := newTestSource(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Path, "/breachedaccount/jane.doe@example.com", "account in path")
		testutil.AssertEqual(t, r.Header.Get("hibp-api-key"), "test-key", "key header")
		testutil.AssertEqual(t, r.URL.Query().Get("truncateResponse"), "false", "full records requested")
		w.Write([]byte(breachFixture))
	})

	result := src.Run(context.Background(), testQuery(t, "jane.doe@example.com"))

	testutil.AssertEqual(t, string(result.Status), string(domain.StatusOK), "status ok")
	list := result.Payload.(*domain.BreachList)

	testutil.AssertEqual(t, len(list.Breaches), 1, "one breach")
	testutil.AssertEqual(t, list.Breaches[0].Title, "Example Breach", "title")
	testutil.AssertEqual(t, list.Breaches[0].BreachDate, "2021-06-01", "date")
	testutil.AssertEqual(t, list.Breaches[0].PwnCount, int64(1000000), "pwn count")
	testutil.AssertEqual(t, len(list.Breaches[0].DataClasses), 2, "data classes")
}

func TestRunLooksUpUsernameAccounts(t *testing.T) {
	src := newTestSource(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Path, "/breachedaccount/johndoe_99", "username in path")
		w.Write([]byte(breachFixture))
	})

	// Sin campo requerido, el orchestrator despacha la fuente también
	// para consultas de username; Run resuelve la cuenta por sí mismo.
	testutil.AssertEqual(t, src.RequiredField(), "", "no required field")

	result := src.Run(context.Background(), testQuery(t, "johndoe_99"))

	testutil.AssertEqual(t, string(result.Status), string(domain.StatusOK), "status ok")
	list := result.Payload.(*domain.BreachList)
	testutil.AssertEqual(t, len(list.Breaches), 1, "breaches found for username")
}

func TestRunWithoutAccountFieldIsError(t *testing.T) {
	src := newTestSource(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without an account")
	})

	q, err := domain.NewQuery("Jane Doe", map[string]bool{domain.SourceHIBP: true})
	testutil.AssertNoError(t, err, "NewQuery")

	result := src.Run(context.Background(), *q)

	testutil.AssertEqual(t, string(result.Status), string(domain.StatusError), "no account is an error")
	testutil.AssertContains(t, result.Reason, "no account", "reason names the cause")
}

func TestRun404MeansNoBreaches(t *testing.T) {
	src := newTestSource(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	result := src.Run(context.Background(), testQuery(t, "clean@example.com"))

	// 404 no es un fallo: la cuenta no aparece en ninguna brecha.
	testutil.AssertEqual(t, string(result.Status), string(domain.StatusOK), "404 is a clean account")
	list := result.Payload.(*domain.BreachList)
	testutil.AssertEqual(t, len(list.Breaches), 0, "empty breach list")
}

func TestRunWithoutKeyIsNotConfigured(t *testing.T) {
	src := New(ports.DefaultSourceConfig(), logx.NewSilent())

	result := src.Run(context.Background(), testQuery(t, "jane.doe@example.com"))

	testutil.AssertEqual(t, string(result.Status), string(domain.StatusError), "missing key is an error")
	testutil.AssertContains(t, result.Reason, "not configured", "reason names the cause")
}

func TestRunUnauthorizedIsSourceError(t *testing.T) {
	src := newTestSource(t, "bad-key", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	result := src.Run(context.Background(), testQuery(t, "jane.doe@example.com"))

	testutil.AssertEqual(t, string(result.Status), string(domain.StatusError), "401 is an error")
}
