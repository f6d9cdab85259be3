// internal/core/usecases/orchestrator_test.go
package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
	"github.com/Berrypatches/IntelSleuth/internal/testutil"
)

// mockSource es una fuente controlable para tests del orchestrator.
type mockSource struct {
	name     string
	kind     domain.SourceKind
	field    string
	result   *domain.SourceResult
	delay    time.Duration
	panics   bool
	runCount int
}

func (m *mockSource) Name() string            { return m.name }
func (m *mockSource) Kind() domain.SourceKind { return m.kind }
func (m *mockSource) RequiredField() string   { return m.field }

func (m *mockSource) Run(ctx context.Context, q domain.Query) *domain.SourceResult {
	m.runCount++
	if m.panics {
		panic("mock failure")
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return domain.NewSourceError(m.name, m.kind, "timed out")
		}
	}
	return m.result
}

func searchResult(name string, items ...domain.SearchItem) *domain.SourceResult {
	return domain.NewSourceResult(name, domain.SourceKindSearch, &domain.SearchResults{Items: items})
}

func newTestOrchestrator(sources []ports.Source, content ports.ContentExtractor) *Orchestrator {
	return NewOrchestrator(OrchestratorOptions{
		Sources: sources,
		Content: content,
		Logger:  logx.NewSilent(),
		Timeout: 2 * time.Second,
	})
}

func mustQuery(t *testing.T, raw string) *domain.Query {
	t.Helper()
	q, err := domain.NewQuery(raw, nil)
	testutil.AssertNoError(t, err, "NewQuery")
	return q
}

func TestGatherDispatchesEnabledSources(t *testing.T) {
	ddg := &mockSource{
		name:   domain.SourceDuckDuckGo,
		kind:   domain.SourceKindSearch,
		result: searchResult(domain.SourceDuckDuckGo, domain.SearchItem{Title: "a", URL: "https://a.example"}),
	}
	bing := &mockSource{
		name:   domain.SourceBing,
		kind:   domain.SourceKindSearch,
		result: searchResult(domain.SourceBing, domain.SearchItem{Title: "b", URL: "https://b.example"}),
	}
	ipinfo := &mockSource{
		name:  domain.SourceIPInfo,
		kind:  domain.SourceKindAPI,
		field: "ip",
	}

	o := newTestOrchestrator([]ports.Source{ddg, bing, ipinfo}, nil)
	q := mustQuery(t, "some search term")

	all := o.Gather(context.Background(), q)

	testutil.AssertEqual(t, ddg.runCount, 1, "ddg invoked")
	testutil.AssertEqual(t, bing.runCount, 1, "bing invoked")
	testutil.AssertEqual(t, ipinfo.runCount, 0, "ipinfo not enabled for unknown query")
	testutil.AssertEqual(t, len(all.Diagnostics), 2, "one diagnostic per dispatched source")
	testutil.AssertEqual(t, len(all.SearchResults[domain.SourceDuckDuckGo]), 1, "ddg items absorbed")
}

func TestGatherPartialFailure(t *testing.T) {
	ok := &mockSource{
		name:   domain.SourceDuckDuckGo,
		kind:   domain.SourceKindSearch,
		result: searchResult(domain.SourceDuckDuckGo, domain.SearchItem{Title: "a", URL: "https://a.example"}),
	}
	failing := &mockSource{
		name:   domain.SourceBing,
		kind:   domain.SourceKindSearch,
		result: domain.NewSourceError(domain.SourceBing, domain.SourceKindSearch, "connection refused"),
	}

	o := newTestOrchestrator([]ports.Source{ok, failing}, nil)
	all := o.Gather(context.Background(), mustQuery(t, "some search term"))

	testutil.AssertEqual(t, all.FailureCount(), 1, "one failure recorded")
	testutil.AssertEqual(t, len(all.SearchResults[domain.SourceDuckDuckGo]), 1, "healthy source results kept")
	testutil.AssertEqual(t, len(all.Diagnostics), 2, "both sources diagnosed")
}

func TestGatherRecoversFromPanic(t *testing.T) {
	panicking := &mockSource{
		name:   domain.SourceDuckDuckGo,
		kind:   domain.SourceKindSearch,
		panics: true,
	}

	o := newTestOrchestrator([]ports.Source{panicking}, nil)
	all := o.Gather(context.Background(), mustQuery(t, "some search term"))

	testutil.AssertEqual(t, len(all.Diagnostics), 1, "panic produced a diagnostic")
	testutil.AssertEqual(t, string(all.Diagnostics[0].Status), string(domain.StatusError), "panic recorded as error")
	testutil.AssertContains(t, all.Diagnostics[0].Reason, "internal failure", "panic reason preserved")
}

func TestGatherNilResultBecomesError(t *testing.T) {
	broken := &mockSource{
		name: domain.SourceDuckDuckGo,
		kind: domain.SourceKindSearch,
	}

	o := newTestOrchestrator([]ports.Source{broken}, nil)
	all := o.Gather(context.Background(), mustQuery(t, "some search term"))

	testutil.AssertEqual(t, all.FailureCount(), 1, "nil result reported as failure")
}

func TestGatherSkipsSourceMissingRequiredField(t *testing.T) {
	ipinfo := &mockSource{
		name:  domain.SourceIPInfo,
		kind:  domain.SourceKindAPI,
		field: "ip",
	}
	ddg := &mockSource{
		name:   domain.SourceDuckDuckGo,
		kind:   domain.SourceKindSearch,
		result: searchResult(domain.SourceDuckDuckGo),
	}

	o := newTestOrchestrator([]ports.Source{ipinfo, ddg}, nil)
	// ipinfo forzada por override en una consulta de nombre: habilitada,
	// pero el clasificador no extrajo "ip".
	q, err := domain.NewQuery("Jane Doe", map[string]bool{domain.SourceIPInfo: true})
	testutil.AssertNoError(t, err, "NewQuery")

	all := o.Gather(context.Background(), q)

	testutil.AssertEqual(t, ipinfo.runCount, 0, "ipinfo skipped without ip field")
	testutil.AssertEqual(t, ddg.runCount, 1, "ddg still runs")
	testutil.AssertEqual(t, len(all.Diagnostics), 1, "only dispatched sources diagnosed")
}

func TestGatherDispatchesBreachSourceForUsernames(t *testing.T) {
	hibp := &mockSource{
		name:   domain.SourceHIBP,
		kind:   domain.SourceKindAPI,
		result: domain.NewSourceResult(domain.SourceHIBP, domain.SourceKindAPI, &domain.BreachList{}),
	}

	o := newTestOrchestrator([]ports.Source{hibp}, nil)
	all := o.Gather(context.Background(), mustQuery(t, "johndoe_99"))

	testutil.AssertEqual(t, hibp.runCount, 1, "hibp dispatched for username queries")
	testutil.AssertEqual(t, len(all.Diagnostics), 1, "hibp diagnosed")
}

// mockExtractor implementa ports.ContentExtractor para tests.
type mockExtractor struct {
	extracted []string
}

func (m *mockExtractor) Extract(ctx context.Context, url string) *domain.SourceResult {
	m.extracted = append(m.extracted, url)
	return domain.NewSourceResult(domain.SourceWebContent, domain.SourceKindWebContent, &domain.WebContent{
		URL:  url,
		Text: "content of " + url,
	})
}

func TestGatherSecondaryContentFetchForDomains(t *testing.T) {
	items := []domain.SearchItem{
		{Title: "one", URL: "https://one.example"},
		{Title: "two", URL: "https://two.example"},
		{Title: "three", URL: "https://three.example"},
		{Title: "four", URL: "https://four.example"},
	}
	ddg := &mockSource{
		name:   domain.SourceDuckDuckGo,
		kind:   domain.SourceKindSearch,
		result: searchResult(domain.SourceDuckDuckGo, items...),
	}
	extractor := &mockExtractor{}

	o := newTestOrchestrator([]ports.Source{ddg}, extractor)
	all := o.Gather(context.Background(), mustQuery(t, "example.com"))

	testutil.AssertEqual(t, len(extractor.extracted), 3, "only top URLs fetched")
	testutil.AssertEqual(t, len(all.WebContentResults), 3, "content absorbed")
	testutil.AssertEqual(t, all.WebContentOrder[0], "https://one.example", "dispatch order preserved")
}

func TestGatherNoSecondaryFetchForNonDomainQueries(t *testing.T) {
	ddg := &mockSource{
		name:   domain.SourceDuckDuckGo,
		kind:   domain.SourceKindSearch,
		result: searchResult(domain.SourceDuckDuckGo, domain.SearchItem{Title: "a", URL: "https://a.example"}),
	}
	extractor := &mockExtractor{}

	o := newTestOrchestrator([]ports.Source{ddg}, extractor)
	o.Gather(context.Background(), mustQuery(t, "Jane Doe"))

	testutil.AssertEqual(t, len(extractor.extracted), 0, "no content fetch for name queries")
}

func TestTopSearchURLsFallsBackToBing(t *testing.T) {
	q := mustQuery(t, "example.com")
	all := domain.NewAllResults(q)
	all.Absorb(searchResult(domain.SourceBing,
		domain.SearchItem{Title: "b1", URL: "https://b1.example"},
		domain.SearchItem{Title: "b2", URL: "https://b2.example"},
	))

	urls := topSearchURLs(all, 3)

	testutil.AssertEqual(t, len(urls), 2, "bing urls used when ddg empty")
	testutil.AssertEqual(t, urls[0], "https://b1.example", "bing order preserved")
}

func TestTopSearchURLsDeduplicates(t *testing.T) {
	q := mustQuery(t, "example.com")
	all := domain.NewAllResults(q)
	all.Absorb(searchResult(domain.SourceDuckDuckGo,
		domain.SearchItem{Title: "a", URL: "https://same.example"},
		domain.SearchItem{Title: "b", URL: "https://same.example"},
	))

	urls := topSearchURLs(all, 3)

	testutil.AssertEqual(t, len(urls), 1, "duplicate urls collapsed")
}
