// internal/core/usecases/normalizer_test.go
package usecases

import (
	"testing"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
	"github.com/Berrypatches/IntelSleuth/internal/testutil"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(logx.NewSilent())
}

func TestCategorizeSearchItems(t *testing.T) {
	q := mustQuery(t, "example.com")
	all := domain.NewAllResults(q)
	all.Absorb(searchResult(domain.SourceDuckDuckGo, domain.SearchItem{
		Title:   "Contact page",
		URL:     "https://example.com/contact",
		Snippet: "Reach us at info@example.com or call 555-123-4567.",
		Engine:  domain.SourceDuckDuckGo,
	}))

	out := newTestNormalizer().Categorize(all)

	raw := out.Get(domain.CategoryRawResults)
	testutil.AssertEqual(t, len(raw), 1, "search item kept as raw result")
	testutil.AssertEqual(t, raw[0].Title, "Contact page", "title preserved")
	testutil.AssertEqual(t, raw[0].Source, domain.SourceDuckDuckGo, "provenance on raw result")

	emails := out.Get(domain.CategoryEmails)
	testutil.AssertEqual(t, len(emails), 1, "email extracted from snippet")
	testutil.AssertEqual(t, emails[0].Value, "info@example.com", "email value")

	phones := out.Get(domain.CategoryPhoneNumbers)
	testutil.AssertEqual(t, len(phones), 1, "phone extracted from snippet")
	testutil.AssertEqual(t, phones[0].Value, "5551234567", "phone canonicalized")
}

func TestCategorizeSkipsExtractionOnAdSnippets(t *testing.T) {
	q := mustQuery(t, "example.com")
	all := domain.NewAllResults(q)
	all.Absorb(searchResult(domain.SourceDuckDuckGo, domain.SearchItem{
		Title:   "Sponsor spotlight",
		URL:     "https://ads.example/promo",
		Snippet: "Sign up today! Contact sales@ads.example for a free trial.",
	}))

	out := newTestNormalizer().Categorize(all)

	testutil.AssertEqual(t, len(out.Get(domain.CategoryRawResults)), 1, "ad item still a raw result")
	testutil.AssertEqual(t, len(out.Get(domain.CategoryEmails)), 0, "no extraction over ad content")
}

func TestCategorizeWhoisRecord(t *testing.T) {
	q := mustQuery(t, "example.com")
	all := domain.NewAllResults(q)
	all.Absorb(domain.NewSourceResult(domain.SourceWhois, domain.SourceKindWhois, &domain.WhoisRecord{
		DomainName:      "EXAMPLE.COM",
		Registrar:       "Example Registrar Inc",
		NameServers:     []string{"NS1.EXAMPLE.COM", "NS2.EXAMPLE.COM"},
		RegistrantOrg:   "Example Corp",
		RegistrantEmail: "Admin@Example.com",
		RegistrantPhone: "+1.5551234567",
	}))

	out := newTestNormalizer().Categorize(all)

	domains := out.Get(domain.CategoryDomains)
	testutil.AssertEqual(t, len(domains), 3, "domain plus nameservers")
	testutil.AssertEqual(t, domains[0].Value, "example.com", "domain lowercased")

	emails := out.Get(domain.CategoryEmails)
	testutil.AssertEqual(t, len(emails), 1, "registrant email")
	testutil.AssertEqual(t, emails[0].Value, "admin@example.com", "email lowercased")

	phones := out.Get(domain.CategoryPhoneNumbers)
	testutil.AssertEqual(t, len(phones), 1, "registrant phone")
	testutil.AssertEqual(t, phones[0].Value, "+15551234567", "phone canonicalized")

	business := out.Get(domain.CategoryBusinessInfo)
	testutil.AssertEqual(t, len(business), 2, "registrar and organization")
}

func TestCategorizeIPInfo(t *testing.T) {
	q := mustQuery(t, "8.8.8.8")
	all := domain.NewAllResults(q)
	all.Absorb(domain.NewSourceResult(domain.SourceIPInfo, domain.SourceKindAPI, &domain.IPInfoRecord{
		IP:       "8.8.8.8",
		Hostname: "dns.google",
		City:     "Mountain View",
		Region:   "California",
		Country:  "US",
		Org:      "AS15169 Google LLC",
	}))

	out := newTestNormalizer().Categorize(all)

	testutil.AssertEqual(t, out.Get(domain.CategoryIPs)[0].Value, "8.8.8.8", "ip entity")
	testutil.AssertEqual(t, out.Get(domain.CategoryDomains)[0].Value, "dns.google", "hostname entity")

	addrs := out.Get(domain.CategoryAddresses)
	testutil.AssertEqual(t, len(addrs), 1, "location line")
	testutil.AssertEqual(t, addrs[0].Value, "Mountain View, California, US", "location joined")
}

func TestCategorizeEmailDiscovery(t *testing.T) {
	q := mustQuery(t, "example.com")
	all := domain.NewAllResults(q)
	all.Absorb(domain.NewSourceResult(domain.SourceHunter, domain.SourceKindAPI, &domain.EmailDiscovery{
		Domain:       "example.com",
		Pattern:      "{first}.{last}",
		Organization: "Example Corp",
		Emails: []domain.DiscoveredEmail{
			{Value: "Jane.Doe@example.com", FirstName: "Jane", LastName: "Doe", Position: "CTO"},
		},
	}))

	out := newTestNormalizer().Categorize(all)

	emails := out.Get(domain.CategoryEmails)
	testutil.AssertEqual(t, len(emails), 1, "discovered email")
	testutil.AssertEqual(t, emails[0].Value, "jane.doe@example.com", "email lowercased")
	testutil.AssertEqual(t, emails[0].Name, "Jane Doe", "person name attached")

	business := out.Get(domain.CategoryBusinessInfo)
	testutil.AssertEqual(t, len(business), 2, "organization and pattern")
}

func TestCategorizeBreaches(t *testing.T) {
	q := mustQuery(t, "jane.doe@example.com")
	all := domain.NewAllResults(q)
	all.Absorb(domain.NewSourceResult(domain.SourceHIBP, domain.SourceKindAPI, &domain.BreachList{
		Breaches: []domain.Breach{
			{Name: "ExampleBreach", Title: "Example Breach", BreachDate: "2021-06-01",
				DataClasses: []string{"Email addresses", "Passwords"}, PwnCount: 1000},
		},
	}))

	out := newTestNormalizer().Categorize(all)

	leaks := out.Get(domain.CategoryLeaks)
	testutil.AssertEqual(t, len(leaks), 1, "breach entity")
	testutil.AssertEqual(t, leaks[0].Value, "Example Breach", "title preferred over name")
	testutil.AssertContains(t, leaks[0].Context, "2021-06-01", "breach date in context")
	testutil.AssertContains(t, leaks[0].Context, "Passwords", "data classes in context")
}

func TestCategorizeWebContent(t *testing.T) {
	q := mustQuery(t, "example.com")
	all := domain.NewAllResults(q)
	all.Absorb(domain.NewSourceResult(domain.SourceWebContent, domain.SourceKindWebContent, &domain.WebContent{
		URL:   "https://example.com/about",
		Title: "About us",
		Text: "Our office: 100 Main Street, Springfield\n" +
			"All rights reserved. Contact legal@example.com\n" +
			"Follow us at https://twitter.com/example",
	}))

	out := newTestNormalizer().Categorize(all)

	// La línea de copyright se filtra; su email no se extrae.
	testutil.AssertEqual(t, len(out.Get(domain.CategoryEmails)), 0, "ad line filtered before extraction")
	testutil.AssertEqual(t, len(out.Get(domain.CategoryAddresses)), 1, "address extracted")
	testutil.AssertEqual(t, len(out.Get(domain.CategorySocialLinks)), 1, "social link extracted")
	testutil.AssertEqual(t, len(out.Get(domain.CategoryRawResults)), 1, "page kept as raw result")
}

func TestCategorizeDeduplicatesAcrossSources(t *testing.T) {
	q := mustQuery(t, "example.com")
	all := domain.NewAllResults(q)
	all.Absorb(searchResult(domain.SourceDuckDuckGo, domain.SearchItem{
		Title: "a", URL: "https://a.example", Snippet: "write to info@example.com",
	}))
	all.Absorb(searchResult(domain.SourceBing, domain.SearchItem{
		Title: "b", URL: "https://b.example", Snippet: "email INFO@EXAMPLE.COM",
	}))

	out := newTestNormalizer().Categorize(all)

	emails := out.Get(domain.CategoryEmails)
	testutil.AssertEqual(t, len(emails), 1, "same email from two sources collapsed")
	testutil.AssertEqual(t, emails[0].Source, domain.SourceDuckDuckGo, "first occurrence wins")
}

func TestCategorizeDeterministicAcrossRuns(t *testing.T) {
	build := func() *domain.AllResults {
		q := mustQuery(t, "example.com")
		all := domain.NewAllResults(q)
		all.Absorb(searchResult(domain.SourceBing, domain.SearchItem{
			Title: "b", URL: "https://b.example", Snippet: "bing@example.com",
		}))
		all.Absorb(searchResult(domain.SourceDuckDuckGo, domain.SearchItem{
			Title: "a", URL: "https://a.example", Snippet: "ddg@example.com",
		}))
		return all
	}

	n := newTestNormalizer()
	first := n.Categorize(build())
	second := n.Categorize(build())

	fe, se := first.Get(domain.CategoryEmails), second.Get(domain.CategoryEmails)
	testutil.AssertEqual(t, len(fe), len(se), "same entity count")
	for i := range fe {
		testutil.AssertEqual(t, fe[i].Value, se[i].Value, "same order")
	}
	// ddg siempre se recorre antes que bing, sin importar el orden de llegada.
	testutil.AssertEqual(t, fe[0].Value, "ddg@example.com", "fixed engine order")
}

func TestCategorizeEmptyAggregate(t *testing.T) {
	q := mustQuery(t, "example.com")
	out := newTestNormalizer().Categorize(domain.NewAllResults(q))

	testutil.AssertTrue(t, out.IsEmpty(), "empty aggregate yields empty result")
	testutil.AssertEqual(t, len(out.NonEmpty()), 0, "no non-empty categories")
}
