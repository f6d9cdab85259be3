// internal/core/domain/query_test.go
package domain

import (
	"errors"
	"testing"

	"github.com/Berrypatches/IntelSleuth/internal/testutil"
)

func TestClassifyEmail(t *testing.T) {
	c := Classify("Jane.Doe@Example.COM")

	testutil.AssertTrue(t, c.Valid, "email is valid input")
	testutil.AssertEqual(t, c.Type, InputTypeEmail, "classified as email")
	testutil.AssertEqual(t, c.Fields["email"], "jane.doe@example.com", "email normalized to lowercase")
	testutil.AssertEqual(t, c.Fields["domain"], "example.com", "domain extracted from email")

	testutil.AssertTrue(t, c.Sources[SourceHunter], "hunter enabled for emails")
	testutil.AssertTrue(t, c.Sources[SourceHIBP], "hibp enabled for emails")
	testutil.AssertTrue(t, c.Sources[SourceDuckDuckGo], "search enabled for emails")
	testutil.AssertFalse(t, c.Sources[SourceWhois], "whois disabled for emails")
	testutil.AssertFalse(t, c.Sources[SourceIPInfo], "ipinfo disabled for emails")
}

func TestClassifyEmailBeatsDomain(t *testing.T) {
	// El valor contiene un dominio registrable, pero la regla de email
	// tiene precedencia.
	c := Classify("info@example.com")

	testutil.AssertEqual(t, c.Type, InputTypeEmail, "email wins over domain")
}

func TestClassifyIPv4(t *testing.T) {
	c := Classify("8.8.8.8")

	testutil.AssertEqual(t, c.Type, InputTypeIP, "classified as ip")
	testutil.AssertEqual(t, c.Fields["ip"], "8.8.8.8", "ip field")
	testutil.AssertEqual(t, c.Fields["ip_version"], "4", "ipv4 version")

	testutil.AssertTrue(t, c.Sources[SourceWhois], "whois enabled for ips")
	testutil.AssertTrue(t, c.Sources[SourceIPInfo], "ipinfo enabled for ips")
	testutil.AssertFalse(t, c.Sources[SourceDuckDuckGo], "search disabled for ips")
}

func TestClassifyIPv6(t *testing.T) {
	c := Classify("2001:4860:4860::8888")

	testutil.AssertEqual(t, c.Type, InputTypeIP, "classified as ip")
	testutil.AssertEqual(t, c.Fields["ip_version"], "6", "ipv6 version")
}

func TestClassifyDomain(t *testing.T) {
	c := Classify("www.Example.COM")

	testutil.AssertEqual(t, c.Type, InputTypeDomain, "classified as domain")
	testutil.AssertEqual(t, c.Fields["domain"], "example.com", "domain normalized")

	testutil.AssertTrue(t, c.Sources[SourceWhois], "whois enabled for domains")
	testutil.AssertTrue(t, c.Sources[SourceHunter], "hunter enabled for domains")
	testutil.AssertFalse(t, c.Sources[SourceHIBP], "hibp disabled for domains")
}

func TestClassifyUnregistrableSuffixIsNotDomain(t *testing.T) {
	// "localdomain" no es un sufijo público reconocido: el valor cae a la
	// regla de username, no a la de dominio.
	c := Classify("server.localdomain")

	testutil.AssertEqual(t, c.Type, InputTypeUsername, "unknown suffix falls through")
}

func TestClassifyPhone(t *testing.T) {
	c := Classify("+1 555 123 4567")

	testutil.AssertEqual(t, c.Type, InputTypePhone, "classified as phone")
	testutil.AssertEqual(t, c.Fields["phone"], "+15551234567", "phone canonicalized")
	testutil.AssertTrue(t, c.Sources[SourceDuckDuckGo], "search enabled for phones")
}

func TestClassifyUsername(t *testing.T) {
	c := Classify("some_user.99")

	testutil.AssertEqual(t, c.Type, InputTypeUsername, "classified as username")
	testutil.AssertEqual(t, c.Fields["username"], "some_user.99", "username field")
	testutil.AssertTrue(t, c.Sources[SourceHIBP], "hibp enabled for usernames")
}

func TestClassifyName(t *testing.T) {
	c := Classify("Jane Doe")

	testutil.AssertEqual(t, c.Type, InputTypeName, "classified as name")
	testutil.AssertEqual(t, c.Fields["name"], "Jane Doe", "name field keeps casing")
}

func TestClassifyFallbackSearchTerm(t *testing.T) {
	c := Classify("error 404 page")

	testutil.AssertTrue(t, c.Valid, "fallback is still valid")
	testutil.AssertEqual(t, c.Type, InputTypeUnknown, "mixed input falls to search term")
	testutil.AssertEqual(t, c.Fields["search_query"], "error 404 page", "raw term preserved")
}

func TestClassifyEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		c := Classify(input)
		testutil.AssertFalse(t, c.Valid, "blank input is invalid: "+input)
		testutil.AssertEqual(t, c.Type, InputTypeUnknown, "blank input type")
	}
}

func TestNewQuerySanitizesInput(t *testing.T) {
	q, err := NewQuery("  jane<doe>;  ", nil)

	testutil.AssertNoError(t, err, "NewQuery")
	testutil.AssertEqual(t, q.Raw, "janedoe", "dangerous characters stripped")
	testutil.AssertEqual(t, q.Type, InputTypeUsername, "sanitized value classified")
}

func TestNewQueryEmptyIsError(t *testing.T) {
	_, err := NewQuery("   ", nil)

	testutil.AssertError(t, err, "blank query rejected")
	testutil.AssertTrue(t, errors.Is(err, ErrInvalidQuery), "typed error")
}

func TestNewQueryOverrides(t *testing.T) {
	q, err := NewQuery("example.com", map[string]bool{
		SourceHIBP: true,
		SourceBing: false,
	})

	testutil.AssertNoError(t, err, "NewQuery")
	testutil.AssertTrue(t, q.Enabled(SourceHIBP), "override enables hibp")
	testutil.AssertFalse(t, q.Enabled(SourceBing), "override disables bing")
	testutil.AssertTrue(t, q.Enabled(SourceWhois), "untouched default preserved")
}

func TestNewQueryHashIsStable(t *testing.T) {
	a, err := NewQuery("example.com", nil)
	testutil.AssertNoError(t, err, "first query")
	b, err := NewQuery("example.com", nil)
	testutil.AssertNoError(t, err, "second query")

	testutil.AssertEqual(t, len(a.Hash), 64, "sha256 hex length")
	testutil.AssertEqual(t, a.Hash, b.Hash, "same input, same hash")
}

func TestQueryFieldAccessors(t *testing.T) {
	q, err := NewQuery("8.8.8.8", nil)
	testutil.AssertNoError(t, err, "NewQuery")

	testutil.AssertTrue(t, q.HasField("ip"), "extracted field present")
	testutil.AssertEqual(t, q.Field("ip"), "8.8.8.8", "field value")
	testutil.AssertFalse(t, q.HasField("email"), "absent field")
	testutil.AssertEqual(t, q.Field("email"), "", "absent field is empty")
	testutil.AssertEqual(t, q.SearchTerm(), "8.8.8.8", "search term is the raw input")
}
