// internal/sources/webcontent/webcontent_test.go
package webcontent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
	"github.com/Berrypatches/IntelSleuth/internal/testutil"
)

const pageFixture = `<!DOCTYPE html>
<html>
<head>
  <title>About Example Corp</title>
  <script>trackVisitor();</script>
  <style>.hidden { display: none; }</style>
</head>
<body>
  <h1>About us</h1>
  <p>Example Corp builds sample software.</p>
  <p>Contact: <a href="mailto:info@example.com">info@example.com</a></p>
  <script>moreTracking();</script>
</body>
</html>`

func newTestSource(t *testing.T) *WebContent {
	t.Helper()
	return New(ports.DefaultSourceConfig(), logx.NewSilent())
}

func TestExtractReadableText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageFixture))
	}))
	t.Cleanup(server.Close)

	result := newTestSource(t).Extract(context.Background(), server.URL)

	testutil.AssertEqual(t, string(result.Status), string(domain.StatusOK), "status ok")
	content := result.Payload.(*domain.WebContent)

	testutil.AssertEqual(t, content.URL, server.URL, "url preserved")
	testutil.AssertEqual(t, content.Title, "About Example Corp", "title from head")
	testutil.AssertContains(t, content.Text, "sample software", "body text kept")
	testutil.AssertContains(t, content.Text, "info@example.com", "contact text kept")
	testutil.AssertFalse(t, strings.Contains(content.Text, "trackVisitor"), "scripts stripped")
	testutil.AssertFalse(t, strings.Contains(content.Text, "display: none"), "styles stripped")
}

func TestExtractTruncatesLongPages(t *testing.T) {
	long := "<html><body><p>" + strings.Repeat("palabra ", 10000) + "</p></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(long))
	}))
	t.Cleanup(server.Close)

	result := newTestSource(t).Extract(context.Background(), server.URL)

	content := result.Payload.(*domain.WebContent)
	testutil.AssertTrue(t, len(content.Text) <= maxTextLength, "text capped")
}

func TestExtractEmptyURL(t *testing.T) {
	result := newTestSource(t).Extract(context.Background(), "")

	testutil.AssertEqual(t, string(result.Status), string(domain.StatusError), "empty url is an error")
}

func TestExtractUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := newTestSource(t).Extract(context.Background(), url)

	testutil.AssertEqual(t, string(result.Status), string(domain.StatusError), "connection refused is an error")
}

func TestRunUsesURLField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageFixture))
	}))
	t.Cleanup(server.Close)

	q := domain.Query{
		Raw:    server.URL,
		Type:   domain.InputTypeUnknown,
		Fields: map[string]string{"url": server.URL},
	}
	result := newTestSource(t).Run(context.Background(), q)

	testutil.AssertEqual(t, string(result.Status), string(domain.StatusOK), "run extracts the url field")
}

func TestTidyCollapsesBlankRuns(t *testing.T) {
	got := tidy("a\n\n\n\nb\n\n")
	testutil.AssertEqual(t, got, "a\n\nb", "blank runs collapsed")
}

func TestTruncateTextKeepsRunesWhole(t *testing.T) {
	// "é" ocupa dos bytes: un corte en el byte 2 caería en medio de la runa.
	got := truncateText("héllo", 2)
	testutil.AssertEqual(t, got, "h", "cut moved back to the rune boundary")
	testutil.AssertTrue(t, utf8.ValidString(got), "result is valid utf-8")

	testutil.AssertEqual(t, truncateText("héllo", 3), "hé", "boundary cut kept as-is")
	testutil.AssertEqual(t, truncateText("short", 10), "short", "no-op under the limit")
}
