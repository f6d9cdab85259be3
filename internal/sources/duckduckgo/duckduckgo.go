// internal/sources/duckduckgo/duckduckgo.go
package duckduckgo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
	"github.com/Berrypatches/IntelSleuth/internal/platform/httpclient"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
	"github.com/Berrypatches/IntelSleuth/internal/platform/registry"
)

// Auto-registro de la source al importar el package
func init() {
	if err := registry.Global().Register(
		domain.SourceDuckDuckGo,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:         domain.SourceDuckDuckGo,
			Description:  "DuckDuckGo web search via the HTML endpoint",
			Kind:         domain.SourceKindSearch,
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register duckduckgo source", "error", err.Error())
	}
}

const endpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo implementa una fuente de búsqueda sobre el endpoint HTML de
// DuckDuckGo. No requiere credenciales; parsea el markup de resultados.
type DuckDuckGo struct {
	client     *httpclient.Client
	logger     logx.Logger
	maxResults int
	baseURL    string
}

// New crea una nueva instancia de la fuente duckduckgo.
func New(cfg ports.SourceConfig, logger logx.Logger) *DuckDuckGo {
	httpConfig := httpclient.Config{
		Timeout:        cfg.Timeout,
		MaxRetries:     2,
		RetryBackoff:   2 * time.Second,
		UserAgent:      cfg.UserAgent,
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: 1,
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	return &DuckDuckGo{
		client:     httpclient.New(httpConfig, logger),
		logger:     logger.With("source", domain.SourceDuckDuckGo),
		maxResults: maxResults,
		baseURL:    endpoint,
	}
}

// WithBaseURL sustituye el endpoint; solo para tests.
func (d *DuckDuckGo) WithBaseURL(base string) *DuckDuckGo {
	d.baseURL = base
	return d
}

func (d *DuckDuckGo) Name() string            { return domain.SourceDuckDuckGo }
func (d *DuckDuckGo) Kind() domain.SourceKind { return domain.SourceKindSearch }
func (d *DuckDuckGo) RequiredField() string   { return "" }

// Run ejecuta la búsqueda y parsea los resultados del HTML.
func (d *DuckDuckGo) Run(ctx context.Context, q domain.Query) *domain.SourceResult {
	searchURL := fmt.Sprintf("%s?q=%s", d.baseURL, url.QueryEscape(q.SearchTerm()))

	body, err := d.client.FetchHTML(ctx, searchURL)
	if err != nil {
		d.logger.Warn("search request failed", "error", err.Error())
		return domain.NewSourceError(d.Name(), d.Kind(), fmt.Sprintf("request failed: %v", err))
	}

	items, err := parseResults(body, d.maxResults)
	if err != nil {
		return domain.NewSourceError(d.Name(), d.Kind(), fmt.Sprintf("parse failed: %v", err))
	}
	if len(items) == 0 {
		return domain.NewSourceNotFound(d.Name(), d.Kind())
	}

	d.logger.Debug("search completed", "items", len(items))
	return domain.NewSourceResult(d.Name(), d.Kind(), &domain.SearchResults{Items: items})
}

// parseResults recorre el árbol HTML buscando bloques .result y extrae
// título, URL y snippet de cada uno.
func parseResults(body []byte, max int) ([]domain.SearchItem, error) {
	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	var items []domain.SearchItem
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(items) >= max {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "result") {
			if item, ok := parseResultBlock(n); ok {
				items = append(items, item)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return items, nil
}

// parseResultBlock extrae un SearchItem de un bloque .result individual.
func parseResultBlock(n *html.Node) (domain.SearchItem, bool) {
	item := domain.SearchItem{Engine: domain.SourceDuckDuckGo}

	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode {
			switch {
			case c.Data == "a" && hasClass(c, "result__a"):
				item.Title = textContent(c)
				item.URL = unwrapRedirect(attr(c, "href"))
			case hasClass(c, "result__snippet"):
				if item.Snippet == "" {
					item.Snippet = textContent(c)
				}
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)

	if item.Title == "" || item.URL == "" {
		return item, false
	}
	return item, true
}

// unwrapRedirect resuelve el redirect interno de DuckDuckGo
// (//duckduckgo.com/l/?uddg=<url>) a la URL de destino.
func unwrapRedirect(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := parsed.Query().Get("uddg"); uddg != "" {
		if target, err := url.QueryUnescape(uddg); err == nil {
			return target
		}
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
