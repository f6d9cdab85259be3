// internal/sources/bing/bing.go
package bing

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
		domain.SourceBing,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:         domain.SourceBing,
			Description:  "Bing web search via HTML scraping",
			Kind:         domain.SourceKindSearch,
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register bing source", "error", err.Error())
	}
}

const endpoint = "https://www.bing.com/search"

// Bing implementa una fuente de búsqueda sobre la página de resultados de
// Bing. Complementa a duckduckgo: la misma consulta contra dos motores
// reduce los huecos de cobertura de cada uno.
type Bing struct {
	client     *httpclient.Client
	logger     logx.Logger
	maxResults int
	baseURL    string
}

// New crea una nueva instancia de la fuente bing.
func New(cfg ports.SourceConfig, logger logx.Logger) *Bing {
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

	return &Bing{
		client:     httpclient.New(httpConfig, logger),
		logger:     logger.With("source", domain.SourceBing),
		maxResults: maxResults,
		baseURL:    endpoint,
	}
}

// WithBaseURL sustituye el endpoint; solo para tests.
func (b *Bing) WithBaseURL(base string) *Bing {
	b.baseURL = base
	return b
}

func (b *Bing) Name() string            { return domain.SourceBing }
func (b *Bing) Kind() domain.SourceKind { return domain.SourceKindSearch }
func (b *Bing) RequiredField() string   { return "" }

// Run ejecuta la búsqueda y parsea los bloques b_algo del HTML.
func (b *Bing) Run(ctx context.Context, q domain.Query) *domain.SourceResult {
	searchURL := fmt.Sprintf("%s?q=%s", b.baseURL, url.QueryEscape(q.SearchTerm()))

	body, err := b.client.FetchHTML(ctx, searchURL)
	if err != nil {
		b.logger.Warn("search request failed", "error", err.Error())
		return domain.NewSourceError(b.Name(), b.Kind(), fmt.Sprintf("request failed: %v", err))
	}

	items, err := parseResults(body, b.maxResults)
	if err != nil {
		return domain.NewSourceError(b.Name(), b.Kind(), fmt.Sprintf("parse failed: %v", err))
	}
	if len(items) == 0 {
		return domain.NewSourceNotFound(b.Name(), b.Kind())
	}

	b.logger.Debug("search completed", "items", len(items))
	return domain.NewSourceResult(b.Name(), b.Kind(), &domain.SearchResults{Items: items})
}

// parseResults recorre el árbol HTML buscando bloques li.b_algo y extrae
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
		if n.Type == html.ElementNode && n.Data == "li" && hasClass(n, "b_algo") {
			if item, ok := parseResultBlock(n); ok {
				items = append(items, item)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return items, nil
}

// parseResultBlock extrae un SearchItem de un bloque b_algo: el enlace vive
// en h2 > a, el snippet en el primer p del bloque de caption.
func parseResultBlock(n *html.Node) (domain.SearchItem, bool) {
	item := domain.SearchItem{Engine: domain.SourceBing}

	var inHeading bool
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode {
			switch {
			case c.Data == "h2":
				inHeading = true
				for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
					walk(cc)
				}
				inHeading = false
				return
			case c.Data == "a" && inHeading && item.URL == "":
				item.Title = textContent(c)
				item.URL = attr(c, "href")
			case c.Data == "p" && item.Snippet == "":
				item.Snippet = textContent(c)
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)

	if item.Title == "" || item.URL == "" || !strings.HasPrefix(item.URL, "http") {
		return item, false
	}
	return item, true
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
