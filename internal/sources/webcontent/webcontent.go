// internal/sources/webcontent/webcontent.go
package webcontent

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
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
		domain.SourceWebContent,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:         domain.SourceWebContent,
			Description:  "Readable text extraction from arbitrary web pages",
			Kind:         domain.SourceKindWebContent,
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register webcontent source", "error", err.Error())
	}
}

// maxTextLength acota el texto extraído por página; lo que sigue rara vez
// aporta entidades nuevas y sí infla el reporte.
const maxTextLength = 20000

// WebContent extrae texto legible de páginas arbitrarias: sanea el HTML,
// lo convierte a markdown plano y recorta el boilerplate. Implementa
// ports.Source para el modo standalone (-extract-url) y
// ports.ContentExtractor para el fetch secundario del orchestrator.
type WebContent struct {
	client    *httpclient.Client
	logger    logx.Logger
	sanitizer *bluemonday.Policy
}

// New crea una nueva instancia de la fuente webcontent.
func New(cfg ports.SourceConfig, logger logx.Logger) *WebContent {
	httpConfig := httpclient.Config{
		Timeout:        cfg.Timeout,
		MaxRetries:     1,
		RetryBackoff:   time.Second,
		UserAgent:      cfg.UserAgent,
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: 1,
	}

	return &WebContent{
		client:    httpclient.New(httpConfig, logger),
		logger:    logger.With("source", domain.SourceWebContent),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (w *WebContent) Name() string            { return domain.SourceWebContent }
func (w *WebContent) Kind() domain.SourceKind { return domain.SourceKindWebContent }
func (w *WebContent) RequiredField() string   { return "url" }

// Run implementa ports.Source para el modo standalone, donde la URL llega
// como campo de la consulta.
func (w *WebContent) Run(ctx context.Context, q domain.Query) *domain.SourceResult {
	return w.Extract(ctx, q.Field("url"))
}

// Extract descarga una URL y retorna su texto legible.
func (w *WebContent) Extract(ctx context.Context, url string) *domain.SourceResult {
	if url == "" {
		return domain.NewSourceError(w.Name(), w.Kind(), "empty url")
	}

	body, err := w.client.FetchHTML(ctx, url)
	if err != nil {
		w.logger.Debug("fetch failed", "url", url, "error", err.Error())
		return domain.NewSourceError(w.Name(), w.Kind(), fmt.Sprintf("fetch %s failed: %v", url, err))
	}

	title := pageTitle(body)

	// Sanear primero elimina scripts, estilos y atributos de evento; la
	// conversión a markdown después deja solo el texto con estructura.
	sanitized := w.sanitizer.Sanitize(string(body))
	text, err := htmltomarkdown.ConvertString(sanitized)
	if err != nil {
		return domain.NewSourceError(w.Name(), w.Kind(), fmt.Sprintf("convert %s failed: %v", url, err))
	}

	text = tidy(text)
	if text == "" {
		return domain.NewSourceNotFound(w.Name(), w.Kind())
	}
	text = truncateText(text, maxTextLength)

	w.logger.Debug("content extracted", "url", url, "chars", len(text))
	return domain.NewSourceResult(w.Name(), w.Kind(), &domain.WebContent{
		URL:   url,
		Title: title,
		Text:  text,
	})
}

// pageTitle extrae el contenido del tag <title>.
func pageTitle(body []byte) string {
	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return title
}

// truncateText recorta el texto a un máximo de bytes sin partir una runa
// multibyte en el corte.
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// tidy colapsa líneas vacías consecutivas y recorta espacio sobrante.
func tidy(text string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
