// internal/sources/hibp/hibp.go
package hibp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
	"github.com/Berrypatches/IntelSleuth/internal/platform/errors"
	"github.com/Berrypatches/IntelSleuth/internal/platform/httpclient"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
	"github.com/Berrypatches/IntelSleuth/internal/platform/registry"
)

// Auto-registro de la source al importar el package
func init() {
	if err := registry.Global().Register(
		domain.SourceHIBP,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:          domain.SourceHIBP,
			Description:   "Data breach exposure lookup via Have I Been Pwned",
			Kind:          domain.SourceKindAPI,
			RequiresAuth:  true,
			RequiredField: "",
		},
	); err != nil {
		logx.New().Warn("failed to register hibp source", "error", err.Error())
	}
}

const endpoint = "https://haveibeenpwned.com/api/v3"

// HIBP implementa la fuente de brechas de datos sobre la API v3 de
// Have I Been Pwned. Un 404 de la API significa "cuenta no expuesta" y se
// reporta como resultado vacío exitoso, nunca como fallo.
type HIBP struct {
	client  *httpclient.Client
	logger  logx.Logger
	apiKey  string
	baseURL string
}

// New crea una nueva instancia de la fuente hibp.
func New(cfg ports.SourceConfig, logger logx.Logger) *HIBP {
	httpConfig := httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRetries:   2,
		RetryBackoff: 2 * time.Second,
		UserAgent:    cfg.UserAgent,
		// HIBP limita por clave; 1.5s entre peticiones respeta el plan base.
		RateLimit:      0.6,
		RateLimitBurst: 1,
	}

	return &HIBP{
		client:  httpclient.New(httpConfig, logger),
		logger:  logger.With("source", domain.SourceHIBP),
		apiKey:  cfg.APIKey,
		baseURL: endpoint,
	}
}

// WithBaseURL sustituye el endpoint; solo para tests.
func (h *HIBP) WithBaseURL(base string) *HIBP {
	h.baseURL = base
	return h
}

func (h *HIBP) Name() string            { return domain.SourceHIBP }
func (h *HIBP) Kind() domain.SourceKind { return domain.SourceKindAPI }

// RequiredField es vacío: la API acepta cualquier identificador de cuenta,
// así que la fuente corre tanto para emails como para usernames y resuelve
// el campo en Run.
func (h *HIBP) RequiredField() string { return "" }

// hibpBreach es un registro de brecha de la API v3.
type hibpBreach struct {
	Name        string   `json:"Name"`
	Title       string   `json:"Title"`
	Domain      string   `json:"Domain"`
	BreachDate  string   `json:"BreachDate"`
	PwnCount    int64    `json:"PwnCount"`
	DataClasses []string `json:"DataClasses"`
	Description string   `json:"Description"`
}

// Run consulta las brechas conocidas para la cuenta de la consulta.
func (h *HIBP) Run(ctx context.Context, q domain.Query) *domain.SourceResult {
	if h.apiKey == "" {
		return domain.NewSourceError(h.Name(), h.Kind(),
			fmt.Sprintf("%v: hibp api key missing", errors.ErrNotConfigured))
	}

	account := q.Field("email")
	if account == "" {
		account = q.Field("username")
	}
	if account == "" {
		return domain.NewSourceError(h.Name(), h.Kind(), "query has no account to look up")
	}

	lookupURL := fmt.Sprintf("%s/breachedaccount/%s?truncateResponse=false",
		h.baseURL, url.PathEscape(account))

	body, err := h.client.FetchJSON(ctx, lookupURL, map[string]string{
		"hibp-api-key": h.apiKey,
	})
	if err != nil {
		// 404 es semántico en esta API: la cuenta no aparece en ninguna
		// brecha conocida.
		if errors.IsNotFound(err) {
			h.logger.Debug("account not found in any breach", "account", account)
			return domain.NewSourceResult(h.Name(), h.Kind(), &domain.BreachList{Breaches: []domain.Breach{}})
		}
		h.logger.Warn("lookup failed", "error", err.Error())
		return domain.NewSourceError(h.Name(), h.Kind(), fmt.Sprintf("request failed: %v", err))
	}

	var raw []hibpBreach
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.NewSourceError(h.Name(), h.Kind(), fmt.Sprintf("invalid response: %v", err))
	}

	list := &domain.BreachList{Breaches: make([]domain.Breach, 0, len(raw))}
	for _, b := range raw {
		list.Breaches = append(list.Breaches, domain.Breach{
			Name:        b.Name,
			Title:       b.Title,
			Domain:      b.Domain,
			BreachDate:  b.BreachDate,
			PwnCount:    b.PwnCount,
			DataClasses: b.DataClasses,
			Description: b.Description,
		})
	}

	h.logger.Debug("lookup completed", "account", account, "breaches", len(list.Breaches))
	return domain.NewSourceResult(h.Name(), h.Kind(), list)
}
