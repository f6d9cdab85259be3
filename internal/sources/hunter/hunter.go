// internal/sources/hunter/hunter.go
package hunter

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
		domain.SourceHunter,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:          domain.SourceHunter,
			Description:   "Corporate email discovery and verification via hunter.io",
			Kind:          domain.SourceKindAPI,
			RequiresAuth:  true,
			RequiredField: "domain",
		},
	); err != nil {
		logx.New().Warn("failed to register hunter source", "error", err.Error())
	}
}

const endpoint = "https://api.hunter.io/v2"

// Hunter implementa la fuente de descubrimiento de emails sobre hunter.io.
// Una consulta de dominio corre domain-search; una de email corre
// email-verifier sobre la dirección concreta.
type Hunter struct {
	client  *httpclient.Client
	logger  logx.Logger
	apiKey  string
	baseURL string
}

// New crea una nueva instancia de la fuente hunter.
func New(cfg ports.SourceConfig, logger logx.Logger) *Hunter {
	httpConfig := httpclient.Config{
		Timeout:        cfg.Timeout,
		MaxRetries:     2,
		RetryBackoff:   time.Second,
		UserAgent:      cfg.UserAgent,
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: 1,
	}

	return &Hunter{
		client:  httpclient.New(httpConfig, logger),
		logger:  logger.With("source", domain.SourceHunter),
		apiKey:  cfg.APIKey,
		baseURL: endpoint,
	}
}

// WithBaseURL sustituye el endpoint; solo para tests.
func (h *Hunter) WithBaseURL(base string) *Hunter {
	h.baseURL = base
	return h
}

func (h *Hunter) Name() string            { return domain.SourceHunter }
func (h *Hunter) Kind() domain.SourceKind { return domain.SourceKindAPI }
func (h *Hunter) RequiredField() string   { return "domain" }

// Run ejecuta la operación que corresponde al tipo de consulta.
func (h *Hunter) Run(ctx context.Context, q domain.Query) *domain.SourceResult {
	if h.apiKey == "" {
		return domain.NewSourceError(h.Name(), h.Kind(),
			fmt.Sprintf("%v: hunter api key missing", errors.ErrNotConfigured))
	}

	if q.HasField("email") {
		return h.verifyEmail(ctx, q.Field("email"))
	}
	return h.domainSearch(ctx, q.Field("domain"))
}

// hunterDomainSearch es la respuesta del endpoint domain-search.
type hunterDomainSearch struct {
	Data struct {
		Domain       string `json:"domain"`
		Pattern      string `json:"pattern"`
		Organization string `json:"organization"`
		Emails       []struct {
			Value     string `json:"value"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Position  string `json:"position"`
		} `json:"emails"`
	} `json:"data"`
}

// domainSearch lista los emails conocidos de un dominio.
func (h *Hunter) domainSearch(ctx context.Context, domainName string) *domain.SourceResult {
	searchURL := fmt.Sprintf("%s/domain-search?domain=%s&api_key=%s",
		h.baseURL, url.QueryEscape(domainName), url.QueryEscape(h.apiKey))

	body, err := h.client.FetchJSON(ctx, searchURL, nil)
	if err != nil {
		return h.requestError(err)
	}

	var resp hunterDomainSearch
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.NewSourceError(h.Name(), h.Kind(), fmt.Sprintf("invalid response: %v", err))
	}

	discovery := &domain.EmailDiscovery{
		Domain:       resp.Data.Domain,
		Pattern:      resp.Data.Pattern,
		Organization: resp.Data.Organization,
	}
	for _, e := range resp.Data.Emails {
		discovery.Emails = append(discovery.Emails, domain.DiscoveredEmail{
			Value:     e.Value,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Position:  e.Position,
		})
	}

	if len(discovery.Emails) == 0 && discovery.Organization == "" && discovery.Pattern == "" {
		return domain.NewSourceNotFound(h.Name(), h.Kind())
	}

	h.logger.Debug("domain search completed", "domain", domainName, "emails", len(discovery.Emails))
	return domain.NewSourceResult(h.Name(), h.Kind(), discovery)
}

// hunterVerifier es la respuesta del endpoint email-verifier.
type hunterVerifier struct {
	Data struct {
		Email      string `json:"email"`
		Status     string `json:"status"`
		Disposable bool   `json:"disposable"`
		Webmail    bool   `json:"webmail"`
	} `json:"data"`
}

// verifyEmail consulta el veredicto de entregabilidad de una dirección.
func (h *Hunter) verifyEmail(ctx context.Context, email string) *domain.SourceResult {
	verifyURL := fmt.Sprintf("%s/email-verifier?email=%s&api_key=%s",
		h.baseURL, url.QueryEscape(email), url.QueryEscape(h.apiKey))

	body, err := h.client.FetchJSON(ctx, verifyURL, nil)
	if err != nil {
		return h.requestError(err)
	}

	var resp hunterVerifier
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.NewSourceError(h.Name(), h.Kind(), fmt.Sprintf("invalid response: %v", err))
	}
	if resp.Data.Email == "" {
		return domain.NewSourceNotFound(h.Name(), h.Kind())
	}

	h.logger.Debug("email verified", "email", email, "status", resp.Data.Status)
	return domain.NewSourceResult(h.Name(), h.Kind(), &domain.EmailDiscovery{
		Email:      resp.Data.Email,
		Status:     resp.Data.Status,
		Disposable: resp.Data.Disposable,
		Webmail:    resp.Data.Webmail,
	})
}

func (h *Hunter) requestError(err error) *domain.SourceResult {
	if errors.IsNotFound(err) {
		return domain.NewSourceNotFound(h.Name(), h.Kind())
	}
	h.logger.Warn("request failed", "error", err.Error())
	return domain.NewSourceError(h.Name(), h.Kind(), fmt.Sprintf("request failed: %v", err))
}
