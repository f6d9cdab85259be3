// internal/sources/ipinfo/ipinfo.go
package ipinfo

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
		domain.SourceIPInfo,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:          domain.SourceIPInfo,
			Description:   "IP geolocation and network ownership via ipinfo.io",
			Kind:          domain.SourceKindAPI,
			RequiresAuth:  true,
			RequiredField: "ip",
		},
	); err != nil {
		logx.New().Warn("failed to register ipinfo source", "error", err.Error())
	}
}

const endpoint = "https://ipinfo.io"

// IPInfo implementa la fuente de geolocalización de IPs sobre ipinfo.io.
// Requiere token de API; sin él la fuente se degrada a not configured.
type IPInfo struct {
	client  *httpclient.Client
	logger  logx.Logger
	token   string
	baseURL string
}

// New crea una nueva instancia de la fuente ipinfo.
func New(cfg ports.SourceConfig, logger logx.Logger) *IPInfo {
	httpConfig := httpclient.Config{
		Timeout:        cfg.Timeout,
		MaxRetries:     2,
		RetryBackoff:   time.Second,
		UserAgent:      cfg.UserAgent,
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: 1,
	}

	return &IPInfo{
		client:  httpclient.New(httpConfig, logger),
		logger:  logger.With("source", domain.SourceIPInfo),
		token:   cfg.APIKey,
		baseURL: endpoint,
	}
}

// WithBaseURL sustituye el endpoint; solo para tests.
func (i *IPInfo) WithBaseURL(base string) *IPInfo {
	i.baseURL = base
	return i
}

func (i *IPInfo) Name() string            { return domain.SourceIPInfo }
func (i *IPInfo) Kind() domain.SourceKind { return domain.SourceKindAPI }
func (i *IPInfo) RequiredField() string   { return "ip" }

// Run consulta ipinfo.io para la IP de la consulta.
func (i *IPInfo) Run(ctx context.Context, q domain.Query) *domain.SourceResult {
	if i.token == "" {
		return domain.NewSourceError(i.Name(), i.Kind(),
			fmt.Sprintf("%v: ipinfo token missing", errors.ErrNotConfigured))
	}

	ip := q.Field("ip")
	lookupURL := fmt.Sprintf("%s/%s?token=%s", i.baseURL, url.PathEscape(ip), url.QueryEscape(i.token))

	body, err := i.client.FetchJSON(ctx, lookupURL, nil)
	if err != nil {
		if errors.IsNotFound(err) {
			return domain.NewSourceNotFound(i.Name(), i.Kind())
		}
		i.logger.Warn("lookup failed", "error", err.Error())
		return domain.NewSourceError(i.Name(), i.Kind(), fmt.Sprintf("request failed: %v", err))
	}

	var record domain.IPInfoRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return domain.NewSourceError(i.Name(), i.Kind(), fmt.Sprintf("invalid response: %v", err))
	}
	if record.IP == "" {
		record.IP = ip
	}

	i.logger.Debug("lookup completed", "ip", ip, "org", record.Org)
	return domain.NewSourceResult(i.Name(), i.Kind(), &record)
}
