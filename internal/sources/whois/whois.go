// internal/sources/whois/whois.go
package whois

import (
	"context"
	"fmt"
	"time"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/core/ports"
	"github.com/Berrypatches/IntelSleuth/internal/platform/cache"
	"github.com/Berrypatches/IntelSleuth/internal/platform/httpclient"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
	"github.com/Berrypatches/IntelSleuth/internal/platform/registry"
)

// Auto-registro de la source al importar el package
func init() {
	if err := registry.Global().Register(
		domain.SourceWhois,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:         domain.SourceWhois,
			Description:  "Domain and IP registration lookup via RDAP with raw WHOIS fallback",
			Kind:         domain.SourceKindWhois,
			RequiresAuth: false,
		},
	); err != nil {
		logx.New().Warn("failed to register whois source", "error", err.Error())
	}
}

// cacheTTL es la vigencia de un registro en cache. Los datos de registro
// cambian con poca frecuencia; repetir la misma consulta en una sesión no
// debe golpear los registries.
const cacheTTL = 24 * time.Hour

// Whois implementa el lookup de registro en dos niveles: RDAP estructurado
// primero y WHOIS crudo por TCP 43 como fallback. Opera sobre dominios
// registrables y sobre IPs.
type Whois struct {
	client  *httpclient.Client
	store   cache.Cache
	logger  logx.Logger
	rdapURL string
}

// New crea una nueva instancia de la fuente whois.
func New(cfg ports.SourceConfig, logger logx.Logger) *Whois {
	httpConfig := httpclient.Config{
		Timeout:        cfg.Timeout,
		MaxRetries:     1,
		RetryBackoff:   time.Second,
		UserAgent:      cfg.UserAgent,
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: 1,
	}

	return &Whois{
		client:  httpclient.New(httpConfig, logger),
		store:   cache.NewMemoryCache(100),
		logger:  logger.With("source", domain.SourceWhois),
		rdapURL: "https://rdap.org",
	}
}

// WithRDAPURL sustituye la base RDAP; solo para tests.
func (w *Whois) WithRDAPURL(base string) *Whois {
	w.rdapURL = base
	return w
}

func (w *Whois) Name() string            { return domain.SourceWhois }
func (w *Whois) Kind() domain.SourceKind { return domain.SourceKindWhois }

// RequiredField retorna "" porque la fuente acepta dominio o IP; la
// verificación de campos ocurre en Run.
func (w *Whois) RequiredField() string { return "" }

// Run resuelve el registro del dominio o la IP de la consulta. Intenta RDAP
// primero; si no responde o viene vacío, cae al WHOIS crudo.
func (w *Whois) Run(ctx context.Context, q domain.Query) *domain.SourceResult {
	switch {
	case q.HasField("domain"):
		return w.lookup(ctx, "domain", q.Field("domain"))
	case q.HasField("ip"):
		return w.lookup(ctx, "ip", q.Field("ip"))
	default:
		return domain.NewSourceError(w.Name(), w.Kind(), "query has neither domain nor ip")
	}
}

func (w *Whois) lookup(ctx context.Context, kind, value string) *domain.SourceResult {
	cacheKey := "whois:" + kind + ":" + value
	if cached, ok := w.store.Get(cacheKey); ok {
		w.logger.Debug("cache hit", "key", cacheKey)
		return domain.NewSourceResult(w.Name(), w.Kind(), cached.(*domain.WhoisRecord))
	}

	record, err := w.lookupRDAP(ctx, kind, value)
	if err != nil || record.IsEmpty() {
		if err != nil {
			w.logger.Debug("rdap lookup failed, falling back to raw whois", "error", err.Error())
		}
		record, err = w.lookupRaw(ctx, kind, value)
	}

	if err != nil {
		return domain.NewSourceError(w.Name(), w.Kind(), fmt.Sprintf("lookup failed: %v", err))
	}
	if record == nil || record.IsEmpty() {
		return domain.NewSourceNotFound(w.Name(), w.Kind())
	}

	w.store.Set(cacheKey, record, cacheTTL)
	w.logger.Debug("lookup completed", "kind", kind, "value", value)
	return domain.NewSourceResult(w.Name(), w.Kind(), record)
}
