// internal/core/usecases/normalizer.go
package usecases

import (
	"fmt"
	"strings"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/extract"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
)

// Orden fijo de recorrido para que la salida sea determinista con
// entradas idénticas, independiente del orden de llegada de las fuentes.
var (
	engineOrder    = []string{domain.SourceDuckDuckGo, domain.SourceBing}
	apiSourceOrder = []string{domain.SourceIPInfo, domain.SourceHunter, domain.SourceHIBP}
)

// Normalizer convierte el agregado crudo de las fuentes en el mapa de
// categorías fijas, extrayendo entidades y deduplicando por huella.
type Normalizer struct {
	logger logx.Logger
}

// NewNormalizer crea una nueva instancia del normalizer.
func NewNormalizer(logger logx.Logger) *Normalizer {
	if logger == nil {
		logger = logx.New()
	}
	return &Normalizer{logger: logger.With("component", "normalizer")}
}

// Categorize rutea cada payload del agregado a sus categorías y corre la
// extracción heurística sobre el texto libre. El resultado es un mapa
// fresco por consulta, nunca estado compartido.
func (n *Normalizer) Categorize(all *domain.AllResults) *domain.CategorizedResult {
	out := domain.NewCategorizedResult()
	if all == nil {
		return out
	}

	for _, engine := range engineOrder {
		n.absorbSearch(out, engine, all.SearchResults[engine])
	}

	if all.WhoisResult != nil {
		n.absorbWhois(out, all.WhoisResult)
	}

	for _, name := range apiSourceOrder {
		payload, ok := all.APIResults[name]
		if !ok {
			continue
		}
		switch p := payload.(type) {
		case *domain.IPInfoRecord:
			n.absorbIPInfo(out, p)
		case *domain.EmailDiscovery:
			n.absorbDiscovery(out, name, p)
		case *domain.BreachList:
			n.absorbBreaches(out, name, p)
		}
	}

	for _, url := range all.WebContentOrder {
		if wc := all.WebContentResults[url]; wc != nil {
			n.absorbWebContent(out, wc)
		}
	}

	n.logger.Debug("categorized", "entities", out.Total())
	return out
}

// absorbSearch convierte items de búsqueda en entidades raw_results y corre
// la extracción de entidades sobre título y snippet. Items que parecen
// publicidad no se extraen pero sí se conservan como resultado crudo.
func (n *Normalizer) absorbSearch(out *domain.CategorizedResult, engine string, items []domain.SearchItem) {
	for _, item := range items {
		raw := domain.NewEntity(domain.CategoryRawResults, item.URL, engine)
		raw.Title = item.Title
		raw.URL = item.URL
		raw.Context = item.Snippet
		out.Add(raw)

		text := item.Title + "\n" + item.Snippet + "\n" + item.URL
		if extract.IsAdOrIrrelevant(text) {
			continue
		}
		n.extractFromText(out, text, engine)
	}
}

// absorbWhois reparte los campos del registro de whois/rdap en sus
// categorías: dominios, infraestructura, contactos.
func (n *Normalizer) absorbWhois(out *domain.CategorizedResult, w *domain.WhoisRecord) {
	src := domain.SourceWhois

	if w.DomainName != "" {
		out.Add(domain.NewEntity(domain.CategoryDomains, strings.ToLower(w.DomainName), src))
	}
	for _, ns := range w.NameServers {
		out.Add(domain.NewEntity(domain.CategoryDomains, strings.ToLower(ns), src))
	}
	if w.Hostname != "" {
		out.Add(domain.NewEntity(domain.CategoryDomains, strings.ToLower(w.Hostname), src))
	}

	if w.Registrar != "" {
		e := domain.NewEntity(domain.CategoryBusinessInfo, w.Registrar, src)
		e.Context = "registrar"
		out.Add(e)
	}
	for _, org := range []string{w.RegistrantOrg, w.Organization} {
		if org != "" {
			e := domain.NewEntity(domain.CategoryBusinessInfo, org, src)
			e.Context = "organization"
			out.Add(e)
		}
	}
	if w.NetName != "" {
		e := domain.NewEntity(domain.CategoryBusinessInfo, w.NetName, src)
		e.Context = "network"
		out.Add(e)
	}
	if w.CIDR != "" {
		e := domain.NewEntity(domain.CategoryBusinessInfo, w.CIDR, src)
		e.Context = "network range"
		out.Add(e)
	}

	if w.RegistrantEmail != "" {
		out.Add(domain.NewEntity(domain.CategoryEmails, strings.ToLower(w.RegistrantEmail), src))
	}
	for _, email := range w.Emails {
		out.Add(domain.NewEntity(domain.CategoryEmails, strings.ToLower(email), src))
	}
	if w.RegistrantPhone != "" {
		if phone := extract.CanonicalPhone(w.RegistrantPhone); phone != "" {
			out.Add(domain.NewEntity(domain.CategoryPhoneNumbers, phone, src))
		}
	}

	if w.IP != "" {
		out.Add(domain.NewEntity(domain.CategoryIPs, w.IP, src))
	}
}

// absorbIPInfo reparte el registro de geolocalización en ips, dominios,
// direcciones y organización.
func (n *Normalizer) absorbIPInfo(out *domain.CategorizedResult, rec *domain.IPInfoRecord) {
	src := domain.SourceIPInfo

	if rec.IP != "" {
		out.Add(domain.NewEntity(domain.CategoryIPs, rec.IP, src))
	}
	if rec.Hostname != "" {
		out.Add(domain.NewEntity(domain.CategoryDomains, strings.ToLower(rec.Hostname), src))
	}
	if line := joinLocation(rec); line != "" {
		e := domain.NewEntity(domain.CategoryAddresses, line, src)
		e.Context = "ip geolocation"
		out.Add(e)
	}
	if rec.Org != "" {
		e := domain.NewEntity(domain.CategoryBusinessInfo, rec.Org, src)
		e.Context = "network operator"
		out.Add(e)
	}
}

// joinLocation compone una línea de ubicación legible con los campos
// presentes del registro.
func joinLocation(rec *domain.IPInfoRecord) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{rec.City, rec.Region, rec.Country, rec.Postal} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// absorbDiscovery reparte el descubrimiento de emails: cada email hallado,
// el patrón corporativo y la organización. La verificación de un email
// individual produce una entidad con el veredicto como contexto.
func (n *Normalizer) absorbDiscovery(out *domain.CategorizedResult, src string, d *domain.EmailDiscovery) {
	for _, found := range d.Emails {
		e := domain.NewEntity(domain.CategoryEmails, strings.ToLower(found.Value), src)
		e.Name = found.FullName()
		e.Context = found.Position
		out.Add(e)
	}

	if d.Organization != "" {
		e := domain.NewEntity(domain.CategoryBusinessInfo, d.Organization, src)
		e.Context = "organization"
		out.Add(e)
	}
	if d.Pattern != "" {
		e := domain.NewEntity(domain.CategoryBusinessInfo, d.Pattern, src)
		e.Context = "email pattern"
		out.Add(e)
	}

	if d.Email != "" && d.Status != "" {
		e := domain.NewEntity(domain.CategoryEmails, strings.ToLower(d.Email), src)
		e.Context = "verification: " + d.Status
		out.Add(e)
	}
}

// absorbBreaches convierte cada brecha en una entidad de leaks con fecha y
// clases de datos expuestas como contexto.
func (n *Normalizer) absorbBreaches(out *domain.CategorizedResult, src string, b *domain.BreachList) {
	for _, breach := range b.Breaches {
		value := breach.Title
		if value == "" {
			value = breach.Name
		}
		e := domain.NewEntity(domain.CategoryLeaks, value, src)
		e.Context = breachContext(breach)
		out.Add(e)
	}
}

// breachContext compone el contexto legible de una brecha.
func breachContext(b domain.Breach) string {
	parts := make([]string, 0, 3)
	if b.BreachDate != "" {
		parts = append(parts, "breached "+b.BreachDate)
	}
	if len(b.DataClasses) > 0 {
		parts = append(parts, "exposed: "+strings.Join(b.DataClasses, ", "))
	}
	if b.PwnCount > 0 {
		parts = append(parts, fmt.Sprintf("%d accounts", b.PwnCount))
	}
	return strings.Join(parts, "; ")
}

// absorbWebContent filtra las líneas promocionales del texto extraído,
// corre la extracción de entidades sobre el resto y conserva la página
// como resultado crudo.
func (n *Normalizer) absorbWebContent(out *domain.CategorizedResult, wc *domain.WebContent) {
	src := domain.SourceWebContent

	var kept []string
	for _, line := range strings.Split(wc.Text, "\n") {
		if strings.TrimSpace(line) == "" || extract.IsAdOrIrrelevant(line) {
			continue
		}
		kept = append(kept, line)
	}
	n.extractFromText(out, strings.Join(kept, "\n"), src)

	raw := domain.NewEntity(domain.CategoryRawResults, wc.URL, src)
	raw.Title = wc.Title
	raw.URL = wc.URL
	out.Add(raw)
}

// extractFromText corre los extractores heurísticos sobre un bloque de
// texto y agrega cada hallazgo con su procedencia.
func (n *Normalizer) extractFromText(out *domain.CategorizedResult, text, source string) {
	for _, email := range extract.Emails(text) {
		out.Add(domain.NewEntity(domain.CategoryEmails, email, source))
	}
	for _, phone := range extract.PhoneNumbers(text) {
		out.Add(domain.NewEntity(domain.CategoryPhoneNumbers, phone, source))
	}
	for _, link := range extract.SocialLinks(text) {
		out.Add(domain.NewEntity(domain.CategorySocialLinks, link, source))
	}
	for _, addr := range extract.Addresses(text) {
		out.Add(domain.NewEntity(domain.CategoryAddresses, addr, source))
	}
}
