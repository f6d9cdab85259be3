// internal/core/domain/source_result.go
package domain

import (
	"time"
)

// Identificadores de fuentes conocidas.
const (
	SourceDuckDuckGo = "duckduckgo"
	SourceBing       = "bing"
	SourceWhois      = "whois"
	SourceIPInfo     = "ipinfo"
	SourceHunter     = "hunter"
	SourceHIBP       = "hibp"
	SourceWebContent = "webcontent"
)

// SourceKind clasifica fuentes por la forma de su payload.
type SourceKind string

const (
	// SourceKindSearch motores de búsqueda (scraping de HTML)
	SourceKindSearch SourceKind = "search"

	// SourceKindAPI APIs estructuradas con credencial
	SourceKindAPI SourceKind = "api"

	// SourceKindWhois lookup de registro de dominios/IPs
	SourceKindWhois SourceKind = "whois"

	// SourceKindWebContent extracción genérica de contenido web
	SourceKindWebContent SourceKind = "web_content"
)

// SourceStatus es el estado de una invocación de fuente.
type SourceStatus string

const (
	// StatusOK la fuente respondió; el payload puede estar vacío
	StatusOK SourceStatus = "ok"

	// StatusError fallo de transporte, parseo o credencial ausente
	StatusError SourceStatus = "error"

	// StatusNotFound la fuente no tiene datos para la consulta.
	// Se distingue explícitamente de un fallo.
	StatusNotFound SourceStatus = "not_found"
)

// SourceResult es el resultado de una invocación de adapter. Cada fuente
// produce exactamente uno por consulta; el fallo de una nunca invalida
// las demás.
type SourceResult struct {
	// SourceID nombre de la fuente que produjo el resultado
	SourceID string

	// Kind forma del payload
	Kind SourceKind

	// Status ok | error | not_found
	Status SourceStatus

	// Reason razón legible cuando Status == error
	Reason string

	// Payload datos estructurados; nil cuando Status != ok
	Payload Payload

	// FetchedAt momento de la invocación
	FetchedAt time.Time
}

// NewSourceResult crea un resultado exitoso con payload.
func NewSourceResult(sourceID string, kind SourceKind, payload Payload) *SourceResult {
	return &SourceResult{
		SourceID:  sourceID,
		Kind:      kind,
		Status:    StatusOK,
		Payload:   payload,
		FetchedAt: time.Now(),
	}
}

// NewSourceError crea un resultado de error con razón legible.
func NewSourceError(sourceID string, kind SourceKind, reason string) *SourceResult {
	return &SourceResult{
		SourceID:  sourceID,
		Kind:      kind,
		Status:    StatusError,
		Reason:    reason,
		FetchedAt: time.Now(),
	}
}

// NewSourceNotFound crea un resultado vacío-pero-exitoso: la fuente no
// tiene datos para esta consulta.
func NewSourceNotFound(sourceID string, kind SourceKind) *SourceResult {
	return &SourceResult{
		SourceID:  sourceID,
		Kind:      kind,
		Status:    StatusNotFound,
		FetchedAt: time.Now(),
	}
}

// OK indica si la invocación fue exitosa (con o sin datos).
func (r *SourceResult) OK() bool {
	return r.Status == StatusOK || r.Status == StatusNotFound
}

// PayloadKind etiqueta cada variante de payload.
type PayloadKind string

const (
	PayloadKindSearch     PayloadKind = "search_results"
	PayloadKindWhois      PayloadKind = "whois_record"
	PayloadKindIPInfo     PayloadKind = "ip_info"
	PayloadKindDiscovery  PayloadKind = "email_discovery"
	PayloadKindBreaches   PayloadKind = "breach_list"
	PayloadKindWebContent PayloadKind = "web_content"
)

// Payload es la variante etiquetada de datos que produce cada fuente.
// Cada fuente valida y tipa su respuesta en la frontera del adapter;
// el resto del pipeline nunca maneja mapas sin tipar.
type Payload interface {
	PayloadKind() PayloadKind
}

// SearchResults es el payload de los motores de búsqueda.
type SearchResults struct {
	Items []SearchItem `json:"items"`
}

func (SearchResults) PayloadKind() PayloadKind { return PayloadKindSearch }

// SearchItem es un resultado individual de un motor de búsqueda.
type SearchItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Engine  string `json:"engine"`
}

// WhoisRecord es el payload del lookup de registro (dominio o IP).
// El fallback de texto crudo rellena los mismos campos vía extracción
// heurística de líneas clave:valor.
type WhoisRecord struct {
	// Dominio
	DomainName     string   `json:"domain_name,omitempty"`
	Registrar      string   `json:"registrar,omitempty"`
	CreationDate   string   `json:"creation_date,omitempty"`
	ExpirationDate string   `json:"expiration_date,omitempty"`
	UpdatedDate    string   `json:"updated_date,omitempty"`
	NameServers    []string `json:"name_servers,omitempty"`
	Statuses       []string `json:"status,omitempty"`
	DNSSEC         bool     `json:"dnssec,omitempty"`

	// Contactos
	RegistrantName  string   `json:"registrant_name,omitempty"`
	RegistrantOrg   string   `json:"registrant_organization,omitempty"`
	RegistrantEmail string   `json:"registrant_email,omitempty"`
	RegistrantPhone string   `json:"registrant_phone,omitempty"`
	Emails          []string `json:"emails,omitempty"`

	// Red (lookup de IP)
	IP           string `json:"ip,omitempty"`
	Hostname     string `json:"hostname,omitempty"`
	NetName      string `json:"netname,omitempty"`
	NetRange     string `json:"netrange,omitempty"`
	CIDR         string `json:"cidr,omitempty"`
	Country      string `json:"country,omitempty"`
	Organization string `json:"organization,omitempty"`
}

func (WhoisRecord) PayloadKind() PayloadKind { return PayloadKindWhois }

// IsEmpty indica si el lookup no extrajo ningún campo útil.
func (w *WhoisRecord) IsEmpty() bool {
	return w.DomainName == "" && w.Registrar == "" && len(w.NameServers) == 0 &&
		w.IP == "" && w.NetName == "" && w.Organization == "" && w.Country == ""
}

// IPInfoRecord es el payload de la fuente de geolocalización de IPs.
type IPInfoRecord struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname,omitempty"`
	City     string `json:"city,omitempty"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`
	Loc      string `json:"loc,omitempty"`
	Org      string `json:"org,omitempty"`
	Postal   string `json:"postal,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

func (IPInfoRecord) PayloadKind() PayloadKind { return PayloadKindIPInfo }

// EmailDiscovery es el payload de la fuente de descubrimiento de emails.
type EmailDiscovery struct {
	// Búsqueda por dominio
	Domain       string            `json:"domain,omitempty"`
	Pattern      string            `json:"pattern,omitempty"`
	Organization string            `json:"organization,omitempty"`
	Emails       []DiscoveredEmail `json:"emails,omitempty"`

	// Verificación de email individual
	Email      string `json:"email,omitempty"`
	Status     string `json:"status,omitempty"`
	Disposable bool   `json:"disposable,omitempty"`
	Webmail    bool   `json:"webmail,omitempty"`
}

func (EmailDiscovery) PayloadKind() PayloadKind { return PayloadKindDiscovery }

// DiscoveredEmail es un email individual descubierto para un dominio.
type DiscoveredEmail struct {
	Value     string `json:"value"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Position  string `json:"position,omitempty"`
}

// FullName retorna el nombre completo asociado al email, si existe.
func (d DiscoveredEmail) FullName() string {
	switch {
	case d.FirstName != "" && d.LastName != "":
		return d.FirstName + " " + d.LastName
	case d.FirstName != "":
		return d.FirstName
	default:
		return d.LastName
	}
}

// BreachList es el payload de la fuente de brechas de datos.
type BreachList struct {
	Breaches []Breach `json:"breaches"`
}

func (BreachList) PayloadKind() PayloadKind { return PayloadKindBreaches }

// Breach es un registro de brecha individual.
type Breach struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Domain      string   `json:"domain,omitempty"`
	BreachDate  string   `json:"breach_date,omitempty"`
	PwnCount    int64    `json:"pwn_count,omitempty"`
	DataClasses []string `json:"data_classes,omitempty"`
	Description string   `json:"description,omitempty"`
}

// WebContent es el payload de la extracción genérica de contenido.
type WebContent struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

func (WebContent) PayloadKind() PayloadKind { return PayloadKindWebContent }

// AllResults agrupa los resultados de todas las fuentes para una consulta.
// El orden de Diagnostics sigue el orden de despacho, no el de llegada,
// para que la salida sea determinista.
type AllResults struct {
	Query *Query

	// SearchResults items por motor de búsqueda
	SearchResults map[string][]SearchItem

	// APIResults payloads estructurados por fuente API
	APIResults map[string]Payload

	// WhoisResult registro de whois/rdap, si aplica
	WhoisResult *WhoisRecord

	// WebContentResults texto extraído por URL
	WebContentResults map[string]*WebContent

	// WebContentOrder URLs en orden de despacho, para salida determinista
	WebContentOrder []string

	// Diagnostics un SourceResult por fuente despachada
	Diagnostics []*SourceResult
}

// NewAllResults crea el agregado vacío para una consulta.
func NewAllResults(q *Query) *AllResults {
	return &AllResults{
		Query:             q,
		SearchResults:     make(map[string][]SearchItem),
		APIResults:        make(map[string]Payload),
		WebContentResults: make(map[string]*WebContent),
		Diagnostics:       []*SourceResult{},
	}
}

// Absorb incorpora el resultado de una fuente al agregado según su variante.
// Solo lo llama el recolector del orchestrator, nunca de forma concurrente.
func (a *AllResults) Absorb(r *SourceResult) {
	if r == nil {
		return
	}
	a.Diagnostics = append(a.Diagnostics, r)

	if r.Status != StatusOK || r.Payload == nil {
		return
	}

	switch p := r.Payload.(type) {
	case *SearchResults:
		if len(p.Items) > 0 {
			a.SearchResults[r.SourceID] = p.Items
		}
	case *WhoisRecord:
		a.WhoisResult = p
	case *WebContent:
		if _, exists := a.WebContentResults[p.URL]; !exists {
			a.WebContentOrder = append(a.WebContentOrder, p.URL)
		}
		a.WebContentResults[p.URL] = p
	default:
		a.APIResults[r.SourceID] = r.Payload
	}
}

// FailureCount cuenta las fuentes que terminaron en error.
func (a *AllResults) FailureCount() int {
	n := 0
	for _, d := range a.Diagnostics {
		if d.Status == StatusError {
			n++
		}
	}
	return n
}
