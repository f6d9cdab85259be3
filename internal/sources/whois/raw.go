// internal/sources/whois/raw.go
package whois

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
)

// ianaServer es el punto de entrada para descubrir el servidor WHOIS
// autoritativo de un TLD; arinServer cubre los lookups de IP.
const (
	ianaServer = "whois.iana.org"
	arinServer = "whois.arin.net"
	whoisPort  = "43"
)

// lookupRaw resuelve el registro por el protocolo WHOIS clásico: un query
// de texto plano por TCP 43 y una respuesta de líneas clave: valor que se
// mapea heurísticamente al registro común.
func (w *Whois) lookupRaw(ctx context.Context, kind, value string) (*domain.WhoisRecord, error) {
	var server string
	var query string

	switch kind {
	case "ip":
		server = arinServer
		// El prefijo "n" pide a ARIN una respuesta de red, no un índice.
		query = "n " + value
	default:
		base, err := publicsuffix.EffectiveTLDPlusOne(value)
		if err == nil {
			value = base
		}
		server, err = w.referralServer(ctx, value)
		if err != nil {
			return nil, err
		}
		query = value
	}

	response, err := w.queryServer(ctx, server, query)
	if err != nil {
		return nil, err
	}

	record := parseRawResponse(response)
	if kind == "ip" {
		record.IP = value
	} else if record.DomainName == "" {
		record.DomainName = value
	}
	return record, nil
}

// referralServer pregunta a IANA por el servidor autoritativo del TLD.
func (w *Whois) referralServer(ctx context.Context, domainName string) (string, error) {
	tld := domainName
	if idx := strings.LastIndex(domainName, "."); idx >= 0 {
		tld = domainName[idx+1:]
	}

	response, err := w.queryServer(ctx, ianaServer, tld)
	if err != nil {
		return "", fmt.Errorf("iana referral failed: %w", err)
	}

	for _, line := range strings.Split(response, "\n") {
		key, val, ok := splitField(line)
		if ok && strings.EqualFold(key, "refer") {
			return val, nil
		}
	}
	return "", fmt.Errorf("no whois referral for tld %q", tld)
}

// queryServer ejecuta un round-trip WHOIS contra un servidor.
func (w *Whois) queryServer(ctx context.Context, server, query string) (string, error) {
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(server, whoisPort))
	if err != nil {
		return "", fmt.Errorf("whois dial %s: %w", server, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(15 * time.Second))
	}

	if _, err := fmt.Fprintf(conn, "%s\r\n", query); err != nil {
		return "", fmt.Errorf("whois write: %w", err)
	}

	var b strings.Builder
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("whois read: %w", err)
	}
	return b.String(), nil
}

// rawFieldSetters mapea claves WHOIS conocidas (en minúsculas) al campo del
// registro. Las variantes de nombre entre registries se colapsan aquí.
var rawFieldSetters = map[string]func(*domain.WhoisRecord, string){
	"domain name":     func(r *domain.WhoisRecord, v string) { r.DomainName = strings.ToLower(v) },
	"domain":          func(r *domain.WhoisRecord, v string) { r.DomainName = strings.ToLower(v) },
	"registrar":       func(r *domain.WhoisRecord, v string) { r.Registrar = v },
	"creation date":   func(r *domain.WhoisRecord, v string) { r.CreationDate = v },
	"created":         func(r *domain.WhoisRecord, v string) { r.CreationDate = v },
	"registered on":   func(r *domain.WhoisRecord, v string) { r.CreationDate = v },
	"expiration date": func(r *domain.WhoisRecord, v string) { r.ExpirationDate = v },
	"registry expiry date": func(r *domain.WhoisRecord, v string) {
		r.ExpirationDate = v
	},
	"expiry date":  func(r *domain.WhoisRecord, v string) { r.ExpirationDate = v },
	"updated date": func(r *domain.WhoisRecord, v string) { r.UpdatedDate = v },
	"last-update":  func(r *domain.WhoisRecord, v string) { r.UpdatedDate = v },
	"registrant name": func(r *domain.WhoisRecord, v string) {
		r.RegistrantName = v
	},
	"registrant organization": func(r *domain.WhoisRecord, v string) {
		r.RegistrantOrg = v
	},
	"registrant email": func(r *domain.WhoisRecord, v string) {
		r.RegistrantEmail = strings.ToLower(v)
	},
	"registrant phone": func(r *domain.WhoisRecord, v string) {
		r.RegistrantPhone = v
	},

	// Campos de red (ARIN y afines)
	"netname":  func(r *domain.WhoisRecord, v string) { r.NetName = v },
	"netrange": func(r *domain.WhoisRecord, v string) { r.NetRange = v },
	"inetnum":  func(r *domain.WhoisRecord, v string) { r.NetRange = v },
	"cidr":     func(r *domain.WhoisRecord, v string) { r.CIDR = v },
	"country":  func(r *domain.WhoisRecord, v string) { r.Country = v },
	"org-name": func(r *domain.WhoisRecord, v string) { r.Organization = v },
	"orgname":  func(r *domain.WhoisRecord, v string) { r.Organization = v },
	"organization": func(r *domain.WhoisRecord, v string) {
		r.Organization = v
	},
}

// parseRawResponse mapea una respuesta WHOIS de texto plano al registro
// común. Las claves se comparan sin distinguir mayúsculas; los name servers
// se acumulan porque aparecen en líneas repetidas.
func parseRawResponse(response string) *domain.WhoisRecord {
	record := &domain.WhoisRecord{}

	for _, line := range strings.Split(response, "\n") {
		key, value, ok := splitField(line)
		if !ok {
			continue
		}
		lower := strings.ToLower(key)

		if lower == "name server" || lower == "nserver" || lower == "nameserver" {
			ns := strings.ToLower(strings.Fields(value)[0])
			if !containsFold(record.NameServers, ns) {
				record.NameServers = append(record.NameServers, ns)
			}
			continue
		}
		if lower == "domain status" || lower == "status" {
			// El valor suele traer la URL de ICANN detrás del estado.
			status := strings.Fields(value)[0]
			if !containsFold(record.Statuses, status) {
				record.Statuses = append(record.Statuses, status)
			}
			continue
		}

		if setter, known := rawFieldSetters[lower]; known {
			setter(record, value)
		}
	}

	return record
}

// splitField separa una línea "clave: valor", descartando comentarios y
// líneas sin valor.
func splitField(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}

	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}
