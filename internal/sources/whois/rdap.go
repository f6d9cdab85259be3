// internal/sources/whois/rdap.go
package whois

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
)

// rdapDomain es la respuesta RDAP para un dominio.
type rdapDomain struct {
	LDHName     string           `json:"ldhName"`
	Status      []string         `json:"status"`
	Events      []rdapEvent      `json:"events"`
	Nameservers []rdapNameserver `json:"nameservers"`
	Entities    []rdapEntity     `json:"entities"`
	SecureDNS   *rdapSecureDNS   `json:"secureDNS"`
}

// rdapIP es la respuesta RDAP para una red IP.
type rdapIP struct {
	Name         string       `json:"name"`
	Handle       string       `json:"handle"`
	StartAddress string       `json:"startAddress"`
	EndAddress   string       `json:"endAddress"`
	Country      string       `json:"country"`
	CIDRs        []rdapCIDR   `json:"cidr0_cidrs"`
	Entities     []rdapEntity `json:"entities"`
}

type rdapEvent struct {
	Action string `json:"eventAction"`
	Date   string `json:"eventDate"`
}

type rdapNameserver struct {
	LDHName string `json:"ldhName"`
}

type rdapSecureDNS struct {
	DelegationSigned bool `json:"delegationSigned"`
}

type rdapCIDR struct {
	V4Prefix string `json:"v4prefix"`
	V6Prefix string `json:"v6prefix"`
	Length   int    `json:"length"`
}

// rdapEntity es un contacto RDAP. El vCard viene como array jCard sin
// esquema fijo, así que se parsea posicionalmente.
type rdapEntity struct {
	Roles      []string        `json:"roles"`
	VCardArray json.RawMessage `json:"vcardArray"`
	Entities   []rdapEntity    `json:"entities"`
}

// lookupRDAP consulta rdap.org y mapea la respuesta al registro común.
func (w *Whois) lookupRDAP(ctx context.Context, kind, value string) (*domain.WhoisRecord, error) {
	url := fmt.Sprintf("%s/%s/%s", w.rdapURL, kind, value)

	body, err := w.client.FetchJSON(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	if kind == "ip" {
		return parseRDAPIP(body, value)
	}
	return parseRDAPDomain(body)
}

// parseRDAPDomain mapea la respuesta RDAP de dominio al registro común.
func parseRDAPDomain(body []byte) (*domain.WhoisRecord, error) {
	var resp rdapDomain
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid rdap response: %w", err)
	}

	record := &domain.WhoisRecord{
		DomainName: strings.ToLower(resp.LDHName),
		Statuses:   resp.Status,
	}
	if resp.SecureDNS != nil {
		record.DNSSEC = resp.SecureDNS.DelegationSigned
	}

	for _, ev := range resp.Events {
		switch ev.Action {
		case "registration":
			record.CreationDate = ev.Date
		case "expiration":
			record.ExpirationDate = ev.Date
		case "last changed":
			record.UpdatedDate = ev.Date
		}
	}

	for _, ns := range resp.Nameservers {
		if ns.LDHName != "" {
			record.NameServers = append(record.NameServers, strings.ToLower(ns.LDHName))
		}
	}

	applyEntities(record, resp.Entities)
	return record, nil
}

// parseRDAPIP mapea la respuesta RDAP de red al registro común.
func parseRDAPIP(body []byte, ip string) (*domain.WhoisRecord, error) {
	var resp rdapIP
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid rdap response: %w", err)
	}

	record := &domain.WhoisRecord{
		IP:      ip,
		NetName: resp.Name,
		Country: resp.Country,
	}
	if resp.StartAddress != "" && resp.EndAddress != "" {
		record.NetRange = resp.StartAddress + " - " + resp.EndAddress
	}
	for _, c := range resp.CIDRs {
		prefix := c.V4Prefix
		if prefix == "" {
			prefix = c.V6Prefix
		}
		if prefix != "" {
			record.CIDR = fmt.Sprintf("%s/%d", prefix, c.Length)
			break
		}
	}

	applyEntities(record, resp.Entities)
	return record, nil
}

// applyEntities extrae contactos de las entidades RDAP, recursivamente:
// los registries suelen anidar el contacto registrant dentro de la entidad
// registrar.
func applyEntities(record *domain.WhoisRecord, entities []rdapEntity) {
	for _, entity := range entities {
		card := parseVCard(entity.VCardArray)

		for _, role := range entity.Roles {
			switch role {
			case "registrar":
				if record.Registrar == "" {
					record.Registrar = firstNonEmpty(card.fn, card.org)
				}
			case "registrant":
				if record.RegistrantName == "" {
					record.RegistrantName = card.fn
				}
				if record.RegistrantOrg == "" {
					record.RegistrantOrg = card.org
				}
				if record.RegistrantEmail == "" {
					record.RegistrantEmail = card.email
				}
				if record.RegistrantPhone == "" {
					record.RegistrantPhone = card.tel
				}
			}
		}

		if card.email != "" && !containsFold(record.Emails, card.email) {
			record.Emails = append(record.Emails, strings.ToLower(card.email))
		}
		if record.Organization == "" && card.org != "" {
			record.Organization = card.org
		}

		applyEntities(record, entity.Entities)
	}
}

// vcard son los campos de contacto que interesan de un jCard.
type vcard struct {
	fn    string
	org   string
	email string
	tel   string
}

// parseVCard extrae fn/org/email/tel de un jCard RDAP. El formato es
// ["vcard", [[name, params, type, value], ...]]; todo lo que no encaje se
// ignora en silencio.
func parseVCard(raw json.RawMessage) vcard {
	var card vcard
	if len(raw) == 0 {
		return card
	}

	var outer []json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil || len(outer) < 2 {
		return card
	}

	var props [][]interface{}
	if err := json.Unmarshal(outer[1], &props); err != nil {
		return card
	}

	for _, prop := range props {
		if len(prop) < 4 {
			continue
		}
		name, ok := prop[0].(string)
		if !ok {
			continue
		}
		value, ok := prop[3].(string)
		if !ok {
			continue
		}

		switch name {
		case "fn":
			card.fn = value
		case "org":
			card.org = value
		case "email":
			card.email = value
		case "tel":
			card.tel = strings.TrimPrefix(value, "tel:")
		}
	}
	return card
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
