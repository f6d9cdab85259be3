// internal/platform/validator/validator.go
package validator

import (
	"net"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Domain validators

var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// IsDomain verifica si un string es un dominio válido con al menos un punto
// y un TLD alfabético. Las IPs nunca se consideran dominios.
func IsDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	if !domainRegex.MatchString(domain) {
		return false
	}
	if net.ParseIP(domain) != nil {
		return false
	}
	return true
}

// IsRegistrableDomain verifica que el dominio tenga un sufijo público
// reconocido (evita clasificar "foo.bar" inventado como dominio real).
func IsRegistrableDomain(domain string) bool {
	if !IsDomain(domain) {
		return false
	}
	suffix, icann := publicsuffix.PublicSuffix(strings.ToLower(domain))
	return icann && suffix != domain
}

// RegistrableDomain retorna el dominio registrable (eTLD+1) de un host.
// Si no puede derivarse, retorna el host normalizado tal cual.
func RegistrableDomain(host string) string {
	host = NormalizeDomain(host)
	base, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return base
}

// NormalizeDomain normaliza un dominio a su forma canónica.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimSuffix(domain, ".")
	domain = strings.TrimPrefix(domain, "www.")
	return domain
}

// Email validators

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsEmail valida formato de email (RFC 5322 simplificado).
func IsEmail(email string) bool {
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// EmailDomain retorna la parte de dominio de un email, o "" si no es un email.
func EmailDomain(email string) string {
	if !IsEmail(email) {
		return ""
	}
	at := strings.LastIndex(email, "@")
	return strings.ToLower(email[at+1:])
}

// NormalizeEmail normaliza un email a su forma canónica.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Network validators

// IsIP verifica si un string es una dirección IP válida (v4 o v6).
func IsIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// IsIPv4 verifica si un string es una dirección IPv4 válida.
func IsIPv4(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.To4() != nil
}

// IsIPv6 verifica si un string es una dirección IPv6 válida.
func IsIPv6(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.To4() == nil
}

// NormalizeIP normaliza una IP a su forma canónica.
// Si la IP es inválida, retorna string vacío.
func NormalizeIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return ""
	}
	return parsed.String()
}

// Phone validators

var phoneDigits = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// IsPhone valida un número de teléfono tras remover espacios, guiones y
// paréntesis: prefijo + opcional y de 8 a 15 dígitos.
func IsPhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	return phoneDigits.MatchString(cleaned)
}

// NormalizePhone reduce un teléfono a su forma canónica: solo dígitos
// y un posible '+' inicial.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Username validators

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9._]{3,30}$`)

// IsUsername valida un handle: alfanumérico más '.' y '_', de 3 a 30 chars.
func IsUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// Misc

// SanitizeQuery remueve caracteres peligrosos del input del usuario
// antes de clasificarlo.
func SanitizeQuery(input string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '&', '\'', '"', ';':
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(sanitized)
}
