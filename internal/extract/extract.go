// Package extract implementa la extracción heurística de entidades
// (emails, teléfonos, enlaces sociales, direcciones) desde texto libre.
// Todas las funciones son puras, sin I/O, y toleran falsos positivos:
// la extracción es best-effort por contrato.
package extract

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Emails extrae direcciones de email del texto, deduplicadas dentro del
// bloque y en orden de primera aparición.
func Emails(text string) []string {
	matches := emailPattern.FindAllString(text, -1)
	return dedupe(matches, strings.ToLower)
}

// Patrones de teléfono: formato internacional, área entre paréntesis y
// formato con guiones. Heurísticos a sabiendas; ver tests para los casos
// límite conocidos.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+\d{1,3}\s?[\(\)\-\d\s]{8,}`), // +1 123-456-7890
	regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-\s]?\d{4}`), // (123) 456-7890
	regexp.MustCompile(`\d{3}[-\s]?\d{3}[-\s]?\d{4}`),  // 123-456-7890
}

// PhoneNumbers extrae números de teléfono en varios formatos y los
// normaliza a su forma canónica (solo dígitos y '+' inicial) antes de
// deduplicar.
func PhoneNumbers(text string) []string {
	var matches []string
	for _, pattern := range phonePatterns {
		matches = append(matches, pattern.FindAllString(text, -1)...)
	}
	return dedupe(matches, CanonicalPhone)
}

// CanonicalPhone reduce un match de teléfono a dígitos y un posible '+'
// inicial.
func CanonicalPhone(raw string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// socialDomains es la lista cerrada de plataformas reconocidas.
var socialDomains = []string{
	"facebook.com", "twitter.com", "linkedin.com", "instagram.com",
	"github.com", "pinterest.com", "youtube.com", "tiktok.com",
	"reddit.com", "tumblr.com", "snapchat.com", "quora.com",
	"medium.com", "flickr.com", "vimeo.com", "soundcloud.com",
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'()]+`)
var urlTrailingPunct = regexp.MustCompile(`[.?!,]+$`)

// SocialLinks extrae URLs de redes sociales: solo URLs cuyo host coincide
// con la lista cerrada de plataformas.
func SocialLinks(text string) []string {
	urls := urlPattern.FindAllString(text, -1)

	var social []string
	for _, u := range urls {
		u = urlTrailingPunct.ReplaceAllString(u, "")
		lower := strings.ToLower(u)
		for _, d := range socialDomains {
			if strings.Contains(lower, d) {
				social = append(social, u)
				break
			}
		}
	}
	return dedupe(social, strings.ToLower)
}

// Indicadores de dirección postal: sufijo de calle, código ZIP y
// unidad/suite. Línea que coincide con cualquiera es candidata.
var addressIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\s+[A-Za-z0-9\s,]+(?:Road|Rd|Street|St|Avenue|Ave|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Plaza|Plz|Square|Sq)\b`),
	regexp.MustCompile(`\b[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`),
	regexp.MustCompile(`(?i)\b(?:Suite|Apt|Apartment|Unit)\s+[A-Za-z0-9\-]+\b`),
}

// Addresses extrae líneas candidatas a dirección postal, tal cual aparecen
// en el texto. Alta tolerancia a falsos positivos por diseño del contrato.
func Addresses(text string) []string {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, pattern := range addressIndicators {
			if pattern.MatchString(line) {
				candidates = append(candidates, line)
				break
			}
		}
	}
	return dedupe(candidates, func(s string) string { return s })
}

// Indicadores de contenido promocional o irrelevante.
var adIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:ad|advertisement|sponsor)\b`),
	regexp.MustCompile(`(?i)\b(?:click here|sign up|subscribe|free trial)\b`),
	regexp.MustCompile(`(?i)\b(?:terms of service|privacy policy|cookie policy)\b`),
	regexp.MustCompile(`(?i)\b(?:all rights reserved|copyright)\b`),
}

// IsAdOrIrrelevant indica si un bloque de texto es probablemente publicidad
// o contenido irrelevante. Los bloques marcados se excluyen antes de correr
// la extracción de entidades sobre ellos.
func IsAdOrIrrelevant(text string) bool {
	for _, pattern := range adIndicators {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// dedupe elimina duplicados preservando el orden de primera aparición.
// La clave de comparación se deriva con keyFn; el valor emitido es el
// canónico (el resultado de keyFn sobre el primer match).
func dedupe(items []string, keyFn func(string) string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := keyFn(item)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
