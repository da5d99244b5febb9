// Package identity holds the one canonical way guest names and emails are
// turned into matching keys. Looser matching is layered on top of the
// canonical key and has to be asked for explicitly.
package identity

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PlaceholderDomain marks synthetic addresses given to guests without email.
const PlaceholderDomain = "wedding.invalid"

var (
	guestSuffix = regexp.MustCompile(`(\s+and|\s*&|\s*\+)\s*guest$`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
)

// NormalizeName lowercases, trims and collapses whitespace runs. Decorative
// suffixes such as "& Guest" are kept. Composition runs on both sides of
// lowercasing so that a second pass changes nothing.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(strings.ToLower(norm.NFC.String(name)))), " ")
}

// StripGuestSuffix normalizes name and drops a trailing "& guest",
// "and guest" or "+ guest".
func StripGuestSuffix(name string) string {
	return strings.TrimSpace(guestSuffix.ReplaceAllString(NormalizeName(name), ""))
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsPlaceholderEmail reports whether email should count as "no email".
func IsPlaceholderEmail(email string) bool {
	e := NormalizeEmail(email)
	return e == "" || !strings.Contains(e, "@") || strings.Contains(e, PlaceholderDomain)
}

// EmailKey returns the normalized email, or "" for empty and placeholder
// addresses.
func EmailKey(email string) string {
	if IsPlaceholderEmail(email) {
		return ""
	}
	return NormalizeEmail(email)
}

// PlaceholderEmail builds the synthetic address stored for a guest who
// answered without an email, e.g. no-email-jane-doe@wedding.invalid.
func PlaceholderEmail(name string) string {
	slug := slugSpaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = slugInvalid.ReplaceAllString(slug, "")
	return "no-email-" + slug + "@" + PlaceholderDomain
}

// Mode selects how strictly two names have to agree.
type Mode int

const (
	// ModeExact compares canonical keys.
	ModeExact Mode = iota
	// ModeSuffixInsensitive compares canonical keys after StripGuestSuffix.
	ModeSuffixInsensitive
	// ModeContains accepts a candidate whose canonical key contains the query.
	ModeContains
)

func (m Mode) String() string {
	switch m {
	case ModeSuffixInsensitive:
		return "suffix-insensitive"
	case ModeContains:
		return "contains"
	default:
		return "exact"
	}
}

// Match reports whether candidate matches query under m. An empty query
// never matches.
func (m Mode) Match(query, candidate string) bool {
	switch m {
	case ModeSuffixInsensitive:
		q := StripGuestSuffix(query)
		return q != "" && q == StripGuestSuffix(candidate)
	case ModeContains:
		q := NormalizeName(query)
		return q != "" && strings.Contains(NormalizeName(candidate), q)
	default:
		q := NormalizeName(query)
		return q != "" && q == NormalizeName(candidate)
	}
}
