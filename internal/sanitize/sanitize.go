// Package sanitize implements the multi-stage cleanup pipeline applied to
// untrusted free-text input before it is persisted or echoed back.
//
// The pipeline is pure and side-effect-free. Stage order matters: each stage
// operates on the output of the previous one, so reordering changes which
// injection payloads survive.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	controlChars        = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	tagDelimiters       = regexp.MustCompile(`[<>]`)
	quotesAndSeparators = regexp.MustCompile("[\"'`;%(){}\\[\\]|]")
	sqlMeta             = regexp.MustCompile(`--|[#*\\/]`)
	reservedSQLKeywords = regexp.MustCompile(`(?i)\b(SELECT|INSERT|DELETE|UPDATE|DROP|ALTER|EXEC|UNION|CREATE)\b`)
	multiWhitespace     = regexp.MustCompile(`\s{2,}`)
	emailPattern        = regexp.MustCompile(`(?i)^[A-Z0-9._%+\-]+@[A-Z0-9.\-]+\.[A-Z]{2,}$`)
	suspiciousEmailTok  = regexp.MustCompile(`(?i)script|onerror|alert|confirm|onload`)
)

// Sanitize canonicalizes s and strips adversarial tokens from it.
//
// Stages, in order: NFKC normalization, control characters, angle brackets,
// quote/separator characters, SQL comment/meta sequences, reserved SQL
// keywords (whole word, case-insensitive), NFKC again, whitespace collapse
// and trim.
//
// Malformed input (invalid UTF-8) and blank input both sanitize to the empty
// string. Sanitize is idempotent: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if !utf8.ValidString(s) {
		return ""
	}

	out := norm.NFKC.String(s)
	out = controlChars.ReplaceAllString(out, "")
	out = tagDelimiters.ReplaceAllString(out, "")
	out = quotesAndSeparators.ReplaceAllString(out, "")
	out = replaceToFixpoint(sqlMeta, out)
	out = replaceToFixpoint(reservedSQLKeywords, out)
	// Removing a character can leave a combining mark next to a new base
	// letter; normalize again so the output is in composed form.
	out = norm.NFKC.String(out)
	out = multiWhitespace.ReplaceAllString(out, " ")

	return strings.TrimSpace(out)
}

// SanitizeEmail sanitizes s, strips remaining spaces, and reports whether the
// result is a safe, well-formed address. The best-effort sanitized value is
// returned even when invalid so callers can echo a diagnostic; it must not be
// stored unless valid is true.
func SanitizeEmail(s string) (value string, valid bool) {
	value = strings.ReplaceAll(Sanitize(s), " ", "")
	valid = value != "" &&
		emailPattern.MatchString(value) &&
		!suspiciousEmailTok.MatchString(value)
	return value, valid
}

// replaceToFixpoint removes matches of re repeatedly until no new ones appear.
// A single pass is not enough: deleting a match can splice its neighbours into
// a fresh token (e.g. "-/-" becomes "--" once the slash is gone).
func replaceToFixpoint(re *regexp.Regexp, s string) string {
	for {
		next := re.ReplaceAllString(s, "")
		if next == s {
			return next
		}
		s = next
	}
}
