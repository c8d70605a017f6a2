package slip

import (
	"strings"
	"unicode"
)

// maskedAccountMatches compares the visible trailing digits of an oracle
// masked account (e.g. "x-xxxx-xxxx8-20-6") with the merchant id. Fewer than
// four visible digits cannot confirm the receiver.
func maskedAccountMatches(masked, expected string) bool {
	visible := digitsOnly(masked)
	want := digitsOnly(expected)
	if len(visible) < maskedDigits || len(want) < maskedDigits {
		return false
	}
	return visible[len(visible)-maskedDigits:] == want[len(want)-maskedDigits:]
}

// receiverNameMatches accepts when either normalised name contains the
// first few characters of the other. An empty name on either side cannot
// confirm the receiver.
func receiverNameMatches(got, expected string) bool {
	g := normalizeName(got)
	e := normalizeName(expected)
	if g == "" || e == "" {
		return false
	}
	return strings.Contains(g, prefix(e, namePrefixLength)) ||
		strings.Contains(e, prefix(g, namePrefixLength))
}

func normalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(s))
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
