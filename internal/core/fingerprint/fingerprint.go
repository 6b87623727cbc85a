// Package fingerprint derives stable content digests for deduplication.
//
// Two submissions that differ only in cosmetic whitespace (trailing spaces,
// leading or trailing blank lines) must hash identically; any semantic
// difference must produce a different digest.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize canonicalizes (language, code) before hashing.
// The language label is lowercased and trimmed. Each code line loses its
// trailing whitespace, outer blank lines are stripped, and the result is
// joined with single newlines under a "lang\n" header.
func Normalize(language, code string) string {
	lang := strings.ToLower(strings.TrimSpace(language))

	lines := strings.Split(strings.TrimSpace(code), "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t\r\v\f")
	}
	return lang + "\n" + strings.Join(lines, "\n")
}

// Hash returns the lowercase hex sha256 of the normalized (language, code)
func Hash(language, code string) string {
	sum := sha256.Sum256([]byte(Normalize(language, code)))
	return hex.EncodeToString(sum[:])
}
