package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultPlayerTokens are the zero-based dash-separated positions of the two
// player ids in a league file name such as
// "gen9ou-2024-03-01-alice-bob.html".
var DefaultPlayerTokens = [2]int{4, 5}

// PlayerIDsFromFilename reads the two player ids from a file name. The
// extension is stripped before splitting.
func PlayerIDsFromFilename(path string, tokens [2]int) (string, string, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(base, "-")
	for _, t := range tokens {
		if t < 0 || t >= len(parts) {
			return "", "", fmt.Errorf("file name %q has %d tokens, need index %d", base, len(parts), t)
		}
	}
	return parts[tokens[0]], parts[tokens[1]], nil
}

// NormalizeName lower-cases a player name and drops every rune that is not
// a letter or digit, so "☆Player_One", "player one" and "PlayerOne" share a key.
func NormalizeName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}
