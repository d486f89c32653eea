package chart

import "strings"

// collaborationDelimiters is the ordered list of tokens that mark featured or
// collaborating artists in a chart artist line. Scan order is significant:
// the first token found anywhere in the string wins, even if a later-listed
// token occurs earlier in the text.
var collaborationDelimiters = []string{
	"&",
	"feat.", "featuring", "Featuring", "FEATURING", "Feat.", "FEAT.",
	"ft.", "Ft.", "FT.",
	"/",
	"with", "WITH", "With",
	",",
	"And", "and",
}

// NormalizeArtist truncates a raw artist line to the primary artist.
//
// The delimiter list is scanned in order; at the first token present in the
// string, the text preceding its first occurrence is kept (trimmed) and
// scanning stops. Strings without any delimiter are returned trimmed.
func NormalizeArtist(artist string) string {
	for _, delim := range collaborationDelimiters {
		if idx := strings.Index(artist, delim); idx >= 0 {
			return strings.TrimSpace(artist[:idx])
		}
	}
	return strings.TrimSpace(artist)
}
