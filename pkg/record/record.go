// Package record models the game record that pgnbridge carries between the
// two sites: a PGN-shaped text blob with a tag-pair header section followed
// by a move list. The package offers header extraction, sanitization of the
// raw export artifact, and structural validation.
package record

import (
	"regexp"
	"strings"
)

// Header holds the tag pairs pgnbridge cares about. Any other tags present
// in the record are preserved in the text but not modeled here.
type Header struct {
	Event   string
	Site    string
	Date    string
	Round   string
	White   string
	Black   string
	Result  string
	Variant string
}

// tagLineRe matches a single [Key "Value"] tag-pair line.
var tagLineRe = regexp.MustCompile(`^\s*\[(\w+)\s+"(.*)"\]\s*$`)

// ParseTags extracts all tag pairs from the header section of a record.
// Matching is line-by-line; the first non-tag, non-blank line ends the
// header section.
func ParseTags(text string) map[string]string {
	tags := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := tagLineRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		tags[m[1]] = m[2]
	}
	return tags
}

// ParseHeader extracts the modeled tag pairs from a record.
func ParseHeader(text string) Header {
	tags := ParseTags(text)
	return Header{
		Event:   tags["Event"],
		Site:    tags["Site"],
		Date:    tags["Date"],
		Round:   tags["Round"],
		White:   tags["White"],
		Black:   tags["Black"],
		Result:  tags["Result"],
		Variant: tags["Variant"],
	}
}

// Movetext returns the portion of the record after the header section.
func Movetext(text string) string {
	lines := strings.Split(text, "\n")
	i := 0
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if !tagLineRe.MatchString(lines[i]) {
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[i:], "\n"))
}

// String renders a short human-readable description of the matchup,
// used for logging.
func (h Header) String() string {
	white := h.White
	if white == "" {
		white = "?"
	}
	black := h.Black
	if black == "" {
		black = "?"
	}
	result := h.Result
	if result == "" {
		result = "*"
	}
	return white + " vs " + black + " (" + result + ")"
}
