package record

import (
	"strings"

	"golang.org/x/net/html"
)

// Sanitize cleans a raw export artifact into a plain-text record: markup
// tags and script blocks are stripped, line endings are normalized to LF,
// runs of three or more blank lines collapse to two, and surrounding
// whitespace is trimmed.
//
// Sanitize is a pure function and is idempotent: applying it to its own
// output returns the output unchanged. Because stripping a tag can expose
// text that itself parses as markup, the cleaning pass runs to a fixed
// point. Each pass never lengthens the text, so the loop terminates.
func Sanitize(text string) string {
	out := sanitizePass(text)
	for {
		next := sanitizePass(out)
		if next == out {
			return out
		}
		out = next
	}
}

func sanitizePass(text string) string {
	text = stripMarkup(text)
	text = normalizeLineEndings(text)
	text = collapseBlankLines(text)
	return strings.TrimSpace(text)
}

// skippedElements are stripped together with their entire content, not
// just their tags. Everything else keeps its text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
}

// stripMarkup removes HTML tags from the text, dropping script-like
// elements wholesale and keeping the text content of everything else.
// Input with no markup comes back unchanged apart from entity decoding.
func stripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		// The parser recovers from almost anything; on a genuine failure
		// keep the text rather than lose the record.
		return text
	}

	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[strings.ToLower(n.Data)] {
			return
		}
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return builder.String()
}

func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// collapseBlankLines trims trailing whitespace from every line and caps
// runs of blank lines at two.
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
