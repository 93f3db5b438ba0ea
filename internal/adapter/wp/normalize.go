package wp

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled expressions for HTML stripping.
var (
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag  = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	titleTag     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// StripHTML converts an HTML fragment to plain text: scripts, styles, and
// markup are removed, entities decoded, and whitespace collapsed to single
// spaces. Running it on already-clean text is a fixed point.
func StripHTML(s string) string {
	s = htmlComments.ReplaceAllString(s, " ")
	s = scriptTag.ReplaceAllString(s, " ")
	s = styleTag.ReplaceAllString(s, " ")
	s = noscriptTag.ReplaceAllString(s, " ")
	s = allTags.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	// &nbsp; decodes to U+00A0, which \s does not match.
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractTitle pulls the contents of the first <title> tag, cleaned.
func ExtractTitle(s string) string {
	matches := titleTag.FindStringSubmatch(s)
	if len(matches) < 2 {
		return ""
	}
	return StripHTML(matches[1])
}

// BuildText joins a title and body the way entries are indexed: title,
// blank line, body. Either part may be empty.
func BuildText(title, body string) string {
	return strings.TrimSpace(title + "\n\n" + body)
}
