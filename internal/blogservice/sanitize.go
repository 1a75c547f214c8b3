package blogservice

import "regexp"

var scriptTagPattern = regexp.MustCompile(`(?i)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

// sanitizeText strips script tags from user-authored content before it is
// stored. The paragraphs end up on public pages verbatim.
func sanitizeText(text string) string {
	return scriptTagPattern.ReplaceAllString(text, "")
}

func sanitizeTextPtr(text *string) *string {
	if text == nil {
		return nil
	}
	clean := sanitizeText(*text)
	return &clean
}
