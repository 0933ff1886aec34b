package events

import (
	"regexp"
	"strings"
)

// Pre-compiled patterns for markup stripping and whitespace collapsing.
var (
	tagPattern = regexp.MustCompile(`<[^>]*>`)
	// Two or more newlines, possibly separated by spaces or tabs,
	// marks a paragraph break.
	paragraphPattern = regexp.MustCompile(`(?:[ \t\r]*\n){2,}[ \t\r]*`)
	spacePattern     = regexp.MustCompile(`[\s]+`)
)

// paragraphMark is an internal placeholder so paragraph breaks survive
// whitespace collapsing. Event descriptions never contain NUL bytes.
const paragraphMark = "\x00"

// Normalize strips markup tags and collapses whitespace in an event
// description. Runs of whitespace become a single space, except that a
// paragraph break (two or more consecutive newlines) is preserved as
// exactly one blank line. Leading and trailing whitespace is trimmed,
// and empty input yields an empty string. The function is idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := tagPattern.ReplaceAllString(raw, "")
	text = paragraphPattern.ReplaceAllString(text, paragraphMark)
	text = spacePattern.ReplaceAllString(text, " ")

	text = strings.Trim(text, " "+paragraphMark)
	text = strings.ReplaceAll(text, " "+paragraphMark+" ", "\n\n")
	text = strings.ReplaceAll(text, paragraphMark+" ", "\n\n")
	text = strings.ReplaceAll(text, " "+paragraphMark, "\n\n")
	text = strings.ReplaceAll(text, paragraphMark, "\n\n")

	return strings.TrimSpace(text)
}
