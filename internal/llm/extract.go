package llm

import (
	"fmt"
	"regexp"
	"strings"
)

// Fallback patterns: any language tag, then no tag at all.
var (
	anyTagBlockRe = regexp.MustCompile("(?s)```[a-zA-Z]+\n(.*?)\n```")
	bareBlockRe   = regexp.MustCompile("(?s)```\n(.*?)\n```")
)

// ExtractCodeBlock pulls replacement code out of a free-form model response.
// It prefers a block tagged with the expected language, then falls back to
// any tagged block, then an untagged block. ok=false means no block was
// found; callers treat that as "no repair produced", never as an error.
func ExtractCodeBlock(response, lang string) (code string, ok bool) {
	tagged := regexp.MustCompile(fmt.Sprintf("(?s)```%s\n(.*?)\n```", regexp.QuoteMeta(lang)))
	if m := tagged.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := anyTagBlockRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := bareBlockRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

var migrationNotesRe = regexp.MustCompile(`(?s)## Migration Notes\n(.+)$`)

// extractMigrationNotes returns the trailing notes section, if present.
func extractMigrationNotes(response string) string {
	if m := migrationNotesRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
