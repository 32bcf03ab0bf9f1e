package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// MarkerPrefix introduces the status line embedded in migrated code. The
// marker survives into the committed file as a migration provenance record.
const MarkerPrefix = "// MIGRATION STATUS: "

// Metrics is the per-step progress record stored under a step's marker key
// once its checker has run. Total is a rough estimate, not a rule count.
type Metrics struct {
	Passed      int `json:"passed"`
	Failed      int `json:"failed"`
	Total       int `json:"total"`
	Skipped     int `json:"skipped"`
	SuccessRate int `json:"successRate"`
}

// Annotator maintains the status marker inside source text. All operations
// are best-effort: a malformed payload is logged and treated as empty, never
// surfaced as an error.
type Annotator struct {
	Log io.Writer // optional, for malformed-payload notices
}

// Merge applies updates to the marker payload and returns the updated code.
// An existing marker is parsed, shallow-merged, and rewritten in place; when
// none exists a fresh one is inserted after any leading comment block, with
// eslint and tsc defaulting to pending. Exactly one marker line exists
// afterwards.
func (a *Annotator) Merge(code string, updates map[string]any) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		idx := strings.Index(line, MarkerPrefix)
		if idx < 0 {
			continue
		}

		payload := map[string]any{}
		raw := strings.TrimSpace(line[idx+len(MarkerPrefix):])
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			a.logf("status marker payload unparseable, resetting: %v", err)
			payload = map[string]any{}
		}
		for k, v := range updates {
			payload[k] = v
		}
		lines[i] = line[:idx] + MarkerPrefix + mustMarshal(payload)
		return strings.Join(lines, "\n")
	}

	payload := map[string]any{
		string(StepLint):      "pending",
		string(StepTypeCheck): "pending",
	}
	for k, v := range updates {
		payload[k] = v
	}
	return insertMarker(code, MarkerPrefix+mustMarshal(payload))
}

// Seed adds pending entries for the given keys without touching keys that are
// already present.
func (a *Annotator) Seed(code string, keys []string) string {
	existing := a.parse(code)
	updates := map[string]any{}
	for _, k := range keys {
		if _, ok := existing[k]; !ok {
			updates[k] = "pending"
		}
	}
	if len(updates) == 0 && len(existing) > 0 {
		return code
	}
	return a.Merge(code, updates)
}

// parse returns the current marker payload, or an empty map when the marker
// is absent or malformed.
func (a *Annotator) parse(code string) map[string]any {
	payload := map[string]any{}
	for _, line := range strings.Split(code, "\n") {
		idx := strings.Index(line, MarkerPrefix)
		if idx < 0 {
			continue
		}
		raw := strings.TrimSpace(line[idx+len(MarkerPrefix):])
		_ = json.Unmarshal([]byte(raw), &payload)
		break
	}
	return payload
}

func (a *Annotator) logf(format string, args ...any) {
	if a.Log != nil {
		fmt.Fprintf(a.Log, format+"\n", args...)
	}
}

// mustMarshal serializes a marker payload. Payloads only ever hold strings
// and Metrics records, which cannot fail to marshal.
func mustMarshal(payload map[string]any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// insertMarker places the marker line after a leading line comment or block
// comment, or at the top of the file.
func insertMarker(code, marker string) string {
	trimmed := strings.TrimLeft(code, " \t\n")
	switch {
	case strings.HasPrefix(trimmed, "/*"):
		if end := strings.Index(code, "*/"); end >= 0 {
			end += 2
			return code[:end] + "\n" + marker + code[end:]
		}
	case strings.HasPrefix(trimmed, "//"):
		// Indexes the untrimmed code on purpose: only the first physical line
		// is skipped, even for multi-line // headers or a leading blank line.
		if end := strings.Index(code, "\n"); end >= 0 {
			return code[:end] + "\n" + marker + code[end:]
		}
	}
	return marker + "\n" + code
}
