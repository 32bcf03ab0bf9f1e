package validate

import (
	"encoding/json"
	"strings"
	"testing"
)

// markerPayload extracts and parses the single status marker in code.
func markerPayload(t *testing.T, code string) map[string]any {
	t.Helper()
	count := 0
	var raw string
	for _, line := range strings.Split(code, "\n") {
		if idx := strings.Index(line, MarkerPrefix); idx >= 0 {
			count++
			raw = strings.TrimSpace(line[idx+len(MarkerPrefix):])
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 marker line, got %d\ncode:\n%s", count, code)
	}
	payload := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unparseable marker payload %q: %v", raw, err)
	}
	return payload
}

func TestAnnotator_Merge_CreatesMarkerWithDefaults(t *testing.T) {
	a := &Annotator{}
	code := "import React from 'react';\n\nexport const Button = () => null;\n"

	out := a.Merge(code, map[string]any{"build": "pending"})

	payload := markerPayload(t, out)
	if payload["eslint"] != "pending" || payload["tsc"] != "pending" || payload["build"] != "pending" {
		t.Errorf("unexpected payload: %v", payload)
	}
	if !strings.HasPrefix(out, MarkerPrefix) {
		t.Errorf("expected marker as first line, got:\n%s", out)
	}
}

func TestAnnotator_Merge_InsertsAfterBlockComment(t *testing.T) {
	a := &Annotator{}
	code := "/* Copyright 2024\n * All rights reserved.\n */\nimport React from 'react';\n"

	out := a.Merge(code, nil)

	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[3], MarkerPrefix) {
		t.Errorf("expected marker after comment block, got:\n%s", out)
	}
	markerPayload(t, out)
}

func TestAnnotator_Merge_InsertsAfterLineComment(t *testing.T) {
	a := &Annotator{}
	code := "// @generated\nimport React from 'react';\n"

	out := a.Merge(code, nil)

	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[1], MarkerPrefix) {
		t.Errorf("expected marker on second line, got:\n%s", out)
	}
}

func TestAnnotator_Merge_UpdatesExistingKey(t *testing.T) {
	a := &Annotator{}
	code := MarkerPrefix + `{"eslint":"pending","tsc":"pending"}` + "\nexport {};\n"

	out := a.Merge(code, map[string]any{"eslint": "done"})

	payload := markerPayload(t, out)
	if payload["eslint"] != "done" {
		t.Errorf("expected eslint=done, got %v", payload["eslint"])
	}
	if payload["tsc"] != "pending" {
		t.Errorf("expected tsc untouched, got %v", payload["tsc"])
	}
}

func TestAnnotator_Merge_EmptyUpdateIsNoOp(t *testing.T) {
	a := &Annotator{}
	code := "export {};\n"

	first := a.Merge(code, map[string]any{"eslint": "done"})
	second := a.Merge(first, map[string]any{})

	if first != second {
		t.Errorf("empty merge changed code:\nbefore: %q\nafter:  %q", first, second)
	}
}

func TestAnnotator_Merge_MalformedPayloadResets(t *testing.T) {
	var log strings.Builder
	a := &Annotator{Log: &log}
	code := MarkerPrefix + "{not json at all\nexport {};\n"

	out := a.Merge(code, map[string]any{"eslint": "done"})

	payload := markerPayload(t, out)
	if payload["eslint"] != "done" {
		t.Errorf("expected eslint=done after reset, got %v", payload)
	}
	if log.Len() == 0 {
		t.Error("expected a logged notice for the malformed payload")
	}
}

func TestAnnotator_Merge_MetricsRecord(t *testing.T) {
	a := &Annotator{}
	code := MarkerPrefix + `{"eslint":"in progress"}` + "\nexport {};\n"

	out := a.Merge(code, map[string]any{"eslint": Metrics{Passed: 10, Failed: 2, Total: 12, SuccessRate: 83}})

	payload := markerPayload(t, out)
	m, ok := payload["eslint"].(map[string]any)
	if !ok {
		t.Fatalf("expected metrics object, got %T", payload["eslint"])
	}
	if m["failed"] != float64(2) || m["successRate"] != float64(83) {
		t.Errorf("unexpected metrics: %v", m)
	}
}

func TestAnnotator_Seed_OnlyAddsMissingKeys(t *testing.T) {
	a := &Annotator{}
	code := MarkerPrefix + `{"eslint":"done"}` + "\nexport {};\n"

	out := a.Seed(code, []string{"eslint", "build"})

	payload := markerPayload(t, out)
	if payload["eslint"] != "done" {
		t.Errorf("seed must not overwrite existing status, got %v", payload["eslint"])
	}
	if payload["build"] != "pending" {
		t.Errorf("expected build seeded pending, got %v", payload["build"])
	}
}
