package ai

import "testing"

type suggestionPayload struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

func TestDecodeJSONPlain(t *testing.T) {
	var out suggestionPayload
	err := DecodeJSON(`{"label": "buy", "reason": "momentum building"}`, &out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Label != "buy" || out.Reason != "momentum building" {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestDecodeJSONMarkdownFence(t *testing.T) {
	content := "Here is my analysis:\n```json\n{\"label\": \"hold\", \"reason\": \"range bound\"}\n```\nLet me know."
	var out suggestionPayload
	if err := DecodeJSON(content, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Label != "hold" {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestDecodeJSONRepairsTruncated(t *testing.T) {
	// Missing closing brace, the kind of truncation long generations produce.
	var out suggestionPayload
	if err := DecodeJSON(`{"label": "sell", "reason": "trend broken"`, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Label != "sell" {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestDecodeJSONSurroundingProse(t *testing.T) {
	content := `Based on the data I suggest {"label": "watch", "reason": "no clear signal"} for now.`
	var out suggestionPayload
	if err := DecodeJSON(content, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Label != "watch" || out.Reason != "no clear signal" {
		t.Fatalf("unexpected: %+v", out)
	}
}
