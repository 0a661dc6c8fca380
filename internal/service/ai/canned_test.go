package ai

import (
	"strings"
	"testing"

	"github.com/sentinellabs/honeypot/backend/internal/model/persona"
)

func firstPick(n int) int { return 0 }

func TestCannedReplyBankFlavored(t *testing.T) {
	p := persona.Seed()[0]
	reply := CannedReply(p, "Your bank account will be blocked, verify now", firstPick)
	if !strings.Contains(strings.ToLower(reply), "pension") {
		t.Fatalf("expected bank-flavored stall, got %q", reply)
	}
}

func TestCannedReplyGreeting(t *testing.T) {
	p := persona.Seed()[0]
	reply := CannedReply(p, "Hi, how are you?", firstPick)
	if !strings.Contains(reply, "kettle") {
		t.Fatalf("expected greeting reply, got %q", reply)
	}
}

func TestCannedReplyDeterministicWithInjectedPicker(t *testing.T) {
	p := persona.Seed()[0]
	first := CannedReply(p, "you won a lottery prize", firstPick)
	for i := 0; i < 3; i++ {
		if again := CannedReply(p, "you won a lottery prize", firstPick); again != first {
			t.Fatal("injected picker must make selection reproducible")
		}
	}
}

func TestCannedReplyUnknownTextFallsToDefaults(t *testing.T) {
	p := persona.Seed()[0]
	reply := CannedReply(p, "asdf qwerty", firstPick)
	if reply != cannedDefaults[0] {
		t.Fatalf("expected default phrase, got %q", reply)
	}
}

func TestExtractJSONObjectBalanced(t *testing.T) {
	raw := "prose before {\"a\": {\"b\": \"}\"}} prose after {\"second\": 1}"
	got, err := extractJSONObject(raw)
	if err != nil {
		t.Fatalf("extract err: %v", err)
	}
	if got != `{"a": {"b": "}"}}` {
		t.Fatalf("unexpected extraction: %s", got)
	}
}

func TestExtractJSONObjectUnbalanced(t *testing.T) {
	if _, err := extractJSONObject(`{"a": 1`); err == nil {
		t.Fatal("expected error for unbalanced braces")
	}
	if _, err := extractJSONObject("no json here"); err == nil {
		t.Fatal("expected error for missing object")
	}
}
