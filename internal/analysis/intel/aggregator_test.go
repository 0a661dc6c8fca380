package intel

import (
	"reflect"
	"testing"

	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
)

func TestMergeUnionPreservesFirstSeenOrder(t *testing.T) {
	session := convo.Intelligence{PhishingLinks: []string{"http://a.example", "http://b.example"}}
	turn := convo.Intelligence{PhishingLinks: []string{"http://b.example", "http://c.example"}}

	merged := Merge(session, turn)
	want := []string{"http://a.example", "http://b.example", "http://c.example"}
	if !reflect.DeepEqual(merged.PhishingLinks, want) {
		t.Fatalf("got %v, want %v", merged.PhishingLinks, want)
	}
}

func TestMergeIdempotent(t *testing.T) {
	turn := convo.Intelligence{
		BankAccounts:  []string{"HDFC", "1234567890123"},
		UPIIDs:        []string{"fraud@upi"},
		PhishingLinks: []string{"http://scam.example"},
		Confidence:    88,
	}

	once := Merge(convo.Intelligence{}, turn)
	twice := Merge(once, turn)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("repeated merge changed result:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergePhoneFormattingVariantsCollapse(t *testing.T) {
	session := convo.Intelligence{PhoneNumbers: []string{"9876543210"}}
	turn := convo.Intelligence{PhoneNumbers: []string{"+91 98765 43210"}}

	merged := Merge(session, turn)
	if len(merged.PhoneNumbers) != 1 {
		t.Fatalf("expected formatting variants to collapse, got %v", merged.PhoneNumbers)
	}
}

func TestMergeConfidenceTakesLatest(t *testing.T) {
	session := convo.Intelligence{Confidence: 88}
	merged := Merge(session, convo.Intelligence{Confidence: 30})
	if merged.Confidence != 30 {
		t.Fatalf("confidence must be the incoming turn's value, got %v", merged.Confidence)
	}
}

func TestMergeFalseExpertiseSticks(t *testing.T) {
	session := convo.Intelligence{FalseExpertise: true}
	merged := Merge(session, convo.Intelligence{FalseExpertise: false})
	if !merged.FalseExpertise {
		t.Fatal("falseExpertise must OR across turns")
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	session := convo.Intelligence{UPIIDs: []string{"a@upi"}}
	_ = Merge(session, convo.Intelligence{UPIIDs: []string{"b@upi"}})
	if len(session.UPIIDs) != 1 {
		t.Fatalf("input session mutated: %v", session.UPIIDs)
	}
}
