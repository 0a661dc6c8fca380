package heuristic

import "testing"

func TestClassifyUrgentBankMessage(t *testing.T) {
	analysis := Classify("URGENT: Your HDFC account is blocked. Click http://bit.ly/verify-hdfc")
	if analysis.ConfidenceScore != 88 {
		t.Fatalf("expected urgency band 88, got %v", analysis.ConfidenceScore)
	}
	if !analysis.ScamDetected {
		t.Fatal("expected scam detected")
	}

	tactics := analysis.Intelligence.SocialEngineeringTactics
	if !contains(tactics, TacticUrgency) || !contains(tactics, TacticGreed) {
		t.Fatalf("expected urgency and greed tactics, got %v", tactics)
	}
}

func TestClassifyBandPriority(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"act now or face arrest", 88},
		{"you won a lottery prize, claim your cashback", 75},
		{"your icici account needs attention", 75},
		{"we detected a virus, install anydesk for remote access", 65},
		{"hello, how are you doing today", 45},
	}

	for _, tc := range cases {
		got := Classify(tc.text).ConfidenceScore
		if got != tc.want {
			t.Fatalf("Classify(%q) score = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestClassifyNeverExtractsIndicators(t *testing.T) {
	analysis := Classify("pay to fraud@upi, call 9876543210, visit http://scam.example")
	intel := analysis.Intelligence
	if intel.IndicatorCount() != 0 {
		t.Fatalf("heuristic mode must not extract indicators, got %d", intel.IndicatorCount())
	}
}

func TestClassifyDeterministic(t *testing.T) {
	const text = "urgent kyc update needed for your bank account"
	first := Classify(text)
	for i := 0; i < 5; i++ {
		again := Classify(text)
		if again.ConfidenceScore != first.ConfidenceScore || again.ScamDetected != first.ScamDetected {
			t.Fatal("classification is not deterministic")
		}
	}
}

func TestClassifyThresholdBoundary(t *testing.T) {
	// The no-match band sits below the detection threshold.
	analysis := Classify("see you at dinner tonight")
	if analysis.ScamDetected {
		t.Fatal("benign text must not be flagged")
	}
	if analysis.ConfidenceScore != 45 {
		t.Fatalf("expected base band 45, got %v", analysis.ConfidenceScore)
	}
}

func TestClassifyTechImpersonationSetsFalseExpertise(t *testing.T) {
	analysis := Classify("this is microsoft support, your computer is infected")
	if !analysis.Intelligence.FalseExpertise {
		t.Fatal("expected falseExpertise for tech impersonation")
	}
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
