package report

import (
	"reflect"
	"testing"

	"github.com/sentinellabs/honeypot/backend/internal/analysis/heuristic"
	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
	model "github.com/sentinellabs/honeypot/backend/internal/model/report"
)

func snapshotWith(confidences []float64, intel convo.Intelligence, messages []convo.Message) convo.Snapshot {
	var start int64
	if len(messages) > 0 {
		start = messages[0].Timestamp
	}
	return convo.Snapshot{
		SessionID:         "s1",
		Messages:          messages,
		ConfidenceHistory: confidences,
		Intelligence:      intel,
		StartTime:         start,
	}
}

func turnMessages(n int, stepMs int64) []convo.Message {
	msgs := make([]convo.Message, 0, n)
	for i := 0; i < n; i++ {
		sender := convo.SenderScammer
		if i%2 == 1 {
			sender = convo.SenderAgent
		}
		msgs = append(msgs, convo.Message{Sender: sender, Text: "m", Timestamp: 1000 + int64(i)*stepMs})
	}
	return msgs
}

func TestBuildEmptySessionIsSafe(t *testing.T) {
	b := NewBuilder(0.01, "")
	rep := b.Build(convo.Snapshot{SessionID: "empty"})

	if rep.ScamDetected {
		t.Fatal("empty session must not be flagged")
	}
	if rep.RiskLevel != model.RiskSafe {
		t.Fatalf("risk = %q, want %q", rep.RiskLevel, model.RiskSafe)
	}
	if rep.ScamCategory != model.CategoryBenign {
		t.Fatalf("category = %q, want %q", rep.ScamCategory, model.CategoryBenign)
	}
	if rep.ConfidenceScore != 0 || rep.ThreatScore != 0 {
		t.Fatalf("scores must be zero, got conf=%v threat=%v", rep.ConfidenceScore, rep.ThreatScore)
	}
	if rep.ExtractedIntelligence.BankAccounts == nil || rep.BehavioralIndicators.SocialEngineeringTactics == nil {
		t.Fatal("list fields must serialize as empty arrays, not null")
	}
}

func TestRiskLevelBoundaries(t *testing.T) {
	cases := []struct {
		confidence float64
		msgCount   int
		want       string
	}{
		{81, 2, model.RiskCritical},
		{80, 2, model.RiskHigh}, // exactly 80 is not CRITICAL
		{51, 2, model.RiskHigh},
		{50, 2, model.RiskModerate},
		{21, 2, model.RiskModerate},
		{20, 3, model.RiskLow},
		{20, 2, model.RiskSafe},
		{0, 5, model.RiskLow},
	}

	b := NewBuilder(0.01, "")
	for _, tc := range cases {
		snap := snapshotWith([]float64{tc.confidence}, convo.Intelligence{}, turnMessages(tc.msgCount, 1000))
		rep := b.Build(snap)
		if rep.RiskLevel != tc.want {
			t.Errorf("confidence %v msgs %d: risk = %q, want %q", tc.confidence, tc.msgCount, rep.RiskLevel, tc.want)
		}
	}
}

func TestScamCategoryPrecedence(t *testing.T) {
	cases := []struct {
		name  string
		intel convo.Intelligence
		want  string
	}{
		{
			"link beats bank account",
			convo.Intelligence{PhishingLinks: []string{"http://x"}, BankAccounts: []string{"1234567890"}},
			model.CategoryPhishing,
		},
		{
			"bank account beats job lure",
			convo.Intelligence{BankAccounts: []string{"1234567890"}, SocialEngineeringTactics: []string{heuristic.TacticJobLure}},
			model.CategoryFinancial,
		},
		{
			"upi alone is financial",
			convo.Intelligence{UPIIDs: []string{"x@upi"}},
			model.CategoryFinancial,
		},
		{
			"job lure",
			convo.Intelligence{SocialEngineeringTactics: []string{heuristic.TacticJobLure}},
			model.CategoryEmployment,
		},
		{
			"greed without indicators is lottery",
			convo.Intelligence{SocialEngineeringTactics: []string{heuristic.TacticGreed}},
			model.CategoryLottery,
		},
		{
			"fear is extortion",
			convo.Intelligence{SocialEngineeringTactics: []string{heuristic.TacticFear}},
			model.CategoryExtortion,
		},
		{
			"sympathy is social",
			convo.Intelligence{SocialEngineeringTactics: []string{heuristic.TacticSympathy}},
			model.CategorySocial,
		},
		{
			"nothing matches",
			convo.Intelligence{},
			model.CategoryUnclassified,
		},
	}

	b := NewBuilder(0.01, "")
	for _, tc := range cases {
		snap := snapshotWith([]float64{90}, tc.intel, turnMessages(2, 1000))
		rep := b.Build(snap)
		if rep.ScamCategory != tc.want {
			t.Errorf("%s: category = %q, want %q", tc.name, rep.ScamCategory, tc.want)
		}
	}
}

func TestCategoryIsBenignWhenNotFlagged(t *testing.T) {
	// Indicators present but latest confidence under threshold.
	b := NewBuilder(0.01, "")
	snap := snapshotWith([]float64{88, 40}, convo.Intelligence{PhishingLinks: []string{"http://x"}}, turnMessages(4, 1000))
	rep := b.Build(snap)
	if rep.ScamDetected {
		t.Fatal("flag must follow the latest confidence")
	}
	if rep.ScamCategory != model.CategoryBenign {
		t.Fatalf("category = %q, want %q", rep.ScamCategory, model.CategoryBenign)
	}
}

func TestQualityScoreFloorAndCap(t *testing.T) {
	b := NewBuilder(0.01, "")

	// Long exchange, zero hard indicators: floored.
	snap := snapshotWith([]float64{60}, convo.Intelligence{}, turnMessages(6, 1000))
	if got := b.Build(snap).IntelligenceMetrics.IntelligenceQualityScore; got != 0.10 {
		t.Fatalf("floor: quality = %v, want 0.10", got)
	}

	// Short exchange, zero indicators: no floor.
	snap = snapshotWith([]float64{60}, convo.Intelligence{}, turnMessages(4, 1000))
	if got := b.Build(snap).IntelligenceMetrics.IntelligenceQualityScore; got != 0 {
		t.Fatalf("short empty: quality = %v, want 0", got)
	}

	// 6 indicators would be 120 raw; capped at 100 then normalized.
	intel := convo.Intelligence{
		BankAccounts:  []string{"1", "2"},
		UPIIDs:        []string{"a@upi", "b@upi"},
		PhishingLinks: []string{"http://a", "http://b"},
	}
	snap = snapshotWith([]float64{90}, intel, turnMessages(4, 1000))
	if got := b.Build(snap).IntelligenceMetrics.IntelligenceQualityScore; got != 1.0 {
		t.Fatalf("cap: quality = %v, want 1.0", got)
	}
}

func TestThreatScoreCapped(t *testing.T) {
	intel := convo.Intelligence{
		PhishingLinks: []string{"a", "b", "c", "d", "e", "f"},
	}
	snap := snapshotWith([]float64{95}, intel, turnMessages(2, 1000))
	rep := NewBuilder(0.01, "").Build(snap)
	if rep.ThreatScore != 100 {
		t.Fatalf("threat = %v, want capped 100", rep.ThreatScore)
	}
}

func TestEngagementLevels(t *testing.T) {
	cases := []struct {
		msgs int
		want string
	}{
		{16, model.EngagementVeryHigh},
		{9, model.EngagementHigh},
		{5, model.EngagementModerate},
		{4, model.EngagementLow},
		{0, model.EngagementLow},
	}
	b := NewBuilder(0.01, "")
	for _, tc := range cases {
		rep := b.Build(snapshotWith([]float64{10}, convo.Intelligence{}, turnMessages(tc.msgs, 1000)))
		if rep.EngagementMetrics.EngagementLevel != tc.want {
			t.Errorf("%d messages: level = %q, want %q", tc.msgs, rep.EngagementMetrics.EngagementLevel, tc.want)
		}
	}
}

func TestTimingAndCostDerivations(t *testing.T) {
	// Four messages 2s apart: duration 6s, avg response 2s.
	snap := snapshotWith([]float64{60}, convo.Intelligence{}, turnMessages(4, 2000))
	rep := NewBuilder(0.5, "").Build(snap)

	if rep.EngagementMetrics.TotalConversationDuration != 6 {
		t.Fatalf("duration = %v, want 6", rep.EngagementMetrics.TotalConversationDuration)
	}
	if rep.EngagementMetrics.AvgResponseTimeSec != 2 {
		t.Fatalf("avg response = %v, want 2", rep.EngagementMetrics.AvgResponseTimeSec)
	}
	if rep.CostAnalysis.TimeWastedMinutes != 0.1 {
		t.Fatalf("time wasted = %v, want 0.1", rep.CostAnalysis.TimeWastedMinutes)
	}
	if rep.CostAnalysis.EstimatedScammerCostUSD != 3 {
		t.Fatalf("cost = %v, want 3", rep.CostAnalysis.EstimatedScammerCostUSD)
	}
}

func TestAvgResponseTimeIgnoresBackwardsTimestamps(t *testing.T) {
	// Healed histories can interleave client and server clocks; one
	// backwards gap counts as zero, the divisor stays at three gaps.
	msgs := []convo.Message{
		{Sender: convo.SenderScammer, Text: "m", Timestamp: 1000},
		{Sender: convo.SenderAgent, Text: "m", Timestamp: 4000},
		{Sender: convo.SenderScammer, Text: "m", Timestamp: 2000},
		{Sender: convo.SenderAgent, Text: "m", Timestamp: 5000},
	}
	rep := NewBuilder(0.01, "").Build(snapshotWith([]float64{60}, convo.Intelligence{}, msgs))

	got := rep.EngagementMetrics.AvgResponseTimeSec
	if got < 0 {
		t.Fatalf("average must never be negative, got %v", got)
	}
	if got != 2 {
		t.Fatalf("avg response = %v, want 2 (3s + 0 + 3s over 3 gaps)", got)
	}
}

func TestPersonaTypeDominantFamily(t *testing.T) {
	cases := []struct {
		name    string
		tactics []string
		expert  bool
		want    string
	}{
		{"urgency and fear dominate", []string{heuristic.TacticUrgency, heuristic.TacticFear, heuristic.TacticGreed}, false, personaAggressive},
		{"greed dominates", []string{heuristic.TacticGreed, heuristic.TacticBaiting}, false, personaPromoter},
		{"false expertise tips authority", []string{heuristic.TacticAuthority}, true, personaAuthoritative},
		{"nothing observed", nil, false, personaUnknown},
	}
	b := NewBuilder(0.01, "")
	for _, tc := range cases {
		intel := convo.Intelligence{SocialEngineeringTactics: tc.tactics, FalseExpertise: tc.expert}
		rep := b.Build(snapshotWith([]float64{90}, intel, turnMessages(2, 1000)))
		if rep.ScammerProfile.PersonaType != tc.want {
			t.Errorf("%s: persona = %q, want %q", tc.name, rep.ScammerProfile.PersonaType, tc.want)
		}
	}
}

func TestBuildIsPure(t *testing.T) {
	intel := convo.Intelligence{
		PhishingLinks:            []string{"http://x"},
		SocialEngineeringTactics: []string{heuristic.TacticUrgency},
	}
	snap := snapshotWith([]float64{88}, intel, turnMessages(6, 1500))

	b := NewBuilder(0.01, "")
	first := b.Build(snap)
	second := b.Build(snap)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical snapshots must produce identical reports")
	}
	if !reflect.DeepEqual(snap.Intelligence, intel) {
		t.Fatal("Build must not mutate the snapshot")
	}
}

func TestBehavioralFlags(t *testing.T) {
	intel := convo.Intelligence{
		SocialEngineeringTactics: []string{heuristic.TacticUrgency},
		SuspiciousKeywords:       []string{"otp", "verify"},
	}
	msgs := make([]convo.Message, 0, 12)
	for i := 0; i < 12; i++ {
		msgs = append(msgs, convo.Message{Sender: convo.SenderScammer, Text: "m", Timestamp: 1000 + int64(i)*500})
	}
	rep := NewBuilder(0.01, "").Build(snapshotWith([]float64{90}, intel, msgs))

	bi := rep.BehavioralIndicators
	if !bi.PressureLanguageDetected {
		t.Fatal("urgency tactic must set pressure language")
	}
	if !bi.OTPHarvestingAttempt {
		t.Fatal("otp keyword must set harvesting flag")
	}
	if !bi.PersistentEngagement {
		t.Fatal("twelve scammer messages must count as persistent")
	}
}
