package convo

// Intelligence holds the structured indicators pulled out of scammer text.
// The same shape serves per-turn extraction and the session-level rollup;
// how the two combine is defined by the intel aggregator, not here.
type Intelligence struct {
	BankAccounts             []string `json:"bankAccounts"`
	UPIIDs                   []string `json:"upiIds"`
	PhishingLinks            []string `json:"phishingLinks"`
	PhoneNumbers             []string `json:"phoneNumbers"`
	SuspiciousKeywords       []string `json:"suspiciousKeywords"`
	SocialEngineeringTactics []string `json:"socialEngineeringTactics"`
	FalseExpertise           bool     `json:"falseExpertise"`
	Confidence               float64  `json:"confidence"` // 0..100, latest turn
}

// Clone returns a deep copy so snapshots never alias live session state.
func (i Intelligence) Clone() Intelligence {
	out := i
	out.BankAccounts = append([]string(nil), i.BankAccounts...)
	out.UPIIDs = append([]string(nil), i.UPIIDs...)
	out.PhishingLinks = append([]string(nil), i.PhishingLinks...)
	out.PhoneNumbers = append([]string(nil), i.PhoneNumbers...)
	out.SuspiciousKeywords = append([]string(nil), i.SuspiciousKeywords...)
	out.SocialEngineeringTactics = append([]string(nil), i.SocialEngineeringTactics...)
	return out
}

// IndicatorCount sums the distinct hard indicators (bank, UPI, link, phone).
// Keywords and tactics are context, not indicators.
func (i Intelligence) IndicatorCount() int {
	return len(i.BankAccounts) + len(i.UPIIDs) + len(i.PhishingLinks) + len(i.PhoneNumbers)
}

// Analysis is the detector's verdict for one inbound message.
type Analysis struct {
	ScamDetected    bool         `json:"scamDetected"`
	ConfidenceScore float64      `json:"confidenceScore"` // 0..100
	AgentNotes      string       `json:"agentNotes"`
	Intelligence    Intelligence `json:"extractedIntelligence"`
	Source          string       `json:"source"` // "llm" or "heuristic"
}

// Analysis sources.
const (
	SourceLLM       = "llm"
	SourceHeuristic = "heuristic"
)

// TurnResult is what one completed turn hands back to the caller.
type TurnResult struct {
	Reply           string       `json:"reply"`
	ScamDetected    bool         `json:"scamDetected"`
	ConfidenceScore float64      `json:"confidenceScore"`
	AgentNotes      string       `json:"agentNotes"`
	Intelligence    Intelligence `json:"extractedIntelligence"`
}
