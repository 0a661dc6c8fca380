package heuristic

import (
	"strings"

	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
)

// Family groups the offline detection vocabulary.
type Family string

const (
	Urgency   Family = "urgency"
	Financial Family = "financial"
	TechImp   Family = "tech-impersonation"
)

// Canonical tactic tags shared with the LLM detector and the report builder.
const (
	TacticUrgency        = "Urgency"
	TacticFear           = "Fear"
	TacticGreed          = "Greed"
	TacticAuthority      = "Authority"
	TacticBaiting        = "Baiting"
	TacticTrust          = "Trust"
	TacticSympathy       = "Sympathy"
	TacticJobLure        = "Job Lure"
	TacticFalseExpertise = "False Expertise"
)

// Fixed score bands, evaluated urgency > financial > tech > none.
const (
	scoreUrgency   = 88
	scoreFinancial = 75
	scoreTech      = 65
	scoreNone      = 45
)

var keywordBuckets = map[Family][]string{
	Urgency: {
		"urgent", "immediately", "right now", "within 24 hours", "within 24hrs",
		"expire", "expiring", "expires today", "blocked", "suspended", "deactivated",
		"arrest", "police", "legal action", "court notice", "final warning",
		"last chance", "act now", "final notice", "account will be closed",
	},
	Financial: {
		"bank", "account", "payment", "upi", "kyc", "refund", "prize",
		"lottery", "won", "winner", "cashback", "pension", "transfer", "debit card",
		"credit card", "otp", "pin", "net banking", "insurance", "loan approved",
		"processing fee", "claim your",
		"hdfc", "icici", "sbi", "axis bank", "kotak", "pnb", "canara",
	},
	TechImp: {
		"virus", "malware", "hacked", "compromised", "remote access", "anydesk",
		"teamviewer", "your computer", "microsoft support", "tech support",
		"security alert", "infected", "firewall", "ip address leaked",
	},
}

// tacticsByFamily maps a matched family to the tactics it evidences.
var tacticsByFamily = map[Family][]string{
	Urgency:   {TacticUrgency, TacticFear},
	Financial: {TacticGreed},
	TechImp:   {TacticAuthority, TacticFalseExpertise},
}

// Classify scores raw message text offline. Pure and deterministic: the same
// text always yields the same analysis. Heuristic mode only tags tactics and
// scores risk, it never attempts entity extraction, so the indicator lists in
// the result stay empty.
func Classify(text string) convo.Analysis {
	matched := matchFamilies(text)

	score := float64(scoreNone)
	switch {
	case matched[Urgency]:
		score = scoreUrgency
	case matched[Financial]:
		score = scoreFinancial
	case matched[TechImp]:
		score = scoreTech
	}

	tactics := make([]string, 0, 4)
	for _, fam := range []Family{Urgency, Financial, TechImp} {
		if matched[fam] {
			tactics = append(tactics, tacticsByFamily[fam]...)
		}
	}

	return convo.Analysis{
		ScamDetected:    score > 50,
		ConfidenceScore: score,
		AgentNotes:      buildNotes(matched),
		Intelligence: convo.Intelligence{
			SocialEngineeringTactics: tactics,
			FalseExpertise:           matched[TechImp],
			Confidence:               score,
		},
		Source: convo.SourceHeuristic,
	}
}

func matchFamilies(text string) map[Family]bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	matched := make(map[Family]bool, 3)
	if normalized == "" {
		return matched
	}

	for family, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				matched[family] = true
				break
			}
		}
	}
	return matched
}

func buildNotes(matched map[Family]bool) string {
	if len(matched) == 0 {
		return "Heuristic scan: no known scam vocabulary matched."
	}

	parts := make([]string, 0, 3)
	for _, fam := range []Family{Urgency, Financial, TechImp} {
		if matched[fam] {
			parts = append(parts, string(fam))
		}
	}
	return "Heuristic scan matched pattern families: " + strings.Join(parts, ", ") + "."
}
