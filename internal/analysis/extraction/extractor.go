// Package extraction harvests hard indicators from raw conversation text.
// It runs every turn regardless of whether the LLM detector is reachable,
// so a dead upstream never costs us an account number a scammer typed out.
// All patterns are compiled once at package init.
package extraction

import (
	"regexp"
	"strings"

	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
)

var (
	bankNameRe = regexp.MustCompile(`(?i)\b(HDFC|ICICI|SBI|Axis|Kotak|PNB|BOB|Canara)\b`)
	// Typical 10-18 digit account numbers.
	accountRe = regexp.MustCompile(`\b\d{10,18}\b`)
	// Indian mobile numbers, with optional +91/91 prefix, dashes or spaces.
	phoneRe = regexp.MustCompile(`(?:\+?91[-\s]?)?[6-9]\d{4}[-\s]?\d{5}`)
	upiRe   = regexp.MustCompile(`[\w.\-]+@[\w.\-]+`)
	// Host plus optional path/query/fragment, so the sweep captures the same
	// full URL the LLM reports and session dedup sees one link, not two.
	linkRe = regexp.MustCompile(`https?://(?:[-\w.]|%[\da-fA-F]{2})+(?:[/?#][-\w.~/?%&=+#]*)?`)

	nonDigitRe = regexp.MustCompile(`\D`)
)

var suspiciousKeywords = []string{
	"verify", "blocked", "suspended", "urgent", "otp", "login", "win",
	"lottery", "support", "bank", "account", "refund", "kyc", "compromised",
	"lock",
}

// Extract sweeps text for indicators of compromise. Keywords come back
// lowercased; phone numbers are normalized to their 10-digit fingerprint so
// "+91 98765-43210" and "9876543210" count once.
func Extract(text string) convo.Intelligence {
	lower := strings.ToLower(text)

	links := make([]string, 0, 2)
	for _, link := range linkRe.FindAllString(text, -1) {
		links = append(links, strings.TrimRight(link, ".,?!"))
	}

	intel := convo.Intelligence{
		PhishingLinks:      dedup(links),
		SuspiciousKeywords: matchKeywords(lower),
	}

	phones := make([]string, 0, 2)
	for _, raw := range phoneRe.FindAllString(text, -1) {
		phones = append(phones, PhoneFingerprint(raw))
	}

	for _, upi := range upiRe.FindAllString(text, -1) {
		intel.UPIIDs = append(intel.UPIIDs, strings.TrimRight(upi, ".,?!"))
	}
	intel.UPIIDs = dedup(intel.UPIIDs)

	banks := bankNameRe.FindAllString(text, -1)
	for _, acc := range accountRe.FindAllString(text, -1) {
		// A bare 10-digit mobile-shaped number was already captured as a phone.
		if looksLikePhone(acc) {
			continue
		}
		banks = append(banks, acc)
	}
	intel.BankAccounts = dedup(banks)
	intel.PhoneNumbers = dedup(phones)

	return intel
}

// PhoneFingerprint strips non-digits and keeps the trailing 10 digits.
func PhoneFingerprint(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

func looksLikePhone(digits string) bool {
	fp := PhoneFingerprint(digits)
	return len(fp) == 10 && fp[0] >= '6' && fp[0] <= '9' && len(digits) <= 12
}

func matchKeywords(lower string) []string {
	var hits []string
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func dedup(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
