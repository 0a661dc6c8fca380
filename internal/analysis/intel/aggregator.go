// Package intel rolls per-turn extraction into the session-level picture.
package intel

import (
	"strings"

	"github.com/sentinellabs/honeypot/backend/internal/analysis/extraction"
	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
)

// Merge folds one turn's intelligence into the session rollup. The merge is
// asymmetric by field, and deliberately so:
//
//   - list fields: first-seen-order union, deduplicated, nothing ever dropped
//   - falseExpertise: logical OR across turns
//   - confidence: the incoming turn's value wins outright, so a calm later
//     turn lowers the session confidence rather than being shadowed by an
//     earlier spike
//
// Merging the same turn twice is a no-op beyond the first application.
func Merge(session, turn convo.Intelligence) convo.Intelligence {
	out := session.Clone()

	out.BankAccounts = mergeList(out.BankAccounts, turn.BankAccounts, identityKey)
	out.UPIIDs = mergeList(out.UPIIDs, turn.UPIIDs, identityKey)
	out.PhishingLinks = mergeList(out.PhishingLinks, turn.PhishingLinks, identityKey)
	out.PhoneNumbers = mergeList(out.PhoneNumbers, turn.PhoneNumbers, phoneKey)
	out.SuspiciousKeywords = mergeList(out.SuspiciousKeywords, turn.SuspiciousKeywords, identityKey)
	out.SocialEngineeringTactics = mergeList(out.SocialEngineeringTactics, turn.SocialEngineeringTactics, identityKey)

	out.FalseExpertise = out.FalseExpertise || turn.FalseExpertise
	out.Confidence = turn.Confidence

	return out
}

// mergeList unions incoming entries into existing, keyed for deduplication,
// preserving first-seen order.
func mergeList(existing, incoming []string, keyFn func(string) string) []string {
	if len(incoming) == 0 {
		return existing
	}

	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, item := range existing {
		seen[keyFn(item)] = struct{}{}
	}

	out := existing
	for _, item := range incoming {
		item = strings.TrimSpace(strings.TrimRight(item, ".,?!"))
		if item == "" {
			continue
		}
		key := keyFn(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func identityKey(item string) string {
	return strings.ToLower(strings.TrimRight(item, "."))
}

// phoneKey collapses formatting variants of the same number: "+91 98765 43210"
// and "9876543210" merge into one entry.
func phoneKey(item string) string {
	if fp := extraction.PhoneFingerprint(item); fp != "" {
		return fp
	}
	return strings.ToLower(item)
}
