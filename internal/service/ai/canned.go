package ai

import (
	"math/rand"
	"strings"

	"github.com/sentinellabs/honeypot/backend/internal/model/persona"
)

// Picker selects an index in [0,n). Injectable so offline-fallback replies
// are reproducible in tests; nil uses math/rand.
type Picker func(n int) int

type cannedBucket struct {
	keywords []string
	phrases  []string
}

// Buckets are checked in order; the first keyword hit picks the bucket so a
// bank-flavored message still gets a bank-flavored stall offline.
var cannedBuckets = []cannedBucket{
	{
		keywords: []string{"bank", "account", "upi", "kyc", "blocked", "verify", "otp", "pension", "card"},
		phrases: []string{
			"Oh dear, my pension account? Is it safe? My grandson told me about those scammers... what should I do?",
			"The bank? Which branch are you calling from? I always go to the one near the market.",
			"I don't understand these account things very well. Can you tell me your name and employee number first?",
		},
	},
	{
		keywords: []string{"win", "won", "lottery", "prize", "cashback", "reward", "lucky"},
		phrases: []string{
			"A prize? Goodness, I never win anything! How does this work exactly?",
			"My neighbour won something once and it was all a fuss. Who do I speak to about this?",
		},
	},
	{
		keywords: []string{"virus", "computer", "hacked", "microsoft", "support", "anydesk"},
		phrases: []string{
			"A virus? Oh no, my grandson set this phone up for me. Should I call him first?",
			"I'm not very good with computers, you'll have to go slowly. What is it called again?",
		},
	},
	{
		keywords: []string{"how are you"},
		phrases: []string{
			"I'm doing quite well, thank you! Just putting on the kettle. How are you doing?",
		},
	},
}

var cannedDefaults = []string{
	"Oh, hello there. It's nice to hear from someone, but my hearing aid is a bit loud... may I ask who is this and how did you get my number?",
	"Sorry, one minute, I was just feeding the cat. Who is this again?",
	"Hello? I don't think I have this number saved. Do I know you?",
}

// CannedReply returns an offline stalling phrase for the given inbound text,
// keyed by simple keyword matches so the reply stays contextually plausible.
func CannedReply(p persona.Persona, text string, pick Picker) string {
	if pick == nil {
		pick = rand.Intn
	}
	lower := strings.ToLower(text)

	for _, bucket := range cannedBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(lower, kw) {
				return bucket.phrases[pick(len(bucket.phrases))]
			}
		}
	}

	if strings.TrimSpace(lower) == "" && p.OpeningLine != "" {
		return p.OpeningLine
	}
	return cannedDefaults[pick(len(cannedDefaults))]
}
