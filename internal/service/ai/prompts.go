package ai

import (
	"fmt"
	"strings"

	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
	"github.com/sentinellabs/honeypot/backend/internal/model/persona"
)

// Doubled braces below are literal: the templates go through eino's FString
// formatting, which treats single braces as placeholders.
const detectorSystemPrompt = `You are a scam-detection analyst reviewing one side of a chat conversation.
Analyze the LATEST message in the context of the history and return STRICTLY one JSON object, no prose, matching:

{{
  "scamDetected": boolean,
  "confidenceScore": number (0-100),
  "agentNotes": "short forensic note: hook identified, scammer playbook, trap progress",
  "extractedIntelligence": {{
    "bankAccounts": ["bank names or 10-18 digit account numbers"],
    "upiIds": [], "phishingLinks": [], "phoneNumbers": [],
    "suspiciousKeywords": [],
    "socialEngineeringTactics": ["Urgency","Fear","Greed","Authority","Baiting","Trust","Sympathy","Job Lure"],
    "falseExpertise": boolean
  }}
}}

Rules:
- Extract ANY bank entity, account number, UPI id, phishing link or phone number, including obscured forms ("pay to x [dot] com").
- Tactics must come from the listed vocabulary.
- falseExpertise is true when the sender fakes professional or technical authority.
- Output the JSON object only.`

const detectorUserPrompt = `CHANNEL: {channel} | LANGUAGE: {language} | LOCALE: {locale}

CONVERSATION_HISTORY:
{history}

LATEST_MESSAGE:
{message}`

const personaUserPrompt = `CONVERSATION_HISTORY:
{history}

LATEST_MESSAGE_TO_ANSWER:
{message}

TASK: Reply as your character. Respond directly to the specific details in the latest message, do not repeat earlier phrasings, and match the length of your reply to the sender's: a short greeting gets one short sentence.`

// buildPersonaSystemPrompt assembles the in-character instruction block.
// The detector's analysis only calibrates tone; it is never echoed back.
func buildPersonaSystemPrompt(p persona.Persona, analysis convo.Analysis) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s, %s. Tone: %s.\n", p.Name, p.Title, p.Tone)
	if p.Background != "" {
		fmt.Fprintf(&sb, "Background: %s\n", p.Background)
	}
	if len(p.Traits) > 0 {
		fmt.Fprintf(&sb, "Traits: %s\n", strings.Join(p.Traits, ", "))
	}
	if len(p.Weaknesses) > 0 {
		fmt.Fprintf(&sb, "Things that hook you: %s\n", strings.Join(p.Weaknesses, ", "))
	}
	if p.PromptHint != "" {
		fmt.Fprintf(&sb, "Playing notes: %s\n", p.PromptHint)
	}

	sb.WriteString(`
Hard rules:
- You are a real person texting. NEVER reveal or hint that you are automated, an AI, or part of any system.
- Never share real personal data; invent mundane, harmless details instead.
- Keep the other party talking: ask small clarifying questions (employee name, branch, callback number).
- You are non-technical and mildly distractible; small digressions are in character.`)

	if analysis.ScamDetected {
		tactics := strings.Join(analysis.Intelligence.SocialEngineeringTactics, ", ")
		if tactics == "" {
			tactics = "pressure"
		}
		fmt.Fprintf(&sb, "\nTonal calibration (do not mention): the sender is likely running a con using %s. Act concerned and cooperative, stall, and nudge them into revealing account numbers, links or phone numbers.", tactics)
	} else {
		sb.WriteString("\nTonal calibration (do not mention): the sender may be harmless. Stay polite but a little wary of strangers.")
	}

	return sb.String()
}

// formatHistory renders prior messages for the prompt, newest last.
func formatHistory(messages []convo.Message, limit int) string {
	if len(messages) == 0 {
		return "none"
	}
	if limit < 1 {
		limit = 1
	}
	start := len(messages) - limit
	if start < 0 {
		start = 0
	}

	var sb strings.Builder
	for i := start; i < len(messages); i++ {
		msg := messages[i]
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		role := "THEM"
		if msg.Sender == convo.SenderAgent || msg.Sender == convo.SenderUser {
			role = "ME"
		}
		sb.WriteString(role)
		sb.WriteString(": ")
		sb.WriteString(text)
		if i < len(messages)-1 {
			sb.WriteString("\n")
		}
	}
	if sb.Len() == 0 {
		return "none"
	}
	return sb.String()
}
