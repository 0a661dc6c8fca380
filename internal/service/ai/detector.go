package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/sentinellabs/honeypot/backend/internal/analysis/heuristic"
	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
)

const detectorHistoryLimit = 12

// chainRunner is the slice of compose.Runnable the detector needs; tests
// substitute a fake.
type chainRunner interface {
	Invoke(ctx context.Context, input map[string]any, opts ...compose.Option) (*schema.Message, error)
}

// Detector classifies inbound messages with the upstream model and falls
// back to the offline heuristic on any transport or parse failure. It never
// retries and never returns an error: the caller always gets an analysis.
type Detector struct {
	chain   chainRunner
	limiter *RateLimiter
}

// NewDetector compiles the classification chain. chatModel should sample
// deterministically (temperature zero) so identical turns classify
// identically.
func NewDetector(ctx context.Context, chatModel model.ChatModel, limiter *RateLimiter) (*Detector, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(detectorSystemPrompt),
		schema.UserMessage(detectorUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile detector chain: %w", err)
	}

	return &Detector{chain: runnable, limiter: limiter}, nil
}

// Analyze classifies one inbound message. A nil detector (model not
// configured) goes straight to the heuristic.
func (d *Detector) Analyze(ctx context.Context, msg convo.Message, history []convo.Message, meta convo.Metadata) (convo.Analysis, error) {
	if d == nil || d.chain == nil {
		return heuristic.Classify(msg.Text), nil
	}

	if !d.limiter.Allow() {
		log.Printf("[detector] %v, degrading to heuristic", ErrRateLimited)
		return heuristic.Classify(msg.Text), nil
	}

	input := map[string]any{
		"channel":  meta.Channel,
		"language": meta.Language,
		"locale":   meta.Locale,
		"history":  formatHistory(history, detectorHistoryLimit),
		"message":  strings.TrimSpace(msg.Text),
	}

	response, err := d.chain.Invoke(ctx, input)
	if err != nil {
		kind := ClassifyTransport(err)
		log.Printf("[detector] transport failure (%s): %v, degrading to heuristic", kind, err)
		return heuristic.Classify(msg.Text), nil
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		log.Printf("[detector] empty model output, degrading to heuristic")
		return heuristic.Classify(msg.Text), nil
	}

	analysis, err := decodeAnalysis(response.Content)
	if err != nil {
		log.Printf("[detector] %v, degrading to heuristic", &ParseError{Err: err})
		return heuristic.Classify(msg.Text), nil
	}

	return analysis, nil
}

// detectorPayload is the strict decode target for model output. Pointer
// fields distinguish "absent" from zero values so required-field validation
// is explicit.
type detectorPayload struct {
	ScamDetected    *bool         `json:"scamDetected"`
	ConfidenceScore *float64      `json:"confidenceScore"`
	AgentNotes      string        `json:"agentNotes"`
	Intelligence    *intelPayload `json:"extractedIntelligence"`
}

type intelPayload struct {
	BankAccounts             []string `json:"bankAccounts"`
	UPIIDs                   []string `json:"upiIds"`
	PhishingLinks            []string `json:"phishingLinks"`
	PhoneNumbers             []string `json:"phoneNumbers"`
	SuspiciousKeywords       []string `json:"suspiciousKeywords"`
	SocialEngineeringTactics []string `json:"socialEngineeringTactics"`
	FalseExpertise           bool     `json:"falseExpertise"`
}

func decodeAnalysis(content string) (convo.Analysis, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return convo.Analysis{}, err
	}

	var payload detectorPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return convo.Analysis{}, fmt.Errorf("malformed analysis object: %w", err)
	}

	if payload.ConfidenceScore == nil {
		return convo.Analysis{}, fmt.Errorf("analysis object missing confidenceScore")
	}
	if payload.ScamDetected == nil {
		return convo.Analysis{}, fmt.Errorf("analysis object missing scamDetected")
	}

	confidence := *payload.ConfidenceScore
	// Some models answer on a 0-1 scale despite the schema. Exactly 1 is
	// ambiguous; treat it as a genuine 1-in-100 and leave it alone.
	if confidence > 0 && confidence < 1 {
		confidence *= 100
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	analysis := convo.Analysis{
		ScamDetected:    *payload.ScamDetected,
		ConfidenceScore: confidence,
		AgentNotes:      strings.TrimSpace(payload.AgentNotes),
		Source:          convo.SourceLLM,
	}

	if payload.Intelligence != nil {
		analysis.Intelligence = convo.Intelligence{
			BankAccounts:             payload.Intelligence.BankAccounts,
			UPIIDs:                   payload.Intelligence.UPIIDs,
			PhishingLinks:            payload.Intelligence.PhishingLinks,
			PhoneNumbers:             payload.Intelligence.PhoneNumbers,
			SuspiciousKeywords:       payload.Intelligence.SuspiciousKeywords,
			SocialEngineeringTactics: payload.Intelligence.SocialEngineeringTactics,
			FalseExpertise:           payload.Intelligence.FalseExpertise,
		}
	}
	// The extracted block carries the turn's confidence.
	analysis.Intelligence.Confidence = confidence

	return analysis, nil
}
