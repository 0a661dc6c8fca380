// Package engine sequences detection and persona generation for one turn.
package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
	"github.com/sentinellabs/honeypot/backend/internal/model/persona"
	"github.com/sentinellabs/honeypot/backend/internal/service/ai"
)

// Analyzer classifies an inbound message. The production implementation
// absorbs its own failures; a returned error means something unexpected.
type Analyzer interface {
	Analyze(ctx context.Context, msg convo.Message, history []convo.Message, meta convo.Metadata) (convo.Analysis, error)
}

// Replier produces the persona's reply.
type Replier interface {
	Reply(ctx context.Context, p persona.Persona, msg convo.Message, history []convo.Message, analysis convo.Analysis, meta convo.Metadata) (string, error)
}

// Orchestrator runs Detector then PersonaGenerator for each turn. It is
// stateless: per-session sequencing is the session service's problem.
type Orchestrator struct {
	detector Analyzer
	replier  Replier
	pick     ai.Picker
}

// New builds an orchestrator. pick seeds the canned-reply selection used
// when the replier fails outright; nil is fine.
func New(detector Analyzer, replier Replier, pick ai.Picker) *Orchestrator {
	return &Orchestrator{detector: detector, replier: replier, pick: pick}
}

// ProcessTurn produces the unified result for one inbound message. The turn
// always completes with some reply; no upstream failure propagates.
func (o *Orchestrator) ProcessTurn(ctx context.Context, p persona.Persona, msg convo.Message, history []convo.Message, meta convo.Metadata) convo.TurnResult {
	analysis := o.analyzeWithRetry(ctx, msg, history, meta)

	reply, err := o.replier.Reply(ctx, p, msg, history, analysis, meta)
	if err != nil || reply == "" {
		if err != nil {
			log.Printf("[engine] persona generation failed: %v, substituting canned reply", err)
		}
		reply = ai.CannedReply(p, msg.Text, o.pick)
	}

	// The threshold rule is authoritative and non-sticky: whatever the
	// detector payload claimed, a turn is flagged iff its confidence clears
	// the bar, and a later calmer turn flips the flag back.
	scam := analysis.ConfidenceScore > 50

	return convo.TurnResult{
		Reply:           reply,
		ScamDetected:    scam,
		ConfidenceScore: analysis.ConfidenceScore,
		AgentNotes:      analysis.AgentNotes,
		Intelligence:    analysis.Intelligence,
	}
}

// analyzeWithRetry calls the detector, retrying exactly once if it fails in
// a way it was supposed to absorb itself. Classified transport errors never
// reach here; they already degraded to the heuristic one layer down.
func (o *Orchestrator) analyzeWithRetry(ctx context.Context, msg convo.Message, history []convo.Message, meta convo.Metadata) convo.Analysis {
	analysis, err := o.detector.Analyze(ctx, msg, history, meta)
	if err == nil {
		return analysis
	}

	kind := ai.ClassifyTransport(err)
	log.Printf("[engine] detector failed unexpectedly (%s): %v, retrying once", kind, err)

	analysis, err = o.detector.Analyze(ctx, msg, history, meta)
	if err == nil {
		return analysis
	}

	log.Printf("[engine] detector retry failed: %v, substituting neutral analysis", err)
	return neutralAnalysis(err)
}

// neutralAnalysis is the zero-confidence, non-scam default used when the
// detector could not produce anything at all.
func neutralAnalysis(err error) convo.Analysis {
	return convo.Analysis{
		ScamDetected:    false,
		ConfidenceScore: 0,
		AgentNotes:      fmt.Sprintf("Analysis unavailable (%s); neutral default applied.", ai.ClassifyTransport(err)),
		Source:          convo.SourceHeuristic,
	}
}
