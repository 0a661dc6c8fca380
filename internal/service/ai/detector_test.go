package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
)

type fakeChain struct {
	content string
	err     error
	calls   int
}

func (f *fakeChain) Invoke(_ context.Context, _ map[string]any, _ ...compose.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

func newTestDetector(chain chainRunner) *Detector {
	return &Detector{chain: chain, limiter: nil}
}

func scamMessage() convo.Message {
	return convo.Message{Sender: convo.SenderScammer, Text: "URGENT: your bank account is blocked", Timestamp: 1700000000000}
}

func TestAnalyzeParsesWrappedJSON(t *testing.T) {
	chain := &fakeChain{content: `Here is my analysis:
{"scamDetected": true, "confidenceScore": 91, "agentNotes": "KYC hook",
 "extractedIntelligence": {"phishingLinks": ["http://evil.example"], "socialEngineeringTactics": ["Urgency"]}}
Let me know if you need more.`}

	analysis, err := newTestDetector(chain).Analyze(context.Background(), scamMessage(), nil, convo.DefaultMetadata())
	if err != nil {
		t.Fatalf("Analyze err: %v", err)
	}
	if analysis.Source != convo.SourceLLM {
		t.Fatalf("expected llm source, got %s", analysis.Source)
	}
	if analysis.ConfidenceScore != 91 {
		t.Fatalf("confidence = %v, want 91", analysis.ConfidenceScore)
	}
	if analysis.Intelligence.Confidence != 91 {
		t.Fatalf("confidence not injected into intelligence: %v", analysis.Intelligence.Confidence)
	}
	if len(analysis.Intelligence.PhishingLinks) != 1 {
		t.Fatalf("unexpected links: %v", analysis.Intelligence.PhishingLinks)
	}
}

func TestAnalyzeNormalizesFractionalConfidence(t *testing.T) {
	chain := &fakeChain{content: `{"scamDetected": true, "confidenceScore": 0.88}`}

	analysis, err := newTestDetector(chain).Analyze(context.Background(), scamMessage(), nil, convo.DefaultMetadata())
	if err != nil {
		t.Fatalf("Analyze err: %v", err)
	}
	if analysis.ConfidenceScore != 88 {
		t.Fatalf("confidence = %v, want 88", analysis.ConfidenceScore)
	}
}

func TestAnalyzeKeepsIntegerConfidenceOfOne(t *testing.T) {
	chain := &fakeChain{content: `{"scamDetected": false, "confidenceScore": 1}`}

	analysis, err := newTestDetector(chain).Analyze(context.Background(), scamMessage(), nil, convo.DefaultMetadata())
	if err != nil {
		t.Fatalf("Analyze err: %v", err)
	}
	if analysis.ConfidenceScore != 1 {
		t.Fatalf("an integer 1 must not be rescaled to 100, got %v", analysis.ConfidenceScore)
	}
}

func TestAnalyzeFallsBackOnTransportError(t *testing.T) {
	chain := &fakeChain{err: errors.New("429: rate limit exceeded, quota exhausted")}

	analysis, err := newTestDetector(chain).Analyze(context.Background(), scamMessage(), nil, convo.DefaultMetadata())
	if err != nil {
		t.Fatalf("transport errors must be absorbed, got %v", err)
	}
	if analysis.Source != convo.SourceHeuristic {
		t.Fatalf("expected heuristic fallback, got %s", analysis.Source)
	}
	// "URGENT" plus bank vocabulary lands in the urgency band.
	if analysis.ConfidenceScore != 88 {
		t.Fatalf("heuristic confidence = %v, want 88", analysis.ConfidenceScore)
	}
}

func TestAnalyzeFallsBackOnMalformedOutput(t *testing.T) {
	for _, content := range []string{
		"I could not produce JSON today.",
		`{"scamDetected": true`,
		`{"agentNotes": "missing required fields"}`,
		`{"scamDetected": "yes", "confidenceScore": "high"}`,
	} {
		chain := &fakeChain{content: content}
		analysis, err := newTestDetector(chain).Analyze(context.Background(), scamMessage(), nil, convo.DefaultMetadata())
		if err != nil {
			t.Fatalf("parse errors must be absorbed, got %v", err)
		}
		if analysis.Source != convo.SourceHeuristic {
			t.Fatalf("content %q: expected heuristic fallback, got %s", content, analysis.Source)
		}
	}
}

func TestAnalyzeNeverRetries(t *testing.T) {
	chain := &fakeChain{err: errors.New("connection refused")}
	_, _ = newTestDetector(chain).Analyze(context.Background(), scamMessage(), nil, convo.DefaultMetadata())
	if chain.calls != 1 {
		t.Fatalf("detector must not retry internally, calls = %d", chain.calls)
	}
}

func TestAnalyzeRateLimitedLocally(t *testing.T) {
	chain := &fakeChain{content: `{"scamDetected": false, "confidenceScore": 10}`}
	limiter := NewRateLimiter(1, time.Minute, nil)
	detector := &Detector{chain: chain, limiter: limiter}

	first, _ := detector.Analyze(context.Background(), scamMessage(), nil, convo.DefaultMetadata())
	if first.Source != convo.SourceLLM {
		t.Fatalf("first call should reach the model, got %s", first.Source)
	}

	second, err := detector.Analyze(context.Background(), scamMessage(), nil, convo.DefaultMetadata())
	if err != nil {
		t.Fatalf("local rate limiting must be absorbed, got %v", err)
	}
	if second.Source != convo.SourceHeuristic {
		t.Fatalf("exhausted limiter must degrade to heuristic, got %s", second.Source)
	}
	if chain.calls != 1 {
		t.Fatalf("model called %d times, want 1", chain.calls)
	}
}

func TestClassifyTransportKinds(t *testing.T) {
	cases := []struct {
		err  error
		want TransportKind
	}{
		{errors.New("quota exceeded for this billing period"), KindQuotaExceeded},
		{errors.New("401 unauthorized: invalid api key"), KindInvalidCredential},
		{errors.New("403 forbidden: permission denied for model"), KindPermissionDenied},
		{errors.New("dial tcp: connection refused"), KindNetworkError},
	}
	for _, tc := range cases {
		if got := ClassifyTransport(tc.err); got != tc.want {
			t.Fatalf("ClassifyTransport(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
