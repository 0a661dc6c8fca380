// Package session owns per-session conversation state and the turn
// lifecycle around the engine: single-flight sequencing, intelligence
// aggregation, typing latency, and final-report emission.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinellabs/honeypot/backend/internal/analysis/extraction"
	"github.com/sentinellabs/honeypot/backend/internal/analysis/intel"
	reportbuilder "github.com/sentinellabs/honeypot/backend/internal/analysis/report"
	"github.com/sentinellabs/honeypot/backend/internal/config"
	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
	"github.com/sentinellabs/honeypot/backend/internal/model/persona"
	"github.com/sentinellabs/honeypot/backend/internal/model/report"
	"github.com/sentinellabs/honeypot/backend/internal/service/engine"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnInFlight    = errors.New("a turn is already in flight for this session")
)

// ReportSender delivers a final report to the external collaborator.
type ReportSender interface {
	Send(ctx context.Context, rep report.FinalReport) error
}

// Clock abstracts wall time for tests.
type Clock func() time.Time

// TurnEvent is pushed to live subscribers after each completed turn.
type TurnEvent struct {
	SessionID     string           `json:"sessionId"`
	Result        convo.TurnResult `json:"result"`
	TotalMessages int              `json:"totalMessages"`
	ElapsedSec    int64            `json:"elapsedSec"`
}

// Request is one inbound turn as received from the caller.
type Request struct {
	SessionID string
	Message   convo.Message
	History   []convo.Message
	Metadata  convo.Metadata
}

type state struct {
	id          string
	personaID   string
	messages    []convo.Message
	confidences []float64
	intel       convo.Intelligence
	startTime   int64
	createdAt   time.Time
	inFlight    bool
	finalSent   bool

	// ctx is cancelled on reset; it cuts short the typing delay but not an
	// already-initiated upstream call.
	ctx    context.Context
	cancel context.CancelFunc

	subs map[chan TurnEvent]struct{}
}

// Service is the in-memory session store plus turn sequencing.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*state

	personas persona.Store
	orch     *engine.Orchestrator
	builder  *reportbuilder.Builder
	sender   ReportSender // nil disables callback delivery
	cfg      config.EngineConfig
	clock    Clock
}

// NewService wires the session store. clock may be nil for wall time.
func NewService(personas persona.Store, orch *engine.Orchestrator, builder *reportbuilder.Builder, sender ReportSender, cfg config.EngineConfig, clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		sessions: make(map[string]*state),
		personas: personas,
		orch:     orch,
		builder:  builder,
		sender:   sender,
		cfg:      cfg,
		clock:    clock,
	}
}

// CreateSession provisions a session bound to a persona and returns its id.
func (s *Service) CreateSession(personaID string) (string, error) {
	if personaID == "" {
		personaID = s.personas.Default().ID
	}
	if _, ok := s.personas.FindByID(personaID); !ok {
		return "", errors.New("persona not found")
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = s.newStateLocked(id, personaID)
	s.mu.Unlock()
	return id, nil
}

// EngageTurn runs one full turn: sequencing guard, history healing, IOC
// sweep, detection, persona reply, aggregation, typing delay. Sessions are
// created on first contact with the caller-supplied id.
func (s *Service) EngageTurn(ctx context.Context, req Request) (convo.TurnResult, convo.Snapshot, error) {
	if req.SessionID == "" {
		return convo.TurnResult{}, convo.Snapshot{}, ErrSessionRequired
	}

	s.mu.Lock()
	st, ok := s.sessions[req.SessionID]
	if !ok {
		st = s.newStateLocked(req.SessionID, s.personas.Default().ID)
		s.sessions[req.SessionID] = st
	}
	if st.inFlight {
		s.mu.Unlock()
		return convo.TurnResult{}, convo.Snapshot{}, ErrTurnInFlight
	}
	st.inFlight = true

	// Self-healing: a longer client history means we lost state (restart);
	// accept theirs before appending the new message.
	if len(req.History) > len(st.messages) {
		log.Printf("[session] healing %s: adopting client history of %d messages", st.id, len(req.History))
		st.messages = append([]convo.Message(nil), req.History...)
	}

	msg := req.Message
	if msg.Sender == "" {
		msg.Sender = convo.SenderScammer
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = s.clock().UnixMilli()
	}
	st.messages = append(st.messages, msg)
	if st.startTime == 0 {
		st.startTime = msg.Timestamp
	}

	// Sweep runs before the engine result merges so the turn's confidence,
	// not the sweep's zero, is what the session ends up holding.
	st.intel = intel.Merge(st.intel, extraction.Extract(msg.Text))

	history := append([]convo.Message(nil), st.messages[:len(st.messages)-1]...)
	personaObj, _ := s.personas.FindByID(st.personaID)
	sessionCtx := st.ctx
	s.mu.Unlock()

	result := s.orch.ProcessTurn(ctx, personaObj, msg, history, req.Metadata)

	s.mu.Lock()
	st.intel = intel.Merge(st.intel, result.Intelligence)
	st.confidences = append(st.confidences, result.ConfidenceScore)
	st.messages = append(st.messages, convo.Message{
		Sender:    convo.SenderAgent,
		Text:      result.Reply,
		Timestamp: s.clock().UnixMilli(),
	})
	st.inFlight = false

	snap := s.snapshotLocked(st)
	event := TurnEvent{
		SessionID:     st.id,
		Result:        result,
		TotalMessages: len(snap.Messages),
		ElapsedSec:    int64(s.clock().Sub(st.createdAt).Seconds()),
	}
	for ch := range st.subs {
		select {
		case ch <- event:
		default: // slow subscriber, drop rather than stall the turn
		}
	}

	shouldDeliver := s.sender != nil && !st.finalSent && result.ScamDetected &&
		(snap.Intelligence.IndicatorCount() >= s.cfg.CallbackMinIndicators ||
			len(snap.Messages) >= s.cfg.CallbackMinMessages)
	if shouldDeliver {
		st.finalSent = true
	}
	s.mu.Unlock()

	if shouldDeliver {
		go s.deliver(snap)
	}

	s.typingDelay(ctx, sessionCtx, result.Reply)
	return result, snap, nil
}

// Snapshot returns an immutable copy of the session's state.
func (s *Service) Snapshot(sessionID string) (convo.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return convo.Snapshot{}, ErrSessionNotFound
	}
	return s.snapshotLocked(st), nil
}

// Report derives the final report for the session as it stands. Callable at
// any point, not only at session end.
func (s *Service) Report(sessionID string) (report.FinalReport, error) {
	snap, err := s.Snapshot(sessionID)
	if err != nil {
		return report.FinalReport{}, err
	}
	return s.builder.Build(snap), nil
}

// Reset terminates the session: emits the final report (once), cancels any
// pending typing delay, clears all state, and provisions a fresh session id.
// An in-flight upstream call is not cancelled; its result lands in a session
// that no longer exists and is discarded.
func (s *Service) Reset(sessionID string) (string, report.FinalReport, error) {
	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return "", report.FinalReport{}, ErrSessionNotFound
	}

	snap := s.snapshotLocked(st)
	alreadySent := st.finalSent
	cancel := st.cancel
	for ch := range st.subs {
		close(ch)
	}
	// An in-flight turn still holds this state pointer; strip the closed
	// channels and latch finalSent so its completion neither sends on a
	// closed channel nor delivers a second report.
	st.subs = nil
	st.finalSent = true
	delete(s.sessions, sessionID)

	fresh := s.newStateLocked(uuid.NewString(), st.personaID)
	s.sessions[fresh.id] = fresh
	s.mu.Unlock()

	cancel()

	rep := s.builder.Build(snap)
	if s.sender != nil && !alreadySent {
		go s.deliverReport(rep)
	}
	return fresh.id, rep, nil
}

// Subscribe registers a live feed for the session. The returned cancel
// function must be called when the consumer goes away.
func (s *Service) Subscribe(sessionID string) (<-chan TurnEvent, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	ch := make(chan TurnEvent, 8)
	st.subs[ch] = struct{}{}

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if cur, ok := s.sessions[sessionID]; ok {
			delete(cur.subs, ch)
		}
	}
	return ch, unsubscribe, nil
}

// Elapsed reports wall-clock seconds since the session was created, for
// display only. Monotonically non-decreasing.
func (s *Service) Elapsed(sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return 0, ErrSessionNotFound
	}
	return int64(s.clock().Sub(st.createdAt).Seconds()), nil
}

func (s *Service) newStateLocked(id, personaID string) *state {
	ctx, cancel := context.WithCancel(context.Background())
	return &state{
		id:        id,
		personaID: personaID,
		messages:  make([]convo.Message, 0, 16),
		createdAt: s.clock(),
		ctx:       ctx,
		cancel:    cancel,
		subs:      make(map[chan TurnEvent]struct{}),
	}
}

func (s *Service) snapshotLocked(st *state) convo.Snapshot {
	return convo.Snapshot{
		SessionID:         st.id,
		Messages:          append([]convo.Message(nil), st.messages...),
		ConfidenceHistory: append([]float64(nil), st.confidences...),
		Intelligence:      st.intel.Clone(),
		StartTime:         st.startTime,
	}
}

func (s *Service) deliver(snap convo.Snapshot) {
	s.deliverReport(s.builder.Build(snap))
}

func (s *Service) deliverReport(rep report.FinalReport) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.sender.Send(ctx, rep); err != nil {
		log.Printf("[session] final report delivery failed for %s: %v", rep.SessionID, err)
	}
}

// typingDelay simulates human typing latency proportional to reply length,
// capped, and cancellable by either the request context or a session reset.
func (s *Service) typingDelay(ctx, sessionCtx context.Context, reply string) {
	delay := time.Duration(len(reply)) * s.cfg.TypingDelayPerChar
	if delay > s.cfg.TypingDelayMax {
		delay = s.cfg.TypingDelayMax
	}
	if delay <= 0 {
		return
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-sessionCtx.Done():
	}
}
