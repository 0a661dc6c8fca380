package convo

// Snapshot is an immutable copy of one session's state, taken under the
// session service lock. Report derivation reads only snapshots so it stays
// a pure function of what it was given.
type Snapshot struct {
	SessionID         string       `json:"sessionId"`
	Messages          []Message    `json:"messages"`
	ConfidenceHistory []float64    `json:"confidenceHistory"`
	Intelligence      Intelligence `json:"intelligence"`
	StartTime         int64        `json:"startTime"` // unix ms, zero until the first turn
}

// AgentMessages counts replies our persona sent.
func (s Snapshot) AgentMessages() int {
	n := 0
	for _, m := range s.Messages {
		if m.Sender == SenderAgent || m.Sender == SenderUser {
			n++
		}
	}
	return n
}

// ScammerMessages counts inbound scammer messages.
func (s Snapshot) ScammerMessages() int {
	n := 0
	for _, m := range s.Messages {
		if m.Sender == SenderScammer {
			n++
		}
	}
	return n
}

// LatestConfidence returns the most recent turn's confidence, zero for a
// fresh session. Deliberately last-value, not max: a calm later turn is
// allowed to walk the assessment back down.
func (s Snapshot) LatestConfidence() float64 {
	if len(s.ConfidenceHistory) == 0 {
		return 0
	}
	return s.ConfidenceHistory[len(s.ConfidenceHistory)-1]
}
