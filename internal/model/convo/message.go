package convo

// Sender identifies who produced a message in the exchange.
const (
	SenderScammer = "scammer"
	SenderUser    = "user"
	SenderAgent   = "agent"
)

// Message is a single turn entry. Immutable once appended; conversation
// order is insertion order, not timestamp order.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Metadata carries channel and locale hints supplied by the caller.
type Metadata struct {
	Channel  string `json:"channel"`
	Language string `json:"language"`
	Locale   string `json:"locale"`
}

// DefaultMetadata mirrors the defaults assumed when the caller omits the block.
func DefaultMetadata() Metadata {
	return Metadata{Channel: "SMS", Language: "English", Locale: "IN"}
}
