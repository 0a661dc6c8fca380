package persona

// Store exposes persona retrieval for the engine and HTTP handlers.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
	Default() Persona
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the predefined persona list.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// Default returns the persona used when a session does not pick one.
func (s *MemoryStore) Default() Persona {
	if len(s.items) == 0 {
		return Persona{ID: "fallback", Name: "Alex", Tone: "polite, confused"}
	}
	return s.items[0]
}
