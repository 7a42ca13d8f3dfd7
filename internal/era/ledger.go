package era

// Ledger is the set of event ids already applied in a playthrough.
// Idempotency is keyed by id only: a rewound or reloaded game never
// re-applies an id that is present, whatever the current date.
type Ledger struct {
	ids   map[string]struct{}
	order []string
}

// NewLedger builds a ledger from previously recorded ids. Duplicates are dropped.
func NewLedger(ids ...string) *Ledger {
	l := &Ledger{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		l.Mark(id)
	}
	return l
}

// Has reports whether id has been recorded.
func (l *Ledger) Has(id string) bool {
	_, ok := l.ids[id]
	return ok
}

// Mark records id. Returns false if it was already present.
func (l *Ledger) Mark(id string) bool {
	if l.Has(id) {
		return false
	}
	l.ids[id] = struct{}{}
	l.order = append(l.order, id)
	return true
}

// IDs returns recorded ids in the order they were first marked.
func (l *Ledger) IDs() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Len returns the number of recorded ids.
func (l *Ledger) Len() int {
	return len(l.order)
}
