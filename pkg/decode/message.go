package decode

// Field is one named, typed value within a decoded message.
type Field struct {
	Name  string
	Value Value
}

// Message is one decoded record. Type carries what spec.md §3 calls the
// synthetic "message_type" field — the descriptor's declared name — kept as
// a first-class struct field rather than injected into Fields, since Go
// callers address it far more often than the rest of the payload.
type Message struct {
	Type   string
	Fields []Field
}

// Get returns the named field's value, if present.
func (m Message) Get(name string) (Value, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// TimeUS returns the message's TimeUS field as an int64, or 0 if the field
// is absent or non-numeric — spec.md §4.5 step 7: "Messages lacking TimeUS
// sort as if their value were 0."
func (m Message) TimeUS() int64 {
	v, ok := m.Get("TimeUS")
	if !ok {
		return 0
	}
	t, ok := v.AsInt64()
	if !ok {
		return 0
	}
	return t
}
