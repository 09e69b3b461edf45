package genchat

import (
	"bytes"
	"reflect"
	"slices"
)

// Role identifies the speaker of a Turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one participant's contribution to a conversation.
type Turn struct {
	Role  Role
	Parts []Part
}

// NewTurn returns a Turn that owns a copy of parts.
func NewTurn(role Role, parts ...Part) Turn {
	return Turn{Role: role, Parts: slices.Clone(parts)}
}

// Text concatenates the text parts of the turn.
func (t Turn) Text() string {
	var s string
	for _, p := range t.Parts {
		if v, ok := p.(Text); ok {
			s += v.Value
		}
	}
	return s
}

// History is an ordered, immutable sequence of turns in chronological order.
// Append returns a new History and never writes into the receiver.
type History struct {
	turns []Turn
}

// NewHistory returns a History holding copies of turns.
func NewHistory(turns ...Turn) History {
	h := History{turns: make([]Turn, len(turns))}
	for i, t := range turns {
		h.turns[i] = NewTurn(t.Role, t.Parts...)
	}
	return h
}

// Append returns a new History with turns added at the end.
func (h History) Append(turns ...Turn) History {
	list := make([]Turn, 0, len(h.turns)+len(turns))
	list = append(list, h.turns...)
	for _, t := range turns {
		list = append(list, NewTurn(t.Role, t.Parts...))
	}
	return History{turns: list}
}

// Len returns the number of turns.
func (h History) Len() int {
	return len(h.turns)
}

// At returns the i-th turn.
func (h History) At(i int) Turn {
	t := h.turns[i]
	return NewTurn(t.Role, t.Parts...)
}

// Turns returns a copy of the turns.
func (h History) Turns() []Turn {
	list := make([]Turn, len(h.turns))
	for i, t := range h.turns {
		list[i] = NewTurn(t.Role, t.Parts...)
	}
	return list
}

// Last returns the most recent turn, if any.
func (h History) Last() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.At(len(h.turns) - 1), true
}

// Equal reports whether both histories hold the same turns and parts.
func (h History) Equal(o History) bool {
	return slices.EqualFunc(h.turns, o.turns, func(a, b Turn) bool {
		return a.Role == b.Role && slices.EqualFunc(a.Parts, b.Parts, equalPart)
	})
}

func equalPart(a, b Part) bool {
	switch x := a.(type) {
	case Text:
		y, ok := b.(Text)
		return ok && x == y
	case Image:
		y, ok := b.(Image)
		return ok && x.MIMEType == y.MIMEType && reflect.DeepEqual(x.Pixels, y.Pixels)
	case Blob:
		y, ok := b.(Blob)
		return ok && x.MIMEType == y.MIMEType && bytes.Equal(x.Data, y.Data)
	}
	return false
}
