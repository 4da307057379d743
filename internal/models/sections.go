package models

import (
	"bytes"

	"github.com/rotisserie/eris"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Sections maps a benefit heading to its body text. Keys keep the order in
// which they were first set, and the JSON form keeps that order too.
type Sections struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewSections returns an empty Sections.
func NewSections() Sections {
	return Sections{m: orderedmap.New[string, string]()}
}

// Set stores body under title, replacing any existing body.
func (s *Sections) Set(title, body string) {
	if s.m == nil {
		s.m = orderedmap.New[string, string]()
	}
	s.m.Set(title, body)
}

// Append adds body after the existing content of title, separated by a line
// break. A missing title is created.
func (s *Sections) Append(title, body string) {
	if prev, ok := s.Get(title); ok {
		s.Set(title, prev+"\n"+body)
		return
	}
	s.Set(title, body)
}

// Get returns the body stored under title.
func (s Sections) Get(title string) (string, bool) {
	if s.m == nil {
		return "", false
	}
	return s.m.Get(title)
}

// Keys returns the titles in insertion order.
func (s Sections) Keys() []string {
	out := make([]string, 0, s.Len())
	if s.m == nil {
		return out
	}
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func (s Sections) Len() int {
	if s.m == nil {
		return 0
	}
	return s.m.Len()
}

// Map returns a plain copy of the sections.
func (s Sections) Map() map[string]string {
	out := make(map[string]string, s.Len())
	if s.m == nil {
		return out
	}
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// MarshalJSON writes the sections as a JSON object in insertion order. Empty
// sections are written as {} rather than null.
func (s Sections) MarshalJSON() ([]byte, error) {
	if s.Len() == 0 {
		return []byte("{}"), nil
	}
	return s.m.MarshalJSON()
}

// UnmarshalJSON reads a JSON object of strings, keeping the key order of the
// document. A JSON null yields empty sections.
func (s *Sections) UnmarshalJSON(data []byte) error {
	*s = NewSections()
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return eris.Errorf("sections: expected JSON object, got %.20q", trimmed)
	}
	if err := s.m.UnmarshalJSON(trimmed); err != nil {
		return eris.Wrap(err, "sections")
	}
	return nil
}
