package semantic

import (
	"strings"

	"httpstack/application/http"
)

// Headers is a case-insensitive header map that preserves insertion order
// for serialization. Setting an existing name overwrites its value in
// place, so a later duplicate wins without reordering the field.
type Headers struct {
	fields []http.Field
}

func NewHeaders() *Headers { return &Headers{} }

// HeadersFrom builds Headers from raw fields in arrival order. Duplicate
// names (case-insensitive) keep their first position with the last value.
func HeadersFrom(fields []http.Field) *Headers {
	h := NewHeaders()
	for _, f := range fields {
		h.Set(f.Name, f.Value)
	}
	return h
}

func (h *Headers) Len() int { return len(h.fields) }

// Get looks the name up case-insensitively.
func (h *Headers) Get(name string) (value string, ok bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Set overwrites the existing field's value, or appends a new field.
func (h *Headers) Set(name, value string) {
	for i, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			h.fields[i].Value = value
			return
		}
	}
	h.fields = append(h.fields, http.Field{Name: name, Value: value})
}

func (h *Headers) Del(name string) {
	for i, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			h.fields = append(h.fields[:i], h.fields[i+1:]...)
			return
		}
	}
}

// Fields returns the fields in insertion order.
func (h *Headers) Fields() []http.Field {
	out := make([]http.Field, len(h.fields))
	copy(out, h.fields)
	return out
}
