package domain

import (
	"bytes"
	"encoding/json"
)

// Optional marks a patch field as present or absent. Presence is explicit,
// so the zero value of T (an empty string, false) is a real value once set.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present value
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an absent value
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSet reports whether a value was supplied
func (o Optional[T]) IsSet() bool { return o.set }

// Get returns the value and whether it was supplied
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

// OrElse returns the value when present and fallback otherwise
func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// UnmarshalJSON marks the field present. A JSON null leaves it absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// MarshalJSON renders the value, or null when absent
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
