package access

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Fields is a decoded JSON object body. Each accessor distinguishes three
// states: absent (None), explicit null (Some(nil)) and a value (Some(&v)).
type Fields map[string]json.RawMessage

// DecodeFields reads a JSON object. An empty body decodes to no fields.
func DecodeFields(r io.Reader) (Fields, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Invalid("Invalid request body")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Fields{}, nil
	}
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil || f == nil {
		return nil, Invalid("Invalid JSON body")
	}
	return f, nil
}

// Has reports whether name was sent, null included.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func field[T any](f Fields, name, typeName string) (mo.Option[*T], error) {
	raw, ok := f[name]
	if !ok {
		return mo.None[*T](), nil
	}
	if isNull(raw) {
		return mo.Some[*T](nil), nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return mo.None[*T](), Invalidf("%s must be %s", name, typeName)
	}
	return mo.Some(&v), nil
}

func (f Fields) Text(name string) (mo.Option[*string], error) {
	return field[string](f, name, "a string")
}

func (f Fields) Bool(name string) (mo.Option[*bool], error) {
	return field[bool](f, name, "a boolean")
}

func (f Fields) Float(name string) (mo.Option[*float64], error) {
	return field[float64](f, name, "a number")
}

// Int accepts only integral numbers.
func (f Fields) Int(name string) (mo.Option[*int], error) {
	opt, err := field[float64](f, name, "an integer")
	if err != nil {
		return mo.None[*int](), err
	}
	v, ok := opt.Get()
	if !ok {
		return mo.None[*int](), nil
	}
	if v == nil {
		return mo.Some[*int](nil), nil
	}
	if *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		return mo.None[*int](), Invalidf("%s must be an integer", name)
	}
	n := int(*v)
	return mo.Some(&n), nil
}

// Time accepts an RFC 3339 timestamp or a YYYY-MM-DD date.
func (f Fields) Time(name string) (mo.Option[*time.Time], error) {
	opt, err := f.Text(name)
	if err != nil {
		return mo.None[*time.Time](), Invalidf("%s must be a date string", name)
	}
	s, ok := opt.Get()
	if !ok {
		return mo.None[*time.Time](), nil
	}
	if s == nil {
		return mo.Some[*time.Time](nil), nil
	}
	t, err := ParseTime(*s)
	if err != nil {
		return mo.None[*time.Time](), Invalidf("Invalid %s", name)
	}
	return mo.Some(&t), nil
}

// ParseTime parses an RFC 3339 timestamp or a YYYY-MM-DD date, in UTC
// truncated to milliseconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.UTC().Truncate(time.Millisecond), nil
}
