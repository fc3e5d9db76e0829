package access

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/mo"
)

// RequiredText returns the trimmed value of name, or a validation error
// with msg when it is absent, null, not a string or blank.
func (f Fields) RequiredText(name, msg string) (string, error) {
	opt, err := f.Text(name)
	if err != nil {
		return "", Invalid(msg)
	}
	v, ok := opt.Get()
	if !ok || v == nil {
		return "", Invalid(msg)
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return "", Invalid(msg)
	}
	return s, nil
}

// TextUpdate is RequiredText for partial updates: absent leaves the field
// unchanged, anything present must be a non-blank string.
func (f Fields) TextUpdate(name, msg string) (mo.Option[string], error) {
	if !f.Has(name) {
		return mo.None[string](), nil
	}
	s, err := f.RequiredText(name, msg)
	if err != nil {
		return mo.None[string](), err
	}
	return mo.Some(s), nil
}

// OptionalText trims name. Blank strings and null both become Some(nil),
// which stores NULL.
func (f Fields) OptionalText(name string) (mo.Option[*string], error) {
	opt, err := f.Text(name)
	if err != nil {
		return opt, err
	}
	v, ok := opt.Get()
	if !ok {
		return opt, nil
	}
	return mo.Some(TrimOrNil(v)), nil
}

// TrimOrNil trims s and maps blank to nil.
func TrimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// ID returns a trimmed reference id from name. A blank string is treated
// as null.
func (f Fields) ID(name string) (mo.Option[*string], error) {
	opt, err := f.Text(name)
	if err != nil {
		return opt, err
	}
	v, ok := opt.Get()
	if !ok || v == nil {
		return opt, nil
	}
	return mo.Some(TrimOrNil(v)), nil
}

// RequiredID returns a non-blank id or a validation error with msg.
func (f Fields) RequiredID(name, msg string) (string, error) {
	opt, err := f.ID(name)
	if err != nil {
		return "", Invalid(msg)
	}
	v, ok := opt.Get()
	if !ok || v == nil {
		return "", Invalid(msg)
	}
	return *v, nil
}

// Range reads a number bounded by [min, max]. A present value that is not
// a number or out of range fails with msg. Null is allowed when nullable.
func (f Fields) Range(name string, min, max float64, nullable bool, msg string) (mo.Option[*float64], error) {
	opt, err := f.Float(name)
	if err != nil {
		return opt, Invalid(msg)
	}
	v, ok := opt.Get()
	if !ok {
		return opt, nil
	}
	if v == nil {
		if !nullable {
			return mo.None[*float64](), Invalid(msg)
		}
		return opt, nil
	}
	if *v < min || *v > max {
		return mo.None[*float64](), Invalid(msg)
	}
	return opt, nil
}

// OneOf checks that name, when present, is one of allowed.
func (f Fields) OneOf(name string, allowed []string, msg string) (mo.Option[string], error) {
	opt, err := f.Text(name)
	if err != nil {
		return mo.None[string](), Invalid(msg)
	}
	v, ok := opt.Get()
	if !ok {
		return mo.None[string](), nil
	}
	if v == nil || !slices.Contains(allowed, *v) {
		return mo.None[string](), Invalid(msg)
	}
	return mo.Some(*v), nil
}

// OptionalTime is Time with a blank string treated as null.
func (f Fields) OptionalTime(name string) (mo.Option[*time.Time], error) {
	if opt, err := f.Text(name); err == nil {
		if v, ok := opt.Get(); ok && v != nil && strings.TrimSpace(*v) == "" {
			return mo.Some[*time.Time](nil), nil
		}
	}
	return f.Time(name)
}

// Flag reads a boolean for partial updates. Null is false.
func (f Fields) Flag(name string) (mo.Option[bool], error) {
	opt, err := f.Bool(name)
	if err != nil {
		return mo.None[bool](), err
	}
	v, ok := opt.Get()
	if !ok {
		return mo.None[bool](), nil
	}
	return mo.Some(v != nil && *v), nil
}
