package models

import "strings"

type HeaderKind int

const (
	HeaderPlain HeaderKind = iota
	HeaderAddressed
	HeaderMultiple
)

// HeaderValue is a decoded header: a plain string, a single named address,
// or a list of values.
type HeaderValue struct {
	Kind    HeaderKind
	Text    string
	Name    string
	Address string
	Values  []HeaderValue
}

func PlainHeader(text string) HeaderValue {
	return HeaderValue{Kind: HeaderPlain, Text: text}
}

func AddressedHeader(name, address string) HeaderValue {
	return HeaderValue{Kind: HeaderAddressed, Name: name, Address: address}
}

// MultipleHeader collapses zero or one values into their simpler form.
func MultipleHeader(values []HeaderValue) HeaderValue {
	switch len(values) {
	case 0:
		return PlainHeader("")
	case 1:
		return values[0]
	}
	return HeaderValue{Kind: HeaderMultiple, Values: values}
}

func (h HeaderValue) Display() string {
	switch h.Kind {
	case HeaderAddressed:
		if h.Name == "" {
			return h.Address
		}
		return h.Name + " <" + h.Address + ">"
	case HeaderMultiple:
		parts := make([]string, 0, len(h.Values))
		for _, v := range h.Values {
			if d := v.Display(); d != "" {
				parts = append(parts, d)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return h.Text
	}
}

// Addresses returns the bare addresses carried by the value.
func (h HeaderValue) Addresses() []string {
	switch h.Kind {
	case HeaderAddressed:
		return []string{h.Address}
	case HeaderMultiple:
		var result []string
		for _, v := range h.Values {
			result = append(result, v.Addresses()...)
		}
		return result
	default:
		return nil
	}
}
