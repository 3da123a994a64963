package domain

import "strings"

// Recipient is one addressable target read from the recipient source.
type Recipient struct {
	// Phone is the destination identifier, kept in its string form.
	Phone string

	// MessageValue is the body parameter, e.g. an OTP code.
	MessageValue string

	// Fields holds every column of the source row by name.
	Fields map[string]string
}

// Field returns the trimmed value of the named column.
func (r Recipient) Field(name string) (string, bool) {
	v, ok := r.Fields[name]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// NormalizePhone returns the comparison form of a phone identifier.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}

// Item pairs a recipient with the template it will receive.
type Item struct {
	Recipient Recipient
	Template  string
}
