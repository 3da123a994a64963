package payload

import (
	"fmt"
	"strings"

	"github.com/bft-labs/herald/internal/domain"
)

// URLParamKind selects where a URL button parameter takes its value from.
type URLParamKind int

const (
	// URLParamOTP uses the recipient's message value.
	URLParamOTP URLParamKind = iota
	// URLParamColumn uses a named recipient field.
	URLParamColumn
	// URLParamLiteral uses a fixed string.
	URLParamLiteral
)

// URLParam is one parsed button parameter source.
type URLParam struct {
	Kind URLParamKind

	// Value is the column name for URLParamColumn or the literal text for
	// URLParamLiteral.
	Value string
}

// OTP returns a parameter that repeats the message value.
func OTP() URLParam { return URLParam{Kind: URLParamOTP} }

// Column returns a parameter read from the named recipient field.
func Column(name string) URLParam { return URLParam{Kind: URLParamColumn, Value: name} }

// Literal returns a fixed parameter.
func Literal(value string) URLParam { return URLParam{Kind: URLParamLiteral, Value: value} }

// String renders the parameter in its token form.
func (p URLParam) String() string {
	switch p.Kind {
	case URLParamOTP:
		return "otp"
	case URLParamColumn:
		return "col:" + p.Value
	case URLParamLiteral:
		return "lit:" + p.Value
	default:
		return "?"
	}
}

// ParseURLParam parses a token of the form "otp", "col:<name>" or "lit:<value>".
func ParseURLParam(token string) (URLParam, error) {
	token = strings.TrimSpace(token)
	switch {
	case token == "otp":
		return OTP(), nil
	case strings.HasPrefix(token, "col:"):
		name := strings.TrimPrefix(token, "col:")
		if name == "" {
			return URLParam{}, fmt.Errorf("%w: %q has an empty column name", domain.ErrInvalidURLParam, token)
		}
		return Column(name), nil
	case strings.HasPrefix(token, "lit:"):
		return Literal(strings.TrimPrefix(token, "lit:")), nil
	default:
		return URLParam{}, fmt.Errorf("%w: %q (use otp, col:<column> or lit:<value>)", domain.ErrInvalidURLParam, token)
	}
}

// ParseURLParams parses every token, failing on the first invalid one.
func ParseURLParams(tokens []string) ([]URLParam, error) {
	params := make([]URLParam, 0, len(tokens))
	for _, t := range tokens {
		p, err := ParseURLParam(t)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

// Button describes the optional URL call-to-action button.
type Button struct {
	// Index is the button position in the template.
	Index int

	// Params are resolved in order for every recipient.
	Params []URLParam
}

// NewButton validates the index and parses the parameter tokens.
func NewButton(index int, tokens []string) (*Button, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: button index must be non-negative, got %d", domain.ErrConfiguration, index)
	}
	params, err := ParseURLParams(tokens)
	if err != nil {
		return nil, err
	}
	return &Button{Index: index, Params: params}, nil
}
