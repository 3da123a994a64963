package payload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bft-labs/herald/internal/domain"
)

// Wire constants for template messages.
const (
	messagingProduct = "whatsapp"
	recipientType    = "individual"
	messageType      = "template"
	paramTypeText    = "text"
)

// Builder assembles provider messages for one run.
type Builder struct {
	language  string
	namespace string
	button    *Button
}

// NewBuilder creates a builder for the given language. button may be nil.
func NewBuilder(language, namespace string, button *Button) *Builder {
	return &Builder{
		language:  language,
		namespace: namespace,
		button:    button,
	}
}

// Build returns the message for item. It fails with domain.ErrMissingColumn
// when a Column parameter names a field the recipient lacks.
func (b *Builder) Build(item domain.Item) (*domain.Message, error) {
	value := strings.TrimSpace(item.Recipient.MessageValue)

	components := []domain.Component{{
		Type:       "body",
		Parameters: []domain.Parameter{textParam(value)},
	}}

	if b.button != nil {
		params, err := b.resolveButton(item.Recipient, value)
		if err != nil {
			return nil, err
		}
		components = append(components, domain.Component{
			Type:       "button",
			SubType:    "url",
			Index:      strconv.Itoa(b.button.Index),
			Parameters: params,
		})
	}

	return &domain.Message{
		MessagingProduct: messagingProduct,
		RecipientType:    recipientType,
		To:               item.Recipient.Phone,
		Type:             messageType,
		Template: domain.MessageTemplate{
			Name:       item.Template,
			Namespace:  b.namespace,
			Language:   domain.Language{Code: b.language},
			Components: components,
		},
	}, nil
}

func (b *Builder) resolveButton(r domain.Recipient, value string) ([]domain.Parameter, error) {
	params := make([]domain.Parameter, 0, len(b.button.Params))
	for _, p := range b.button.Params {
		switch p.Kind {
		case URLParamOTP:
			params = append(params, textParam(value))
		case URLParamColumn:
			v, ok := r.Field(p.Value)
			if !ok {
				return nil, fmt.Errorf("%w: %q", domain.ErrMissingColumn, p.Value)
			}
			params = append(params, textParam(v))
		case URLParamLiteral:
			params = append(params, textParam(p.Value))
		default:
			return nil, fmt.Errorf("%w: kind %d", domain.ErrInvalidURLParam, p.Kind)
		}
	}
	return params, nil
}

func textParam(text string) domain.Parameter {
	return domain.Parameter{Type: paramTypeText, Text: text}
}
