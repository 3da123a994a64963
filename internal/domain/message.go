package domain

// Message is the provider wire payload for a template message.
type Message struct {
	MessagingProduct string          `json:"messaging_product"`
	RecipientType    string          `json:"recipient_type"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         MessageTemplate `json:"template"`
}

// MessageTemplate selects the template and fills its placeholders.
type MessageTemplate struct {
	Name       string      `json:"name"`
	Namespace  string      `json:"namespace,omitempty"`
	Language   Language    `json:"language"`
	Components []Component `json:"components"`
}

// Language is the template locale.
type Language struct {
	Code string `json:"code"`
}

// Component is one template section (body or button).
type Component struct {
	Type       string      `json:"type"`
	SubType    string      `json:"sub_type,omitempty"`
	Index      string      `json:"index,omitempty"`
	Parameters []Parameter `json:"parameters"`
}

// Parameter is a single placeholder value.
type Parameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
