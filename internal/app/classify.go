package app

import (
	"encoding/json"

	"github.com/bft-labs/herald/internal/domain"
	"github.com/bft-labs/herald/internal/ports"
)

// providerErrorBody is the structured error envelope returned by the provider.
type providerErrorBody struct {
	Error *struct {
		Code      json.RawMessage `json:"code"`
		FBTraceID string          `json:"fbtrace_id"`
	} `json:"error"`
}

// classify maps a send result onto an outcome kind.
func classify(resp ports.Response, err error) (domain.OutcomeKind, *domain.ProviderError) {
	if err != nil {
		return domain.OutcomeTransportError, nil
	}
	if resp.OK() {
		return domain.OutcomeSuccess, nil
	}

	pe := &domain.ProviderError{
		Status: resp.Status,
		Raw:    string(resp.Body),
	}
	var body providerErrorBody
	if json.Unmarshal(resp.Body, &body) == nil && body.Error != nil {
		pe.Code = rawCode(body.Error.Code)
		pe.TraceID = body.Error.FBTraceID
	}
	return domain.OutcomeProviderError, pe
}

// rawCode renders a numeric or string JSON code as plain text.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return string(raw)
}
