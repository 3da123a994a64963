package domain

import "time"

// OutcomeKind classifies the terminal result of one send attempt.
type OutcomeKind int

const (
	// OutcomeSuccess means the provider accepted the message.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeProviderError means the provider answered with a non-success status.
	OutcomeProviderError
	// OutcomeTransportError means the request never completed.
	OutcomeTransportError
	// OutcomeBuildError means the payload could not be built for this item.
	OutcomeBuildError
)

// String returns the lowercase name of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeProviderError:
		return "provider_error"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeBuildError:
		return "build_error"
	default:
		return "unknown"
	}
}

// ProviderError carries the diagnosable parts of a rejected send.
type ProviderError struct {
	Status  int
	Code    string
	TraceID string
	Raw     string
}

// Outcome is the terminal result of one item.
type Outcome struct {
	Item     Item
	Kind     OutcomeKind
	Provider *ProviderError
	Duration time.Duration

	// Err is the transport or build failure; nil otherwise.
	Err error
}

// OK reports whether the send succeeded.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	Total           int
	Succeeded       int
	ProviderFailed  int
	TransportFailed int
	BuildFailed     int
	Duration        time.Duration
}

// Add counts one outcome.
func (s *Summary) Add(o Outcome) {
	s.Total++
	switch o.Kind {
	case OutcomeSuccess:
		s.Succeeded++
	case OutcomeProviderError:
		s.ProviderFailed++
	case OutcomeTransportError:
		s.TransportFailed++
	case OutcomeBuildError:
		s.BuildFailed++
	}
}

// Failed returns the number of items that did not succeed.
func (s Summary) Failed() int {
	return s.ProviderFailed + s.TransportFailed + s.BuildFailed
}
