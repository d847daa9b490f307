package recommend

import "fmt"

// EnrichmentErrorKind classifies why an enrichment call failed.
type EnrichmentErrorKind int

const (
	// TransportFailure means no usable response arrived: the request could not
	// be sent, timed out, or was short-circuited.
	TransportFailure EnrichmentErrorKind = iota
	// NonSuccessStatus means the remote answered with a non-2xx status.
	NonSuccessStatus
	// MalformedResponse means the response did not carry the expected reasons.
	MalformedResponse
)

func (k EnrichmentErrorKind) String() string {
	switch k {
	case TransportFailure:
		return "transport"
	case NonSuccessStatus:
		return "status"
	case MalformedResponse:
		return "malformed"
	default:
		return "unknown"
	}
}

// EnrichmentError is returned by an Enricher. Body is kept for diagnostics
// only and is never sent to the caller.
type EnrichmentError struct {
	Kind       EnrichmentErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *EnrichmentError) Error() string {
	switch {
	case e.Kind == NonSuccessStatus:
		return fmt.Sprintf("enrichment %s: status=%d body=%s", e.Kind, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("enrichment %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("enrichment %s", e.Kind)
	}
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}
