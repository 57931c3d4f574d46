package model

// FailureKind distinguishes the two failure tiers reported by the mail and
// directory controllers: transport failures (timeouts, refused connections,
// non-zero tool exits) and validation failures (unknown ids, malformed input).
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureTransport  FailureKind = "transport"
	FailureValidation FailureKind = "validation"
)

// OpResult is the structured outcome returned by every controller operation.
// Controllers never let collaborator faults escape as errors; they are caught
// and converted into a failed OpResult.
type OpResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Failure FailureKind `json:"failure,omitempty"`
}

func OK(message string) OpResult {
	return OpResult{Success: true, Message: message}
}

func TransportFailure(message string) OpResult {
	return OpResult{Success: false, Message: message, Failure: FailureTransport}
}

func ValidationFailure(message string) OpResult {
	return OpResult{Success: false, Message: message, Failure: FailureValidation}
}
