package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Error taxonomy of the transformation pipeline. Wrap these with goerr.Wrap and
// match with errors.Is.
var (
	ErrCredentialsMissing     = goerr.New("API credentials are not configured")
	ErrReferenceImageRequired = goerr.New("reference image is required, upload a photo of the person to preserve their identity")
	ErrRateLimited            = goerr.New("rate limited by the model service")
	ErrTransient              = goerr.New("model service is temporarily unavailable")
	ErrSafetyRejected         = goerr.New("request was blocked by safety filters")
	ErrMalformedResponse      = goerr.New("model service returned an unusable response")
	ErrUnknownPreset          = goerr.New("unknown enhancement preset")
	ErrInvalidInput           = goerr.New("invalid input")

	// ErrStaleResult marks the resolution of a superseded operation. It is
	// never shown to the user.
	ErrStaleResult = goerr.New("operation was superseded")
	ErrBusy        = goerr.New("another operation is in progress")
)

type ErrorKind string

const (
	ErrorKindNone               ErrorKind = ""
	ErrorKindCredentialsMissing ErrorKind = "credentials_missing"
	ErrorKindReferenceRequired  ErrorKind = "reference_image_required"
	ErrorKindRateLimited        ErrorKind = "rate_limited"
	ErrorKindTransient          ErrorKind = "transient"
	ErrorKindSafetyRejected     ErrorKind = "safety_rejected"
	ErrorKindMalformedResponse  ErrorKind = "malformed_response"
	ErrorKindInvalidInput       ErrorKind = "invalid_input"
	ErrorKindStale              ErrorKind = "stale"
	ErrorKindBusy               ErrorKind = "busy"
	ErrorKindUnknown            ErrorKind = "unknown"
)

// Classify maps an error onto the taxonomy.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrStaleResult):
		return ErrorKindStale
	case errors.Is(err, ErrBusy):
		return ErrorKindBusy
	case errors.Is(err, ErrCredentialsMissing):
		return ErrorKindCredentialsMissing
	case errors.Is(err, ErrReferenceImageRequired):
		return ErrorKindReferenceRequired
	case errors.Is(err, ErrRateLimited):
		return ErrorKindRateLimited
	case errors.Is(err, ErrTransient):
		return ErrorKindTransient
	case errors.Is(err, ErrSafetyRejected):
		return ErrorKindSafetyRejected
	case errors.Is(err, ErrMalformedResponse):
		return ErrorKindMalformedResponse
	case errors.Is(err, ErrUnknownPreset), errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnsupportedImage), errors.Is(err, ErrInvalidIdentityConfig):
		return ErrorKindInvalidInput
	default:
		return ErrorKindUnknown
	}
}

// UserMessage renders an error as the single line shown in the error banner.
func UserMessage(err error) string {
	switch Classify(err) {
	case ErrorKindNone, ErrorKindStale:
		return ""
	case ErrorKindCredentialsMissing:
		return "API key is missing. Set GEMINI_API_KEY and try again."
	case ErrorKindReferenceRequired:
		return ErrReferenceImageRequired.Error()
	case ErrorKindRateLimited, ErrorKindTransient:
		return "The AI service is busy right now. Please wait a moment and try again."
	case ErrorKindSafetyRejected:
		return "The request was blocked by safety filters. Please try a different photo or prompt."
	case ErrorKindMalformedResponse:
		return "The AI service returned no usable result. Please try again."
	case ErrorKindBusy:
		return ErrBusy.Error()
	default:
		return err.Error()
	}
}
