package model

import "github.com/m-mizutani/goerr/v2"

// Mode is the operating workflow of a session
type Mode string

const (
	ModeOfferBooster    Mode = "offer_booster"
	ModeIdentityBuilder Mode = "identity_builder"
)

var ErrInvalidMode = goerr.New("invalid mode")

// Validate checks if the mode is known
func (m Mode) Validate() error {
	switch m {
	case ModeOfferBooster, ModeIdentityBuilder:
		return nil
	default:
		return goerr.Wrap(ErrInvalidMode, "unknown mode", goerr.V("mode", m))
	}
}

// AnalysisContext is the business context sent along with an analyze call.
func (m Mode) AnalysisContext() string {
	if m == ModeIdentityBuilder {
		return "Employee Identity Standardization (Identity Builder)"
	}
	return "Hotel and Landscape Enhancement (Offer Booster)"
}

// VerificationContext is used when analyzing an image the model generated itself.
func (m Mode) VerificationContext() string {
	return m.AnalysisContext() + " - Generated Image Verification"
}
