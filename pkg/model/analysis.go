package model

import (
	"encoding/json"
	"strings"
)

// OpenState is the tri-state "is_opened" attribute: true, false or unknown.
type OpenState int

const (
	OpenUnknown OpenState = iota
	OpenTrue
	OpenFalse
)

// ParseOpenState maps "true" and "false" to their values and anything else to unknown.
func ParseOpenState(s string) OpenState {
	switch s {
	case "true":
		return OpenTrue
	case "false":
		return OpenFalse
	default:
		return OpenUnknown
	}
}

func (s OpenState) String() string {
	switch s {
	case OpenTrue:
		return "true"
	case OpenFalse:
		return "false"
	default:
		return "unknown"
	}
}

// Bool returns the boolean value and whether it is known.
func (s OpenState) Bool() (value, known bool) {
	return s == OpenTrue, s != OpenUnknown
}

func (s OpenState) MarshalJSON() ([]byte, error) {
	switch s {
	case OpenTrue:
		return []byte("true"), nil
	case OpenFalse:
		return []byte("false"), nil
	default:
		return []byte(`"unknown"`), nil
	}
}

// UnmarshalJSON accepts both JSON booleans and the string enum the model is
// constrained to ("true", "false", "unknown").
func (s *OpenState) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = OpenUnknown
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*s = OpenTrue
		} else {
			*s = OpenFalse
		}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*s = OpenUnknown
		return nil
	}
	*s = ParseOpenState(str)
	return nil
}

type ProductSize string

const (
	SizeSmall   ProductSize = "SMALL"
	SizeLarge   ProductSize = "LARGE"
	SizeUnknown ProductSize = "UNKNOWN"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// DetectedAttributes are nil or unknown when the model cannot infer them.
type DetectedAttributes struct {
	ProductState        *string     `json:"product_state"`
	ExpirationDate      *string     `json:"expiration_date"`
	Size                ProductSize `json:"size"`
	IsOpened            OpenState   `json:"is_opened"`
	ContentLevelPercent *float64    `json:"content_level_percent"`
}

type VisualSuggestion struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Confidence  *float64  `json:"confidence,omitempty"`
}

// AnalysisResult is the structured payload of an analyze pass. The engine
// only reads QuickEditSuggestions; the rest is passed through for display.
type AnalysisResult struct {
	Analysis             string             `json:"analysis"`
	PosePreset           *string            `json:"pose_preset,omitempty"`
	ClothingType         *string            `json:"clothing_type,omitempty"`
	BrandApplication     *string            `json:"brand_application,omitempty"`
	LogoPlacement        *string            `json:"logo_placement,omitempty"`
	DetectedAttributes   DetectedAttributes `json:"detected_attributes"`
	VisualSuggestions    []VisualSuggestion `json:"visual_suggestions"`
	QuickEditSuggestions []string           `json:"quick_edit_suggestions"`
	ConstraintsRespected bool               `json:"constraints_respected"`
}

// Tips returns the non-blank quick edit suggestions, or nil when the model
// returned none.
func (r *AnalysisResult) Tips() []string {
	if r == nil {
		return nil
	}
	var tips []string
	for _, s := range r.QuickEditSuggestions {
		if s = strings.TrimSpace(s); s != "" {
			tips = append(tips, s)
		}
	}
	return tips
}
