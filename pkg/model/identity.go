package model

import "github.com/m-mizutani/goerr/v2"

type PoseCategory string

const (
	PoseNeutral PoseCategory = "neutral"
	PosePower   PoseCategory = "power"
	PoseRelaxed PoseCategory = "relaxed"
	PoseAngle   PoseCategory = "angle"
	PoseCasual  PoseCategory = "casual"
)

type PoseVariant string

const (
	VariantA PoseVariant = "A"
	VariantB PoseVariant = "B"
	VariantC PoseVariant = "C"
)

// Pose selects one entry of the pose library
type Pose struct {
	Category PoseCategory `yaml:"category" json:"category"`
	Variant  PoseVariant  `yaml:"variant" json:"variant"`
}

// PoseConfig describes the body positioning for a pose
type PoseConfig struct {
	Pose         `yaml:",inline"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	HandPosition string `yaml:"hand_position"`
	BodyAngle    string `yaml:"body_angle"`
	Expression   string `yaml:"expression"`
}

type AttireType string

const (
	AttireSuit   AttireType = "suit"
	AttireShirt  AttireType = "shirt"
	AttirePolo   AttireType = "polo"
	AttireTShirt AttireType = "tshirt"
	AttireJacket AttireType = "jacket"
)

type LogoTechnique string

const (
	LogoEmbroideredPin  LogoTechnique = "embroidered_pin"
	LogoChestEmbroidery LogoTechnique = "chest_embroidery"
	LogoScreenPrint     LogoTechnique = "screen_print"
	LogoWovenPatch      LogoTechnique = "woven_patch"
	LogoEngravedBadge   LogoTechnique = "engraved_badge"
)

// LogoPlacement is the physical behavior of a logo on a given garment
type LogoPlacement struct {
	Technique        LogoTechnique `yaml:"technique"`
	Position         string        `yaml:"position"`
	Size             string        `yaml:"size"`
	Material         string        `yaml:"material"`
	PhysicalityRules string        `yaml:"physicality_rules"`
	LightingBehavior string        `yaml:"lighting_behavior"`
}

// AttireSpec is the garment specification together with its logo placement
type AttireSpec struct {
	Type          AttireType    `yaml:"type"`
	Specification string        `yaml:"specification"`
	Logo          LogoPlacement `yaml:"logo"`
}

// IdentityConfig holds the mode-scoped selections of the identity builder
type IdentityConfig struct {
	Pose   Pose
	Attire AttireType
	Logo   *Image
}

// DefaultIdentityConfig returns the selections a fresh session starts with.
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		Pose:   Pose{Category: PoseNeutral, Variant: VariantA},
		Attire: AttireSuit,
	}
}

var ErrInvalidIdentityConfig = goerr.New("invalid identity configuration")

// Validate checks pose and attire against the known enum values
func (c IdentityConfig) Validate() error {
	switch c.Pose.Category {
	case PoseNeutral, PosePower, PoseRelaxed, PoseAngle, PoseCasual:
	default:
		return goerr.Wrap(ErrInvalidIdentityConfig, "unknown pose category", goerr.V("category", c.Pose.Category))
	}
	switch c.Pose.Variant {
	case VariantA, VariantB, VariantC:
	default:
		return goerr.Wrap(ErrInvalidIdentityConfig, "unknown pose variant", goerr.V("variant", c.Pose.Variant))
	}
	switch c.Attire {
	case AttireSuit, AttireShirt, AttirePolo, AttireTShirt, AttireJacket:
	default:
		return goerr.Wrap(ErrInvalidIdentityConfig, "unknown attire", goerr.V("attire", c.Attire))
	}
	return nil
}
