package model

type PresetID string

// UniversalPresetID is the baseline preset recommended for every image.
const UniversalPresetID PresetID = "studio_clarity"

type PresetCategory string

const (
	CategoryUniversal  PresetCategory = "UNIVERSAL"
	CategoryCommercial PresetCategory = "COMMERCIAL"
	CategoryAtmosphere PresetCategory = "ATMOSPHERE"
)

// Preset is a named instruction bundle used to enhance an image without
// free-text input. Tags are matched against analysis text for recommendations.
type Preset struct {
	ID          PresetID       `yaml:"id" json:"id"`
	Label       string         `yaml:"label" json:"label"`
	Description string         `yaml:"description" json:"description"`
	Category    PresetCategory `yaml:"category" json:"category"`
	Tags        []string       `yaml:"tags" json:"tags"`
	Instruction string         `yaml:"instruction" json:"-"`
}
