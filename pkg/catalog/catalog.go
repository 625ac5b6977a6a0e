package catalog

import (
	_ "embed"
	"strings"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogRaw []byte

var defaultCatalog = mustLoad(catalogRaw)

// Catalog holds the static lookup tables: enhancement presets, the pose
// library and the attire/logo placement mapping.
type Catalog struct {
	presets []model.Preset
	byID    map[model.PresetID]int
	poses   map[model.Pose]model.PoseConfig
	attire  map[model.AttireType]model.AttireSpec
}

type catalogFile struct {
	Presets []model.Preset     `yaml:"presets"`
	Poses   []model.PoseConfig `yaml:"poses"`
	Attire  []model.AttireSpec `yaml:"attire"`
}

// Default returns the catalog embedded in the binary
func Default() *Catalog {
	return defaultCatalog
}

func mustLoad(data []byte) *Catalog {
	c, err := Load(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Load parses a YAML catalog document
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse catalog")
	}

	c := &Catalog{
		byID:   make(map[model.PresetID]int, len(file.Presets)),
		poses:  make(map[model.Pose]model.PoseConfig, len(file.Poses)),
		attire: make(map[model.AttireType]model.AttireSpec, len(file.Attire)),
	}

	for _, p := range file.Presets {
		if p.ID == "" {
			return nil, goerr.New("preset without id", goerr.V("label", p.Label))
		}
		if _, exists := c.byID[p.ID]; exists {
			return nil, goerr.New("duplicated preset", goerr.V("id", p.ID))
		}
		switch p.Category {
		case model.CategoryUniversal, model.CategoryCommercial, model.CategoryAtmosphere:
		default:
			return nil, goerr.New("invalid preset category", goerr.V("id", p.ID), goerr.V("category", p.Category))
		}
		p.Instruction = strings.TrimSpace(p.Instruction)
		c.byID[p.ID] = len(c.presets)
		c.presets = append(c.presets, p)
	}

	for _, p := range file.Poses {
		c.poses[p.Pose] = p
	}
	for _, a := range file.Attire {
		c.attire[a.Type] = a
	}

	return c, nil
}

// Presets returns the presets in catalog order
func (c *Catalog) Presets() []model.Preset {
	out := make([]model.Preset, len(c.presets))
	copy(out, c.presets)
	return out
}

// Preset looks up a preset by id
func (c *Catalog) Preset(id model.PresetID) (model.Preset, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Preset{}, false
	}
	return c.presets[i], true
}

// Pose looks up the configuration of a pose
func (c *Catalog) Pose(p model.Pose) (model.PoseConfig, bool) {
	cfg, ok := c.poses[p]
	return cfg, ok
}

// Attire looks up the garment specification and its logo placement
func (c *Catalog) Attire(t model.AttireType) (model.AttireSpec, bool) {
	spec, ok := c.attire[t]
	return spec, ok
}
