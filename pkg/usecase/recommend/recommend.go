package recommend

import (
	"sort"
	"strings"

	"github.com/automate-travel/studio/pkg/model"
)

// Set is an unordered set of preset ids
type Set map[model.PresetID]struct{}

func (s Set) Has(id model.PresetID) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in lexical order
func (s Set) IDs() []model.PresetID {
	ids := make([]model.PresetID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Match returns the presets whose tags occur in text. Universal presets are
// always part of the result, so it is never empty as long as the catalog has
// one.
func Match(text string, presets []model.Preset) Set {
	set := Set{model.UniversalPresetID: {}}
	lower := strings.ToLower(text)

	for _, p := range presets {
		if p.Category == model.CategoryUniversal {
			set[p.ID] = struct{}{}
			continue
		}
		if lower == "" {
			continue
		}
		for _, tag := range p.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" && strings.Contains(lower, tag) {
				set[p.ID] = struct{}{}
				break
			}
		}
	}
	return set
}

// MatchAnalysis matches against the narrative of an analysis. A nil result
// yields the baseline only.
func MatchAnalysis(result *model.AnalysisResult, presets []model.Preset) Set {
	if result == nil {
		return Match("", presets)
	}
	return Match(result.Analysis, presets)
}
