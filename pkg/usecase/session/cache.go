package session

import (
	"sync"

	"github.com/automate-travel/studio/pkg/model"
)

type cacheKey struct {
	digest  string
	mode    model.Mode
	context string
}

// AnalysisCache keeps analysis results by image content, mode and analysis
// context, so that re-selecting the same photo does not call the model again.
type AnalysisCache struct {
	mu      sync.Mutex
	entries map[cacheKey]*model.AnalysisResult
}

func NewAnalysisCache() *AnalysisCache {
	return &AnalysisCache{entries: make(map[cacheKey]*model.AnalysisResult)}
}

func (c *AnalysisCache) Get(img *model.Image, mode model.Mode, analysisContext string) (*model.AnalysisResult, bool) {
	if img == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.entries[cacheKey{digest: img.Digest(), mode: mode, context: analysisContext}]
	return r, ok
}

func (c *AnalysisCache) Put(img *model.Image, mode model.Mode, analysisContext string, result *model.AnalysisResult) {
	if img == nil || result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey{digest: img.Digest(), mode: mode, context: analysisContext}] = result
}

func (c *AnalysisCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*model.AnalysisResult)
}

func (c *AnalysisCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
