// Package display issues the renderable handles of history items. Handles
// are acquired and released by the history store only.
package display

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// ErrUnknownHandle is returned when releasing a handle that is not live
var ErrUnknownHandle = goerr.New("display handle is not live")

// Registry keeps handles in memory. It is used by one-shot commands and
// tests, and reports how many handles are outstanding.
type Registry struct {
	mu       sync.Mutex
	live     map[model.DisplayRef]model.ItemID
	released []model.DisplayRef
}

func NewRegistry() *Registry {
	return &Registry{live: make(map[model.DisplayRef]model.ItemID)}
}

func (r *Registry) Acquire(id model.ItemID, _ *model.Image) (model.DisplayRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := model.DisplayRef("display://" + string(id))
	r.live[ref] = id
	return ref, nil
}

func (r *Registry) Release(ref model.DisplayRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.live[ref]; !ok {
		return goerr.Wrap(ErrUnknownHandle, "cannot release handle", goerr.V("ref", ref))
	}
	delete(r.live, ref)
	r.released = append(r.released, ref)
	return nil
}

// Live returns the number of handles acquired and not yet released
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Released returns the released handles in release order
func (r *Registry) Released() []model.DisplayRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.DisplayRef, len(r.released))
	copy(out, r.released)
	return out
}

// Files writes each artifact to a file under dir so it can be opened by an
// image viewer. The file path is the handle; releasing removes the file.
type Files struct {
	dir string
}

func NewFiles(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create display directory", goerr.V("dir", dir))
	}
	return &Files{dir: dir}, nil
}

func (f *Files) Acquire(id model.ItemID, img *model.Image) (model.DisplayRef, error) {
	path := filepath.Join(f.dir, string(id)+img.Extension())
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", goerr.Wrap(err, "failed to write display file", goerr.V("path", path))
	}
	return model.DisplayRef(path), nil
}

func (f *Files) Release(ref model.DisplayRef) error {
	if err := os.Remove(string(ref)); err != nil {
		return goerr.Wrap(err, "failed to remove display file", goerr.V("path", ref))
	}
	return nil
}
