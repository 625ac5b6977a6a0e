package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/automate-travel/studio/pkg/display"
	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/usecase/gateway"
	"github.com/automate-travel/studio/pkg/usecase/session"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

type mockTransformer struct {
	analyzeFunc func(ctx context.Context, img *model.Image, analysisContext string) (*model.AnalysisResult, error)
}

func (m *mockTransformer) Analyze(ctx context.Context, img *model.Image, analysisContext string) (*model.AnalysisResult, error) {
	if m.analyzeFunc != nil {
		return m.analyzeFunc(ctx, img, analysisContext)
	}
	return &model.AnalysisResult{Analysis: "A hotel pool at sunset"}, nil
}

func (m *mockTransformer) Generate(ctx context.Context, input gateway.GenerateInput) (*model.Image, error) {
	if input.Reference == nil {
		return nil, goerr.Wrap(model.ErrReferenceImageRequired, "no reference")
	}
	return &model.Image{Name: "portrait.png", MIMEType: "image/png", Data: []byte("portrait")}, nil
}

func (m *mockTransformer) Enhance(ctx context.Context, img *model.Image, presetID model.PresetID) (*model.Image, error) {
	return &model.Image{Name: string(presetID) + ".png", MIMEType: "image/png", Data: []byte(presetID)}, nil
}

func (m *mockTransformer) Edit(ctx context.Context, img *model.Image, request string) (*model.Image, error) {
	return &model.Image{Name: "edit.png", MIMEType: "image/png", Data: []byte(request)}, nil
}

func newTestREPL(t *testing.T, mock *mockTransformer) (*repl, *bytes.Buffer) {
	t.Helper()
	ctrl, err := session.New(mock, display.NewRegistry())
	gt.NoError(t, err)
	t.Cleanup(ctrl.Close)

	var out bytes.Buffer
	r := newREPL(ctrl, &config{storageDir: t.TempDir()}, &out)
	r.spin = func(label string, fn func()) { fn() }
	return r, &out
}

func writePhoto(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte("photo bytes of "+name), 0o644))
	return path
}

func TestREPLEditingFlow(t *testing.T) {
	r, out := newTestREPL(t, &mockTransformer{})
	ctx := context.Background()

	gt.False(t, r.exec(ctx, "open "+writePhoto(t, "pool.png")))
	gt.S(t, out.String()).Contains("[1/1] pool.png (uploaded)")
	gt.S(t, out.String()).Contains("hotel pool at sunset")

	out.Reset()
	r.exec(ctx, "recommend")
	gt.S(t, out.String()).Contains("golden_hour")
	gt.S(t, out.String()).Contains("studio_clarity")

	out.Reset()
	r.exec(ctx, "enhance golden_hour")
	gt.S(t, out.String()).Contains("[2/2] golden_hour.png (generated)")

	r.exec(ctx, "edit make the water bluer")
	current, ok := r.ctrl.Current()
	gt.True(t, ok)
	gt.Equal(t, string(current.Image.Data), "make the water bluer")

	out.Reset()
	r.exec(ctx, "undo")
	gt.S(t, out.String()).Contains("[2/3]")
	r.exec(ctx, "undo")
	out.Reset()
	r.exec(ctx, "undo")
	gt.S(t, out.String()).Contains("nothing to undo")

	out.Reset()
	r.exec(ctx, "history")
	gt.S(t, out.String()).Contains("* 0 uploaded")

	out.Reset()
	r.exec(ctx, "compare")
	gt.S(t, out.String()).Contains("original: display://")

	gt.True(t, r.exec(ctx, "quit"))
}

func TestREPLUsageErrors(t *testing.T) {
	r, out := newTestREPL(t, &mockTransformer{})
	ctx := context.Background()

	r.exec(ctx, "teleport")
	gt.S(t, out.String()).Contains("unknown command")

	out.Reset()
	r.exec(ctx, "enhance studio_clarity")
	gt.S(t, out.String()).Contains("open a photo first")

	out.Reset()
	r.exec(ctx, "mode sketch")
	gt.S(t, out.String()).Contains("error:")

	out.Reset()
	r.exec(ctx, "pose power Z")
	gt.S(t, out.String()).Contains("error:")

	out.Reset()
	r.exec(ctx, "save")
	gt.S(t, out.String()).Contains("project is required")
}

func TestREPLIdentity(t *testing.T) {
	r, out := newTestREPL(t, &mockTransformer{})
	ctx := context.Background()

	var switched model.Mode
	r.onMode = func(m model.Mode) { switched = m }
	r.exec(ctx, "mode identity_builder")
	gt.Equal(t, switched, model.ModeIdentityBuilder)

	out.Reset()
	r.exec(ctx, "generate friendly concierge")
	gt.S(t, out.String()).Contains("reference image is required")
	gt.Equal(t, r.ctrl.Status().ErrorKind, model.ErrorKindReferenceRequired)

	r.exec(ctx, "pose casual b")
	r.exec(ctx, "attire POLO")
	identity := r.ctrl.Identity()
	gt.Equal(t, identity.Pose, model.Pose{Category: model.PoseCasual, Variant: model.VariantB})
	gt.Equal(t, identity.Attire, model.AttirePolo)

	r.exec(ctx, "logo "+writePhoto(t, "logo.png"))
	gt.NotNil(t, r.ctrl.Identity().Logo)
	r.exec(ctx, "logo none")
	gt.Nil(t, r.ctrl.Identity().Logo)

	r.exec(ctx, "open "+writePhoto(t, "me.jpg"))
	out.Reset()
	r.exec(ctx, "generate")
	gt.S(t, out.String()).Contains("portrait.png (generated)")
}

func TestREPLAsksForMissingKey(t *testing.T) {
	mock := &mockTransformer{}
	cfg := &config{}
	mock.analyzeFunc = func(ctx context.Context, img *model.Image, analysisContext string) (*model.AnalysisResult, error) {
		if cfg.apiKey.Get() == "" {
			return nil, goerr.Wrap(model.ErrCredentialsMissing, "no key")
		}
		return &model.AnalysisResult{Analysis: "ok"}, nil
	}

	r, out := newTestREPL(t, mock)
	r.cfg = cfg
	asked := 0
	r.askKey = func() (string, error) {
		asked++
		return "  secret-key ", nil
	}

	ctx := context.Background()
	photo := writePhoto(t, "lobby.png")
	r.exec(ctx, "open "+photo)
	gt.Equal(t, asked, 1)
	gt.Equal(t, cfg.apiKey.Get(), "secret-key")
	gt.False(t, r.ctrl.Status().CredentialsMissing)
	gt.S(t, out.String()).Contains("API key configured")

	r.exec(ctx, "open "+photo)
	gt.Equal(t, asked, 1)
	current, _ := r.ctrl.Current()
	gt.True(t, current.Analyzed())
}

func TestREPLKeyPromptCancelled(t *testing.T) {
	mock := &mockTransformer{
		analyzeFunc: func(ctx context.Context, img *model.Image, analysisContext string) (*model.AnalysisResult, error) {
			return nil, goerr.Wrap(model.ErrCredentialsMissing, "no key")
		},
	}
	r, out := newTestREPL(t, mock)
	r.askKey = func() (string, error) { return "", errors.New("interrupted") }

	r.exec(context.Background(), "open "+writePhoto(t, "a.png"))
	gt.S(t, out.String()).Contains("No key entered")
	gt.True(t, r.ctrl.Status().CredentialsMissing)
}

func TestREPLExport(t *testing.T) {
	r, out := newTestREPL(t, &mockTransformer{})
	ctx := context.Background()

	r.exec(ctx, "export final.png")
	gt.S(t, out.String()).Contains("open a photo first")

	r.exec(ctx, "open "+writePhoto(t, "room.png"))
	out.Reset()
	r.exec(ctx, "export exports/final.png")
	gt.S(t, out.String()).Contains("Exported exports/final.png")

	data, err := os.ReadFile(filepath.Join(r.cfg.storageDir, "exports", "final.png"))
	gt.NoError(t, err)
	gt.Equal(t, string(data), "photo bytes of room.png")
}

func TestResultPath(t *testing.T) {
	png := &model.Image{MIMEType: "image/png"}
	jpeg := &model.Image{MIMEType: "image/jpeg"}

	gt.Equal(t, resultPath("photos/lobby.jpg", "golden_hour", png), "photos/lobby-golden_hour.png")
	gt.Equal(t, resultPath("lobby", "edit", jpeg), "lobby-edit.jpg")
	gt.Equal(t, resultPath("", "portrait", png), "portrait.png")
}

func TestValidatePage(t *testing.T) {
	gt.NoError(t, validatePage(0, 0))
	gt.NoError(t, validatePage(5, 20))
	gt.Error(t, validatePage(-1, 20))
	gt.Error(t, validatePage(0, -1))
}
