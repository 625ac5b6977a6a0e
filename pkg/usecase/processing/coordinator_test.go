package processing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/usecase/gateway"
	"github.com/automate-travel/studio/pkg/usecase/processing"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

type mockTransformer struct {
	analyzeFunc  func(ctx context.Context, img *model.Image, analysisContext string) (*model.AnalysisResult, error)
	generateFunc func(ctx context.Context, input gateway.GenerateInput) (*model.Image, error)
	enhanceFunc  func(ctx context.Context, img *model.Image, presetID model.PresetID) (*model.Image, error)
	editFunc     func(ctx context.Context, img *model.Image, request string) (*model.Image, error)
}

func (m *mockTransformer) Analyze(ctx context.Context, img *model.Image, analysisContext string) (*model.AnalysisResult, error) {
	if m.analyzeFunc != nil {
		return m.analyzeFunc(ctx, img, analysisContext)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTransformer) Generate(ctx context.Context, input gateway.GenerateInput) (*model.Image, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, input)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTransformer) Enhance(ctx context.Context, img *model.Image, presetID model.PresetID) (*model.Image, error) {
	if m.enhanceFunc != nil {
		return m.enhanceFunc(ctx, img, presetID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTransformer) Edit(ctx context.Context, img *model.Image, request string) (*model.Image, error) {
	if m.editFunc != nil {
		return m.editFunc(ctx, img, request)
	}
	return nil, errors.New("not implemented")
}

func newImage() *model.Image {
	return &model.Image{Name: "a.png", MIMEType: "image/png", Data: []byte("a")}
}

func TestInitialStatus(t *testing.T) {
	c := processing.New(&mockTransformer{})
	st := c.Status()
	gt.Equal(t, st.State, processing.StateIdle)
	gt.Equal(t, st.Active, processing.KindNone)
	gt.Nil(t, st.Err)
	gt.Equal(t, st.Message, "")
	gt.False(t, st.Busy())
	gt.False(t, c.Busy())
}

func TestStartRejectedWhileProcessing(t *testing.T) {
	c := processing.New(&mockTransformer{})

	tok, err := c.Start(processing.KindEnhancing)
	gt.NoError(t, err)
	gt.NotEqual(t, tok, processing.Token(""))

	_, err = c.Start(processing.KindGenerating)
	gt.True(t, errors.Is(err, model.ErrBusy))

	st := c.Status()
	gt.Equal(t, st.State, processing.StateProcessing)
	gt.Equal(t, st.Active, processing.KindEnhancing)
	gt.Nil(t, st.Err)

	gt.True(t, c.Succeed(tok))
	gt.Equal(t, c.Status().State, processing.StateReady)
	gt.Equal(t, c.Status().Active, processing.KindNone)
}

func TestLateCallbackIsIgnored(t *testing.T) {
	c := processing.New(&mockTransformer{})

	t1, err := c.Start(processing.KindEditing)
	gt.NoError(t, err)
	gt.True(t, c.Succeed(t1))

	t2, err := c.Start(processing.KindEditing)
	gt.NoError(t, err)

	// duplicate late callbacks of the first operation
	gt.False(t, c.Succeed(t1))
	gt.False(t, c.Fail(t1, errors.New("late")))

	st := c.Status()
	gt.Equal(t, st.State, processing.StateProcessing)
	gt.Equal(t, st.Active, processing.KindEditing)
	gt.Nil(t, st.Err)

	gt.True(t, c.Succeed(t2))
	gt.False(t, c.Fail(t1, errors.New("late")))
	gt.Equal(t, c.Status().State, processing.StateReady)
}

func TestSupersede(t *testing.T) {
	c := processing.New(&mockTransformer{})

	t1, err := c.Start(processing.KindAnalyzing)
	gt.NoError(t, err)

	c.Supersede()
	gt.Equal(t, c.Status().State, processing.StateIdle)
	gt.Equal(t, c.Status().Active, processing.KindNone)

	gt.False(t, c.Succeed(t1))
	gt.False(t, c.Fail(t1, errors.New("late")))
	gt.Equal(t, c.Status().State, processing.StateIdle)

	t2, err := c.Start(processing.KindAnalyzing)
	gt.NoError(t, err)
	gt.NotEqual(t, t1, t2)
}

func TestFailAndClearError(t *testing.T) {
	c := processing.New(&mockTransformer{})

	tok, err := c.Start(processing.KindEnhancing)
	gt.NoError(t, err)
	gt.True(t, c.Fail(tok, goerr.Wrap(model.ErrSafetyRejected, "blocked")))

	st := c.Status()
	gt.Equal(t, st.State, processing.StateError)
	gt.Equal(t, st.ErrorKind, model.ErrorKindSafetyRejected)
	gt.S(t, st.Message).Contains("safety")
	gt.False(t, st.CredentialsMissing)

	c.ClearError()
	st = c.Status()
	gt.Equal(t, st.State, processing.StateIdle)
	gt.Nil(t, st.Err)
	gt.Equal(t, st.Message, "")
}

func TestStartClearsPreviousError(t *testing.T) {
	c := processing.New(&mockTransformer{})

	tok, err := c.Start(processing.KindEditing)
	gt.NoError(t, err)
	c.Fail(tok, goerr.Wrap(model.ErrCredentialsMissing, "no key"))
	gt.True(t, c.Status().CredentialsMissing)

	_, err = c.Start(processing.KindEditing)
	gt.NoError(t, err)
	st := c.Status()
	gt.Nil(t, st.Err)
	gt.False(t, st.CredentialsMissing)
}

func TestClearErrorOutsideErrorState(t *testing.T) {
	c := processing.New(&mockTransformer{})
	c.ClearError()
	gt.Equal(t, c.Status().State, processing.StateIdle)

	tok, _ := c.Start(processing.KindEditing)
	c.ClearError()
	gt.Equal(t, c.Status().State, processing.StateProcessing)
	c.Succeed(tok)
	c.ClearError()
	gt.Equal(t, c.Status().State, processing.StateReady)
}

func TestRunOperations(t *testing.T) {
	var sawKind processing.Kind
	var c *processing.Coordinator
	mock := &mockTransformer{
		enhanceFunc: func(ctx context.Context, img *model.Image, presetID model.PresetID) (*model.Image, error) {
			sawKind = c.Status().Active
			return &model.Image{Name: string(presetID), MIMEType: "image/png", Data: []byte("x")}, nil
		},
		editFunc: func(ctx context.Context, img *model.Image, request string) (*model.Image, error) {
			return nil, goerr.Wrap(model.ErrMalformedResponse, "no image")
		},
	}
	c = processing.New(mock)

	out, err := c.Enhance(context.Background(), newImage(), "golden_hour")
	gt.NoError(t, err)
	gt.Equal(t, out.Name, "golden_hour")
	gt.Equal(t, sawKind, processing.KindEnhancing)
	gt.Equal(t, c.Status().State, processing.StateReady)

	_, err = c.Edit(context.Background(), newImage(), "brighter")
	gt.True(t, errors.Is(err, model.ErrMalformedResponse))
	gt.Equal(t, c.Status().State, processing.StateError)
	gt.Equal(t, c.Status().ErrorKind, model.ErrorKindMalformedResponse)
}

func TestRunSupersededResult(t *testing.T) {
	var c *processing.Coordinator
	mock := &mockTransformer{
		analyzeFunc: func(ctx context.Context, img *model.Image, analysisContext string) (*model.AnalysisResult, error) {
			// a new upload arrives while the call is in flight
			c.Supersede()
			return &model.AnalysisResult{Analysis: "late"}, nil
		},
		generateFunc: func(ctx context.Context, input gateway.GenerateInput) (*model.Image, error) {
			c.Supersede()
			return nil, goerr.Wrap(model.ErrTransient, "late failure")
		},
	}
	c = processing.New(mock)

	res, err := c.Analyze(context.Background(), newImage(), "ctx")
	gt.Nil(t, res)
	gt.True(t, errors.Is(err, model.ErrStaleResult))
	gt.Equal(t, c.Status().State, processing.StateIdle)

	_, err = c.Generate(context.Background(), gateway.GenerateInput{})
	gt.True(t, errors.Is(err, model.ErrStaleResult))
	gt.False(t, errors.Is(err, model.ErrTransient))
	st := c.Status()
	gt.Equal(t, st.State, processing.StateIdle)
	gt.Nil(t, st.Err)
	gt.Equal(t, st.Message, "")
}

func TestRunRejectedWhileBusy(t *testing.T) {
	calls := 0
	mock := &mockTransformer{
		editFunc: func(ctx context.Context, img *model.Image, request string) (*model.Image, error) {
			calls++
			return newImage(), nil
		},
	}
	c := processing.New(mock)

	tok, err := c.Start(processing.KindGenerating)
	gt.NoError(t, err)

	_, err = c.Edit(context.Background(), newImage(), "brighter")
	gt.True(t, errors.Is(err, model.ErrBusy))
	gt.Equal(t, calls, 0)
	gt.Equal(t, c.Status().Active, processing.KindGenerating)
	gt.True(t, c.Succeed(tok))
}

func TestResetIdle(t *testing.T) {
	c := processing.New(&mockTransformer{})

	token, err := c.Start(processing.KindEnhancing)
	gt.NoError(t, err)

	err = c.ResetIdle()
	gt.True(t, errors.Is(err, model.ErrBusy))
	gt.Equal(t, c.Status().State, processing.StateProcessing)
	gt.Equal(t, c.Status().Active, processing.KindEnhancing)

	gt.True(t, c.Fail(token, goerr.Wrap(model.ErrSafetyRejected, "blocked")))
	gt.NoError(t, c.ResetIdle())

	st := c.Status()
	gt.Equal(t, st.State, processing.StateIdle)
	gt.Nil(t, st.Err)
	gt.False(t, c.Succeed(token))
}
