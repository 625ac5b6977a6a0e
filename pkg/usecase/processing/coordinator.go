package processing

import (
	"log/slog"
	"sync"

	"github.com/automate-travel/studio/pkg/model"
	"github.com/automate-travel/studio/pkg/utils/logging"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateReady      State = "ready"
	StateError      State = "error"
)

// Kind is the operation in flight. It is KindNone unless the state is
// StateProcessing.
type Kind string

const (
	KindNone       Kind = "none"
	KindAnalyzing  Kind = "analyzing"
	KindGenerating Kind = "generating"
	KindEnhancing  Kind = "enhancing"
	KindEditing    Kind = "editing"
)

// Token identifies one started operation. Only the latest token may resolve.
type Token string

// Status is a snapshot of the coordinator
type Status struct {
	State     State
	Active    Kind
	Err       error
	ErrorKind model.ErrorKind
	Message   string

	// CredentialsMissing freezes the session behind a configuration prompt
	CredentialsMissing bool
}

// Busy reports whether an operation is in flight
func (s Status) Busy() bool {
	return s.State == StateProcessing
}

// Coordinator serializes model operations: at most one is in flight and a
// superseded operation can never change the state.
type Coordinator struct {
	mu     sync.Mutex
	state  State
	active Kind
	token  Token
	err    error

	transformer Transformer
	logger      *slog.Logger
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// New creates a Coordinator running its operations on t
func New(t Transformer, opts ...Option) *Coordinator {
	c := &Coordinator{
		state:       StateIdle,
		active:      KindNone,
		transformer: t,
		logger:      logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newToken() Token {
	return Token(uuid.New().String())
}

// Start begins an operation of kind. The previous error is cleared
// optimistically. While another operation is in flight it fails with
// model.ErrBusy and changes nothing.
func (c *Coordinator) Start(kind Kind) (Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateProcessing {
		return "", goerr.Wrap(model.ErrBusy, "cannot start operation",
			goerr.V("requested", kind), goerr.V("active", c.active))
	}

	c.state = StateProcessing
	c.active = kind
	c.err = nil
	c.token = newToken()
	return c.token, nil
}

// Succeed resolves the operation identified by token. It returns false and
// does nothing when the token is stale.
func (c *Coordinator) Succeed(token Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.current(token) {
		return false
	}
	c.state = StateReady
	c.active = KindNone
	return true
}

// Fail records err for the operation identified by token. It returns false
// and does nothing when the token is stale.
func (c *Coordinator) Fail(token Token, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.current(token) {
		return false
	}
	c.state = StateError
	c.active = KindNone
	c.err = err
	return true
}

func (c *Coordinator) current(token Token) bool {
	return c.state == StateProcessing && token != "" && token == c.token
}

// ClearError dismisses the error banner
func (c *Coordinator) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateError:
		c.state = StateIdle
		c.err = nil
	case StateReady:
		c.err = nil
	}
}

// Supersede abandons the operation in flight, if any. Its eventual result
// will be discarded.
func (c *Coordinator) Supersede() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = newToken()
	if c.state == StateProcessing {
		c.logger.Debug("operation superseded", "kind", c.active)
		c.state = StateIdle
		c.active = KindNone
	}
}

// Reset returns to the initial idle state without an error
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = newToken()
	c.state = StateIdle
	c.active = KindNone
	c.err = nil
}

// ResetIdle is Reset, refused with model.ErrBusy while an operation is in
// flight. The check and the reset happen under one lock.
func (c *Coordinator) ResetIdle() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateProcessing {
		return goerr.Wrap(model.ErrBusy, "cannot reset", goerr.V("active", c.active))
	}
	c.token = newToken()
	c.state = StateIdle
	c.active = KindNone
	c.err = nil
	return nil
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	kind := model.Classify(c.err)
	return Status{
		State:              c.state,
		Active:             c.active,
		Err:                c.err,
		ErrorKind:          kind,
		Message:            model.UserMessage(c.err),
		CredentialsMissing: kind == model.ErrorKindCredentialsMissing,
	}
}

func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateProcessing
}
