// Package draft implements editing sessions over hierarchical entities: a
// mutable working copy held against the last confirmed snapshot, with nested
// collection editing, tree-wide validation and change detection.
package draft

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tekus/provider-console/internal/api"
)

var (
	// ErrNotReady is returned for operations on a session that has not been
	// opened or is still waiting for its directory.
	ErrNotReady = errors.New("draft session not ready")
	// ErrBusy is returned while a save is in flight.
	ErrBusy = errors.New("draft session is saving")
	// ErrInvalid is returned by save when the tree does not validate.
	ErrInvalid = errors.New("draft is not valid")
	// ErrUnchanged is returned by save when the draft equals the snapshot.
	ErrUnchanged = errors.New("draft has no changes")
	// ErrClosed is returned for operations on a terminated session.
	ErrClosed = errors.New("draft session closed")
)

// Cloner is implemented by entities that can produce independent copies.
type Cloner[E any] interface {
	Clone() E
}

// Tree is the editable working copy of an entity of type E.
type Tree[E any] interface {
	// Load replaces the tree contents with a copy of snapshot.
	Load(snapshot E)
	// Validate aggregates validity over every node.
	Validate() Report
	// Differs reports whether the tree's complete rows differ from snapshot.
	Differs(snapshot E) bool
	// Sanitize returns the entity with incomplete rows removed.
	Sanitize() E
}

// DirectoryConsumer is implemented by trees whose relations are drawn from
// the country directory.
type DirectoryConsumer interface {
	NeedsDirectory() bool
	UseDirectory(entries []api.Country)
}

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StatePending
	StateReady
	StateSaving
	StateClosed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	case StateClosed:
		return "closed"
	}
	return "idle"
}

// CancelOutcome is the answer to a cancel request.
type CancelOutcome int

const (
	// CancelClosed means the draft was clean and the session terminated.
	CancelClosed CancelOutcome = iota
	// CancelNeedsConfirm means the draft has changes; call ConfirmCancel.
	CancelNeedsConfirm
)

// Outcome is reported to the caller when a session closes.
type Outcome[E any] struct {
	Saved  bool
	Entity *E
}

// Persister forwards a sanitized entity to the backing store.
type Persister[E any] func(ctx context.Context, entity E) error

// Session owns one snapshot and one draft. It is not safe for concurrent use;
// callers drive it from a single event loop.
type Session[E Cloner[E], T Tree[E]] struct {
	surface  string
	tree     T
	consumer DirectoryConsumer

	snapshot  E
	pending   *E
	inflight  E
	directory []api.Country
	hasDir    bool

	report  Report
	dirty   bool
	state   State
	outcome Outcome[E]
	logger  zerolog.Logger
}

// NewSession returns an idle session editing through tree. surface names the
// editing surface in logs.
func NewSession[E Cloner[E], T Tree[E]](surface string, tree T, logger zerolog.Logger) *Session[E, T] {
	s := &Session[E, T]{
		surface: surface,
		tree:    tree,
		logger:  logger.With().Str("surface", surface).Logger(),
	}
	if c, ok := any(tree).(DirectoryConsumer); ok && c.NeedsDirectory() {
		s.consumer = c
	}
	return s
}

// Open starts editing a copy of snapshot. When the tree needs the directory
// and none has arrived yet, the session stays pending until SetDirectory.
func (s *Session[E, T]) Open(snapshot E) error {
	if s.state == StateSaving {
		return ErrBusy
	}
	s.outcome = Outcome[E]{}
	s.report = Report{}
	s.dirty = false
	snap := snapshot.Clone()
	if s.consumer != nil && !s.hasDir {
		s.pending = &snap
		s.state = StatePending
		s.logger.Debug().Msg("session waiting for directory")
		return nil
	}
	s.init(snap)
	return nil
}

// SetDirectory supplies the reference list. A pending open completes here;
// later calls only refresh the candidates.
func (s *Session[E, T]) SetDirectory(entries []api.Country) {
	s.directory = append([]api.Country(nil), entries...)
	s.hasDir = true
	if s.consumer == nil {
		return
	}
	s.consumer.UseDirectory(s.directory)
	if s.state == StatePending && s.pending != nil {
		snap := *s.pending
		s.pending = nil
		s.init(snap)
	}
}

func (s *Session[E, T]) init(snapshot E) {
	s.snapshot = snapshot
	s.tree.Load(snapshot.Clone())
	s.state = StateReady
	s.recompute()
	s.logger.Info().Bool("valid", s.report.Valid()).Msg("session opened")
}

// recompute is the single place validity and dirty state are derived.
func (s *Session[E, T]) recompute() {
	s.report = s.tree.Validate()
	s.dirty = s.tree.Differs(s.snapshot)
}

func (s *Session[E, T]) editable() error {
	switch s.state {
	case StateReady:
		return nil
	case StateSaving:
		return ErrBusy
	case StateClosed:
		return ErrClosed
	}
	return ErrNotReady
}

// Apply runs one mutation against the draft followed by recomputation.
func (s *Session[E, T]) Apply(fn func(tree T)) error {
	if err := s.editable(); err != nil {
		return err
	}
	fn(s.tree)
	s.recompute()
	return nil
}

// RequestCancel terminates a clean session, or asks for confirmation when the
// draft has changes.
func (s *Session[E, T]) RequestCancel() (CancelOutcome, error) {
	switch s.state {
	case StateSaving:
		return CancelClosed, ErrBusy
	case StateClosed, StateIdle:
		return CancelClosed, ErrClosed
	}
	if s.dirty {
		return CancelNeedsConfirm, nil
	}
	s.close(Outcome[E]{})
	s.logger.Info().Msg("session cancelled")
	return CancelClosed, nil
}

// ConfirmCancel discards the draft and terminates the session.
func (s *Session[E, T]) ConfirmCancel() error {
	switch s.state {
	case StateSaving:
		return ErrBusy
	case StateClosed, StateIdle:
		return ErrClosed
	}
	s.close(Outcome[E]{})
	s.logger.Info().Msg("session discarded")
	return nil
}

// BeginSave enters the saving state and returns the sanitized payload.
func (s *Session[E, T]) BeginSave() (E, error) {
	var zero E
	if err := s.editable(); err != nil {
		return zero, err
	}
	if !s.report.Valid() {
		return zero, ErrInvalid
	}
	if !s.dirty {
		return zero, ErrUnchanged
	}
	s.inflight = s.tree.Sanitize()
	s.state = StateSaving
	s.logger.Debug().Msg("save started")
	return s.inflight.Clone(), nil
}

// FinishSave leaves the saving state. On success the payload becomes the
// snapshot and the session closes; on failure the draft is kept as it was.
func (s *Session[E, T]) FinishSave(err error) (Outcome[E], error) {
	if s.state != StateSaving {
		return Outcome[E]{}, ErrNotReady
	}
	if err != nil {
		s.state = StateReady
		s.logger.Warn().Err(err).Msg("save failed")
		return Outcome[E]{}, err
	}
	s.snapshot = s.inflight
	saved := s.inflight.Clone()
	s.dirty = false
	s.close(Outcome[E]{Saved: true, Entity: &saved})
	s.logger.Info().Msg("session saved")
	return s.outcome, nil
}

// Save runs BeginSave, persist and FinishSave in sequence.
func (s *Session[E, T]) Save(ctx context.Context, persist Persister[E]) (Outcome[E], error) {
	payload, err := s.BeginSave()
	if err != nil {
		return Outcome[E]{}, err
	}
	return s.FinishSave(persist(ctx, payload))
}

func (s *Session[E, T]) close(outcome Outcome[E]) {
	s.pending = nil
	s.outcome = outcome
	s.state = StateClosed
}

// Tree exposes the draft for rendering. Mutate it only through Apply.
func (s *Session[E, T]) Tree() T { return s.tree }

// Snapshot returns a copy of the last confirmed entity.
func (s *Session[E, T]) Snapshot() E { return s.snapshot.Clone() }

// Report returns the current validation report.
func (s *Session[E, T]) Report() Report { return s.report }

func (s *Session[E, T]) Valid() bool   { return s.report.Valid() }
func (s *Session[E, T]) Dirty() bool   { return s.dirty }
func (s *Session[E, T]) Loading() bool { return s.state == StateSaving }
func (s *Session[E, T]) State() State  { return s.state }

// Directory returns the reference list the session was given.
func (s *Session[E, T]) Directory() []api.Country {
	return append([]api.Country(nil), s.directory...)
}

// CanSave reports whether BeginSave would succeed.
func (s *Session[E, T]) CanSave() bool {
	return s.state == StateReady && s.report.Valid() && s.dirty
}

// Outcome returns the close result; zero until the session terminates.
func (s *Session[E, T]) Outcome() Outcome[E] { return s.outcome }
