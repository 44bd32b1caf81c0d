// Package sheet is the host adapter around the action dispatcher: it owns the
// read-modify-write cycle against a document store and executes effects.
package sheet

//go:generate mockgen -destination=mock/mock_service.go -package=mocksheet -source=service.go

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wastehunter/internal/game/action"
	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/game/dice"
	"github.com/cory-johannsen/wastehunter/internal/game/ledger"
	"github.com/cory-johannsen/wastehunter/internal/observability"
)

// Store reads entity snapshots and writes partial updates.
type Store interface {
	Load(ctx context.Context, id string) (*character.Entity, error)
	Update(ctx context.Context, id string, patch character.Patch) error
}

// Evaluator realizes a dice pool.
type Evaluator interface {
	Evaluate(ctx context.Context, spec dice.FormulaSpec, label string) (dice.PoolResult, error)
}

// Notifier shows a message to the user. It is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, entityID string, n action.Notification)
}

// RollResult pairs a roll request with its realized result.
type RollResult struct {
	Label  string
	Result dice.PoolResult
}

// Report describes everything that happened while handling one command.
type Report struct {
	Outcome   action.Outcome
	Persisted bool
	Rolls     []RollResult
}

// Service owns the read-modify-write cycle for entity documents.
type Service struct {
	store      Store
	dispatcher *action.Dispatcher
	evaluator  Evaluator
	notifier   Notifier
	logger     *zap.Logger
	locks      *keyedMutex
}

// NewService creates a Service.
//
// Precondition: all arguments are non-nil.
func NewService(store Store, dispatcher *action.Dispatcher, evaluator Evaluator, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		evaluator:  evaluator,
		notifier:   notifier,
		logger:     logger,
		locks:      newKeyedMutex(),
	}
}

// Handle runs cmd against the current snapshot of cmd.EntityID: load,
// dispatch, persist the patch, evaluate roll requests, then send
// notifications. Commands for the same entity never interleave.
//
// Postcondition: a dispatch or persist failure is notified at error level
// and returned; nothing is retried and no roll is evaluated after it.
func (s *Service) Handle(ctx context.Context, cmd action.Command) (Report, error) {
	if cmd.EntityID == "" {
		return Report{}, errors.New("sheet: command without entity id")
	}
	unlock := s.locks.Lock(cmd.EntityID)
	defer unlock()

	snapshot, err := s.store.Load(ctx, cmd.EntityID)
	if err != nil {
		s.fail(ctx, cmd, err)
		return Report{}, fmt.Errorf("sheet: loading %q: %w", cmd.EntityID, err)
	}

	out, err := s.dispatcher.Handle(cmd, snapshot)
	if err != nil {
		s.fail(ctx, cmd, err)
		return Report{}, err
	}
	report := Report{Outcome: out}

	if p, ok := out.Persist(); ok {
		if err := s.store.Update(ctx, p.EntityID, p.Patch); err != nil {
			s.fail(ctx, cmd, err)
			return report, fmt.Errorf("sheet: persisting %q: %w", cmd.EntityID, err)
		}
		report.Persisted = true
	}

	for _, rr := range out.Rolls() {
		res, err := s.evaluator.Evaluate(ctx, rr.Spec, rr.Label)
		if err != nil {
			s.fail(ctx, cmd, err)
			return report, fmt.Errorf("sheet: rolling %s: %w", rr.Label, err)
		}
		report.Rolls = append(report.Rolls, RollResult{Label: rr.Label, Result: res})
		s.notifier.Notify(ctx, cmd.EntityID, action.Notification{
			Level:   action.LevelInfo,
			Message: fmt.Sprintf("%s: %s", rr.Label, res),
		})
	}

	for _, n := range out.Notifications() {
		s.notifier.Notify(ctx, cmd.EntityID, n)
	}

	s.logger.Debug("handled command", append(observability.CommandFields(cmd),
		zap.Int("effects", len(out.Effects)),
		zap.Bool("persisted", report.Persisted),
	)...)
	return report, nil
}

// fail logs err and surfaces its user-facing message.
func (s *Service) fail(ctx context.Context, cmd action.Command, err error) {
	s.logger.Warn("command failed", append(observability.CommandFields(cmd), zap.Error(err))...)
	s.notifier.Notify(ctx, cmd.EntityID, action.Notification{
		Level:   action.LevelError,
		Message: UserMessage(err),
	})
}

// UserMessage strips handler context from err where a typed ledger error
// carries a message meant for the user.
func UserMessage(err error) string {
	var mc *ledger.MissingCompanionError
	if errors.As(err, &mc) {
		return mc.Error()
	}
	var ir *ledger.InvalidReferenceError
	if errors.As(err, &ir) {
		return ir.Error()
	}
	return err.Error()
}
