package reconcile

import (
	"context"
	"errors"
)

// Adapter defines the interface for model-specific reconciliation logic.
// Each adapter implements how to load both sides, decide which local entities
// take part, and read local content in the encoding used remotely.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g., "webresource").
	Name() string

	// LoadRemoteIndex loads every remote entity in scope. Duplicated keys are
	// allowed; the first occurrence wins when matching.
	LoadRemoteIndex(ctx context.Context) ([]RemoteItem, error)

	// LoadLocalIndex loads every local entity in a stable order. Actions are
	// planned and applied in this order.
	LoadLocalIndex(ctx context.Context) ([]LocalItem, error)

	// Accept decides whether a local entity takes part in the sync.
	// ok=false with a reason marks the entity as ignored. A non-nil error aborts planning.
	Accept(item LocalItem) (ok bool, reason string, err error)

	// ReadLocal returns the local content encoded the way the remote stores it,
	// so that equality can be decided by string comparison.
	ReadLocal(ctx context.Context, item LocalItem) (string, error)
}

// Mutator is implemented by adapters able to apply planned actions.
type Mutator interface {
	// Create creates the remote entity described by an ActionCreate.
	Create(ctx context.Context, action Action) error

	// Update replaces the remote content for an ActionUpdate.
	Update(ctx context.Context, action Action) error
}

// AppliedError is returned by a Mutator when the remote change took effect
// but a follow-up step failed. ApplyPlan still counts the action.
type AppliedError struct {
	Err error
}

func (e *AppliedError) Error() string {
	return e.Err.Error()
}

func (e *AppliedError) Unwrap() error {
	return e.Err
}

// IsApplied reports whether err says the mutation reached the remote store.
func IsApplied(err error) bool {
	var applied *AppliedError
	return errors.As(err, &applied)
}

// Publisher is implemented by adapters whose remote store needs an explicit
// publish step after updates.
type Publisher interface {
	// Publish makes the updated entities visible. ids is never empty.
	Publish(ctx context.Context, ids []string) error
}
