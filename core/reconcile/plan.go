package reconcile

import (
	"context"
	"fmt"
)

// ApplyPlan executes the actions in a reconcile plan, in plan order.
// Execution stops at the first failing action; the returned result describes
// what was applied up to that point, including a failing action whose error
// is an AppliedError.
// Requires opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, adapter Adapter, plan *ReconcilePlan, opts ReconcileOptions) (*ApplyResult, error) {
	result := &ApplyResult{ChangeSet: []string{}}

	// Safety check: do not execute on dry-run
	if opts.DryRun || len(plan.Actions) == 0 {
		return result, nil
	}

	mutator, ok := adapter.(Mutator)
	if !ok {
		return result, fmt.Errorf("adapter %s does not implement Mutator interface", adapter.Name())
	}

	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		switch action.Type {
		case ActionCreate:
			err := mutator.Create(ctx, action)
			if err == nil || IsApplied(err) {
				result.Created++
			}
			if err != nil {
				return result, fmt.Errorf("failed to create %s: %w", action.Key, err)
			}
		case ActionUpdate:
			err := mutator.Update(ctx, action)
			if err == nil || IsApplied(err) {
				result.Updated++
				result.ChangeSet = append(result.ChangeSet, action.RemoteID)
			}
			if err != nil {
				return result, fmt.Errorf("failed to update %s: %w", action.Key, err)
			}
		default:
			return result, fmt.Errorf("unknown action type %q for %s", action.Type, action.Key)
		}
	}

	return result, nil
}

// PublishChanges issues one publish call covering the whole change set.
// It does nothing when the change set is empty, on dry-run, or when the
// adapter has no publish step. Returns whether a publish call was made.
func PublishChanges(ctx context.Context, adapter Adapter, result *ApplyResult, opts ReconcileOptions) (bool, error) {
	if opts.DryRun || len(result.ChangeSet) == 0 {
		return false, nil
	}

	publisher, ok := adapter.(Publisher)
	if !ok {
		return false, nil
	}

	if err := publisher.Publish(ctx, result.ChangeSet); err != nil {
		return false, fmt.Errorf("failed to publish %d changes: %w", len(result.ChangeSet), err)
	}
	result.Published = true
	return true, nil
}

// ReconcileAndApply is a convenience wrapper that plans, applies and publishes.
// It returns the plan, the apply result, and any error.
func ReconcileAndApply(ctx context.Context, adapter Adapter, opts ReconcileOptions) (*ReconcilePlan, *ApplyResult, error) {
	plan, err := ReconcileWithPlan(ctx, adapter, opts)
	if err != nil {
		return nil, nil, err
	}

	result, err := ApplyPlan(ctx, adapter, plan, opts)
	if err != nil {
		return plan, result, err
	}

	if _, err := PublishChanges(ctx, adapter, result, opts); err != nil {
		return plan, result, err
	}
	return plan, result, nil
}
