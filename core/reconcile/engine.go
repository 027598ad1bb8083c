package reconcile

import (
	"context"
	"fmt"
)

// ReconcileWithPlan builds the inventory and returns a plan with results and actions.
// It does NOT execute actions; use ApplyPlan for that.
func ReconcileWithPlan(ctx context.Context, adapter Adapter, opts ReconcileOptions) (*ReconcilePlan, error) {
	inv, err := BuildInventory(ctx, adapter)
	if err != nil {
		return nil, err
	}
	return PlanFromInventory(ctx, adapter, inv)
}

// PlanFromInventory compares every local entity with its remote counterpart.
// Local content is read here, once per accepted entity.
func PlanFromInventory(ctx context.Context, adapter Adapter, inv *Inventory) (*ReconcilePlan, error) {
	plan := &ReconcilePlan{
		Results: make([]ReconcileResult, 0, len(inv.Local)),
		Actions: []Action{},
		Orphans: []string{},
	}
	plan.Summary.TotalLocal = len(inv.Local)
	plan.Summary.TotalRemote = len(inv.Remote)

	seen := make(map[string]struct{}, len(inv.Local))

	for _, item := range inv.Local {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen[item.Key] = struct{}{}

		ok, reason, err := adapter.Accept(item)
		if err != nil {
			return nil, err
		}
		remote, remotePresent := inv.RemoteIndex[item.Key]

		result := ReconcileResult{
			Key:           item.Key,
			RemotePresent: remotePresent,
		}
		if remotePresent {
			result.RemoteID = remote.ID
		}

		if !ok {
			result.Ignored = true
			result.Reason = reason
			plan.Results = append(plan.Results, result)
			plan.Summary.Ignored++
			continue
		}

		content, err := adapter.ReadLocal(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", item.Key, err)
		}

		switch {
		case !remotePresent:
			plan.Actions = append(plan.Actions, Action{
				Type:    ActionCreate,
				Key:     item.Key,
				Reason:  "missing remotely",
				Content: content,
			})
			plan.Summary.CreateActions++
		case content != remote.Content:
			result.Changed = true
			plan.Actions = append(plan.Actions, Action{
				Type:     ActionUpdate,
				Key:      item.Key,
				RemoteID: remote.ID,
				Reason:   "content differs",
				Content:  content,
				Previous: remote.Content,
			})
			plan.Summary.UpdateActions++
		default:
			plan.Summary.Unchanged++
		}

		plan.Results = append(plan.Results, result)
	}

	for _, remote := range inv.Remote {
		if _, ok := seen[remote.Key]; ok {
			continue
		}
		// Mark so duplicated remote keys are reported once.
		seen[remote.Key] = struct{}{}
		plan.Orphans = append(plan.Orphans, remote.Key)
	}
	plan.Summary.Orphans = len(plan.Orphans)

	return plan, nil
}
