// Package reconcile provides a generic one-way reconciliation of a local source
// into a remote store.
//
// # Architecture
//
// The reconcile system consists of three main components:
//
// 1. Inventory: both sides are loaded concurrently through the adapter. Remote
//    items are indexed by key, first occurrence wins.
//
// 2. Plan: every local item is compared with its remote counterpart by encoded
//    content. Missing items become creates, differing items become updates,
//    equal items are left alone. Remote items without a local counterpart are
//    reported as orphans and never touched.
//
// 3. Apply: actions run sequentially in local order and stop at the first
//    failure. Ids of updated items form the change set, which is published in
//    a single call when the adapter implements Publisher.
//
// # Usage Example
//
//	adapter := webresource.NewAdapter(opts)
//
//	plan, err := reconcile.ReconcileWithPlan(ctx, adapter, reconcile.ReconcileOptions{})
//	result, err := reconcile.ApplyPlan(ctx, adapter, plan, reconcile.ReconcileOptions{})
//	published, err := reconcile.PublishChanges(ctx, adapter, result, reconcile.ReconcileOptions{})
//
// # Creating Adapters
//
// Implement Adapter for loading and reading, Mutator for applying actions and
// optionally Publisher. See feature/webresource for a complete example.
package reconcile
