// Package webresource synchronizes a local directory into the web resources of
// a Dataverse solution.
//
// # Adapter
//
// Adapter plugs the solution into the generic reconcile engine:
//   - LoadRemoteIndex lists the web resources linked to the solution.
//   - LoadLocalIndex walks the source tree (ScanLocal) minus excluded paths.
//   - Accept maps the extension to a ResourceType; unmapped extensions are
//     skipped or fail the run depending on the configured policy.
//   - ReadLocal base64 encodes the file, the form Dataverse stores content in.
//   - Create issues one create request scoped to the solution.
//   - Update optionally backs up the previous content, then patches content only.
//   - Publish sends every updated id in a single PublishXml call.
//
// # Usage
//
//	solution, err := webresource.ResolveSolution(ctx, client, "contoso", log)
//	adapter, err := webresource.NewAdapter(webresource.Options{
//	    Client:   client,
//	    Solution: *solution,
//	    Root:     "./dist",
//	    Config:   cfg.Sync,
//	})
//	plan, result, err := reconcile.ReconcileAndApply(ctx, adapter, reconcile.ReconcileOptions{})
package webresource
