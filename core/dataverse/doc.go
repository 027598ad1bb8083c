// Package dataverse is a small client for the Dataverse (Dynamics 365) Web API.
//
// It covers exactly the calls needed to keep solution web resources in sync:
// solution lookup, listing the web resources linked to a solution, creating a
// web resource inside a solution, updating its content and publishing.
//
// # Connection strings
//
// Sessions are opened from the usual Dataverse connection string format:
//
//	AuthType=ClientSecret;Url=https://contoso.crm.dynamics.com;ClientId=...;ClientSecret=...;TenantId=...
//	AuthType=OAuth;Url=https://contoso.crm.dynamics.com;ClientId=...;Username=...;Password=...
//
// Tokens are obtained with golang.org/x/oauth2 and attached to every request.
//
// # Client Interface
//
// The Client interface hides the HTTP transport so callers can be tested with
// the testify mock in core/dataverse/mocks.
//
// # Usage
//
//	cs, err := dataverse.ParseConnectionString(raw)
//	client, err := dataverse.NewClient(ctx, cs, cfg.Dataverse)
//	solutions, err := client.RetrieveSolutions(ctx, "Contoso")
package dataverse
