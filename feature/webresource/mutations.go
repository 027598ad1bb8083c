package webresource

// Mutation methods implementing reconcile.Mutator and reconcile.Publisher

import (
	"context"
	"fmt"

	"webresource-sync/core/dataverse"
	"webresource-sync/core/journal"
	"webresource-sync/core/reconcile"

	"go.uber.org/zap"
)

// Create creates the web resource inside the solution in a single request.
func (a *Adapter) Create(ctx context.Context, action reconcile.Action) error {
	resourceType, ok := TypeForPath(action.Key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExtension, action.Key)
	}

	a.logger.Info("Creating", zap.String("file", action.Key), zap.Stringer("type", resourceType))

	id, err := a.client.CreateWebResource(ctx, dataverse.WebResource{
		Name:            action.Key,
		DisplayName:     action.Key,
		Content:         action.Content,
		WebResourceType: int(resourceType),
	}, a.solution.UniqueName)
	if err != nil {
		return err
	}

	return a.record(ctx, action, id)
}

// Update backs up the previous content when a backup store is set, then
// replaces the content of the web resource. Other columns are left untouched.
func (a *Adapter) Update(ctx context.Context, action reconcile.Action) error {
	if action.RemoteID == "" {
		return fmt.Errorf("update of %s has no remote id", action.Key)
	}

	a.logger.Info("Updating", zap.String("file", action.Key), zap.String("id", action.RemoteID))

	if a.backup != nil {
		if err := a.backup.Save(ctx, action.Key, action.Previous); err != nil {
			return err
		}
	}

	if err := a.client.UpdateWebResourceContent(ctx, action.RemoteID, action.Content); err != nil {
		return err
	}

	return a.record(ctx, action, action.RemoteID)
}

// Publish publishes every id in one PublishXml call.
func (a *Adapter) Publish(ctx context.Context, ids []string) error {
	parameterXML, err := dataverse.BuildPublishXML(ids)
	if err != nil {
		return err
	}

	a.logger.Info("Publishing", zap.Int("count", len(ids)))
	return a.client.PublishXML(ctx, parameterXML)
}

func (a *Adapter) record(ctx context.Context, action reconcile.Action, resourceID string) error {
	err := a.recorder.Record(ctx, &journal.Entry{
		RunID:      a.runID,
		Name:       action.Key,
		Action:     string(action.Type),
		ResourceID: resourceID,
	})
	if err != nil {
		return &reconcile.AppliedError{
			Err: fmt.Errorf("applied %s of %s but could not journal it: %w", action.Type, action.Key, err),
		}
	}
	return nil
}
