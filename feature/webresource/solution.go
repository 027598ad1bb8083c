package webresource

import (
	"context"
	"fmt"
	"net/http"

	"webresource-sync/core/dataverse"

	"go.uber.org/zap"
)

// ResolveSolution returns the first solution whose unique name equals name.
// It wraps dataverse.ErrSolutionNotFound when there is none.
func ResolveSolution(ctx context.Context, client dataverse.Client, name string, logger *zap.Logger) (*dataverse.Solution, error) {
	solutions, err := client.RetrieveSolutions(ctx, name)
	if err != nil {
		if dataverse.IsStatus(err, http.StatusUnauthorized) || dataverse.IsStatus(err, http.StatusForbidden) {
			return nil, fmt.Errorf("failed to query solution %s, check the credentials and security role of the connection: %w", name, err)
		}
		return nil, fmt.Errorf("failed to query solution %s: %w", name, err)
	}
	if len(solutions) == 0 {
		return nil, fmt.Errorf("%w: %s", dataverse.ErrSolutionNotFound, name)
	}
	if len(solutions) > 1 {
		logger.Warn("Several solutions share this unique name, using the first",
			zap.String("solution", name),
			zap.Int("matches", len(solutions)),
		)
	}

	solution := solutions[0]
	logger.Debug("Resolved solution",
		zap.String("id", solution.ID),
		zap.String("version", solution.Version),
	)
	return &solution, nil
}
