package mocks

import (
	"context"

	"webresource-sync/core/dataverse"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of dataverse.Client
type Client struct {
	mock.Mock
}

func (m *Client) RetrieveSolutions(ctx context.Context, uniqueName string) ([]dataverse.Solution, error) {
	args := m.Called(ctx, uniqueName)
	if s, ok := args.Get(0).([]dataverse.Solution); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) RetrieveSolutionWebResources(ctx context.Context, solutionID string) ([]dataverse.WebResource, error) {
	args := m.Called(ctx, solutionID)
	if r, ok := args.Get(0).([]dataverse.WebResource); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateWebResource(ctx context.Context, resource dataverse.WebResource, solutionUniqueName string) (string, error) {
	args := m.Called(ctx, resource, solutionUniqueName)
	return args.String(0), args.Error(1)
}

func (m *Client) UpdateWebResourceContent(ctx context.Context, id, content string) error {
	args := m.Called(ctx, id, content)
	return args.Error(0)
}

func (m *Client) PublishXML(ctx context.Context, parameterXML string) error {
	args := m.Called(ctx, parameterXML)
	return args.Error(0)
}
