package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"webresource-sync/core/config"
	"webresource-sync/core/database"
	"webresource-sync/core/dataverse"
	dvmocks "webresource-sync/core/dataverse/mocks"
	"webresource-sync/core/reconcile"
	"webresource-sync/core/storage"
	storagemocks "webresource-sync/core/storage/mocks"
	"webresource-sync/feature/webresource"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

const (
	testSolutionID = "7d1c2e0a-4b8f-4a3e-9f6a-2b1c0d9e8f7a"
	testChangedID  = "22222222-2222-2222-2222-222222222222"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func newTestRun(t *testing.T, client dataverse.Client, files map[string]string) (*syncRun, *observer.ObservedLogs, *bytes.Buffer) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	core, logs := observer.New(zap.DebugLevel)
	out := &bytes.Buffer{}

	return &syncRun{
		client:   client,
		fs:       fs,
		cfg:      &config.Config{Sync: webresource.Config{UnknownExtension: webresource.PolicySkip}},
		logger:   zap.New(core),
		out:      out,
		runID:    "run-1",
		solution: "contoso",
		source:   "/src",
		openStorage: func(storage.Config) (storage.Client, error) {
			return nil, fmt.Errorf("storage not expected")
		},
		openDatabase: func(context.Context, database.Config) (*gorm.DB, error) {
			return nil, fmt.Errorf("database not expected")
		},
	}, logs, out
}

func scenarioClient() *dvmocks.Client {
	client := new(dvmocks.Client)
	client.On("RetrieveSolutions", mock.Anything, "contoso").
		Return([]dataverse.Solution{{ID: testSolutionID, UniqueName: "contoso"}}, nil)
	client.On("RetrieveSolutionWebResources", mock.Anything, testSolutionID).Return([]dataverse.WebResource{
		{ID: "11111111-1111-1111-1111-111111111111", Name: "b.css", Content: b64("body{}")},
		{ID: testChangedID, Name: "c.html", Content: b64("<p>old</p>")},
	}, nil)
	return client
}

var scenarioFiles = map[string]string{
	"/src/a.js":   "console.log('a')",
	"/src/b.css":  "body{}",
	"/src/c.html": "<p>new</p>",
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(fmt.Errorf("%w: contoso", dataverse.ErrSolutionNotFound)))
	assert.Equal(t, 2, exitCode(fmt.Errorf("boom")))
	assert.Equal(t, 2, exitCode(&dataverse.APIError{StatusCode: 500}))
}

func TestRootCmd_RequiresThreeArguments(t *testing.T) {
	assert.Error(t, RootCmd.Args(RootCmd, []string{"conn", "solution"}))
	assert.NoError(t, RootCmd.Args(RootCmd, []string{"conn", "solution", "./dist"}))
}

func TestExecute_Scenario(t *testing.T) {
	client := scenarioClient()
	client.On("CreateWebResource", mock.Anything, mock.MatchedBy(func(r dataverse.WebResource) bool {
		return r.Name == "a.js" && r.DisplayName == "a.js" && r.WebResourceType == 3
	}), "contoso").Return("33333333-3333-3333-3333-333333333333", nil).Once()
	client.On("UpdateWebResourceContent", mock.Anything, testChangedID, b64("<p>new</p>")).Return(nil).Once()
	client.On("PublishXML", mock.Anything,
		"<importexportxml><webresources><webresource>"+testChangedID+"</webresource></webresources></importexportxml>",
	).Return(nil).Once()

	run, logs, out := newTestRun(t, client, scenarioFiles)

	require.NoError(t, run.execute(context.Background()))

	client.AssertExpectations(t)
	assert.Equal(t, 1, logs.FilterMessage("Skipping, contents are the same").Len())
	assert.Equal(t, 1, logs.FilterMessage("All done").Len())
	assert.Contains(t, out.String(), "a.js")
	assert.Contains(t, out.String(), "c.html")
	assert.NotContains(t, out.String(), "b.css")
}

func TestExecute_SolutionNotFound(t *testing.T) {
	client := new(dvmocks.Client)
	client.On("RetrieveSolutions", mock.Anything, "contoso").Return([]dataverse.Solution{}, nil)

	run, logs, _ := newTestRun(t, client, scenarioFiles)

	err := run.execute(context.Background())
	assert.Equal(t, exitSolutionNotFound, exitCode(err))
	assert.Equal(t, 1, logs.FilterMessage("Solution not found").Len())
	client.AssertNotCalled(t, "RetrieveSolutionWebResources", mock.Anything, mock.Anything)
}

func TestExecute_DryRun(t *testing.T) {
	client := scenarioClient()
	run, logs, _ := newTestRun(t, client, scenarioFiles)
	run.dryRun = true
	run.cfg.Storage.Enabled = true

	require.NoError(t, run.execute(context.Background()))

	assert.Equal(t, 1, logs.FilterMessage("Dry-run mode: No changes were made.").Len())
	client.AssertNotCalled(t, "CreateWebResource", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "UpdateWebResourceContent", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "PublishXML", mock.Anything, mock.Anything)
}

func TestExecute_NoUpdatesSkipsPublish(t *testing.T) {
	client := scenarioClient()
	client.On("CreateWebResource", mock.Anything, mock.Anything, "contoso").Return("33333333-3333-3333-3333-333333333333", nil).Once()

	run, logs, _ := newTestRun(t, client, map[string]string{
		"/src/a.js":   "console.log('a')",
		"/src/b.css":  "body{}",
		"/src/c.html": "<p>old</p>",
	})

	require.NoError(t, run.execute(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Skipping publish because no resources have changed").Len())
	client.AssertNotCalled(t, "PublishXML", mock.Anything, mock.Anything)
}

func TestExecute_WithBackups(t *testing.T) {
	client := scenarioClient()
	client.On("CreateWebResource", mock.Anything, mock.Anything, "contoso").Return("33333333-3333-3333-3333-333333333333", nil)
	client.On("UpdateWebResourceContent", mock.Anything, testChangedID, mock.Anything).Return(nil)
	client.On("PublishXML", mock.Anything, mock.Anything).Return(nil)

	store := new(storagemocks.Client)
	store.On("BucketExists", mock.Anything, "backups").Return(true, nil)
	store.On("PutObject", mock.Anything, "backups", "prefix/contoso/run-1/c.html",
		mock.Anything, int64(len("<p>old</p>")), minio.PutObjectOptions{ContentType: "text/html"},
	).Return(minio.UploadInfo{}, nil).Once()

	run, _, _ := newTestRun(t, client, scenarioFiles)
	run.cfg.Storage = storage.Config{Enabled: true, Bucket: "backups", Prefix: "prefix"}
	run.openStorage = func(storage.Config) (storage.Client, error) { return store, nil }

	require.NoError(t, run.execute(context.Background()))
	store.AssertExpectations(t)
}

func TestExecute_JournalUnavailable(t *testing.T) {
	client := scenarioClient()
	run, _, _ := newTestRun(t, client, scenarioFiles)
	run.cfg.Database.Enabled = true

	err := run.execute(context.Background())
	assert.EqualError(t, err, "database not expected")
	client.AssertNotCalled(t, "RetrieveSolutionWebResources", mock.Anything, mock.Anything)
}

func TestExecute_ApplyFailureStopsRun(t *testing.T) {
	client := scenarioClient()
	client.On("CreateWebResource", mock.Anything, mock.Anything, "contoso").
		Return("", &dataverse.APIError{StatusCode: 403, Message: "denied"})

	run, _, _ := newTestRun(t, client, scenarioFiles)

	err := run.execute(context.Background())
	require.Error(t, err)
	assert.True(t, dataverse.IsStatus(err, 403))
	assert.Equal(t, exitFailure, exitCode(err))
	client.AssertNotCalled(t, "UpdateWebResourceContent", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "PublishXML", mock.Anything, mock.Anything)
}

func TestPlanRows(t *testing.T) {
	plan := &reconcile.ReconcilePlan{
		Results: []reconcile.ReconcileResult{
			{Key: "a.js"},
			{Key: "notes.txt", Ignored: true, Reason: "unrecognized extension .txt"},
		},
		Actions: []reconcile.Action{
			{Type: reconcile.ActionCreate, Key: "a.js", Reason: "missing remotely"},
		},
		Summary: reconcile.PlanSummary{Ignored: 1},
	}

	assert.Equal(t, [][]string{
		{"create", "a.js", "", "missing remotely"},
		{"ignore", "notes.txt", "", "unrecognized extension .txt"},
	}, planRows(plan))
}
