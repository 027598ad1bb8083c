package webresource

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"testing"

	"webresource-sync/core/dataverse"
	dvmocks "webresource-sync/core/dataverse/mocks"
	"webresource-sync/core/journal"
	"webresource-sync/core/reconcile"
	"webresource-sync/core/storage"
	storagemocks "webresource-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	solutionID = "7d1c2e0a-4b8f-4a3e-9f6a-2b1c0d9e8f7a"
	idB        = "11111111-1111-1111-1111-111111111111"
	idC        = "22222222-2222-2222-2222-222222222222"
	idNew      = "33333333-3333-3333-3333-333333333333"
)

var testSolution = dataverse.Solution{ID: solutionID, UniqueName: "contoso"}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// recorderStub collects journal entries.
type recorderStub struct {
	entries []journal.Entry
	err     error
}

func (r *recorderStub) Begin(context.Context, *journal.Run) error { return nil }

func (r *recorderStub) Record(_ context.Context, entry *journal.Entry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *recorderStub) Finish(context.Context, string, journal.Outcome) error { return nil }

func TestNewAdapter_Validation(t *testing.T) {
	client := new(dvmocks.Client)

	tests := []struct {
		name      string
		opts      Options
		expectErr string
	}{
		{"Missing client", Options{Solution: testSolution, Root: "/src"}, "dataverse client is required"},
		{"Missing solution", Options{Client: client, Root: "/src"}, "resolved solution is required"},
		{"Missing root", Options{Client: client, Solution: testSolution}, "source directory is required"},
		{"Bad policy", Options{Client: client, Solution: testSolution, Root: "/src", Config: Config{UnknownExtension: "guess"}}, `invalid unknown_extension policy "guess", expected skip or fail`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAdapter(tt.opts)
			assert.Nil(t, a)
			assert.EqualError(t, err, tt.expectErr)
		})
	}
}

// TestSync_Scenario runs one new, one unchanged and one changed file through the engine.
func TestSync_Scenario(t *testing.T) {
	ctx := context.Background()
	fs := newSourceFs(t, map[string]string{
		"/src/a.js":   "console.log('a')",
		"/src/b.css":  "body{}",
		"/src/c.html": "<p>new</p>",
	})

	client := new(dvmocks.Client)
	client.On("RetrieveSolutionWebResources", mock.Anything, solutionID).Return([]dataverse.WebResource{
		{ID: idB, Name: "b.css", Content: b64("body{}"), WebResourceType: 2},
		{ID: idC, Name: "c.html", Content: b64("<p>old</p>"), WebResourceType: 1},
	}, nil)
	client.On("CreateWebResource", mock.Anything, dataverse.WebResource{
		Name:            "a.js",
		DisplayName:     "a.js",
		Content:         b64("console.log('a')"),
		WebResourceType: 3,
	}, "contoso").Return(idNew, nil).Once()
	client.On("UpdateWebResourceContent", mock.Anything, idC, b64("<p>new</p>")).Return(nil).Once()
	client.On("PublishXML", mock.Anything,
		"<importexportxml><webresources><webresource>"+idC+"</webresource></webresources></importexportxml>",
	).Return(nil).Once()

	rec := &recorderStub{}
	adapter, err := NewAdapter(Options{
		Client:   client,
		Solution: testSolution,
		Fs:       fs,
		Root:     "/src",
		Recorder: rec,
		RunID:    "run-1",
	})
	require.NoError(t, err)

	plan, result, err := reconcile.ReconcileAndApply(ctx, adapter, reconcile.ReconcileOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Summary.Unchanged)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, []string{idC}, result.ChangeSet)
	assert.True(t, result.Published)

	assert.Equal(t, []journal.Entry{
		{RunID: "run-1", Name: "a.js", Action: "create", ResourceID: idNew},
		{RunID: "run-1", Name: "c.html", Action: "update", ResourceID: idC},
	}, rec.entries)

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "UpdateWebResourceContent", mock.Anything, idB, mock.Anything)
}

// TestSync_NothingChanged tests that an identical tree issues no mutation and no publish.
func TestSync_NothingChanged(t *testing.T) {
	fs := newSourceFs(t, map[string]string{"/src/web/app.js": "x"})

	client := new(dvmocks.Client)
	client.On("RetrieveSolutionWebResources", mock.Anything, solutionID).Return([]dataverse.WebResource{
		{ID: idB, Name: "web/app.js", Content: b64("x")},
		{ID: idC, Name: "web/orphan.js", Content: b64("y")},
	}, nil)

	adapter, err := NewAdapter(Options{Client: client, Solution: testSolution, Fs: fs, Root: "/src"})
	require.NoError(t, err)

	plan, result, err := reconcile.ReconcileAndApply(context.Background(), adapter, reconcile.ReconcileOptions{})
	require.NoError(t, err)

	assert.Empty(t, plan.Actions)
	assert.Equal(t, []string{"web/orphan.js"}, plan.Orphans)
	assert.False(t, result.Published)
	client.AssertNotCalled(t, "CreateWebResource", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "PublishXML", mock.Anything, mock.Anything)
}

func TestAccept_UnknownExtension(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	client := new(dvmocks.Client)

	t.Run("Skip policy", func(t *testing.T) {
		a, err := NewAdapter(Options{Client: client, Solution: testSolution, Root: "/src", Logger: zap.New(core)})
		require.NoError(t, err)

		ok, reason, err := a.Accept(reconcile.LocalItem{Key: "docs/readme.md"})
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "unrecognized extension .md", reason)

		ok, reason, err = a.Accept(reconcile.LocalItem{Key: "LICENSE"})
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, "no file extension", reason)

		assert.Equal(t, 2, logs.FilterMessage("File extension isn't valid").Len())
	})

	t.Run("Fail policy", func(t *testing.T) {
		a, err := NewAdapter(Options{Client: client, Solution: testSolution, Root: "/src", Config: Config{UnknownExtension: PolicyFail}})
		require.NoError(t, err)

		ok, _, err := a.Accept(reconcile.LocalItem{Key: "docs/readme.md"})
		assert.False(t, ok)
		assert.True(t, errors.Is(err, ErrUnknownExtension))
	})

	t.Run("Known extension", func(t *testing.T) {
		a, err := NewAdapter(Options{Client: client, Solution: testSolution, Root: "/src"})
		require.NoError(t, err)

		ok, _, err := a.Accept(reconcile.LocalItem{Key: "img/Logo.PNG"})
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}

// TestSync_FailPolicyStopsBeforeMutation tests that no remote write happens when an unmapped file exists.
func TestSync_FailPolicyStopsBeforeMutation(t *testing.T) {
	fs := newSourceFs(t, map[string]string{
		"/src/a.js":      "x",
		"/src/notes.txt": "y",
	})

	client := new(dvmocks.Client)
	client.On("RetrieveSolutionWebResources", mock.Anything, solutionID).Return([]dataverse.WebResource{}, nil)

	adapter, err := NewAdapter(Options{
		Client:   client,
		Solution: testSolution,
		Fs:       fs,
		Root:     "/src",
		Config:   Config{UnknownExtension: PolicyFail},
	})
	require.NoError(t, err)

	_, _, err = reconcile.ReconcileAndApply(context.Background(), adapter, reconcile.ReconcileOptions{})
	assert.ErrorIs(t, err, ErrUnknownExtension)
	client.AssertNotCalled(t, "CreateWebResource", mock.Anything, mock.Anything, mock.Anything)
}

// TestSync_SkipPolicyIgnoresFile tests that unmapped files never reach the remote side.
func TestSync_SkipPolicyIgnoresFile(t *testing.T) {
	fs := newSourceFs(t, map[string]string{"/src/notes.txt": "y"})

	client := new(dvmocks.Client)
	client.On("RetrieveSolutionWebResources", mock.Anything, solutionID).Return([]dataverse.WebResource{}, nil)

	adapter, err := NewAdapter(Options{Client: client, Solution: testSolution, Fs: fs, Root: "/src"})
	require.NoError(t, err)

	plan, _, err := reconcile.ReconcileAndApply(context.Background(), adapter, reconcile.ReconcileOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Summary.Ignored)
	assert.Empty(t, plan.Actions)
}

func TestReadLocal(t *testing.T) {
	fs := newSourceFs(t, map[string]string{"/src/img/logo.png": "\x89PNG"})
	a, err := NewAdapter(Options{Client: new(dvmocks.Client), Solution: testSolution, Fs: fs, Root: "/src"})
	require.NoError(t, err)

	content, err := a.ReadLocal(context.Background(), reconcile.LocalItem{Key: "img/logo.png"})
	require.NoError(t, err)
	assert.Equal(t, "iVBORw==", content)

	_, err = a.ReadLocal(context.Background(), reconcile.LocalItem{Key: "img/missing.png"})
	assert.Error(t, err)
}

func TestUpdate_BackupBeforeWrite(t *testing.T) {
	ctx := context.Background()
	var order []string

	store := new(storagemocks.Client)
	store.On("PutObject", ctx, "backups", "runs/contoso/run-1/web/app.js",
		mock.AnythingOfType("*bytes.Reader"), int64(3),
		minio.PutObjectOptions{ContentType: "application/javascript"},
	).Run(func(args mock.Arguments) {
		data, err := io.ReadAll(args.Get(3).(io.Reader))
		assert.NoError(t, err)
		assert.Equal(t, "old", string(data))
		order = append(order, "backup")
	}).Return(minio.UploadInfo{}, nil).Once()

	client := new(dvmocks.Client)
	client.On("UpdateWebResourceContent", ctx, idC, b64("new")).Run(func(mock.Arguments) {
		order = append(order, "update")
	}).Return(nil).Once()

	backup := NewStorageBackup(store, storage.Config{Bucket: "backups", Prefix: "/runs/"}, "contoso", "run-1")
	a, err := NewAdapter(Options{Client: client, Solution: testSolution, Root: "/src", Backup: backup})
	require.NoError(t, err)

	err = a.Update(ctx, reconcile.Action{
		Type:     reconcile.ActionUpdate,
		Key:      "web/app.js",
		RemoteID: idC,
		Content:  b64("new"),
		Previous: b64("old"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"backup", "update"}, order)
	store.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestUpdate_BackupFailureSkipsWrite(t *testing.T) {
	ctx := context.Background()

	store := new(storagemocks.Client)
	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, fmt.Errorf("bucket gone"))

	client := new(dvmocks.Client)
	backup := NewStorageBackup(store, storage.Config{Bucket: "backups"}, "contoso", "run-1")
	a, err := NewAdapter(Options{Client: client, Solution: testSolution, Root: "/src", Backup: backup})
	require.NoError(t, err)

	err = a.Update(ctx, reconcile.Action{Type: reconcile.ActionUpdate, Key: "a.js", RemoteID: idC, Content: b64("n"), Previous: b64("o")})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to back up a.js to contoso/run-1/a.js")
	client.AssertNotCalled(t, "UpdateWebResourceContent", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_Errors(t *testing.T) {
	ctx := context.Background()

	client := new(dvmocks.Client)
	client.On("CreateWebResource", ctx, mock.Anything, "contoso").
		Return("", &dataverse.APIError{StatusCode: 403, Message: "denied"})

	a, err := NewAdapter(Options{Client: client, Solution: testSolution, Root: "/src"})
	require.NoError(t, err)

	err = a.Create(ctx, reconcile.Action{Type: reconcile.ActionCreate, Key: "a.js", Content: b64("x")})
	assert.True(t, dataverse.IsStatus(err, 403))

	err = a.Create(ctx, reconcile.Action{Type: reconcile.ActionCreate, Key: "a.md"})
	assert.ErrorIs(t, err, ErrUnknownExtension)
}

func TestCreate_JournalFailure(t *testing.T) {
	ctx := context.Background()

	client := new(dvmocks.Client)
	client.On("CreateWebResource", ctx, mock.Anything, "contoso").Return(idNew, nil)

	a, err := NewAdapter(Options{
		Client:   client,
		Solution: testSolution,
		Root:     "/src",
		Recorder: &recorderStub{err: fmt.Errorf("db down")},
	})
	require.NoError(t, err)

	err = a.Create(ctx, reconcile.Action{Type: reconcile.ActionCreate, Key: "a.js", Content: b64("x")})
	assert.EqualError(t, err, "applied create of a.js but could not journal it: db down")
	assert.True(t, reconcile.IsApplied(err))
}

// TestApplyPlan_JournalFailureAfterUpdate tests that an update whose journal
// write fails is still counted and kept in the change set.
func TestApplyPlan_JournalFailureAfterUpdate(t *testing.T) {
	ctx := context.Background()

	client := new(dvmocks.Client)
	client.On("UpdateWebResourceContent", ctx, idC, b64("new")).Return(nil).Once()

	a, err := NewAdapter(Options{
		Client:   client,
		Solution: testSolution,
		Root:     "/src",
		Recorder: &recorderStub{err: fmt.Errorf("db down")},
	})
	require.NoError(t, err)

	plan := &reconcile.ReconcilePlan{Actions: []reconcile.Action{
		{Type: reconcile.ActionUpdate, Key: "c.html", RemoteID: idC, Content: b64("new"), Previous: b64("old")},
	}}
	result, err := reconcile.ApplyPlan(ctx, a, plan, reconcile.ReconcileOptions{})
	assert.EqualError(t, err, "failed to update c.html: applied update of c.html but could not journal it: db down")
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, []string{idC}, result.ChangeSet)
	client.AssertExpectations(t)
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	client := new(dvmocks.Client)
	client.On("PublishXML", ctx,
		"<importexportxml><webresources><webresource>"+idB+"</webresource><webresource>"+idC+"</webresource></webresources></importexportxml>",
	).Return(nil).Once()

	a, err := NewAdapter(Options{Client: client, Solution: testSolution, Root: "/src"})
	require.NoError(t, err)

	require.NoError(t, a.Publish(ctx, []string{idB, idC}))
	assert.Error(t, a.Publish(ctx, nil))
	client.AssertExpectations(t)
}

func TestStorageBackup_InvalidContent(t *testing.T) {
	backup := NewStorageBackup(new(storagemocks.Client), storage.Config{Bucket: "b"}, "contoso", "run")
	err := backup.Save(context.Background(), "a.js", "not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode remote content of a.js")
}

func TestStorageBackup_ObjectKey(t *testing.T) {
	backup := NewStorageBackup(new(storagemocks.Client), storage.Config{Prefix: "backups"}, "contoso", "run-9")
	assert.Equal(t, "backups/contoso/run-9/new_/js/app.js", backup.ObjectKey("new_/js/app.js"))
}
