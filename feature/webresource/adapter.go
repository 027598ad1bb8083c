package webresource

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strconv"

	"webresource-sync/core/dataverse"
	"webresource-sync/core/journal"
	"webresource-sync/core/reconcile"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrUnknownExtension is returned by Accept under the fail policy.
var ErrUnknownExtension = errors.New("unrecognized file extension")

// Options wires an Adapter.
type Options struct {
	// Client is the session used for every remote call.
	Client dataverse.Client
	// Solution scopes remote reads and creates.
	Solution dataverse.Solution
	// Fs is the filesystem holding the source tree. Defaults to the OS filesystem.
	Fs afero.Fs
	// Root is the source directory.
	Root string
	// Config holds the extension policy and exclude patterns.
	Config Config
	// Backup receives previous content before updates. Optional.
	Backup Backup
	// Recorder journals applied mutations. Defaults to journal.Nop.
	Recorder journal.Recorder
	// RunID tags journal entries.
	RunID string
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Adapter implements reconcile.Adapter, reconcile.Mutator and
// reconcile.Publisher for the web resources of one solution.
type Adapter struct {
	client   dataverse.Client
	solution dataverse.Solution
	fs       afero.Fs
	root     string
	policy   string
	matcher  *Matcher
	backup   Backup
	recorder journal.Recorder
	runID    string
	logger   *zap.Logger
}

var (
	_ reconcile.Adapter   = (*Adapter)(nil)
	_ reconcile.Mutator   = (*Adapter)(nil)
	_ reconcile.Publisher = (*Adapter)(nil)
)

// NewAdapter creates a web resource adapter.
func NewAdapter(opts Options) (*Adapter, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("dataverse client is required")
	}
	if opts.Solution.ID == "" || opts.Solution.UniqueName == "" {
		return nil, fmt.Errorf("resolved solution is required")
	}
	if opts.Root == "" {
		return nil, fmt.Errorf("source directory is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		client:   opts.Client,
		solution: opts.Solution,
		fs:       opts.Fs,
		root:     opts.Root,
		policy:   opts.Config.Policy(),
		matcher:  NewMatcher(opts.Config.Exclude),
		backup:   opts.Backup,
		recorder: opts.Recorder,
		runID:    opts.RunID,
		logger:   opts.Logger,
	}
	if a.fs == nil {
		a.fs = afero.NewOsFs()
	}
	if a.recorder == nil {
		a.recorder = journal.Nop()
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a, nil
}

// Name returns the unique name of this adapter.
func (a *Adapter) Name() string {
	return "webresource"
}

// LoadRemoteIndex lists the web resources of the solution.
func (a *Adapter) LoadRemoteIndex(ctx context.Context) ([]reconcile.RemoteItem, error) {
	a.logger.Info("Getting all current web resources")

	resources, err := a.client.RetrieveSolutionWebResources(ctx, a.solution.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list web resources: %w", err)
	}

	items := make([]reconcile.RemoteItem, 0, len(resources))
	for _, r := range resources {
		items = append(items, reconcile.RemoteItem{
			ID:      r.ID,
			Key:     r.Name,
			Content: r.Content,
			Metadata: map[string]string{
				"display_name": r.DisplayName,
				"description":  r.Description,
				"type":         strconv.Itoa(r.WebResourceType),
			},
		})
	}

	a.logger.Debug("Loaded remote web resources", zap.Int("count", len(items)))
	return items, nil
}

// LoadLocalIndex walks the source directory.
func (a *Adapter) LoadLocalIndex(ctx context.Context) ([]reconcile.LocalItem, error) {
	a.logger.Info("Getting all local web resources")

	files, err := ScanLocal(a.fs, a.root, a.matcher, a.logger)
	if err != nil {
		return nil, err
	}

	items := make([]reconcile.LocalItem, 0, len(files))
	for _, f := range files {
		items = append(items, reconcile.LocalItem{Key: f})
	}

	a.logger.Debug("Loaded local files", zap.Int("count", len(items)))
	return items, nil
}

// Accept rejects files whose extension has no web resource type.
// Under the fail policy the rejection is an error.
func (a *Adapter) Accept(item reconcile.LocalItem) (bool, string, error) {
	if _, ok := TypeForPath(item.Key); ok {
		return true, "", nil
	}

	ext := path.Ext(item.Key)
	a.logger.Warn("File extension isn't valid",
		zap.String("file", item.Key),
		zap.String("extension", ext),
		zap.String("policy", a.policy),
	)

	if a.policy == PolicyFail {
		return false, "", fmt.Errorf("%w %q: %s", ErrUnknownExtension, ext, item.Key)
	}
	if ext == "" {
		return false, "no file extension", nil
	}
	return false, "unrecognized extension " + ext, nil
}

// ReadLocal returns the base64 encoded file content.
func (a *Adapter) ReadLocal(ctx context.Context, item reconcile.LocalItem) (string, error) {
	data, err := afero.ReadFile(a.fs, filepath.Join(a.root, filepath.FromSlash(item.Key)))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
