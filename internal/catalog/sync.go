package catalog

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/easypractice/internal/logger"
	"github.com/abhisek/easypractice/internal/store"
)

// ManifestFile is the manifest name relative to a catalog root.
const ManifestFile = "manifest.json"

// Fetcher reads catalog documents by path relative to a catalog root.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FSFetcher reads documents from a file system, such as the embedded
// defaults or os.DirFS.
type FSFetcher struct {
	FS fs.FS
}

func (f FSFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(f.FS, path.Clean(name))
}

// HTTPFetcher reads documents relative to a base URL.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	base, err := url.Parse(f.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	ref, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", name, err)
	}
	target := base.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 16<<20))
}

// LoadManifest fetches and parses the manifest at the fetcher's root.
func LoadManifest(ctx context.Context, f Fetcher) (*Manifest, error) {
	data, err := f.Fetch(ctx, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	return ParseManifest(data, ManifestFile)
}

// SyncResult reports the outcome of a sync per key.
type SyncResult struct {
	Imported []string
	UpToDate []string
	Pruned   []string
	Failed   map[string]error

	// UserOwned lists manifest keys left alone because a user import
	// owns them.
	UserOwned []string
}

// Syncer keeps the default-source sets in line with a manifest.
type Syncer struct {
	catalog  store.CatalogRepo
	importer *Importer
	fetch    Fetcher
	log      *logger.Logger

	// Concurrency bounds parallel fetches.
	Concurrency int
}

// NewSyncer creates a Syncer. A nil logger discards output.
func NewSyncer(repo store.CatalogRepo, fetch Fetcher, log *logger.Logger) *Syncer {
	if log == nil {
		log = logger.Nop()
	}
	return &Syncer{
		catalog:     repo,
		importer:    NewImporter(repo, log),
		fetch:       fetch,
		log:         log,
		Concurrency: 4,
	}
}

// Sync imports every manifest entry that is missing or newer than the
// stored version, then prunes default sets whose key left the manifest.
// A failing entry is logged and skipped.
func (s *Syncer) Sync(ctx context.Context, m *Manifest) (*SyncResult, error) {
	res := &SyncResult{Failed: make(map[string]error)}

	var pending []ManifestEntry
	for _, e := range m.ItemSets {
		_, owned, err := s.catalog.LatestVersion(ctx, e.Key, store.SourceUser)
		if err != nil {
			return nil, err
		}
		if owned {
			s.log.Info("item set owned by user import, not synced", "key", e.Key)
			res.UserOwned = append(res.UserOwned, e.Key)
			continue
		}

		local, ok, err := s.catalog.LatestVersion(ctx, e.Key, store.SourceDefault)
		if err != nil {
			return nil, err
		}
		if NeedsImport(local, ok, e.Version) {
			pending = append(pending, e)
		} else {
			res.UpToDate = append(res.UpToDate, e.Key)
		}
	}

	docs := make([][]byte, len(pending))
	errs := make([]error, len(pending))
	var g errgroup.Group
	g.SetLimit(max(s.Concurrency, 1))
	for i, e := range pending {
		g.Go(func() error {
			docs[i], errs[i] = s.fetch.Fetch(ctx, e.Path)
			return nil
		})
	}
	_ = g.Wait()

	for i, e := range pending {
		if errs[i] != nil {
			s.log.Warn("fetch catalog failed", "key", e.Key, "path", e.Path, "error", errs[i])
			res.Failed[e.Key] = errs[i]
			continue
		}
		if err := s.importEntry(ctx, e, docs[i]); err != nil {
			s.log.Warn("sync catalog failed", "key", e.Key, "error", err)
			res.Failed[e.Key] = err
			continue
		}
		res.Imported = append(res.Imported, e.Key)
	}

	pruned, err := s.catalog.PruneKeysNotIn(ctx, m.Keys())
	if err != nil {
		return res, fmt.Errorf("prune: %w", err)
	}
	for _, key := range pruned {
		s.log.Info("pruned item set", "key", key)
	}
	res.Pruned = pruned
	return res, nil
}

func (s *Syncer) importEntry(ctx context.Context, e ManifestEntry, data []byte) error {
	p, err := Parse(data, e.Path)
	if err != nil {
		return err
	}

	var sets []SetPayload
	for _, sp := range p.Sets {
		if sp.Key != e.Key {
			continue
		}
		sp.Version = e.Version
		if sp.Name.IsZero() {
			sp.Name = e.Name
		}
		sets = append(sets, sp)
	}
	if len(sets) == 0 {
		return &ParseError{Source: e.Path, Err: fmt.Errorf("no set with key %q", e.Key)}
	}
	p.Sets = sets

	res, err := s.importer.Import(ctx, p, ImportOptions{Source: store.SourceDefault, Force: true})
	if err != nil {
		return err
	}
	if err := res.Failed[e.Key]; err != nil {
		return err
	}
	return nil
}
