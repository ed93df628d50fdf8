package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/easypractice/internal/logger"
	"github.com/abhisek/easypractice/internal/store"
)

// itemNamespace seeds the name-based item ids.
var itemNamespace = uuid.MustParse("31cb1022-c6d5-47df-9231-73fc8637ac04")

// ItemID derives a stable item id from the set key and the item content, so
// re-importing an unchanged item keeps its statistics.
func ItemID(key, prompt, answer string) string {
	name := key + "\x00" + strings.TrimSpace(prompt) + "\x00" + strings.TrimSpace(answer)
	return uuid.NewSHA1(itemNamespace, []byte(name)).String()
}

// ImportOptions controls how sets are written.
type ImportOptions struct {
	Source store.Source

	// Force replaces stored sets even when the incoming version is not
	// newer.
	Force bool
}

// ImportResult reports what happened to each set of a payload.
type ImportResult struct {
	Imported []string
	Skipped  []string
	Failed   map[string]error
}

// OK reports whether no set failed.
func (r *ImportResult) OK() bool {
	return len(r.Failed) == 0
}

// Importer writes parsed payloads into the catalog store.
type Importer struct {
	catalog store.CatalogRepo
	log     *logger.Logger
}

// NewImporter creates an Importer. A nil logger discards output.
func NewImporter(repo store.CatalogRepo, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{catalog: repo, log: log}
}

// ImportBytes parses data and imports it. Parse failures are returned as
// *ParseError before anything is written.
func (im *Importer) ImportBytes(ctx context.Context, data []byte, source string, opts ImportOptions) (*ImportResult, error) {
	p, err := Parse(data, source)
	if err != nil {
		return nil, err
	}
	return im.Import(ctx, p, opts)
}

// Import writes every set of p. Each set is written atomically; a set that
// fails is logged and recorded in the result while the others continue.
func (im *Importer) Import(ctx context.Context, p *Payload, opts ImportOptions) (*ImportResult, error) {
	if opts.Source == "" {
		opts.Source = store.SourceUser
	}
	res := &ImportResult{Failed: make(map[string]error)}

	for _, sp := range p.Sets {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		imported, err := im.importSet(ctx, sp, opts)
		switch {
		case err != nil:
			im.log.Warn("import item set failed", "key", sp.Key, "error", err)
			res.Failed[sp.Key] = err
		case imported:
			im.log.Info("imported item set", "key", sp.Key, "version", sp.Version, "items", len(sp.Items))
			res.Imported = append(res.Imported, sp.Key)
		default:
			im.log.Debug("item set up to date", "key", sp.Key, "version", sp.Version)
			res.Skipped = append(res.Skipped, sp.Key)
		}
	}
	return res, nil
}

func (im *Importer) importSet(ctx context.Context, sp SetPayload, opts ImportOptions) (bool, error) {
	if sp.Key == "" {
		return false, fmt.Errorf("missing problemSetKey")
	}
	version := sp.Version
	if version == "" {
		version = DefaultVersion
	}

	if !opts.Force {
		local, ok, err := im.catalog.LatestVersion(ctx, sp.Key, opts.Source)
		if err != nil {
			return false, err
		}
		if !NeedsImport(local, ok, version) {
			return false, nil
		}
	}

	set := &store.ItemSet{
		Key:         sp.Key,
		Name:        sp.Name,
		Description: sp.Description,
		Enabled:     true,
		Version:     version,
		Source:      opts.Source,
		Difficulty:  sp.Difficulty,
		Metadata:    sp.Metadata,
	}
	if err := im.catalog.ReplaceSet(ctx, set, buildItems(sp)); err != nil {
		return false, err
	}
	return true, nil
}

// buildItems converts payload items, dropping exact duplicates.
func buildItems(sp SetPayload) []store.Item {
	seen := make(map[string]bool, len(sp.Items))
	items := make([]store.Item, 0, len(sp.Items))
	for _, ip := range sp.Items {
		id := ItemID(sp.Key, ip.Prompt, ip.Answer)
		if seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, store.Item{
			ID:          id,
			Position:    len(items),
			Prompt:      strings.TrimSpace(ip.Prompt),
			Answer:      strings.TrimSpace(ip.Answer),
			PromptAudio: ip.PromptAudio,
			AnswerAudio: ip.AnswerAudio,
		})
	}
	return items
}
