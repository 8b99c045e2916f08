package catalog

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"

	"github.com/benchwise/gridvault/cache"
	"github.com/benchwise/gridvault/db"
	"github.com/benchwise/gridvault/logging"
)

const (
	// DefaultAutoResolveThreshold is the confidence a conflict must clear to
	// be auto-resolved.
	DefaultAutoResolveThreshold = 0.85

	ListDocumentsMaxLimit = 1000
	ListVersionsMaxLimit  = 1000

	defaultVersionCacheSize   = 64
	defaultVersionCacheExpiry = 30 * time.Second
	defaultDiffCacheSize      = 128
	defaultDiffCacheExpiry    = 30 * time.Second
	cacheJitter               = 5 * time.Second

	// cancelCheckInterval is how many locations a diff/resolve loop scans
	// between context checks.
	cancelCheckInterval = 1024
)

type ResolveParams struct {
	// AutoResolveThreshold overrides DefaultAutoResolveThreshold when > 0.
	AutoResolveThreshold float64
	DiffParams           DiffParams
}

type MergeParams struct {
	// AllowPartial creates a merged version even when unresolved conflicts
	// remain; unresolved locations keep left's value.
	AllowPartial bool
	ResolveParams
}

type Cataloger interface {
	// document level
	CreateDocument(ctx context.Context, name string) (*Document, error)
	GetDocument(ctx context.Context, documentID uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, limit int, after string) ([]*Document, bool, error)

	// version level
	CreateVersion(ctx context.Context, documentID uuid.UUID, parentVersionID *uuid.UUID, table *Table, actor string) (*Version, error)
	GetVersion(ctx context.Context, versionID uuid.UUID) (*VersionData, error)
	ListVersions(ctx context.Context, documentID uuid.UUID, limit int, after int) ([]*Version, bool, error)

	// diff and merge
	Diff(ctx context.Context, fromVersionID, toVersionID uuid.UUID, params DiffParams) (Differences, error)
	Resolve(ctx context.Context, baseVersionID, leftVersionID, rightVersionID uuid.UUID, params ResolveParams) ([]Decision, error)
	Merge(ctx context.Context, baseVersionID, leftVersionID, rightVersionID uuid.UUID, actor string, params MergeParams) (*MergeResult, error)
}

type cataloger struct {
	Clock        clock.Clock
	log          logging.Logger
	db           db.Database
	versionCache *cache.GetSetCache
	diffCache    *cache.GetSetCache
}

type Option func(*cataloger)

func WithClock(c clock.Clock) Option {
	return func(cat *cataloger) {
		cat.Clock = c
	}
}

func WithCacheSizes(versionSize, diffSize int) Option {
	return func(cat *cataloger) {
		cat.versionCache = cache.NewCache(versionSize, defaultVersionCacheExpiry, cache.NewJitterFn(cacheJitter))
		cat.diffCache = cache.NewCache(diffSize, defaultDiffCacheExpiry, cache.NewJitterFn(cacheJitter))
	}
}

func NewCataloger(db db.Database, opts ...Option) Cataloger {
	c := &cataloger{
		Clock:        clock.NewClock(),
		log:          logging.Default().WithField("service_name", "cataloger"),
		db:           db,
		versionCache: cache.NewCache(defaultVersionCacheSize, defaultVersionCacheExpiry, cache.NewJitterFn(cacheJitter)),
		diffCache:    cache.NewCache(defaultDiffCacheSize, defaultDiffCacheExpiry, cache.NewJitterFn(cacheJitter)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *cataloger) txOpts(ctx context.Context, opts ...db.TxOpt) []db.TxOpt {
	o := []db.TxOpt{
		db.WithContext(ctx),
		db.WithLogger(c.log),
	}
	return append(o, opts...)
}

// checkCancel is called from tight comparison loops every cancelCheckInterval
// iterations so very large diffs can be abandoned cooperatively.
func checkCancel(ctx context.Context, counter *int) error {
	*counter++
	if *counter%cancelCheckInterval == 0 {
		return ctx.Err()
	}
	return nil
}
