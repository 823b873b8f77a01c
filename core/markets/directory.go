package markets

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/perpflow/sdk-go/core/types"
)

// DefaultPairCacheTTL bounds how long a fetched listing is reused before the
// next read triggers a refresh.
const DefaultPairCacheTTL = 60 * time.Second

// PairSnapshot is one immutable, fully-built view of the listing. Lookups
// never mutate it; a refresh builds a new snapshot from scratch and swaps a
// single pointer, so concurrent readers see either the old or the new state,
// never a partially rebuilt one.
type PairSnapshot struct {
	FetchedAt time.Time
	Pairs     []types.Pair
	Groups    map[int]types.Group

	byIndex map[int]*types.Pair
	byName  map[string]*types.Pair
}

// Pair resolves a selector against this snapshot.
func (s *PairSnapshot) Pair(sel PairSelector) (*types.Pair, error) {
	if s == nil {
		return nil, errors.WithStack(types.ErrPairNotFound)
	}
	if sel.byIndex {
		if p, ok := s.byIndex[sel.index]; ok {
			return p, nil
		}
	} else if p, ok := s.byName[strings.ToUpper(sel.name)]; ok {
		return p, nil
	}
	return nil, errors.Wrapf(types.ErrPairNotFound, "%s", sel)
}

// Names returns the pair names in listing order.
func (s *PairSnapshot) Names() []string {
	names := make([]string, len(s.Pairs))
	for i := range s.Pairs {
		names[i] = s.Pairs[i].Name
	}
	return names
}

// PairDirectory holds the cached pair listing. The cache belongs to the
// directory instance, not the process; independent directories never share
// state.
type PairDirectory struct {
	source types.PairSource
	ttl    time.Duration
	logger *zap.Logger

	refreshMu sync.Mutex // serializes fetch+rebuild; reads go through snap
	snap      atomic.Pointer[PairSnapshot]
}

// NewPairDirectory builds a directory over the given source. A non-positive
// ttl falls back to DefaultPairCacheTTL.
func NewPairDirectory(source types.PairSource, ttl time.Duration, logger *zap.Logger) *PairDirectory {
	if ttl <= 0 {
		ttl = DefaultPairCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PairDirectory{source: source, ttl: ttl, logger: logger}
}

func (d *PairDirectory) fresh(s *PairSnapshot) bool {
	return s != nil && time.Since(s.FetchedAt) < d.ttl
}

// Refresh returns the cached snapshot while it is within TTL, unless force
// is set. Otherwise it fetches the listing, rebuilds every lookup table from
// scratch and swaps the snapshot in atomically. A fetch failure propagates
// and leaves the previous snapshot (if any) untouched and visible.
func (d *PairDirectory) Refresh(ctx context.Context, force bool) (*PairSnapshot, error) {
	if s := d.snap.Load(); !force && d.fresh(s) {
		return s, nil
	}

	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if s := d.snap.Load(); !force && d.fresh(s) {
		return s, nil
	}

	listing, err := d.source.FetchListing(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "refresh pair directory")
	}

	next := buildSnapshot(listing)
	d.snap.Store(next)
	d.logger.Debug("pair directory refreshed",
		zap.Int("pairs", len(next.Pairs)), zap.Int("groups", len(next.Groups)))
	return next, nil
}

func buildSnapshot(listing *types.PairListing) *PairSnapshot {
	s := &PairSnapshot{
		FetchedAt: time.Now(),
		Pairs:     make([]types.Pair, len(listing.Pairs)),
		Groups:    make(map[int]types.Group, len(listing.Groups)),
		byIndex:   make(map[int]*types.Pair, len(listing.Pairs)),
		byName:    make(map[string]*types.Pair, len(listing.Pairs)),
	}
	copy(s.Pairs, listing.Pairs)
	for i := range s.Pairs {
		p := &s.Pairs[i]
		s.byIndex[p.Index] = p
		s.byName[strings.ToUpper(p.Name)] = p
	}
	for idx, g := range listing.Groups {
		s.Groups[idx] = g
	}
	return s
}

// Snapshot returns a TTL-fresh snapshot, refreshing first when needed.
func (d *PairDirectory) Snapshot(ctx context.Context) (*PairSnapshot, error) {
	return d.Refresh(ctx, false)
}

// Get resolves a pair by selector against a TTL-fresh snapshot. Absence
// after a successful refresh is ErrPairNotFound.
func (d *PairDirectory) Get(ctx context.Context, sel PairSelector) (*types.Pair, error) {
	s, err := d.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Pair(sel)
}

// Exists reports whether the selector resolves in a TTL-fresh snapshot.
func (d *PairDirectory) Exists(ctx context.Context, sel PairSelector) (bool, error) {
	_, err := d.Get(ctx, sel)
	if errors.Is(err, types.ErrPairNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListNames returns all pair names in listing order.
func (d *PairDirectory) ListNames(ctx context.Context) ([]string, error) {
	s, err := d.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Names(), nil
}

// Groups returns the category table of a TTL-fresh snapshot.
func (d *PairDirectory) Groups(ctx context.Context) (map[int]types.Group, error) {
	s, err := d.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Groups, nil
}
