package markets

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/perpflow/sdk-go/core/types"
	"github.com/perpflow/sdk-go/core/util"
)

// FeeReader is the slice of the fee engine the aggregator needs. Margin-fee
// reads are required; opening-fee estimates are best-effort.
type FeeReader interface {
	MarginFee(ctx context.Context, sel PairSelector) (types.MarginFee, error)
	OpeningFeeBps(ctx context.Context, sel PairSelector, sizeUSDC float64, long bool) (float64, error)
}

// snapshotProbeSizeUSDC is the position size used for per-pair spread and
// opening-fee estimates inside a snapshot.
const snapshotProbeSizeUSDC = 1_000

// SnapshotAggregator composes the directory, both metric layers and the fee
// engine into one consistent point-in-time view of the market.
type SnapshotAggregator struct {
	dir      *PairDirectory
	asset    *AssetMetrics
	category *CategoryMetrics
	fees     FeeReader
	logger   *zap.Logger
}

// NewSnapshotAggregator wires the aggregator from already-constructed
// components.
func NewSnapshotAggregator(dir *PairDirectory, asset *AssetMetrics, category *CategoryMetrics, fees FeeReader, logger *zap.Logger) *SnapshotAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotAggregator{dir: dir, asset: asset, category: category, fees: fees, logger: logger}
}

// FullSnapshot fetches the listing, fans out per-pair enrichment reads
// concurrently and folds the results into per-category buckets keyed by
// pair name. Margin-fee failures propagate; spread and opening-fee
// enrichment failures degrade that one field to its zero value so a single
// flaky read never takes down the whole snapshot.
func (a *SnapshotAggregator) FullSnapshot(ctx context.Context) (*types.MarketSnapshot, error) {
	snap, err := a.dir.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*types.PairSnapshotEntry, len(snap.Pairs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range snap.Pairs {
		i := i
		g.Go(func() error {
			p := snap.Pairs[i]
			sel := ByIndex(p.Index)

			marginFee, err := a.fees.MarginFee(gctx, sel)
			if err != nil {
				return err
			}

			entry := &types.PairSnapshotEntry{
				Pair:        p,
				Utilization: UtilizationOf(&p),
				Skew:        SkewOf(&p),
				MarginFee:   marginFee,
			}
			entry.PriceImpactSpread = util.BestEffort(a.logger, "price impact spread", types.Spread{}, func() (types.Spread, error) {
				return a.asset.CombinedOpeningSpread(gctx, sel, snapshotProbeSizeUSDC)
			})
			entry.OpeningFeeBps = util.BestEffort(a.logger, "opening fee bps", 0.0, func() (float64, error) {
				return a.fees.OpeningFeeBps(gctx, sel, snapshotProbeSizeUSDC, true)
			})
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &types.MarketSnapshot{
		Timestamp:  time.Now(),
		Categories: make(map[int]*types.CategorySnapshot),
	}
	for _, entry := range entries {
		bucket := out.Categories[entry.Pair.GroupIndex]
		if bucket == nil {
			gi := entry.Pair.GroupIndex
			group := snap.Groups[gi]
			long, short := aggregateOI(snap, gi)
			bucket = &types.CategorySnapshot{
				GroupIndex:  gi,
				GroupName:   GroupName(gi),
				LongOI:      long,
				ShortOI:     short,
				OILimit:     group.OILimit,
				Utilization: categoryUtilization(snap, gi),
				Skew:        categorySkew(snap, gi),
				Pairs:       make(map[string]*types.PairSnapshotEntry),
			}
			out.Categories[gi] = bucket
		}
		bucket.Pairs[entry.Pair.Name] = entry
	}
	return out, nil
}

// SimplifiedSnapshot is the cheap variant: open interest and skew only, no
// chain reads at all.
func (a *SnapshotAggregator) SimplifiedSnapshot(ctx context.Context) (*types.SimplifiedSnapshot, error) {
	snap, err := a.dir.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := &types.SimplifiedSnapshot{
		Timestamp:  time.Now(),
		Pairs:      make(map[string]*types.SimplifiedPairEntry, len(snap.Pairs)),
		Categories: make(map[int]*types.SimplifiedCategoryEntry),
	}
	for i := range snap.Pairs {
		p := &snap.Pairs[i]
		out.Pairs[p.Name] = &types.SimplifiedPairEntry{
			Name:    p.Name,
			LongOI:  p.LongOI,
			ShortOI: p.ShortOI,
			Skew:    SkewOf(p),
		}
		if _, ok := out.Categories[p.GroupIndex]; !ok {
			long, short := aggregateOI(snap, p.GroupIndex)
			out.Categories[p.GroupIndex] = &types.SimplifiedCategoryEntry{
				GroupIndex: p.GroupIndex,
				GroupName:  GroupName(p.GroupIndex),
				LongOI:     long,
				ShortOI:    short,
				Skew:       categorySkew(snap, p.GroupIndex),
			}
		}
	}
	return out, nil
}
