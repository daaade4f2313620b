package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"pricefeed/internal/db"
	"pricefeed/internal/feed"
)

// Pipeline reconciles one feed delivery against the product store. Each
// run is self-contained: normalize, resolve, bulk-match, decide, write.
type Pipeline struct {
	store      *db.Store
	log        zerolog.Logger
	fallbackID string
}

func New(store *db.Store, log zerolog.Logger, fallbackSupermarketID string) *Pipeline {
	return &Pipeline{
		store:      store,
		log:        log.With().Str("component", "pipeline").Logger(),
		fallbackID: fallbackSupermarketID,
	}
}

// Run processes one feed delivery end to end and records the outcome on a
// feed_runs ledger row. A store failure during the bulk match fails the
// whole run; everything after that point is isolated per record.
func (p *Pipeline) Run(ctx context.Context, source string, batches []feed.Batch) (*db.FeedRun, error) {
	run, err := p.store.CreateFeedRun(ctx, source)
	if err != nil {
		return nil, err
	}

	known, err := p.store.ListSupermarkets(ctx)
	if err != nil {
		return p.failRun(ctx, run, err)
	}
	resolver := feed.NewResolver(knownPairs(known), p.fallbackID)

	recs := p.canonicalize(batches, resolver, run)

	matches, err := p.matchExisting(ctx, recs)
	if err != nil {
		return p.failRun(ctx, run, err)
	}

	decisions := make([]Decision, 0, len(recs))
	for _, rec := range recs {
		existing := matches[matchKey{Name: rec.Name, SupermarketID: rec.SupermarketID}]
		decisions = append(decisions, Decide(rec, existing))
	}

	p.apply(ctx, decisions, run)

	run.Status = db.RunDone
	if err := p.store.FinishFeedRun(ctx, run); err != nil {
		p.log.Error().Err(err).Uint("run_id", run.RunID).Msg("cannot finish feed run")
	}

	p.log.Info().
		Uint("run_id", run.RunID).
		Str("source", source).
		Int("fetched", run.Fetched).
		Int("dropped", run.Dropped).
		Int("inserted", run.Inserted).
		Int("variants", run.Variants).
		Int("updated", run.Updated).
		Int("skipped", run.Skipped).
		Int("failed", run.Failed).
		Msg("feed run finished")

	return run, nil
}

// canonicalize flattens the per-supermarket batches, resolves labels and
// drops records without a usable price.
func (p *Pipeline) canonicalize(batches []feed.Batch, resolver *feed.Resolver, run *db.FeedRun) []feed.CanonicalProduct {
	var recs []feed.CanonicalProduct
	for _, b := range batches {
		marketID := resolver.Resolve(b.Supermarket)
		for _, raw := range b.Products {
			run.Fetched++
			rec, ok := feed.Canonicalize(raw, marketID)
			if !ok {
				run.Dropped++
				continue
			}
			recs = append(recs, rec)
		}
	}
	return recs
}

func (p *Pipeline) failRun(ctx context.Context, run *db.FeedRun, cause error) (*db.FeedRun, error) {
	run.Status = db.RunError
	run.LastError = cause.Error()
	if err := p.store.FinishFeedRun(ctx, run); err != nil {
		p.log.Error().Err(err).Uint("run_id", run.RunID).Msg("cannot record failed feed run")
	}
	p.log.Error().Err(cause).Uint("run_id", run.RunID).Msg("feed run failed")
	return run, cause
}

func knownPairs(markets []db.Supermarket) []feed.KnownSupermarket {
	out := make([]feed.KnownSupermarket, 0, len(markets))
	for _, m := range markets {
		out = append(out, feed.KnownSupermarket{ID: m.ID, Name: m.Name})
	}
	return out
}
