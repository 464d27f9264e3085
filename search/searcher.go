package search

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/agendex/aggregate"
	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/fusion"
	"github.com/poiesic/agendex/lexical"
	"github.com/poiesic/agendex/storage"
)

// Retriever is one ranked-list source for a query.
type Retriever interface {
	Search(ctx context.Context, query string, n int) ([]core.RankedHit, error)
}

// Mode reports how much retrieval evidence backed a response.
type Mode string

const (
	// ModeHybrid means both retrievers contributed and their lists were fused.
	ModeHybrid Mode = "hybrid"
	// ModeLexicalOnly means the vector path failed; results are BM25 only.
	ModeLexicalOnly Mode = "lexical-only"
	// ModeVectorOnly means the lexical path is disabled or failed.
	ModeVectorOnly Mode = "vector-only"
	// ModeUnavailable means both retrievers failed; results are empty.
	ModeUnavailable Mode = "unavailable"
)

// Response is the outcome of one search request. When Mode is degraded,
// LexicalErr and/or VectorErr carry the reason.
type Response struct {
	Results    []core.AgendaResult
	Mode       Mode
	LexicalErr error
	VectorErr  error
}

// Searcher runs hybrid agenda retrieval. All collaborators are injected
// at construction; a Searcher holds no global state and is safe for
// concurrent use.
type Searcher struct {
	lexicalIndex *lexical.Holder
	vector       Retriever
	aggregator   *aggregate.Aggregator
	logger       *slog.Logger

	retrieverTimeout    time.Duration
	candidateMultiplier int
	fusionK             int
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRetrieverTimeout bounds each retriever individually.
// Default is 5 seconds.
func WithRetrieverTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		if d > 0 {
			s.retrieverTimeout = d
		}
		return nil
	}
}

// WithCandidateMultiplier sets how many chunk candidates each retriever
// fetches per requested agenda result. Fetching more chunks than
// agendas keeps aggregation from starving when one agenda dominates the
// chunk ranking. Default is 5.
func WithCandidateMultiplier(m int) Option {
	return func(s *Searcher) error {
		if m > 0 {
			s.candidateMultiplier = m
		}
		return nil
	}
}

// WithFusionK sets the RRF rank-smoothing constant.
// Default is fusion.DefaultK.
func WithFusionK(k int) Option {
	return func(s *Searcher) error {
		if k > 0 {
			s.fusionK = k
		}
		return nil
	}
}

// NewSearcher creates a new searcher. lexicalIndex may hold no index,
// in which case requests run vector-only.
func NewSearcher(
	lexicalIndex *lexical.Holder,
	vector Retriever,
	agendas storage.AgendaRepository,
	opts ...Option,
) (*Searcher, error) {
	if vector == nil {
		return nil, ErrVectorRetrieverRequired
	}
	if agendas == nil {
		return nil, ErrAgendaRepositoryRequired
	}
	if lexicalIndex == nil {
		lexicalIndex = lexical.NewHolder(nil)
	}

	s := &Searcher{
		lexicalIndex:        lexicalIndex,
		vector:              vector,
		logger:              slog.Default(),
		retrieverTimeout:    5 * time.Second,
		candidateMultiplier: 5,
		fusionK:             fusion.DefaultK,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.aggregator = aggregate.NewAggregator(agendas, aggregate.WithLogger(s.logger))
	return s, nil
}

// Search runs the query and returns up to nResults agenda-level results.
func (s *Searcher) Search(ctx context.Context, query string, nResults int) (*Response, error) {
	return s.SearchWithMonitor(ctx, query, nResults, nil)
}

// SearchWithMonitor runs the query with monitoring callbacks at each
// stage. Retriever failures degrade the response mode; only an agenda
// store failure fails the request.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, nResults int, monitor SearchMonitor) (*Response, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	candidates := nResults * s.candidateMultiplier

	var (
		lexHits, vecHits []core.RankedHit
		lexErr, vecErr   error
	)

	// Scatter: both retrievers run concurrently, each over its own
	// deadline. Failures are recorded, never propagated through the
	// group.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexHits, lexErr = s.searchLexical(gctx, query, candidates)
		return nil
	})
	g.Go(func() error {
		vecHits, vecErr = s.searchVector(gctx, query, candidates)
		return nil
	})
	_ = g.Wait() // goroutines record failures instead of returning them

	monitor.AfterLexicalSearch(lexHits, lexErr)
	monitor.AfterVectorSearch(vecHits, vecErr)

	if lexErr != nil {
		s.logger.Warn("lexical retriever degraded", "err", lexErr)
	}
	if vecErr != nil {
		s.logger.Warn("vector retriever degraded", "err", vecErr)
	}

	response := &Response{LexicalErr: lexErr, VectorErr: vecErr}

	var fused []core.FusedHit
	switch {
	case lexErr == nil && vecErr == nil:
		response.Mode = ModeHybrid
		fused = fusion.Fuse([][]core.RankedHit{lexHits, vecHits}, s.fusionK)
	case lexErr == nil:
		response.Mode = ModeLexicalOnly
		fused = aggregate.FromRanked(lexHits)
		// BM25 scores are unbounded; presentation similarity must stay
		// in [0,1]. s/(1+s) is monotonic, so the ranking is unchanged.
		for i := range fused {
			fused[i].Score = fused[i].Score / (1 + fused[i].Score)
		}
	case vecErr == nil:
		response.Mode = ModeVectorOnly
		fused = aggregate.FromRanked(vecHits)
	default:
		response.Mode = ModeUnavailable
		monitor.Finish(response)
		return response, nil
	}
	monitor.AfterFusion(fused)

	results, err := s.aggregator.TopAgendas(ctx, fused, nResults)
	if err != nil {
		s.logger.Error("agenda aggregation failed", "query", query, "err", err)
		return nil, err
	}
	response.Results = results

	monitor.Finish(response)
	return response, nil
}

// searchLexical queries the current index snapshot. BM25 scoring is
// in-memory and fast; the deadline only matters if the caller's context
// is already gone.
func (s *Searcher) searchLexical(ctx context.Context, query string, n int) ([]core.RankedHit, error) {
	idx := s.lexicalIndex.Current()
	if idx == nil {
		return nil, ErrLexicalDisabled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return idx.Search(query, n), nil
}

func (s *Searcher) searchVector(ctx context.Context, query string, n int) ([]core.RankedHit, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, s.retrieverTimeout, ErrRetrieverTimeout)
	defer cancel()
	return s.vector.Search(ctx, query, n)
}
