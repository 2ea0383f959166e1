// Package matching is the application service behind the match and parse
// operations.  It glues the pure domain engine to the catalog snapshot,
// the external identification fallback, and observability.
package matching

import (
	"context"
	goerrors "errors"
	"strings"
	"time"

	"github.com/herbwise/fangmatch/internal/domain/formula"
	"github.com/herbwise/fangmatch/internal/domain/herb"
	"github.com/herbwise/fangmatch/internal/infrastructure/database/redis"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/prometheus"
	"github.com/herbwise/fangmatch/internal/intelligence/analysis"
	"github.com/herbwise/fangmatch/internal/intelligence/identify"
)

// identifyCacheTTL bounds how long a remote identification answer is
// reused for the same herb set.
const identifyCacheTTL = 30 * time.Minute

// DefaultMaxResults caps the result list returned to callers.
const DefaultMaxResults = 5

// Catalog is the read side of the formula catalog.
type Catalog interface {
	Snapshot() []*formula.StandardFormula
}

// Service runs the full text-to-results pipeline.
type Service struct {
	catalog    Catalog
	matcher    *formula.Matcher
	identifier identify.Identifier
	analyzer   analysis.Analyzer
	cache      redis.Cache
	logger     logging.Logger
	metrics    *prometheus.Metrics
	maxResults int
}

// Option configures a Service.
type Option func(*Service)

// WithIdentifier enables the external-identification fallback for inputs
// no catalog formula matches.
func WithIdentifier(id identify.Identifier) Option {
	return func(s *Service) { s.identifier = id }
}

// WithAnalyzer enables prose explanations on the top result.
func WithAnalyzer(a analysis.Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

// WithCache caches identification answers per herb set.
func WithCache(c redis.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics attaches request metrics.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMaxResults caps the result list; non-positive values keep the default.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// NewService builds the matching pipeline over the given catalog.
func NewService(catalog Catalog, opts formula.MatcherOptions, log logging.Logger, options ...Option) *Service {
	s := &Service{
		catalog:    catalog,
		matcher:    formula.NewMatcher(opts),
		logger:     log.Named("matching"),
		maxResults: DefaultMaxResults,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// ParseResult carries the parse outcome along with token accounting.
type ParseResult struct {
	Entries []herb.Entry `json:"entries"`
	Total   int          `json:"total_tokens"`
	Dropped int          `json:"dropped_tokens"`
}

// ParseText tokenizes raw input.  It never fails; unusable tokens are
// counted as dropped.
func (s *Service) ParseText(text string) ParseResult {
	total := len(strings.Fields(herb.NormalizeText(text)))
	entries := herb.Parse(text)
	dropped := total - len(entries)

	s.metrics.RecordParse(len(entries), dropped)
	return ParseResult{Entries: entries, Total: total, Dropped: dropped}
}

// MatchOutput is the full response for one match request.
type MatchOutput struct {
	// Input echoes the parsed herb entries the engine actually scored.
	Input []herb.Entry `json:"input"`

	// Results is sorted best-first and capped at the configured maximum.
	Results []*formula.MatchResult `json:"results"`

	// FromIdentify marks results obtained through the external
	// identification fallback rather than the catalog.
	FromIdentify bool `json:"from_identify,omitempty"`

	// Analysis is optional prose about the top result.
	Analysis string `json:"analysis,omitempty"`
}

// MatchText parses raw text and matches it against the catalog.
func (s *Service) MatchText(ctx context.Context, text string) (*MatchOutput, error) {
	return s.MatchHerbs(ctx, s.ParseText(text).Entries)
}

// MatchHerbs ranks parsed input against the catalog snapshot.  When no
// formula matches and an identifier is configured, the input is sent out
// for identification and re-ranked against the returned candidate.
// Identification and analysis failures are soft; the match result itself
// is never lost to them.
func (s *Service) MatchHerbs(ctx context.Context, input []herb.Entry) (*MatchOutput, error) {
	start := time.Now()
	out := &MatchOutput{Input: input}

	out.Results = s.matcher.Rank(input, s.catalog.Snapshot())

	if len(out.Results) == 0 && s.identifier != nil && len(input) > 0 {
		if candidate := s.identifyFallback(ctx, input); candidate != nil {
			out.Results = s.matcher.Rank(input, []*formula.StandardFormula{candidate})
			out.FromIdentify = len(out.Results) > 0
		}
	}

	if len(out.Results) > s.maxResults {
		out.Results = out.Results[:s.maxResults]
	}

	s.recordMatch(out, time.Since(start))
	s.attachAnalysis(ctx, out)
	return out, nil
}

func (s *Service) identifyFallback(ctx context.Context, input []herb.Entry) *formula.StandardFormula {
	if s.cache == nil {
		return s.identifyDirect(ctx, input)
	}

	var candidate formula.StandardFormula
	called := false
	err := s.cache.GetOrSet(ctx, identify.CacheKey(input), &candidate, identifyCacheTTL,
		func(ctx context.Context) (interface{}, error) {
			called = true
			f := s.identifyDirect(ctx, input)
			if f == nil {
				return nil, nil
			}
			return f, nil
		})
	if err != nil {
		if !goerrors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("identify cache lookup failed", logging.Err(err))
		}
		return nil
	}
	if !called {
		s.metrics.RecordIdentify(prometheus.IdentifyHit)
	}
	return &candidate
}

func (s *Service) identifyDirect(ctx context.Context, input []herb.Entry) *formula.StandardFormula {
	s.metrics.RecordIdentify(prometheus.IdentifyCall)
	candidate, err := s.identifier.Identify(ctx, input)
	if err != nil {
		s.metrics.RecordIdentify(prometheus.IdentifyError)
		s.logger.Warn("identification failed", logging.Err(err))
		return nil
	}
	if candidate == nil {
		return nil
	}
	s.logger.Info("identification produced a candidate",
		logging.String("formula", candidate.Name))
	return candidate
}

func (s *Service) recordMatch(out *MatchOutput, elapsed time.Duration) {
	outcome := prometheus.OutcomeEmpty
	topScore := 0.0
	if len(out.Results) > 0 {
		outcome = prometheus.OutcomeMatched
		topScore = out.Results[0].Score
		if out.Results[0].IsCombined {
			outcome = prometheus.OutcomeCombined
		}
	}
	s.metrics.RecordMatch(outcome, topScore, elapsed)

	s.logger.Debug("match completed",
		logging.Int("input_herbs", len(out.Input)),
		logging.Int("results", len(out.Results)),
		logging.String("outcome", outcome),
		logging.Duration("elapsed", elapsed))
}

func (s *Service) attachAnalysis(ctx context.Context, out *MatchOutput) {
	if s.analyzer == nil || len(out.Results) == 0 {
		return
	}
	top := out.Results[0]
	if top.Formula != nil && top.Formula.Analysis != "" {
		out.Analysis = top.Formula.Analysis
		return
	}
	text, err := s.analyzer.Analyze(ctx, top, out.Input)
	if err != nil {
		s.logger.Warn("analysis failed", logging.Err(err))
		return
	}
	out.Analysis = text
}
