package search

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/poiesic/versefinder/ai"
	"github.com/poiesic/versefinder/bible"
	"github.com/poiesic/versefinder/classify"
	"github.com/poiesic/versefinder/core"
	"github.com/poiesic/versefinder/storage"
)

// Stage-1 candidate retrieval keeps a low similarity floor: recall is cheap
// here, Stage-2 re-ranking and the caller's threshold do the precision
// filtering.
const candidateScoreFloor = 0.1

// Searcher runs two-stage retrieval over an indexed verse corpus:
// bi-encoder candidate retrieval against the vector store, then multi-signal
// re-ranking, routed through intent and context classification.
type Searcher struct {
	store    storage.VectorStore
	corpus   *bible.Corpus
	embedder ai.Embedder
	intents  *classify.IntentClassifier
	contexts *classify.ContextClassifier
	logger   *slog.Logger

	candidateCount  int
	defaultResults  int
	defaultMinScore float64
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

// WithCandidateCount sets the Stage-1 top-K candidate count.
// Default is 50.
func WithCandidateCount(count int) Option {
	return func(s *Searcher) error {
		if count < 1 {
			return ErrInvalidMaxResults
		}
		s.candidateCount = count
		return nil
	}
}

// WithDefaultResultCount sets the result limit used when a query does not
// specify one. Default is 5.
func WithDefaultResultCount(count int) Option {
	return func(s *Searcher) error {
		if count < 1 {
			return ErrInvalidMaxResults
		}
		s.defaultResults = count
		return nil
	}
}

// WithDefaultMinScore sets the re-ranked score threshold used when a query
// does not specify one. Default is 0.3.
func WithDefaultMinScore(minScore float64) Option {
	return func(s *Searcher) error {
		if minScore < 0 {
			return ErrInvalidMinScore
		}
		s.defaultMinScore = minScore
		return nil
	}
}

// NewSearcher creates a searcher and initializes both classifiers, which
// embeds their prototype phrase sets once up front.
func NewSearcher(
	ctx context.Context,
	store storage.VectorStore,
	corpus *bible.Corpus,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	embedder := provider.Embedder()

	intents, err := classify.NewIntentClassifier(ctx, embedder)
	if err != nil {
		return nil, err
	}
	contexts, err := classify.NewContextClassifier(ctx, embedder)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		store:           store,
		corpus:          corpus,
		embedder:        embedder,
		intents:         intents,
		contexts:        contexts,
		logger:          slog.Default(),
		candidateCount:  50,
		defaultResults:  5,
		defaultMinScore: 0.3,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// QueryOption overrides per-query parameters.
type QueryOption func(*queryParams)

type queryParams struct {
	maxResults int
	minScore   float64
	version    string
}

// WithMaxResults overrides the result limit for one query.
func WithMaxResults(maxResults int) QueryOption {
	return func(p *queryParams) {
		p.maxResults = maxResults
	}
}

// WithMinScore overrides the re-ranked score threshold for one query.
// Values above 1 are allowed and simply match nothing.
func WithMinScore(minScore float64) QueryOption {
	return func(p *queryParams) {
		p.minScore = minScore
	}
}

// WithVersion restricts results to one Bible version (alias-aware,
// e.g. "KRV" also matches "개역개정").
func WithVersion(version string) QueryOption {
	return func(p *queryParams) {
		p.version = version
	}
}

// Search runs the full pipeline for one query. All failures are reported in
// the returned Result (Success=false, Error set), never as a panic or a
// bare error: one bad query must not take down a serving process.
func (s *Searcher) Search(ctx context.Context, query string, opts ...QueryOption) Result {
	return s.SearchWithMonitor(ctx, query, nil, opts...)
}

// SearchWithMonitor runs Search with per-stage observation callbacks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, monitor SearchMonitor, opts ...QueryOption) Result {
	start := time.Now()
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	params := queryParams{
		maxResults: s.defaultResults,
		minScore:   s.defaultMinScore,
	}
	for _, opt := range opts {
		opt(&params)
	}

	if err := validateQuery(query, params); err != nil {
		return errorResult(query, err, time.Since(start).Milliseconds())
	}

	// Step 1: detect and strip scope phrasing.
	scope, err := s.contexts.Extract(ctx, query)
	if err != nil {
		s.logger.Error("context extraction failed", "query", query, "err", err)
		return errorResult(query, err, time.Since(start).Milliseconds())
	}
	monitor.ContextDetected(scope)

	// Step 2: classify intent on the cleaned query.
	intent, err := s.intents.Classify(ctx, scope.CleanedQuery)
	if err != nil {
		s.logger.Error("intent classification failed", "query", query, "err", err)
		return errorResult(query, err, time.Since(start).Milliseconds())
	}
	monitor.IntentDetected(intent)

	s.logger.Info("query routed",
		"query", query, "search_query", scope.CleanedQuery,
		"intent", intent.Type, "keyword", intent.Keyword,
		"context", scope.Type)

	// Step 3: dispatch.
	var results []VerseResult
	switch intent.Type {
	case classify.IntentKeyword:
		results = s.keywordSearch(intent.Keyword, params, scope, monitor)
	case classify.IntentHybrid:
		results, err = s.hybridSearch(ctx, scope.CleanedQuery, intent.Keyword, params, scope, monitor)
	default:
		results, err = s.semanticSearch(ctx, scope.CleanedQuery, params, scope, monitor)
	}
	if err != nil {
		s.logger.Error("search failed", "query", query, "err", err)
		return errorResult(query, err, time.Since(start).Milliseconds())
	}

	monitor.Finish(results)

	elapsed := time.Since(start).Milliseconds()
	s.logger.Info("search completed",
		"query", query, "intent", intent.Type,
		"results", len(results), "elapsed_ms", elapsed)

	return successResult(query, results, elapsed, intent, scope)
}

func validateQuery(query string, params queryParams) error {
	if isBlank(query) {
		return ErrEmptyQuery
	}
	if params.maxResults < 1 {
		return ErrInvalidMaxResults
	}
	if params.minScore < 0 {
		return ErrInvalidMinScore
	}
	return nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// keywordSearch returns exact substring matches. Exact matches score a
// perfect 1.0 in both stages.
func (s *Searcher) keywordSearch(keyword string, params queryParams, scope classify.Context, monitor SearchMonitor) []VerseResult {
	results := make([]VerseResult, 0, params.maxResults)
	if keyword == "" {
		return results
	}

	for _, verse := range s.corpus.SearchByKeyword(keyword) {
		if !bible.VersionMatches(verse.Version, params.version) {
			continue
		}
		if !scope.MatchesVerse(verse.BookShort, verse.Testament) {
			continue
		}
		monitor.KeywordHit(verse)
		results = append(results, toVerseResult(core.ScoredCandidate{
			Verse:         verse,
			BaseScore:     1.0,
			RerankedScore: 1.0,
		}))
		if len(results) == params.maxResults {
			break
		}
	}
	return results
}

// semanticSearch runs the two-stage retrieval pipeline.
func (s *Searcher) semanticSearch(ctx context.Context, query string, params queryParams, scope classify.Context, monitor SearchMonitor) ([]VerseResult, error) {
	candidates, err := s.retrieveCandidates(ctx, query)
	if err != nil {
		return nil, err
	}
	monitor.AfterCandidateRetrieval(candidates)

	reranked := rerankAndFilter(candidates, query, params.minScore, params.version, scope, params.maxResults)

	results := make([]VerseResult, 0, len(reranked))
	for _, candidate := range reranked {
		monitor.SemanticHit(candidate)
		results = append(results, toVerseResult(candidate))
	}
	return results, nil
}

// hybridSearch returns exact keyword matches first, then fills the
// remaining slots with re-ranked semantic matches that are not duplicates.
func (s *Searcher) hybridSearch(ctx context.Context, query, keyword string, params queryParams, scope classify.Context, monitor SearchMonitor) ([]VerseResult, error) {
	results := s.keywordSearch(keyword, params, scope, monitor)

	keywordKeys := make(map[string]bool, len(results))
	for _, r := range results {
		keywordKeys[r.Version+":"+r.BookShort+":"+strconv.Itoa(r.Chapter)+":"+strconv.Itoa(r.Verse)] = true
	}

	if len(results) >= params.maxResults {
		return results, nil
	}

	candidates, err := s.retrieveCandidates(ctx, query)
	if err != nil {
		return nil, err
	}
	monitor.AfterCandidateRetrieval(candidates)

	remaining := make([]core.ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if keywordKeys[candidate.Verse.Key()] {
			continue
		}
		remaining = append(remaining, candidate)
	}

	reranked := rerankAndFilter(remaining, query, params.minScore, params.version, scope, params.maxResults-len(results))
	for _, candidate := range reranked {
		monitor.SemanticHit(candidate)
		results = append(results, toVerseResult(candidate))
	}
	return results, nil
}

// retrieveCandidates is Stage 1: embed the query and run a permissive
// similarity search, resolving each stored text back to its verse. A match
// whose text cannot be resolved indicates an inconsistent index; it is
// logged and dropped rather than failing the whole query.
func (s *Searcher) retrieveCandidates(ctx context.Context, query string) ([]core.ScoredCandidate, error) {
	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.Search(ctx, queryVector, s.candidateCount, candidateScoreFloor)
	if err != nil {
		return nil, err
	}

	candidates := make([]core.ScoredCandidate, 0, len(matches))
	for _, match := range matches {
		verse, ok := s.corpus.VerseByEmbeddingText(match.Record.Text)
		if !ok {
			s.logger.Warn("indexed text does not resolve to a corpus verse, dropping",
				"record_id", match.Record.Id)
			continue
		}
		candidates = append(candidates, core.ScoredCandidate{
			Verse:         verse,
			BaseScore:     match.Score,
			RerankedScore: match.Score,
		})
	}
	return candidates, nil
}

// Stats summarizes searcher and index state.
type Stats struct {
	IndexedVectors     int
	CorpusVerses       int
	VersesByVersion    map[string]int
	CandidateCount     int
	DefaultResultCount int
	DefaultMinScore    float64
	IntentPrototypes   int
	ContextPrototypes  int
}

// Stats reports index and configuration statistics.
func (s *Searcher) Stats(ctx context.Context) (Stats, error) {
	indexed, err := s.store.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	corpusStats := s.corpus.Statistics()
	return Stats{
		IndexedVectors:     indexed,
		CorpusVerses:       corpusStats.TotalVerses,
		VersesByVersion:    corpusStats.ByVersion,
		CandidateCount:     s.candidateCount,
		DefaultResultCount: s.defaultResults,
		DefaultMinScore:    s.defaultMinScore,
		IntentPrototypes:   s.intents.PrototypeCount(),
		ContextPrototypes:  s.contexts.PrototypeCount(),
	}, nil
}
