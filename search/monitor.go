package search

import (
	"github.com/poiesic/versefinder/classify"
	"github.com/poiesic/versefinder/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	ContextDetected(scope classify.Context)
	IntentDetected(intent classify.Intent)
	AfterCandidateRetrieval(candidates []core.ScoredCandidate)
	KeywordHit(verse *core.Verse)
	SemanticHit(candidate core.ScoredCandidate)
	Finish(results []VerseResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                  {}
func (n *noopMonitor) ContextDetected(_ classify.Context)              {}
func (n *noopMonitor) IntentDetected(_ classify.Intent)                {}
func (n *noopMonitor) AfterCandidateRetrieval(_ []core.ScoredCandidate) {}
func (n *noopMonitor) KeywordHit(_ *core.Verse)                        {}
func (n *noopMonitor) SemanticHit(_ core.ScoredCandidate)              {}
func (n *noopMonitor) Finish(_ []VerseResult)                          {}
