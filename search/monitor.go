package search

import "github.com/poiesic/agendex/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterLexicalSearch(hits []core.RankedHit, err error)
	AfterVectorSearch(hits []core.RankedHit, err error)
	AfterFusion(fused []core.FusedHit)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                 {}
func (n *noopMonitor) AfterLexicalSearch(_ []core.RankedHit, _ error) {}
func (n *noopMonitor) AfterVectorSearch(_ []core.RankedHit, _ error)  {}
func (n *noopMonitor) AfterFusion(_ []core.FusedHit)                  {}
func (n *noopMonitor) Finish(_ *Response)                             {}
