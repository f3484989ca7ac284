// Package tree implements the shared, concurrently mutated information-set
// tree: a root node plus a hash-keyed map of successor nodes, each with
// atomic leaf statistics and a concurrent map of outgoing edges.
package tree

import (
	"sync"
	"sync/atomic"

	"bridgecard/card"
	"bridgecard/playout"
)

// Role tags a node relative to the search's original acting seat.
type Role uint8

const (
	// Self is the root's role and the role of any node where the world's
	// acting seat is exactly the original root seat.
	Self Role = iota
	// Partner is assigned when the world's acting side matches the root's
	// side but the seat itself differs.
	Partner
	// Opponent is assigned when the world's acting side differs from the
	// root's side.
	Opponent
)

// Node is one information set: a role tag, a concurrent map of outgoing
// edges keyed by the card played, and leaf statistics updated atomically
// from any worker goroutine.
type Node struct {
	Role Role

	edges sync.Map // card.Card -> *Edge

	evals    atomic.Uint64
	wins     atomic.Uint64
	trickSum atomic.Uint64
}

// Insert atomically records one leaf evaluation: evals increments always,
// wins increments iff win, trickSum accumulates tricks.
func (n *Node) Insert(win bool, tricks int) {
	n.evals.Add(1)
	if win {
		n.wins.Add(1)
	}
	n.trickSum.Add(uint64(tricks))
}

// AddEdge returns the Edge for playing c out of this node, creating it on
// first use. Concurrent callers racing on the same card share one Edge.
func (n *Node) AddEdge(c card.Card) *Edge {
	actual, _ := n.edges.LoadOrStore(c, &Edge{})
	return actual.(*Edge)
}

// Edges returns every (card, edge) pair recorded out of this node. The
// order is unspecified.
func (n *Node) Edges() map[card.Card]*Edge {
	out := make(map[card.Card]*Edge)
	n.edges.Range(func(k, v any) bool {
		out[k.(card.Card)] = v.(*Edge)
		return true
	})
	return out
}

// Evals, Wins, and TrickSum expose the raw accumulators.
func (n *Node) Evals() int    { return int(n.evals.Load()) }
func (n *Node) Wins() int     { return int(n.wins.Load()) }
func (n *Node) TrickSum() int { return int(n.trickSum.Load()) }

// Winrate returns wins/evals, or 0 if there are no evaluations yet.
func (n *Node) Winrate() float64 {
	evals := n.evals.Load()
	if evals == 0 {
		return 0
	}
	return float64(n.wins.Load()) / float64(evals)
}

// AvgTricks returns trickSum/evals, or 0 if there are no evaluations yet.
func (n *Node) AvgTricks() float64 {
	evals := n.evals.Load()
	if evals == 0 {
		return 0
	}
	return float64(n.trickSum.Load()) / float64(evals)
}

// Policy yields, for every outgoing edge, the successor node and its
// visit-frequency action probability (visits(child)+prior) / max(total
// visits + prior*|children|, |children|), smoothed by prior. Childless nodes
// yield nothing.
func (n *Node) Policy(prior float64) map[*Node]float64 {
	edges := n.Edges()
	if len(edges) == 0 {
		return nil
	}
	type child struct {
		node   *Node
		visits int
	}
	children := make([]child, 0, len(edges))
	totalVisits := 0
	for _, e := range edges {
		e.successors.Range(func(k, v any) bool {
			visits := int(v.(*atomic.Uint64).Load())
			children = append(children, child{node: k.(*Node), visits: visits})
			totalVisits += visits
			return true
		})
	}
	count := float64(len(children))
	denom := float64(totalVisits) + prior*count
	if denom < count {
		denom = count
	}
	out := make(map[*Node]float64, len(children))
	for _, c := range children {
		out[c.node] = (float64(c.visits) + prior) / denom
	}
	return out
}

// Edge is one outgoing action from a node: a concurrent histogram of
// observed successor nodes and a running total of observations.
type Edge struct {
	successors sync.Map // *Node -> *atomic.Uint64
	total      atomic.Uint64
}

// Update atomically increments child's histogram entry and the edge's
// total.
func (e *Edge) Update(child *Node) {
	actual, _ := e.successors.LoadOrStore(child, new(atomic.Uint64))
	actual.(*atomic.Uint64).Add(1)
	e.total.Add(1)
}

// Total returns the edge's total observation count.
func (e *Edge) Total() int { return int(e.total.Load()) }

// Children returns every distinct successor node recorded on this edge.
// Ordinarily there is exactly one: World.Play derives the same info-set key
// from the same (node, card) pair every time, so the tree only ever sees
// more than one child here on an info-set key collision.
func (e *Edge) Children() []*Node {
	counts := e.successorCounts()
	out := make([]*Node, 0, len(counts))
	for n := range counts {
		out = append(out, n)
	}
	return out
}

// successorCounts snapshots the observed child -> count histogram.
func (e *Edge) successorCounts() map[*Node]uint64 {
	out := make(map[*Node]uint64)
	e.successors.Range(func(k, v any) bool {
		out[k.(*Node)] = v.(*atomic.Uint64).Load()
		return true
	})
	return out
}

// Dynamics yields each observed successor and its prior-smoothed
// probability (count+prior)/(total+prior*|children|). Yields nothing if the
// edge has no observations.
func (e *Edge) Dynamics(prior float64) map[*Node]float64 {
	counts := e.successorCounts()
	if len(counts) == 0 {
		return nil
	}
	n := float64(len(counts))
	denom := float64(e.Total()) + prior*n
	out := make(map[*Node]float64, len(counts))
	for child, count := range counts {
		out[child] = (float64(count) + prior) / denom
	}
	return out
}

// Tree owns every node reachable from the root and the concurrent map from
// 64-bit play-history word to Node.
type Tree struct {
	root  Node
	nodes sync.Map // uint64 -> *Node
}

// New returns an empty tree with a fresh root in the Self role.
func New() *Tree {
	t := &Tree{}
	t.root.Role = Self
	return t
}

// Root returns the tree's single root node.
func (t *Tree) Root() *Node { return &t.root }

// GetOrCreate returns the node for the given information-set key, creating
// it with the given role if absent. A key of 0 always resolves to the root,
// whose role is fixed. Concurrent callers racing on the same key share one
// node: the loser's freshly constructed Node is discarded, which is safe
// because node construction has no side effects on the tree.
func (t *Tree) GetOrCreate(key playout.Key, role Role) *Node {
	if key.History == 0 {
		return &t.root
	}
	candidate := &Node{Role: role}
	actual, _ := t.nodes.LoadOrStore(key.History, candidate)
	return actual.(*Node)
}
