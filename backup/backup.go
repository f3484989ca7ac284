// Package backup implements the post-search tree walk that turns
// accumulated node statistics into a per-root-card score, via a pluggable
// pair of (opponent, partner) models.
package backup

import (
	"github.com/samber/lo"

	"bridgecard/card"
	"bridgecard/tree"
)

const epsilon = 1e-9

// Model scores a non-leaf node given a function that recursively scores any
// child. Each model implements a different way of aggregating children's
// scores into the node's own score.
type Model interface {
	Backup(node *tree.Node, score func(*tree.Node) float64) float64
}

// Score is the leaf-value rule: a winrate near the extremes is nudged
// outward (still ordered by tricks) so that models comparing scores don't
// see ties among certain-win leaves, or among certain-loss leaves, that
// differ in average tricks.
func Score(node *tree.Node) float64 {
	w := node.Winrate()
	r := node.AvgTricks() / 13
	switch {
	case w < epsilon:
		return -1e-3 * (1 - r)
	case w > 1-epsilon:
		return 1 + 1e-3*r
	default:
		return w
	}
}

// Evaluate walks the tree from node, returning its backed-up score. Self
// nodes take the max over children (the searching side always has the
// choice of card); Partner and Opponent nodes defer to their model.
func Evaluate(node *tree.Node, opponent, partner Model) float64 {
	edges := node.Edges()
	if len(edges) == 0 {
		return Score(node)
	}

	recurse := func(child *tree.Node) float64 {
		return Evaluate(child, opponent, partner)
	}

	switch node.Role {
	case tree.Self:
		children := lo.FlatMap(lo.Values(edges), func(e *tree.Edge, _ int) []*tree.Node {
			return e.Children()
		})
		if len(children) == 0 {
			return Score(node)
		}
		scored := lo.Map(children, func(c *tree.Node, _ int) lo.Tuple2[*tree.Node, float64] {
			return lo.Tuple2[*tree.Node, float64]{A: c, B: recurse(c)}
		})
		best := lo.MaxBy(scored, func(a, b lo.Tuple2[*tree.Node, float64]) bool { return a.B > b.B })
		return best.B
	case tree.Partner:
		return partner.Backup(node, recurse)
	default:
		return opponent.Backup(node, recurse)
	}
}

const negInf = -1e308

// EvaluateRoot computes a card -> score map for every edge out of the
// tree's root, the public entry point for a completed (or in-progress,
// paused) search. An edge with more than one recorded successor (an
// info-set key collision) is scored by the best of its children.
func EvaluateRoot(t *tree.Tree, opponent, partner Model) map[card.Card]float64 {
	root := t.Root()
	out := make(map[card.Card]float64)
	for c, e := range root.Edges() {
		children := e.Children()
		if len(children) == 0 {
			continue
		}
		scored := lo.Map(children, func(child *tree.Node, _ int) lo.Tuple2[*tree.Node, float64] {
			return lo.Tuple2[*tree.Node, float64]{A: child, B: Evaluate(child, opponent, partner)}
		})
		out[c] = lo.MaxBy(scored, func(a, b lo.Tuple2[*tree.Node, float64]) bool { return a.B > b.B }).B
	}
	return out
}
