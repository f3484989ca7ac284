package backup

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"bridgecard/tree"
)

// Optimistic backs up a node as the best score among its children.
type Optimistic struct{}

func (Optimistic) Backup(node *tree.Node, score func(*tree.Node) float64) float64 {
	best := negInf
	found := false
	for _, e := range node.Edges() {
		for _, child := range e.Children() {
			found = true
			if v := score(child); v > best {
				best = v
			}
		}
	}
	if !found {
		return Score(node)
	}
	return best
}

// Adversarial backs up a node as the worst score among its children.
type Adversarial struct{}

func (Adversarial) Backup(node *tree.Node, score func(*tree.Node) float64) float64 {
	worst := math.Inf(1)
	found := false
	for _, e := range node.Edges() {
		for _, child := range e.Children() {
			found = true
			if v := score(child); v < worst {
				worst = v
			}
		}
	}
	if !found {
		return Score(node)
	}
	return worst
}

// Expectation backs up a node as the policy-weighted average of its
// children's scores. A childless node yields an empty sum, 0 — not
// Score(node) — mirroring the source; backup.Evaluate never reaches a
// childless node through a model in the first place (it returns Score
// directly), so this only matters when a model is exercised in isolation.
type Expectation struct {
	Prior float64
}

func (m Expectation) Backup(node *tree.Node, score func(*tree.Node) float64) float64 {
	policy := node.Policy(m.Prior)
	sum := 0.0
	for child, p := range policy {
		sum += p * score(child)
	}
	return sum
}

// LinearBlend interpolates between an extreme backup (max for Partner
// nodes, min for Opponent nodes) and the policy-weighted expectation.
type LinearBlend struct {
	Lambda float64
	Prior  float64
}

func (m LinearBlend) Backup(node *tree.Node, score func(*tree.Node) float64) float64 {
	var extreme float64
	if node.Role == tree.Partner {
		extreme = Optimistic{}.Backup(node, score)
	} else {
		extreme = Adversarial{}.Backup(node, score)
	}
	expectation := Expectation{Prior: m.Prior}.Backup(node, score)
	return (1-m.Lambda)*extreme + m.Lambda*expectation
}

// weightedLogSumExp computes log(Σ p_c · exp(s_c/τ)) via gonum's numerically
// stable LogSumExp, by folding each weight into the exponent as log(p_c).
func weightedLogSumExp(policy map[*tree.Node]float64, scoreOf func(*tree.Node) float64, tau float64) float64 {
	terms := make([]float64, 0, len(policy))
	for child, p := range policy {
		terms = append(terms, scoreOf(child)/tau+math.Log(p))
	}
	return floats.LogSumExp(terms)
}

// SoftMax backs up a node as a policy-weighted, temperature-scaled
// log-sum-exp of its children's scores — a smooth interpolation that
// approaches the maximum as τ→0+ and the policy-weighted expectation as
// τ→∞.
type SoftMax struct {
	Tau   float64
	Prior float64
}

func (m SoftMax) Backup(node *tree.Node, score func(*tree.Node) float64) float64 {
	policy := node.Policy(m.Prior)
	if len(policy) == 0 {
		return 0
	}
	return m.Tau * weightedLogSumExp(policy, score, m.Tau)
}

// SoftMin is SoftMax's symmetric counterpart: it approaches the minimum as
// τ→0+.
type SoftMin struct {
	Tau   float64
	Prior float64
}

func (m SoftMin) Backup(node *tree.Node, score func(*tree.Node) float64) float64 {
	policy := node.Policy(m.Prior)
	if len(policy) == 0 {
		return 0
	}
	negated := func(n *tree.Node) float64 { return -score(n) }
	return -m.Tau * weightedLogSumExp(policy, negated, m.Tau)
}
