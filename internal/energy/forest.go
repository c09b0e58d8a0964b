package energy

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// RandomForest is a bagged ensemble of variance-minimising regression trees.
// Each tree is grown on a bootstrap sample and considers a random subset of
// the features at every split.
type RandomForest struct {
	Trees       int   `json:"trees"`
	Seed        int64 `json:"seed"`
	MaxFeatures int   `json:"max_features,omitempty"` // 0 means d/3

	Roots []*regNode `json:"roots,omitempty"`
}

// regNode is one node of a regression tree. Keys are short because a
// persisted forest holds thousands of them.
type regNode struct {
	SplitFeature int      `json:"f,omitempty"`
	SplitValue   float64  `json:"v,omitempty"`
	Left         *regNode `json:"l,omitempty"`
	Right        *regNode `json:"r,omitempty"`
	Leaf         bool     `json:"leaf,omitempty"`
	Pred         float64  `json:"p,omitempty"`
}

// NewRandomForest returns a forest with the given tree count and seed.
func NewRandomForest(trees int, seed int64) *RandomForest {
	return &RandomForest{Trees: trees, Seed: seed}
}

// Fit grows the forest on the given rows.
func (f *RandomForest) Fit(x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 || n != len(y) {
		return fmt.Errorf("forest fit: %d rows, %d targets", n, len(y))
	}

	d := len(x[0])
	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = d / 3
	}
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	if maxFeatures > d {
		maxFeatures = d
	}

	rng := rand.New(rand.NewSource(f.Seed))
	f.Roots = make([]*regNode, f.Trees)
	for t := 0; t < f.Trees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.Roots[t] = buildRegTree(x, y, sample, maxFeatures, rng)
	}
	return nil
}

// Predict averages the tree estimates for a single feature row.
func (f *RandomForest) Predict(row []float64) float64 {
	if len(f.Roots) == 0 {
		return 0
	}
	var sum float64
	for _, root := range f.Roots {
		sum += root.predict(row)
	}
	return sum / float64(len(f.Roots))
}

// Fitted reports whether the forest has trees (fitted or loaded).
func (f *RandomForest) Fitted() bool { return len(f.Roots) > 0 }

func (n *regNode) predict(row []float64) float64 {
	for !n.Leaf {
		if row[n.SplitFeature] <= n.SplitValue {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Pred
}

// buildRegTree grows a tree over the sampled row indices, splitting on the
// feature/value pair that most reduces the weighted target variance.
func buildRegTree(x [][]float64, y []float64, idx []int, maxFeatures int, rng *rand.Rand) *regNode {
	if len(idx) < 2 || constantTargets(y, idx) {
		return &regNode{Leaf: true, Pred: meanAt(y, idx)}
	}

	d := len(x[0])
	bestFeature, bestValue := -1, 0.0
	bestScore := math.Inf(1)

	for _, feat := range rng.Perm(d)[:maxFeatures] {
		values := make([]float64, 0, len(idx))
		for _, i := range idx {
			values = append(values, x[i][feat])
		}
		sort.Float64s(values)

		for k := 0; k+1 < len(values); k++ {
			if values[k] == values[k+1] {
				continue
			}
			split := (values[k] + values[k+1]) / 2
			score := splitScore(x, y, idx, feat, split)
			if score < bestScore {
				bestScore = score
				bestFeature = feat
				bestValue = split
			}
		}
	}

	if bestFeature < 0 {
		return &regNode{Leaf: true, Pred: meanAt(y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][bestFeature] <= bestValue {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &regNode{
		SplitFeature: bestFeature,
		SplitValue:   bestValue,
		Left:         buildRegTree(x, y, left, maxFeatures, rng),
		Right:        buildRegTree(x, y, right, maxFeatures, rng),
	}
}

// splitScore is the size-weighted sum of target variances on either side of
// the candidate split. Lower is better.
func splitScore(x [][]float64, y []float64, idx []int, feat int, split float64) float64 {
	var left, right []int
	for _, i := range idx {
		if x[i][feat] <= split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return math.Inf(1)
	}
	return float64(len(left))*varianceAt(y, left) + float64(len(right))*varianceAt(y, right)
}

func constantTargets(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func varianceAt(y []float64, idx []int) float64 {
	m := meanAt(y, idx)
	var sum float64
	for _, i := range idx {
		d := y[i] - m
		sum += d * d
	}
	return sum / float64(len(idx))
}
