package energy

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Default isolation forest hyperparameters.
const (
	DefaultIsoTrees      = 200
	DefaultIsoSampleSize = 256
	DefaultContamination = 0.1
	DefaultRandomSeed    = 42
)

// IsolationForest isolates anomalies by random recursive partitioning:
// points that end up in shallow leaves across many random trees are easy to
// isolate and therefore anomalous. Scoring follows Liu et al.:
// s(x) = 2^(-E[h(x)] / c(n)), and the top contamination fraction of scores
// is flagged.
type IsolationForest struct {
	Trees         int        `json:"trees"`
	SampleSize    int        `json:"sample_size"`
	Contamination float64    `json:"contamination"`
	Seed          int64      `json:"seed"`
	Forest        []*isoNode `json:"forest,omitempty"`

	// c(psi) for the sample size actually used during fitting.
	PathNorm float64 `json:"path_norm,omitempty"`
}

// isoNode is one node of an isolation tree. Leaves have nil children and
// record the number of training points that reached them.
type isoNode struct {
	SplitFeature int      `json:"f,omitempty"`
	SplitValue   float64  `json:"v,omitempty"`
	Left         *isoNode `json:"l,omitempty"`
	Right        *isoNode `json:"r,omitempty"`
	Size         int      `json:"n,omitempty"`
}

// NewIsolationForest returns a forest with the given hyperparameters.
func NewIsolationForest(trees, sampleSize int, contamination float64, seed int64) *IsolationForest {
	return &IsolationForest{
		Trees:         trees,
		SampleSize:    sampleSize,
		Contamination: contamination,
		Seed:          seed,
	}
}

func (f *IsolationForest) Name() string { return "iso_forest" }

// FitPredict builds the forest on the scaled rows and flags the rooms whose
// anomaly score falls in the top contamination fraction.
func (f *IsolationForest) FitPredict(d *Dataset) ([]bool, error) {
	rows := d.Scaled
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("isolation forest: empty dataset")
	}

	psi := f.SampleSize
	if psi > n {
		psi = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(psi)))) + 1

	rng := rand.New(rand.NewSource(f.Seed))
	f.Forest = make([]*isoNode, f.Trees)
	f.PathNorm = avgPathLength(psi)

	for t := 0; t < f.Trees; t++ {
		sample := subsample(rows, psi, rng)
		f.Forest[t] = buildIsoTree(sample, 0, maxDepth, rng)
	}

	scores := make([]float64, n)
	for i, row := range rows {
		scores[i] = f.Score(row)
	}

	// Flag everything at or above the (1 - contamination) score quantile.
	threshold := quantile(scores, 1-f.Contamination)
	flags := make([]bool, n)
	for i, s := range scores {
		flags[i] = s >= threshold && f.Contamination > 0
	}
	return flags, nil
}

// Score returns the anomaly score for one (scaled) feature vector.
// Scores approach 1 for anomalies and stay well below 0.5 for inliers.
func (f *IsolationForest) Score(row []float64) float64 {
	if len(f.Forest) == 0 || f.PathNorm == 0 {
		return 0
	}
	var sum float64
	for _, root := range f.Forest {
		sum += pathLength(root, row, 0)
	}
	avg := sum / float64(len(f.Forest))
	return math.Pow(2, -avg/f.PathNorm)
}

// Fitted reports whether the forest has been built.
func (f *IsolationForest) Fitted() bool { return len(f.Forest) > 0 }

func buildIsoTree(rows [][]float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	n := len(rows)
	if n <= 1 || depth >= maxDepth {
		return &isoNode{Size: n}
	}

	d := len(rows[0])
	// Pick a split feature with spread; give up after d attempts and leaf out
	// (happens when all remaining rows are identical).
	for attempt := 0; attempt < d; attempt++ {
		feat := rng.Intn(d)
		lo, hi := rows[0][feat], rows[0][feat]
		for _, r := range rows[1:] {
			if r[feat] < lo {
				lo = r[feat]
			}
			if r[feat] > hi {
				hi = r[feat]
			}
		}
		if hi == lo {
			continue
		}
		split := lo + rng.Float64()*(hi-lo)

		var left, right [][]float64
		for _, r := range rows {
			if r[feat] < split {
				left = append(left, r)
			} else {
				right = append(right, r)
			}
		}
		return &isoNode{
			SplitFeature: feat,
			SplitValue:   split,
			Left:         buildIsoTree(left, depth+1, maxDepth, rng),
			Right:        buildIsoTree(right, depth+1, maxDepth, rng),
		}
	}
	return &isoNode{Size: n}
}

func pathLength(node *isoNode, row []float64, depth float64) float64 {
	if node.Left == nil && node.Right == nil {
		return depth + avgPathLength(node.Size)
	}
	if row[node.SplitFeature] < node.SplitValue {
		return pathLength(node.Left, row, depth+1)
	}
	return pathLength(node.Right, row, depth+1)
}

// avgPathLength is c(n), the expected path length of an unsuccessful BST
// search over n points; it normalizes leaf depths for early-terminated trees.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	h := math.Log(float64(n-1)) + 0.5772156649015329 // Euler-Mascheroni
	return 2*h - 2*float64(n-1)/float64(n)
}

// subsample draws k distinct rows without replacement.
func subsample(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	if k >= len(rows) {
		out := make([][]float64, len(rows))
		copy(out, rows)
		return out
	}
	idx := rng.Perm(len(rows))[:k]
	sort.Ints(idx)
	out := make([][]float64, k)
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

// Verify at compile time that the forest implements Detector.
var _ Detector = (*IsolationForest)(nil)
