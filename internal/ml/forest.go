package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Config controls forest training. The zero value is not usable; use
// DefaultConfig and override as needed.
type Config struct {
	Trees    int
	MaxDepth int
	Seed     int64
	MinLeaf  int // minimum samples per leaf
}

// DefaultConfig mirrors the production classifier settings: 120 trees,
// depth 12, fixed seed for run-to-run reproducibility.
func DefaultConfig() Config {
	return Config{Trees: 120, MaxDepth: 12, Seed: 42, MinLeaf: 1}
}

// Forest is an immutable trained classifier. Its feature contract is
// frozen at training time; Predict inputs must follow FeatureNames order.
type Forest struct {
	trees       []*node
	importances [NumFeatures]float64
}

// node is one decision-tree node. Leaves have left == nil.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	class     int
}

// Train fits a bagged ensemble of depth-capped CART trees on the
// training set. Each tree sees a bootstrap sample and considers a
// random subset of features at every split (classic random forest).
// Training is single-threaded and driven by one seeded source, so the
// same data and config always produce the same model.
func Train(set TrainingSet, cfg Config) (*Forest, error) {
	if len(set.X) == 0 {
		return nil, errors.New("training set is empty")
	}
	if len(set.X) != len(set.Y) {
		return nil, fmt.Errorf("feature/label length mismatch: %d vs %d", len(set.X), len(set.Y))
	}
	for i, row := range set.X {
		if len(row) != NumFeatures {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), NumFeatures)
		}
	}
	if cfg.Trees <= 0 || cfg.MaxDepth <= 0 {
		return nil, fmt.Errorf("invalid forest config: trees=%d max_depth=%d", cfg.Trees, cfg.MaxDepth)
	}
	if cfg.MinLeaf <= 0 {
		cfg.MinLeaf = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := len(set.X)

	f := &Forest{trees: make([]*node, cfg.Trees)}
	b := builder{set: set, cfg: cfg, rng: rng, forest: f}

	for t := 0; t < cfg.Trees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.trees[t] = b.grow(sample, 0)
	}

	// Normalize accumulated impurity decreases into importances.
	var total float64
	for _, v := range f.importances {
		total += v
	}
	if total > 0 {
		for i := range f.importances {
			f.importances[i] /= total
		}
	}
	return f, nil
}

// builder carries the shared training state while growing one forest.
type builder struct {
	set    TrainingSet
	cfg    Config
	rng    *rand.Rand
	forest *Forest
}

// grow recursively builds a tree over the given sample indices.
func (b *builder) grow(indices []int, depth int) *node {
	counts := b.classCounts(indices)
	majority, pure := majorityClass(counts)

	if pure || depth >= b.cfg.MaxDepth || len(indices) < 2*b.cfg.MinLeaf {
		return &node{left: nil, class: majority}
	}

	feature, threshold, gain, left, right := b.bestSplit(indices, counts)
	if gain <= 0 || len(left) < b.cfg.MinLeaf || len(right) < b.cfg.MinLeaf {
		return &node{class: majority}
	}

	// Importance: impurity decrease weighted by the node's sample share.
	b.forest.importances[feature] += gain * float64(len(indices))

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.grow(left, depth+1),
		right:     b.grow(right, depth+1),
	}
}

// bestSplit searches a random subset of √NumFeatures candidate features
// for the split with the largest Gini impurity decrease.
func (b *builder) bestSplit(indices []int, parentCounts [NumClasses]int) (feature int, threshold, gain float64, left, right []int) {
	parentGini := gini(parentCounts, len(indices))
	mtry := int(math.Sqrt(float64(NumFeatures)))
	if mtry < 1 {
		mtry = 1
	}
	candidates := b.rng.Perm(NumFeatures)[:mtry]

	feature = -1
	sorted := make([]int, len(indices))

	for _, fi := range candidates {
		copy(sorted, indices)
		sort.Slice(sorted, func(i, j int) bool {
			return b.set.X[sorted[i]][fi] < b.set.X[sorted[j]][fi]
		})

		var leftCounts [NumClasses]int
		rightCounts := parentCounts

		for i := 0; i < len(sorted)-1; i++ {
			y := b.set.Y[sorted[i]]
			leftCounts[y]++
			rightCounts[y]--

			v, next := b.set.X[sorted[i]][fi], b.set.X[sorted[i+1]][fi]
			if v == next {
				continue // can't split between identical values
			}

			nLeft, nRight := i+1, len(sorted)-i-1
			weighted := (float64(nLeft)*gini(leftCounts, nLeft) +
				float64(nRight)*gini(rightCounts, nRight)) / float64(len(sorted))

			if g := parentGini - weighted; g > gain {
				gain = g
				feature = fi
				threshold = (v + next) / 2
			}
		}
	}

	if feature < 0 {
		return -1, 0, 0, nil, nil
	}
	for _, idx := range indices {
		if b.set.X[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return feature, threshold, gain, left, right
}

func (b *builder) classCounts(indices []int) [NumClasses]int {
	var counts [NumClasses]int
	for _, idx := range indices {
		counts[b.set.Y[idx]]++
	}
	return counts
}

// majorityClass returns the most frequent class (lowest label wins
// ties, keeping predictions deterministic) and whether the node is pure.
func majorityClass(counts [NumClasses]int) (int, bool) {
	best, bestCount, nonZero := 0, -1, 0
	for c, n := range counts {
		if n > 0 {
			nonZero++
		}
		if n > bestCount {
			best, bestCount = c, n
		}
	}
	return best, nonZero <= 1
}

// gini computes the Gini impurity of a class distribution.
func gini(counts [NumClasses]int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, n := range counts {
		p := float64(n) / float64(total)
		impurity -= p * p
	}
	return impurity
}

// Predict classifies one feature row by majority vote across the trees.
func (f *Forest) Predict(x []float64) (int, error) {
	if len(x) != NumFeatures {
		return 0, fmt.Errorf("feature row has %d values, want %d", len(x), NumFeatures)
	}
	var votes [NumClasses]int
	for _, t := range f.trees {
		votes[classify(t, x)]++
	}
	best, bestVotes := 0, -1
	for c, n := range votes {
		if n > bestVotes {
			best, bestVotes = c, n
		}
	}
	return best, nil
}

// PredictAll classifies every row, returning one label per row.
func (f *Forest) PredictAll(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, x := range X {
		label, err := f.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = label
	}
	return out, nil
}

func classify(n *node, x []float64) int {
	for n.left != nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.class
}

// Importance pairs a feature name with its normalized importance score.
type Importance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Importances returns per-feature Gini importances aligned to
// FeatureNames, normalized to sum to 1. Diagnostic only.
func (f *Forest) Importances() []Importance {
	out := make([]Importance, NumFeatures)
	for i, name := range FeatureNames {
		out[i] = Importance{Feature: name, Importance: f.importances[i]}
	}
	return out
}
