package classifier

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// TrainConfig controls forest fitting. Zero values fall back to the
// defaults used to produce the shipped artifact.
type TrainConfig struct {
	TreeCounts  []int // grid searched by holdout accuracy
	MaxDepth    int
	MinSplit    int
	HoldoutFrac float64 // fraction of samples held out for grid scoring
	NumClasses  int
	Seed        uint64
}

// DefaultTrainConfig mirrors the original training setup: tree counts
// {10,100,500,1000} and an 80% holdout.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		TreeCounts:  []int{10, 100, 500, 1000},
		MaxDepth:    12,
		MinSplit:    2,
		HoldoutFrac: 0.8,
		NumClasses:  3,
		Seed:        10,
	}
}

// TrainResult reports the grid-search outcome alongside the fitted pipeline.
type TrainResult struct {
	Scaler       *StandardScaler
	Forest       *Forest
	BestTrees    int
	Accuracy     float64 // holdout accuracy of the selected forest
	GridAccuracy map[int]float64
}

// Train fits the scaler on the training split, grid-searches the forest
// size over the configured tree counts, and returns the best pipeline by
// holdout accuracy.
func Train(samples [][]float64, labels []int, cfg TrainConfig) (*TrainResult, error) {
	if len(samples) != len(labels) {
		return nil, fmt.Errorf("got %d samples but %d labels", len(samples), len(labels))
	}
	if len(samples) < 4 {
		return nil, fmt.Errorf("dataset too small to split: %d samples", len(samples))
	}
	if len(cfg.TreeCounts) == 0 {
		cfg = DefaultTrainConfig()
	}
	for i, y := range labels {
		if y < 0 || y >= cfg.NumClasses {
			return nil, fmt.Errorf("label %d out of range at row %d (want 0..%d)", y, i, cfg.NumClasses-1)
		}
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b9))

	trainX, trainY, testX, testY := split(samples, labels, cfg.HoldoutFrac, rng)

	scaler, err := FitScaler(trainX)
	if err != nil {
		return nil, err
	}
	scaledTrain, err := scaler.TransformAll(trainX)
	if err != nil {
		return nil, err
	}
	scaledTest, err := scaler.TransformAll(testX)
	if err != nil {
		return nil, err
	}

	result := &TrainResult{
		Scaler:       scaler,
		GridAccuracy: make(map[int]float64, len(cfg.TreeCounts)),
	}

	for _, n := range cfg.TreeCounts {
		forest := growForest(scaledTrain, trainY, n, cfg, rng)
		acc := accuracy(forest, scaledTest, testY)
		result.GridAccuracy[n] = acc

		if result.Forest == nil || acc > result.Accuracy {
			result.Forest = forest
			result.BestTrees = n
			result.Accuracy = acc
		}
	}
	return result, nil
}

func split(samples [][]float64, labels []int, holdout float64, rng *rand.Rand) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if holdout <= 0 || holdout >= 1 {
		holdout = 0.8
	}

	order := rng.Perm(len(samples))
	testSize := int(float64(len(samples)) * holdout)
	if testSize < 1 {
		testSize = 1
	}
	if testSize >= len(samples) {
		testSize = len(samples) - 1
	}

	for i, idx := range order {
		if i < testSize {
			testX = append(testX, samples[idx])
			testY = append(testY, labels[idx])
		} else {
			trainX = append(trainX, samples[idx])
			trainY = append(trainY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

func accuracy(f *Forest, samples [][]float64, labels []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	correct := 0
	for i, x := range samples {
		if pred, err := f.Predict(x); err == nil && pred == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(samples))
}

func growForest(samples [][]float64, labels []int, numTrees int, cfg TrainConfig, rng *rand.Rand) *Forest {
	forest := &Forest{
		Trees:      make([]Tree, 0, numTrees),
		NumClasses: cfg.NumClasses,
	}

	features := len(samples[0])
	mtry := int(math.Sqrt(float64(features)))
	if mtry < 1 {
		mtry = 1
	}

	for t := 0; t < numTrees; t++ {
		// Bootstrap resample.
		bootX := make([][]float64, len(samples))
		bootY := make([]int, len(samples))
		for i := range samples {
			j := rng.IntN(len(samples))
			bootX[i] = samples[j]
			bootY[i] = labels[j]
		}

		builder := &treeBuilder{
			cfg:  cfg,
			mtry: mtry,
			rng:  rng,
		}
		builder.grow(bootX, bootY, 0)
		forest.Trees = append(forest.Trees, Tree{Nodes: builder.nodes})
	}
	return forest
}

type treeBuilder struct {
	cfg   TrainConfig
	mtry  int
	rng   *rand.Rand
	nodes []TreeNode
}

// grow appends the subtree for the given samples and returns its root index.
func (b *treeBuilder) grow(samples [][]float64, labels []int, depth int) int {
	if depth >= b.cfg.MaxDepth || len(samples) < b.cfg.MinSplit || pure(labels) {
		return b.leaf(labels)
	}

	feature, threshold, ok := b.bestSplit(samples, labels)
	if !ok {
		return b.leaf(labels)
	}

	var leftX, rightX [][]float64
	var leftY, rightY []int
	for i, x := range samples {
		if x[feature] <= threshold {
			leftX = append(leftX, x)
			leftY = append(leftY, labels[i])
		} else {
			rightX = append(rightX, x)
			rightY = append(rightY, labels[i])
		}
	}
	if len(leftY) == 0 || len(rightY) == 0 {
		return b.leaf(labels)
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Feature: feature, Threshold: threshold})
	left := b.grow(leftX, leftY, depth+1)
	right := b.grow(rightX, rightY, depth+1)
	b.nodes[idx].Left = left
	b.nodes[idx].Right = right
	return idx
}

func (b *treeBuilder) leaf(labels []int) int {
	counts := make(map[int]int)
	for _, y := range labels {
		counts[y]++
	}
	best, bestCount := 0, -1
	for class, count := range counts {
		if count > bestCount || (count == bestCount && class < best) {
			best, bestCount = class, count
		}
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Leaf: true, Class: best})
	return idx
}

// bestSplit searches a random feature subset for the threshold minimizing
// weighted gini impurity. Candidate thresholds are midpoints between
// consecutive distinct values.
func (b *treeBuilder) bestSplit(samples [][]float64, labels []int) (feature int, threshold float64, ok bool) {
	features := len(samples[0])
	candidates := b.rng.Perm(features)[:b.mtry]

	bestGini := math.Inf(1)
	for _, f := range candidates {
		values := make([]float64, 0, len(samples))
		seen := make(map[float64]struct{})
		for _, x := range samples {
			if _, dup := seen[x[f]]; !dup {
				seen[x[f]] = struct{}{}
				values = append(values, x[f])
			}
		}
		if len(values) < 2 {
			continue
		}
		sort.Float64s(values)

		for i := 0; i < len(values)-1; i++ {
			mid := (values[i] + values[i+1]) / 2
			g := b.splitGini(samples, labels, f, mid)
			if g < bestGini {
				bestGini = g
				feature = f
				threshold = mid
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (b *treeBuilder) splitGini(samples [][]float64, labels []int, feature int, threshold float64) float64 {
	leftCounts := make([]int, b.cfg.NumClasses)
	rightCounts := make([]int, b.cfg.NumClasses)
	leftTotal, rightTotal := 0, 0

	for i, x := range samples {
		if x[feature] <= threshold {
			leftCounts[labels[i]]++
			leftTotal++
		} else {
			rightCounts[labels[i]]++
			rightTotal++
		}
	}

	total := float64(leftTotal + rightTotal)
	return float64(leftTotal)/total*gini(leftCounts, leftTotal) +
		float64(rightTotal)/total*gini(rightCounts, rightTotal)
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		impurity -= p * p
	}
	return impurity
}

func pure(labels []int) bool {
	for _, y := range labels[1:] {
		if y != labels[0] {
			return false
		}
	}
	return true
}
