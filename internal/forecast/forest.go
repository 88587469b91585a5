package forecast

import (
	"math"
	"math/rand"
)

// Fixed seed so repeated trainings over unchanged data give identical
// predictions.
const forestSeed = 42

// Regression ensemble hyperparameters.
const (
	regressorTrees    = 100
	regressorMaxDepth = 15
	regressorMinSplit = 5
	regressorMinLeaf  = 2
)

// Classification ensemble hyperparameters.
const (
	classifierTrees    = 50
	classifierMaxDepth = 15
	classifierMinSplit = 2
	classifierMinLeaf  = 1
)

// Forest is a bagged ensemble of CART trees, trained fresh per request and
// never shared across requests.
type Forest struct {
	trees  []*treeNode
	params treeParams
}

// TrainRegressor fits a bagged regression forest on feature rows X against
// continuous targets y.
func TrainRegressor(X [][]float64, y []float64) *Forest {
	p := treeParams{
		maxDepth:        regressorMaxDepth,
		minSamplesSplit: regressorMinSplit,
		minSamplesLeaf:  regressorMinLeaf,
	}
	return train(X, y, regressorTrees, p)
}

// TrainClassifier fits a bagged classification forest on feature rows X
// against integer class labels in y (0..numClasses-1).
func TrainClassifier(X [][]float64, y []float64, numClasses int) *Forest {
	p := treeParams{
		maxDepth:        classifierMaxDepth,
		minSamplesSplit: classifierMinSplit,
		minSamplesLeaf:  classifierMinLeaf,
		classification:  true,
		numClasses:      numClasses,
	}
	return train(X, y, classifierTrees, p)
}

func train(X [][]float64, y []float64, numTrees int, p treeParams) *Forest {
	rng := rand.New(rand.NewSource(forestSeed))
	n := len(X)

	forest := &Forest{params: p, trees: make([]*treeNode, 0, numTrees)}
	for t := 0; t < numTrees; t++ {
		// Bootstrap sample with replacement.
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		forest.trees = append(forest.trees, growTree(X, y, idx, 0, p))
	}
	return forest
}

// Predict returns the ensemble prediction for one feature row: the mean
// over trees for regression, the plurality vote for classification (ties
// break toward the lowest class index).
func (f *Forest) Predict(x []float64) float64 {
	if f.params.classification {
		votes := make([]int, f.params.numClasses)
		for _, t := range f.trees {
			votes[int(t.predict(x))]++
		}
		best := 0
		for c := 1; c < len(votes); c++ {
			if votes[c] > votes[best] {
				best = c
			}
		}
		return float64(best)
	}

	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

// PredictCount rounds a regression prediction to a non-negative integer.
func (f *Forest) PredictCount(x []float64) int {
	v := f.Predict(x)
	if v < 0 {
		v = 0
	}
	return int(math.Round(v))
}
