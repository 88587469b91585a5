package forecast

import (
	"math"
	"sort"
)

type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	classification  bool
	numClasses      int
}

// treeNode is a binary CART node. Leaves have left == nil and carry the
// prediction: the target mean for regression, the majority class index for
// classification.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
}

func (n *treeNode) predict(x []float64) float64 {
	for n.left != nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func growTree(X [][]float64, y []float64, idx []int, depth int, p treeParams) *treeNode {
	if len(idx) < p.minSamplesSplit || depth >= p.maxDepth || isPure(y, idx) {
		return &treeNode{value: leafValue(y, idx, p)}
	}

	feature, threshold, ok := bestSplit(X, y, idx, p)
	if !ok {
		return &treeNode{value: leafValue(y, idx, p)}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < p.minSamplesLeaf || len(right) < p.minSamplesLeaf {
		return &treeNode{value: leafValue(y, idx, p)}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(X, y, left, depth+1, p),
		right:     growTree(X, y, right, depth+1, p),
	}
}

func isPure(y []float64, idx []int) bool {
	for i := 1; i < len(idx); i++ {
		if y[idx[i]] != y[idx[0]] {
			return false
		}
	}
	return true
}

func leafValue(y []float64, idx []int, p treeParams) float64 {
	if p.classification {
		counts := make([]int, p.numClasses)
		for _, i := range idx {
			counts[int(y[i])]++
		}
		best := 0
		for c := 1; c < len(counts); c++ {
			if counts[c] > counts[best] {
				best = c
			}
		}
		return float64(best)
	}

	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

// bestSplit scans every feature with a single sorted sweep per feature,
// minimizing summed squared error (regression) or weighted Gini impurity
// (classification). Candidate thresholds are midpoints between distinct
// consecutive values.
func bestSplit(X [][]float64, y []float64, idx []int, p treeParams) (feature int, threshold float64, ok bool) {
	bestScore := math.Inf(1)
	order := make([]int, len(idx))

	for f := 0; f < len(X[idx[0]]); f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		var score float64
		var split int
		var found bool
		if p.classification {
			score, split, found = sweepGini(X, y, order, f, p)
		} else {
			score, split, found = sweepVariance(X, y, order, f, p)
		}
		if found && score < bestScore {
			bestScore = score
			feature = f
			threshold = (X[order[split-1]][f] + X[order[split]][f]) / 2
			ok = true
		}
	}
	return feature, threshold, ok
}

// sweepVariance finds the split position minimizing left+right SSE over a
// feature-sorted index order. Returns the split position (first index of
// the right partition).
func sweepVariance(X [][]float64, y []float64, order []int, f int, p treeParams) (best float64, split int, ok bool) {
	n := len(order)
	var sumL, sqL float64
	var sumR, sqR float64
	for _, i := range order {
		sumR += y[i]
		sqR += y[i] * y[i]
	}

	best = math.Inf(1)
	for pos := 1; pos < n; pos++ {
		v := y[order[pos-1]]
		sumL += v
		sqL += v * v
		sumR -= v
		sqR -= v * v

		if pos < p.minSamplesLeaf || n-pos < p.minSamplesLeaf {
			continue
		}
		if X[order[pos-1]][f] == X[order[pos]][f] {
			continue
		}

		sseL := sqL - sumL*sumL/float64(pos)
		sseR := sqR - sumR*sumR/float64(n-pos)
		if sse := sseL + sseR; sse < best {
			best = sse
			split = pos
			ok = true
		}
	}
	return best, split, ok
}

// sweepGini finds the split position minimizing count-weighted Gini
// impurity over a feature-sorted index order.
func sweepGini(X [][]float64, y []float64, order []int, f int, p treeParams) (best float64, split int, ok bool) {
	n := len(order)
	countL := make([]int, p.numClasses)
	countR := make([]int, p.numClasses)
	for _, i := range order {
		countR[int(y[i])]++
	}

	gini := func(counts []int, total int) float64 {
		if total == 0 {
			return 0
		}
		g := 1.0
		for _, c := range counts {
			frac := float64(c) / float64(total)
			g -= frac * frac
		}
		return g
	}

	best = math.Inf(1)
	for pos := 1; pos < n; pos++ {
		c := int(y[order[pos-1]])
		countL[c]++
		countR[c]--

		if pos < p.minSamplesLeaf || n-pos < p.minSamplesLeaf {
			continue
		}
		if X[order[pos-1]][f] == X[order[pos]][f] {
			continue
		}

		weighted := float64(pos)*gini(countL, pos) + float64(n-pos)*gini(countR, n-pos)
		if weighted < best {
			best = weighted
			split = pos
			ok = true
		}
	}
	return best, split, ok
}
