package riskmodel

import "fmt"

// leafNode marks a node without children in the exported tree arrays.
const leafNode = -1

// Tree is a fitted CART decision tree exported as parallel node arrays.
// Value holds the per-class sample weights seen at each node.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// RandomForest averages the class distributions of its trees.
type RandomForest struct {
	NFeatures int       `json:"n_features"`
	Classes   []float64 `json:"classes"`
	Trees     []Tree    `json:"trees"`
}

// PredictProba returns the mean class probability vector for x, ordered like
// Classes.
func (f *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != f.NFeatures {
		return nil, fmt.Errorf("forest expects %d features, got %d", f.NFeatures, len(x))
	}

	proba := make([]float64, len(f.Classes))
	for i := range f.Trees {
		leaf := f.Trees[i].leaf(x)
		dist := f.Trees[i].Value[leaf]

		var total float64
		for _, w := range dist {
			total += w
		}
		if total == 0 {
			continue
		}
		for c, w := range dist {
			proba[c] += w / total
		}
	}

	n := float64(len(f.Trees))
	for c := range proba {
		proba[c] /= n
	}
	return proba, nil
}

// Predict returns the class with the highest mean probability. Ties go to the
// first class.
func (f *RandomForest) Predict(x []float64) (float64, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}

	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return f.Classes[best], nil
}

// leaf walks x down to a leaf. Features are compared at float32 precision,
// the dtype the trees were fitted on; thresholds stay float64.
func (t *Tree) leaf(x []float64) int {
	node := 0
	for t.ChildrenLeft[node] != leafNode {
		if float64(float32(x[t.Feature[node]])) <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}

func (f *RandomForest) validate() error {
	if f.NFeatures <= 0 {
		return fmt.Errorf("forest has invalid feature count %d", f.NFeatures)
	}
	if len(f.Classes) < 2 {
		return fmt.Errorf("forest needs at least 2 classes, got %d", len(f.Classes))
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}

	for i := range f.Trees {
		if err := f.Trees[i].validate(f.NFeatures, len(f.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays have mismatched lengths")
	}

	for i := 0; i < n; i++ {
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d has %d class weights, want %d", i, len(t.Value[i]), nClasses)
		}

		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leafNode {
			if right != leafNode {
				return fmt.Errorf("node %d has only a right child", i)
			}
			continue
		}

		// Children always come after their parent, which also rules out cycles.
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has child index out of range", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on unknown feature %d", i, t.Feature[i])
		}
	}
	return nil
}
