package classifier

import "fmt"

// TreeNode is one node of a decision tree in its flattened form. Internal
// nodes route on Feature <= Threshold; leaves carry the predicted class.
// Child links are indices into the tree's node slice so the structure
// serializes directly to JSON.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Class     int     `json:"class"`
	Leaf      bool    `json:"leaf"`
}

// Tree is a single CART classification tree.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Predict walks the tree for one scaled sample.
func (t *Tree) Predict(x []float64) int {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Class
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// Forest is a random forest over CART trees. Prediction is an unweighted
// majority vote; ties break toward the lower class, which in this domain is
// the higher-risk outcome.
type Forest struct {
	Trees      []Tree `json:"trees"`
	NumClasses int    `json:"num_classes"`
}

// Predict returns the majority-vote class for one scaled sample.
func (f *Forest) Predict(x []float64) (int, error) {
	if len(f.Trees) == 0 {
		return 0, fmt.Errorf("forest has no trees")
	}

	votes := make([]int, f.NumClasses)
	for i := range f.Trees {
		class := f.Trees[i].Predict(x)
		if class < 0 || class >= f.NumClasses {
			return 0, fmt.Errorf("tree voted for unknown class %d", class)
		}
		votes[class]++
	}

	best := 0
	for class, count := range votes {
		if count > votes[best] {
			best = class
		}
	}
	return best, nil
}
