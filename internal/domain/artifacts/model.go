package artifacts

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TreeNode is one node of an XGBoost JSON dump. Leaves carry Leaf; splits
// carry Split, SplitCondition and the Yes/No/Missing child ids.
type TreeNode struct {
	NodeID         int        `json:"nodeid"`
	Leaf           *float64   `json:"leaf,omitempty"`
	Split          string     `json:"split,omitempty"`
	SplitCondition float64    `json:"split_condition,omitempty"`
	Yes            int        `json:"yes,omitempty"`
	No             int        `json:"no,omitempty"`
	Missing        int        `json:"missing,omitempty"`
	Children       []TreeNode `json:"children,omitempty"`
}

// TreeParams is the exported booster: base score, width and the trees as
// produced by Booster.get_dump(dump_format="json").
type TreeParams struct {
	BaseScore    float64    `json:"base_score"`
	NumFeature   int        `json:"num_feature"`
	FeatureNames []string   `json:"feature_names,omitempty"`
	Trees        []TreeNode `json:"trees"`
}

type flatNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float32
	yes       int
	no        int
	missing   int
}

// TreeEnsemble is a gradient-boosted regression forest. The prediction is
// the base score plus the sum of one leaf per tree.
type TreeEnsemble struct {
	base  float64
	width int
	names []string
	trees [][]flatNode
}

// NewTreeEnsemble flattens and validates the dumped trees. Split features
// are addressed as f<index> or, when FeatureNames is set, by name.
func NewTreeEnsemble(p TreeParams) (*TreeEnsemble, error) {
	width := p.NumFeature
	if width == 0 {
		width = len(p.FeatureNames)
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: tree ensemble has no num_feature", ErrInvalidArtifact)
	}
	if len(p.FeatureNames) > 0 && len(p.FeatureNames) != width {
		return nil, fmt.Errorf("%w: %d feature_names for num_feature %d", ErrInvalidArtifact, len(p.FeatureNames), width)
	}
	if len(p.Trees) == 0 {
		return nil, fmt.Errorf("%w: tree ensemble has no trees", ErrInvalidArtifact)
	}

	byName := make(map[string]int, len(p.FeatureNames))
	for i, n := range p.FeatureNames {
		byName[n] = i
	}

	m := &TreeEnsemble{
		base:  p.BaseScore,
		width: width,
		names: append([]string(nil), p.FeatureNames...),
		trees: make([][]flatNode, 0, len(p.Trees)),
	}
	for t, root := range p.Trees {
		nodes := map[int]flatNode{}
		if err := flatten(root, width, byName, nodes); err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}
		flat := make([]flatNode, len(nodes))
		for id, n := range nodes {
			if id < 0 || id >= len(nodes) {
				return nil, fmt.Errorf("%w: tree %d node ids are not dense", ErrInvalidArtifact, t)
			}
			flat[id] = n
		}
		for id, n := range flat {
			if n.leaf {
				continue
			}
			for _, child := range []int{n.yes, n.no, n.missing} {
				if child <= id || child >= len(flat) {
					return nil, fmt.Errorf("%w: tree %d node %d points to %d", ErrInvalidArtifact, t, id, child)
				}
			}
		}
		m.trees = append(m.trees, flat)
	}
	return m, nil
}

func flatten(n TreeNode, width int, byName map[string]int, into map[int]flatNode) error {
	if _, dup := into[n.NodeID]; dup {
		return fmt.Errorf("%w: duplicate node %d", ErrInvalidArtifact, n.NodeID)
	}
	if n.Leaf != nil {
		into[n.NodeID] = flatNode{leaf: true, value: *n.Leaf}
		return nil
	}
	feature, err := featureIndex(n.Split, width, byName)
	if err != nil {
		return err
	}
	missing := n.Missing
	if missing == 0 {
		// The root is never a child, so 0 means the dump omitted it.
		missing = n.Yes
	}
	into[n.NodeID] = flatNode{
		feature:   feature,
		threshold: float32(n.SplitCondition),
		yes:       n.Yes,
		no:        n.No,
		missing:   missing,
	}
	for _, c := range n.Children {
		if err := flatten(c, width, byName, into); err != nil {
			return err
		}
	}
	return nil
}

func featureIndex(split string, width int, byName map[string]int) (int, error) {
	if i, ok := byName[split]; ok {
		return i, nil
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(split, "f"))
	if err != nil || !strings.HasPrefix(split, "f") {
		return 0, fmt.Errorf("%w: unknown split feature %q", ErrInvalidArtifact, split)
	}
	if idx < 0 || idx >= width {
		return 0, fmt.Errorf("%w: split feature %q out of range", ErrInvalidArtifact, split)
	}
	return idx, nil
}

func (m *TreeEnsemble) NumFeatures() int { return m.width }

// FeatureNames returns the column order the booster was trained on, or nil
// for a dump addressed by f<index>.
func (m *TreeEnsemble) FeatureNames() []string {
	if len(m.names) == 0 {
		return nil
	}
	return append([]string(nil), m.names...)
}

// NumTrees returns the number of boosted trees.
func (m *TreeEnsemble) NumTrees() int { return len(m.trees) }

// Predict walks every tree. Splits compare in single precision, as XGBoost
// does; NaN follows the missing branch.
func (m *TreeEnsemble) Predict(row []float64) (float64, error) {
	if len(row) != m.width {
		return 0, fmt.Errorf("%w: model got %d columns, trained on %d", ErrWidth, len(row), m.width)
	}
	sum := m.base
	for _, tree := range m.trees {
		id := 0
		for !tree[id].leaf {
			n := tree[id]
			x := row[n.feature]
			switch {
			case math.IsNaN(x):
				id = n.missing
			case float32(x) < n.threshold:
				id = n.yes
			default:
				id = n.no
			}
		}
		sum += tree[id].value
	}
	return sum, nil
}

// LinearParams is an exported linear regression.
type LinearParams struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// LinearModel predicts intercept + coefficients · row.
type LinearModel struct {
	intercept float64
	coef      []float64
}

// NewLinearModel validates p and builds a linear model.
func NewLinearModel(p LinearParams) (*LinearModel, error) {
	if len(p.Coefficients) == 0 {
		return nil, fmt.Errorf("%w: linear model has no coefficients", ErrInvalidArtifact)
	}
	return &LinearModel{intercept: p.Intercept, coef: append([]float64(nil), p.Coefficients...)}, nil
}

func (m *LinearModel) NumFeatures() int { return len(m.coef) }

func (m *LinearModel) Predict(row []float64) (float64, error) {
	if len(row) != len(m.coef) {
		return 0, fmt.Errorf("%w: model got %d columns, trained on %d", ErrWidth, len(row), len(m.coef))
	}
	y := m.intercept
	for i, x := range row {
		y += m.coef[i] * x
	}
	return y, nil
}
