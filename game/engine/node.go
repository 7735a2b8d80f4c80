package engine

// WeightRules turns raw cell weights into traversal weights
type WeightRules struct {
	// Offset is added to the cell weight to form the base traversal weight.
	Offset int `json:"offset" yaml:"offset"`
	// ImpassableAt marks nodes whose base weight reaches it as not traversable.
	ImpassableAt int `json:"impassable_at" yaml:"impassable_at"`
	// Base weights above ExpensiveAbove are multiplied by ExpensiveFactor.
	ExpensiveAbove  int `json:"expensive_above" yaml:"expensive_above"`
	ExpensiveFactor int `json:"expensive_factor" yaml:"expensive_factor"`
}

// DefaultWeightRules mirrors the terrain classes of the browser demo:
// cells 0-5 cost 1-6, cells 6-7 cost 70-80, cells 8+ are impassable.
func DefaultWeightRules() WeightRules {
	return WeightRules{
		Offset:          1,
		ImpassableAt:    9,
		ExpensiveAbove:  6,
		ExpensiveFactor: 10,
	}
}

// IsZero reports whether no rule was configured
func (r WeightRules) IsZero() bool {
	return r == WeightRules{}
}

// OrDefault returns the rules, or the defaults when none were configured
func (r WeightRules) OrDefault() WeightRules {
	if r.IsZero() {
		return DefaultWeightRules()
	}
	return r
}

// NodeWeight returns the traversal weight for a cell weight and whether it can be entered
func (r WeightRules) NodeWeight(cellWeight int) (int, bool) {
	base := cellWeight + r.Offset
	traversable := base < r.ImpassableAt
	weight := base
	if base > r.ExpensiveAbove && r.ExpensiveFactor > 1 {
		weight = base * r.ExpensiveFactor
	}
	return weight, traversable
}

// PathNode holds the search bookkeeping for one grid cell
type PathNode struct {
	X           int
	Y           int
	Weight      int
	Traversable bool

	G int
	H int
	F int

	// Parent is the arena index of the predecessor, -1 for none
	Parent int

	Visited bool
	Closed  bool

	seq       int
	heapIndex int
}

// Update records a better route to the node
func (n *PathNode) Update(parent, g, h int) {
	n.Visited = true
	n.Parent = parent
	n.G = g
	n.H = h
	n.F = n.G + n.H
}

// SearchGrid is the node arena for a single search
type SearchGrid struct {
	width  int
	height int
	nodes  []PathNode
}

// NewSearchGrid builds an arena of unvisited, open nodes over the grid
func NewSearchGrid(grid Grid, rules WeightRules) *SearchGrid {
	width, height := grid.Width(), grid.Height()
	sg := &SearchGrid{
		width:  width,
		height: height,
		nodes:  make([]PathNode, width*height),
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			weight, traversable := rules.NodeWeight(grid[y][x])
			sg.nodes[y*width+x] = PathNode{
				X:           x,
				Y:           y,
				Weight:      weight,
				Traversable: traversable,
				Parent:      -1,
				heapIndex:   -1,
			}
		}
	}

	return sg
}

// Index returns the arena index for (x, y)
func (sg *SearchGrid) Index(x, y int) int {
	return y*sg.width + x
}

// InBounds reports whether (x, y) is inside the arena
func (sg *SearchGrid) InBounds(x, y int) bool {
	return x >= 0 && x < sg.width && y >= 0 && y < sg.height
}

// Node returns the node at (x, y)
func (sg *SearchGrid) Node(x, y int) *PathNode {
	return &sg.nodes[sg.Index(x, y)]
}

// At returns the node at an arena index
func (sg *SearchGrid) At(idx int) *PathNode {
	return &sg.nodes[idx]
}

// Reconstruct follows parent links from idx back to the start and returns the path start-first
func (sg *SearchGrid) Reconstruct(idx int) []Step {
	var steps []Step
	for i := idx; i >= 0; i = sg.nodes[i].Parent {
		n := &sg.nodes[i]
		steps = append(steps, Step{X: n.X, Y: n.Y, Weight: n.Weight})
	}

	// reverse
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}
