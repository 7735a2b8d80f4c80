package engine

import "strings"

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// ChebyshevDistance calculates the Chebyshev distance between two positions
func ChebyshevDistance(from, to Position) int {
	dx, dy := abs(from.X-to.X), abs(from.Y-to.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Estimate returns the heuristic distance between two positions
func (h Heuristic) Estimate(from, to Position) int {
	if h == Chebyshev {
		return ChebyshevDistance(from, to)
	}
	return ManhattanDistance(from, to)
}

// Valid reports whether h names a supported heuristic. Empty means the default.
func (h Heuristic) Valid() bool {
	switch h {
	case "", Manhattan, Chebyshev:
		return true
	}
	return false
}

// OrDefault returns Manhattan for the empty heuristic
func (h Heuristic) OrDefault() Heuristic {
	if h == "" {
		return Manhattan
	}
	return h
}

// CountTraversable counts the cells a search may enter under the given rules
func CountTraversable(grid Grid, rules WeightRules) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if _, ok := rules.NodeWeight(cell); ok {
				count++
			}
		}
	}
	return count
}

// WeightHistogram counts cells per raw weight
func WeightHistogram(grid Grid) map[int]int {
	hist := make(map[int]int)
	for _, row := range grid {
		for _, cell := range row {
			hist[cell]++
		}
	}
	return hist
}

// FindNearestTraversable returns the traversable cell closest to pos by Manhattan distance
func FindNearestTraversable(grid Grid, rules WeightRules, pos Position) (Position, int, bool) {
	minDistance := -1
	var nearest Position
	found := false

	for y := 0; y < len(grid); y++ {
		for x := 0; x < len(grid[y]); x++ {
			if _, ok := rules.NodeWeight(grid[y][x]); !ok {
				continue
			}
			p := Position{X: x, Y: y}
			distance := ManhattanDistance(pos, p)
			if minDistance == -1 || distance < minDistance {
				minDistance = distance
				nearest = p
				found = true
			}
		}
	}

	return nearest, minDistance, found
}

// ReachableFrom counts the cells a path from start can end on, start
// included. The start cell itself is never charged, so it counts even when
// impassable.
func ReachableFrom(grid Grid, rules WeightRules, start Position, opts SearchOptions) int {
	if !grid.InBounds(start.X, start.Y) {
		return 0
	}

	sg := NewSearchGrid(grid, rules)
	seen := make([]bool, len(grid)*grid.Width())
	queue := []int{sg.Index(start.X, start.Y)}
	seen[queue[0]] = true
	count := 0
	var buf []int

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		count++

		buf = sg.Neighbours(idx, opts, buf[:0])
		for _, next := range buf {
			if seen[next] || !sg.At(next).Traversable {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return count
}

// RenderASCII draws the grid one character per cell: the raw weight digit,
// '#' for cells the rules make impassable, '+' for weights above 9, '*' for
// cells on path and '@' for the anchor. A nil anchor is not drawn.
func RenderASCII(grid Grid, rules WeightRules, path []Position, anchor *Position) string {
	onPath := make(map[Position]bool, len(path))
	for _, p := range path {
		onPath[p] = true
	}

	var b strings.Builder
	for y, row := range grid {
		for x, cell := range row {
			pos := Position{X: x, Y: y}
			_, traversable := rules.NodeWeight(cell)
			switch {
			case anchor != nil && pos == *anchor:
				b.WriteByte('@')
			case onPath[pos]:
				b.WriteByte('*')
			case !traversable:
				b.WriteByte('#')
			case cell > 9 || cell < 0:
				b.WriteByte('+')
			default:
				b.WriteByte(byte('0' + cell))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// StepPositions returns the coordinates of each step
func StepPositions(steps []Step) []Position {
	out := make([]Position, len(steps))
	for i, s := range steps {
		out[i] = s.Position()
	}
	return out
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
