package engine

type offset struct{ dx, dy int }

// Orthogonal moves in enumeration order. Order matters: it decides which of
// two equally good candidates enters the open set first.
var orthogonal = []offset{
	{0, -1}, // North
	{0, 1},  // South
	{1, 0},  // East
	{-1, 0}, // West
}

// Diagonal moves with the two orthogonal cells that form their corner
var diagonal = []struct {
	move             offset
	cornerA, cornerB offset
}{
	{offset{1, -1}, offset{0, -1}, offset{1, 0}},   // North-East
	{offset{1, 1}, offset{0, 1}, offset{1, 0}},     // South-East
	{offset{-1, 1}, offset{0, 1}, offset{-1, 0}},   // South-West
	{offset{-1, -1}, offset{0, -1}, offset{-1, 0}}, // North-West
}

// Neighbours appends the arena indices reachable in one move from idx to buf.
// Diagonal moves are offered only when both corner cells exist; with
// NoCornerCutting the corners must also be traversable.
func (sg *SearchGrid) Neighbours(idx int, opts SearchOptions, buf []int) []int {
	n := sg.At(idx)
	x, y := n.X, n.Y

	for _, o := range orthogonal {
		if sg.InBounds(x+o.dx, y+o.dy) {
			buf = append(buf, sg.Index(x+o.dx, y+o.dy))
		}
	}

	if !opts.Diagonal {
		return buf
	}

	for _, d := range diagonal {
		ax, ay := x+d.cornerA.dx, y+d.cornerA.dy
		bx, by := x+d.cornerB.dx, y+d.cornerB.dy
		if !sg.InBounds(ax, ay) || !sg.InBounds(bx, by) {
			continue
		}
		if opts.NoCornerCutting && (!sg.Node(ax, ay).Traversable || !sg.Node(bx, by).Traversable) {
			continue
		}
		buf = append(buf, sg.Index(x+d.move.dx, y+d.move.dy))
	}

	return buf
}
