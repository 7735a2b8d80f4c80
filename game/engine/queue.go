package engine

import "container/heap"

// openSet orders arena indices by F, then by insertion sequence, so ties go
// to the node discovered first.
type openSet struct {
	grid  *SearchGrid
	items []int
	seq   int
}

func newOpenSet(grid *SearchGrid) *openSet {
	return &openSet{grid: grid}
}

func (o *openSet) Len() int { return len(o.items) }

func (o *openSet) Less(i, j int) bool {
	a, b := o.grid.At(o.items[i]), o.grid.At(o.items[j])
	if a.F != b.F {
		return a.F < b.F
	}
	return a.seq < b.seq
}

func (o *openSet) Swap(i, j int) {
	o.items[i], o.items[j] = o.items[j], o.items[i]
	o.grid.At(o.items[i]).heapIndex = i
	o.grid.At(o.items[j]).heapIndex = j
}

func (o *openSet) Push(x any) {
	idx := x.(int)
	n := o.grid.At(idx)
	n.heapIndex = len(o.items)
	o.items = append(o.items, idx)
}

func (o *openSet) Pop() any {
	old := o.items
	last := len(old) - 1
	idx := old[last]
	o.items = old[:last]
	o.grid.At(idx).heapIndex = -1
	return idx
}

// insert adds a node, stamping its insertion sequence
func (o *openSet) insert(idx int) {
	o.grid.At(idx).seq = o.seq
	o.seq++
	heap.Push(o, idx)
}

// popMin removes and returns the node with the lowest F
func (o *openSet) popMin() int {
	return heap.Pop(o).(int)
}

// fix restores ordering after a queued node's F decreased
func (o *openSet) fix(idx int) {
	heap.Fix(o, o.grid.At(idx).heapIndex)
}

func (o *openSet) contains(idx int) bool {
	return o.grid.At(idx).heapIndex >= 0
}
