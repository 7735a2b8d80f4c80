package engine

import (
	"context"
	"fmt"
)

// ctxCheckInterval is how many expansions run between context checks
const ctxCheckInterval = 256

// Search finds a minimum-cost path from start to end over the grid.
// An unreachable end yields an empty result, not an error.
func Search(grid Grid, start, end Position, opts SearchOptions, rules WeightRules) (*PathResult, error) {
	return SearchContext(context.Background(), grid, start, end, opts, rules)
}

// SearchContext is Search with cancellation. The context is polled between
// expansions; on cancellation the context error is returned.
func SearchContext(ctx context.Context, grid Grid, start, end Position, opts SearchOptions, rules WeightRules) (*PathResult, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if !grid.InBounds(start.X, start.Y) {
		return nil, fmt.Errorf("%w: start %s is outside the %dx%d grid", ErrInvalidEndpoint, start, grid.Width(), grid.Height())
	}
	if !grid.InBounds(end.X, end.Y) {
		return nil, fmt.Errorf("%w: end %s is outside the %dx%d grid", ErrInvalidEndpoint, end, grid.Width(), grid.Height())
	}

	rules = rules.OrDefault()
	heuristic := opts.Heuristic.OrDefault()

	sg := NewSearchGrid(grid, rules)
	startIdx := sg.Index(start.X, start.Y)
	endIdx := sg.Index(end.X, end.Y)

	if startIdx == endIdx {
		n := sg.At(startIdx)
		return &PathResult{Steps: []Step{{X: n.X, Y: n.Y, Weight: n.Weight}}, Cost: 0}, nil
	}

	open := newOpenSet(sg)
	open.insert(startIdx)

	expanded := 0
	neighbours := make([]int, 0, 8)

	for open.Len() > 0 {
		if expanded%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		currentIdx := open.popMin()
		current := sg.At(currentIdx)

		if currentIdx == endIdx {
			return &PathResult{
				Steps:    sg.Reconstruct(currentIdx),
				Cost:     current.G,
				Expanded: expanded,
			}, nil
		}

		current.Closed = true
		expanded++

		neighbours = sg.Neighbours(currentIdx, opts, neighbours[:0])
		for _, nbIdx := range neighbours {
			nb := sg.At(nbIdx)
			if nb.Closed || !nb.Traversable {
				continue
			}

			g := current.G + nb.Weight
			if nb.Visited && g >= nb.G {
				continue
			}

			nb.Update(currentIdx, g, heuristic.Estimate(Position{X: nb.X, Y: nb.Y}, end))

			if open.contains(nbIdx) {
				open.fix(nbIdx)
			} else {
				open.insert(nbIdx)
			}
		}
	}

	return &PathResult{Steps: []Step{}, Expanded: expanded}, nil
}
