package engine

import "time"

// PlaybackState is the phase of the path animation
type PlaybackState string

const (
	Idle  PlaybackState = "idle"
	Draw  PlaybackState = "draw"
	Clear PlaybackState = "clear"
)

// CommandKind tells the rendering layer what to do with a cell
type CommandKind string

const (
	CommandPaint  CommandKind = "paint"
	CommandClear  CommandKind = "clear"
	CommandAnchor CommandKind = "anchor"
)

// Command is a single paint or clear instruction for the rendering layer
type Command struct {
	Kind CommandKind `json:"kind"`
	X    int         `json:"x"`
	Y    int         `json:"y"`
}

type playbackEntry struct {
	step      Step
	displayed bool
}

// Playback animates a path: Idle -> Draw -> Clear -> Idle.
// It is not safe for concurrent use.
type Playback struct {
	state      PlaybackState
	entries    []playbackEntry
	cursor     int
	next       time.Duration
	baseSpeed  time.Duration
	keepAnchor bool
	anchor     Position
}

// PlaybackSnapshot is the serializable view of a Playback
type PlaybackSnapshot struct {
	State     PlaybackState `json:"state"`
	Cursor    int           `json:"cursor"`
	Length    int           `json:"length"`
	NextMS    int64         `json:"next_ms"`
	Anchor    Position      `json:"anchor"`
	Path      []Step        `json:"path,omitempty"`
	Displayed []Position    `json:"displayed,omitempty"`
}

// NewPlayback creates an idle playback anchored at start. With keepAnchor the
// final node of each path stays painted and becomes the next start.
func NewPlayback(start Position, baseSpeed time.Duration, keepAnchor bool) *Playback {
	return &Playback{
		state:      Idle,
		baseSpeed:  baseSpeed,
		keepAnchor: keepAnchor,
		anchor:     start,
	}
}

// State returns the current phase
func (p *Playback) State() PlaybackState {
	return p.state
}

// Anchor returns the position the next path starts from
func (p *Playback) Anchor() Position {
	return p.anchor
}

// IsIdle reports whether a new path may be armed
func (p *Playback) IsIdle() bool {
	return p.state == Idle
}

// Arm loads a path and enters Draw. An empty path leaves the playback Idle.
func (p *Playback) Arm(steps []Step) error {
	if p.state != Idle {
		return ErrPlaybackBusy
	}
	if len(steps) == 0 {
		return nil
	}

	p.entries = make([]playbackEntry, len(steps))
	for i, s := range steps {
		p.entries[i] = playbackEntry{step: s}
	}
	p.cursor = 0
	p.next = 0
	p.state = Draw
	return nil
}

// Tick advances the animation if the current interval has elapsed and
// returns the command emitted, if any. At most one command is emitted per call.
func (p *Playback) Tick(now time.Duration) (Command, bool) {
	if p.state == Idle {
		return Command{}, false
	}
	if now <= p.next && p.next != 0 {
		return Command{}, false
	}
	return p.advance(now)
}

// Drain runs the animation to Idle immediately and returns every remaining command
func (p *Playback) Drain(now time.Duration) []Command {
	var cmds []Command
	for p.state != Idle {
		if cmd, ok := p.advance(now); ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Cancel aborts the animation, returning clear commands for every cell still
// painted, and goes back to Idle. A kept anchor cell stays painted.
func (p *Playback) Cancel() []Command {
	if p.state == Idle {
		return nil
	}

	var cmds []Command
	for i := range p.entries {
		e := &p.entries[i]
		if !e.displayed {
			continue
		}
		if p.keepAnchor && e.step.Position() == p.anchor {
			continue
		}
		e.displayed = false
		cmds = append(cmds, Command{Kind: CommandClear, X: e.step.X, Y: e.step.Y})
	}

	p.reset()
	return cmds
}

// Reset discards any path and re-anchors the playback
func (p *Playback) Reset(anchor Position) {
	p.reset()
	p.anchor = anchor
}

// Snapshot returns a copy of the playback state
func (p *Playback) Snapshot() PlaybackSnapshot {
	snap := PlaybackSnapshot{
		State:  p.state,
		Cursor: p.cursor,
		Length: len(p.entries),
		NextMS: p.next.Milliseconds(),
		Anchor: p.anchor,
	}
	if len(p.entries) > 0 {
		snap.Path = make([]Step, len(p.entries))
		for i, e := range p.entries {
			snap.Path[i] = e.step
			if e.displayed {
				snap.Displayed = append(snap.Displayed, e.step.Position())
			}
		}
	}
	return snap
}

// IsDisplayed reports whether the cell is currently painted by this playback
func (p *Playback) IsDisplayed(pos Position) bool {
	for _, e := range p.entries {
		if e.displayed && e.step.Position() == pos {
			return true
		}
	}
	return false
}

func (p *Playback) advance(now time.Duration) (Command, bool) {
	if p.cursor >= len(p.entries) {
		p.cursor = 0
		p.next = 0
		switch p.state {
		case Draw:
			p.state = Clear
		case Clear:
			p.reset()
		}
		return Command{}, false
	}

	e := &p.entries[p.cursor]
	p.cursor++

	switch p.state {
	case Draw:
		p.next = now + p.baseSpeed*time.Duration(e.step.Weight)
		if e.displayed {
			return Command{}, false
		}
		e.displayed = true
		return Command{Kind: CommandPaint, X: e.step.X, Y: e.step.Y}, true

	case Clear:
		last := p.cursor == len(p.entries)
		if last {
			p.anchor = e.step.Position()
			if p.keepAnchor {
				return Command{Kind: CommandAnchor, X: e.step.X, Y: e.step.Y}, true
			}
		}
		if !e.displayed {
			return Command{}, false
		}
		e.displayed = false
		return Command{Kind: CommandClear, X: e.step.X, Y: e.step.Y}, true
	}

	return Command{}, false
}

func (p *Playback) reset() {
	p.state = Idle
	p.entries = nil
	p.cursor = 0
	p.next = 0
}
