package sim

import "github.com/Garsondee/Pursuit-Sense/internal/ferry"

// Snapshot is a copy of the world state for viewers. It is safe to hand to
// another goroutine.
type Snapshot struct {
	Tick         int                   `json:"tick"`
	Time         float64               `json:"time"`
	Target       *TargetSnapshot       `json:"target,omitempty"`
	Agents       []AgentSnapshot       `json:"agents"`
	Group        GroupSnapshot         `json:"group"`
	Collectibles []CollectibleSnapshot `json:"collectibles"`
	Ferry        *FerrySnapshot        `json:"ferry,omitempty"`
	Stats        Stats                 `json:"stats"`
}

type TargetSnapshot struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Alive      bool    `json:"alive"`
	Threatened bool    `json:"threatened"`
}

type AgentSnapshot struct {
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Z       float64      `json:"z"`
	Yaw     float64      `json:"yaw"`
	Alive   bool         `json:"alive"`
	Mode    string       `json:"mode"`
	State   string       `json:"state"`
	HasLOS  bool         `json:"has_los"`
	Member  bool         `json:"member"`
	Walking bool         `json:"walking_link,omitempty"`
	Path    [][3]float64 `json:"path,omitempty"` // x, y, link type
	Segment int          `json:"segment"`
	LKP     *[2]float64  `json:"lkp,omitempty"`
}

type GroupSnapshot struct {
	Members    []string `json:"members"`
	LOS        []string `json:"los"`
	DeadlineAt *float64 `json:"deadline_at,omitempty"`
	LockedTill float64  `json:"locked_until"`
	Locked     bool     `json:"locked"`
}

type CollectibleSnapshot struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Cooldown bool    `json:"cooldown"`
}

type FerrySnapshot struct {
	Active      bool    `json:"active"`
	State       string  `json:"state"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	StartBridge bool    `json:"start_bridge_raised"`
	EndBridge   bool    `json:"end_bridge_raised"`
	Runs        int     `json:"runs"`
}

// Snapshot copies the current state.
func (w *World) Snapshot() Snapshot {
	now := w.clock.Now()
	snap := Snapshot{
		Tick:  w.tick,
		Time:  now,
		Stats: w.stats,
	}

	if t := w.target; t != nil {
		loc := t.body.Location()
		snap.Target = &TargetSnapshot{X: loc.X, Y: loc.Y, Z: loc.Z, Alive: t.alive, Threatened: t.threatened}
	}

	for _, a := range w.agents {
		snap.Agents = append(snap.Agents, w.agentSnapshot(a, now))
	}

	for _, id := range w.group.Members() {
		snap.Group.Members = append(snap.Group.Members, string(id))
	}
	for _, id := range w.group.LOSMembers() {
		snap.Group.LOS = append(snap.Group.LOS, string(id))
	}
	if at, ok := w.group.DeadlineAt(); ok {
		snap.Group.DeadlineAt = &at
	}
	snap.Group.Locked = w.group.Locked()
	snap.Group.LockedTill = w.group.LockUntil()

	for _, c := range w.collectibles {
		snap.Collectibles = append(snap.Collectibles, CollectibleSnapshot{X: c.loc.X, Y: c.loc.Y, Cooldown: now < c.cooldownUntil})
	}

	if l := w.lane; l != nil {
		fs := &FerrySnapshot{
			StartBridge: l.BridgeRaised(ferry.TagStartBridge),
			EndBridge:   l.BridgeRaised(ferry.TagEndBridge),
			Runs:        l.runs,
		}
		if l.boat != nil {
			loc := l.body.Location()
			fs.Active = true
			fs.State = l.boat.State().String()
			fs.X, fs.Y = loc.X, loc.Y
		}
		snap.Ferry = fs
	}
	return snap
}

func (w *World) agentSnapshot(a *Agent, now float64) AgentSnapshot {
	loc := a.body.Location()
	bb := a.sampler.Blackboard()
	s := AgentSnapshot{
		ID:      string(a.ID),
		Label:   a.Label,
		X:       loc.X,
		Y:       loc.Y,
		Z:       loc.Z,
		Yaw:     a.body.Yaw(),
		Alive:   a.alive,
		Mode:    a.mode.String(),
		State:   a.follower.State().String(),
		HasLOS:  w.group.HasLOS(a.ID),
		Member:  w.group.IsMember(a.ID),
		Walking: a.follower.WalkingLink(),
	}
	if p := a.follower.Path(); p != nil {
		start, _ := a.follower.Cursor()
		s.Segment = start
		for _, pt := range p.Points() {
			s.Path = append(s.Path, [3]float64{pt.Location.X, pt.Location.Y, float64(pt.Link)})
		}
	}
	if bb.LKPValid(now) {
		s.LKP = &[2]float64{bb.LKP.X, bb.LKP.Y}
	}
	return s
}
