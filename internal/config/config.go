// Package config loads the simulation tuning and scenario from YAML.
package config

import (
	"math"

	"github.com/Garsondee/Pursuit-Sense/internal/directive"
	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
	"github.com/Garsondee/Pursuit-Sense/internal/perception"
)

// Config is the whole file.
type Config struct {
	Tuning   Tuning   `yaml:"tuning"`
	Scenario Scenario `yaml:"scenario"`
	Log      Log      `yaml:"log"`
}

// Tuning holds every value that may change while a simulation runs.
type Tuning struct {
	Follower   nav.Config        `yaml:"follower"`
	Perception perception.Config `yaml:"perception"`
	Directive  directive.Config  `yaml:"directive"`
	Group      Group             `yaml:"group"`
	World      World             `yaml:"world"`
}

// Group tunes the shared pursuit group.
type Group struct {
	NoLOSDelay  float64 `yaml:"no_los_delay"`
	LockSeconds float64 `yaml:"lock_seconds"` // re-entry lock after a catch
}

// World tunes the host simulation.
type World struct {
	TickRate            int     `yaml:"tick_rate"`
	RespawnDelay        float64 `yaml:"respawn_delay"`
	CatchRadius         float64 `yaml:"catch_radius"`
	PickupRadius        float64 `yaml:"pickup_radius"`
	CollectibleCooldown float64 `yaml:"collectible_cooldown"`
	TargetMaxSpeed      float64 `yaml:"target_max_speed"`
	BoatMaxSpeed        float64 `yaml:"boat_max_speed"`
}

// Log selects the operational log output.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Point is an [x, y] pair on the ground plane.
type Point [2]float64

// Vec returns p at ground height.
func (p Point) Vec() geom.Vec3 { return geom.V(p[0], p[1], 0) }

// Rect is [minX, minY, maxX, maxY].
type Rect [4]float64

// Geom converts r.
func (r Rect) Geom() geom.Rect {
	return geom.Rect{MinX: r[0], MinY: r[1], MaxX: r[2], MaxY: r[3]}
}

// Link is a jump link between two chasm edges.
type Link struct {
	A Point `yaml:"a"`
	B Point `yaml:"b"`
}

// Window is a time span [Start, End) in seconds.
type Window struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// Contains reports whether t falls inside w.
func (w Window) Contains(t float64) bool { return t >= w.Start && t < w.End }

// Target scripts the tracked entity.
type Target struct {
	Route []Point `yaml:"route"`
	// ThreatWindows make the target threatening. With ThreatCycle > 0 the
	// windows repeat every ThreatCycle seconds.
	ThreatWindows []Window `yaml:"threat_windows"`
	ThreatCycle   float64  `yaml:"threat_cycle"`
}

// Threatened reports whether the target is threatening at time t.
func (t Target) Threatened(now float64) bool {
	if t.ThreatCycle > 0 && now >= 0 {
		now = math.Mod(now, t.ThreatCycle)
	}
	for _, w := range t.ThreatWindows {
		if w.Contains(now) {
			return true
		}
	}
	return false
}

// Ferry declares a boat lane.
type Ferry struct {
	Spawn       Point `yaml:"spawn"`
	StartWait   Point `yaml:"start_wait"`
	Drop        Point `yaml:"drop"`
	EndWait     Point `yaml:"end_wait"`
	Despawn     Point `yaml:"despawn"`
	StartBridge Rect  `yaml:"start_bridge"`
	EndBridge   Rect  `yaml:"end_bridge"`

	UnloadSeconds float64 `yaml:"unload_seconds"`
	// Bridges are raised for BridgeUpSeconds out of every BridgeCycle.
	BridgeCycle     float64 `yaml:"bridge_cycle"`
	BridgeUpSeconds float64 `yaml:"bridge_up_seconds"`
	BridgeOffset    float64 `yaml:"bridge_offset"` // end bridge phase shift
	RespawnDelay    float64 `yaml:"respawn_delay"`
}

// Scenario is the arena layout.
type Scenario struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	Walls        []Rect  `yaml:"walls"`
	Chasms       []Rect  `yaml:"chasms"`
	Links        []Link  `yaml:"links"`
	FleePoints   []Point `yaml:"flee_points"`
	Collectibles []Point `yaml:"collectibles"`
	Spawns       []Point `yaml:"spawns"`
	Target       Target  `yaml:"target"`
	Ferry        *Ferry  `yaml:"ferry"`
}

// WallRects converts the walls.
func (s Scenario) WallRects() []geom.Rect { return rects(s.Walls) }

// ChasmRects converts the chasms.
func (s Scenario) ChasmRects() []geom.Rect { return rects(s.Chasms) }

// JumpLinks converts the links for a directive.LinkPlanner.
func (s Scenario) JumpLinks() []directive.JumpLink {
	out := make([]directive.JumpLink, len(s.Links))
	for i, l := range s.Links {
		out[i] = directive.JumpLink{A: l.A.Vec(), B: l.B.Vec()}
	}
	return out
}

func rects(in []Rect) []geom.Rect {
	out := make([]geom.Rect, len(in))
	for i, r := range in {
		out[i] = r.Geom()
	}
	return out
}

// Points converts a point list.
func Points(in []Point) []geom.Vec3 {
	out := make([]geom.Vec3, len(in))
	for i, p := range in {
		out[i] = p.Vec()
	}
	return out
}

// Default returns the built-in arena and stock tuning.
func Default() *Config {
	return &Config{
		Tuning:   DefaultTuning(),
		Scenario: DefaultScenario(),
		Log:      Log{Level: "info", Format: "text"},
	}
}

// DefaultTuning returns the stock tuning.
func DefaultTuning() Tuning {
	return Tuning{
		Follower:   nav.DefaultConfig(),
		Perception: perception.DefaultConfig(),
		Directive:  directive.DefaultConfig(),
		Group:      Group{NoLOSDelay: 3, LockSeconds: 5},
		World: World{
			TickRate:            60,
			RespawnDelay:        3,
			CatchRadius:         40,
			PickupRadius:        30,
			CollectibleCooldown: 10,
			TargetMaxSpeed:      350,
			BoatMaxSpeed:        200,
		},
	}
}

// DefaultScenario returns the built-in arena: a walled yard split by a
// chasm with two jump links, and a ferry lane along the south edge.
func DefaultScenario() Scenario {
	return Scenario{
		Width:  2000,
		Height: 1300,
		Walls: []Rect{
			{600, 200, 640, 700},
			{1250, 500, 1290, 1000},
			{300, 950, 800, 990},
			{1400, 150, 1800, 190},
		},
		Chasms: []Rect{{900, 80, 1000, 600}},
		Links: []Link{
			{A: Point{870, 200}, B: Point{1030, 200}},
			{A: Point{870, 480}, B: Point{1030, 480}},
		},
		FleePoints: []Point{
			{100, 100}, {1900, 100}, {100, 1100}, {1900, 1100}, {1000, 1100},
		},
		Collectibles: []Point{
			{250, 250}, {450, 600}, {760, 820}, {1100, 760},
			{1500, 350}, {1700, 700}, {1150, 300}, {350, 1100},
		},
		Spawns: []Point{
			{150, 500}, {500, 1100}, {1850, 600}, {1500, 1050}, {1200, 100}, {700, 100},
		},
		Target: Target{
			Route: []Point{
				{400, 400}, {800, 400}, {1100, 850}, {1600, 850}, {1600, 400}, {1100, 400}, {800, 850}, {400, 850},
			},
			ThreatWindows: []Window{{Start: 40, End: 50}},
			ThreatCycle:   90,
		},
		Ferry: &Ferry{
			Spawn:           Point{-50, 1230},
			StartWait:       Point{350, 1230},
			Drop:            Point{1000, 1230},
			EndWait:         Point{1550, 1230},
			Despawn:         Point{2050, 1230},
			StartBridge:     Rect{420, 1180, 460, 1290},
			EndBridge:       Rect{1620, 1180, 1660, 1290},
			UnloadSeconds:   4,
			BridgeCycle:     12,
			BridgeUpSeconds: 5,
			BridgeOffset:    6,
			RespawnDelay:    5,
		},
	}
}
