package sim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/ferry"
	"github.com/Garsondee/Pursuit-Sense/internal/metrics"
	"github.com/Garsondee/Pursuit-Sense/internal/perception"
	"github.com/Garsondee/Pursuit-Sense/internal/simlog"
)

// dumpLog prints the event log so it appears in `go test -v` output.
func dumpLog(t *testing.T, ts *TestSim) {
	t.Helper()
	if ts.Events().Len() == 0 {
		t.Log("(no log entries)")
		return
	}
	t.Log(ts.Events().Format())
	t.Log(ts.Events().Summary(ts.Tick()))
}

// crawl keeps agents nearly still so perception outcomes depend only on the
// target's movement.
func crawl(tu *config.Tuning) {
	tu.Follower.MaxSpeed = 1
	tu.Follower.MinSpeed = 0
}

func TestWorld_ChaseJoinsGroupAndCatches(t *testing.T) {
	ts := NewTestSim(
		WithSeed(7),
		WithTargetRoute(config.Point{500, 500}),
		WithAgent(100, 500),
	)
	a := ts.Agents()[0]

	joined := ts.RunUntil(func(ts *TestSim) bool { return ts.Group().IsMember(a.ID) }, 30)
	require.NotEqual(t, -1, joined, "agent never joined the group")
	assert.Equal(t, perception.ModeChase, a.Mode())
	assert.True(t, ts.Group().HasLOS(a.ID))

	caught := ts.RunUntil(func(ts *TestSim) bool { return ts.Stats().Catches > 0 }, 300)
	if caught == -1 {
		dumpLog(t, ts)
		t.Fatal("target was never caught")
	}
	assert.False(t, ts.Target().Alive())
	assert.Zero(t, ts.Group().Size())
	assert.True(t, ts.Group().Locked())
	assert.Equal(t, 1, ts.Stats().Dissolutions)
	assert.True(t, ts.Events().HasEntry(simlog.CatGroup, "locked", ""))
	assert.True(t, ts.Events().HasEntry(simlog.CatTarget, "caught", string(a.ID)))
}

func TestWorld_RespawnedTargetCannotBeJoinedWhileLocked(t *testing.T) {
	ts := NewTestSim(
		WithTuning(func(tu *config.Tuning) {
			tu.Group.LockSeconds = 20
			tu.World.RespawnDelay = 1
		}),
		WithTargetRoute(config.Point{500, 500}),
		WithAgent(100, 500),
	)
	a := ts.Agents()[0]
	require.NotEqual(t, -1, ts.RunUntil(func(ts *TestSim) bool { return ts.Stats().Catches > 0 }, 300))

	// Back off so the respawned target is seen rather than touched.
	a.Controller().Stop()
	a.Body().Teleport(a.Spawn())
	a.Body().SetYaw(0)

	require.NotEqual(t, -1, ts.RunUntil(func(ts *TestSim) bool { return ts.Target().Alive() }, 120))
	ts.RunTicks(30)

	assert.False(t, ts.Group().IsMember(a.ID))
	assert.True(t, ts.Events().HasEntry(simlog.CatGroup, "join_rejected", ""))
}

func TestWorld_LostSightDissolvesAfterDelay(t *testing.T) {
	ts := NewTestSim(
		WithTuning(crawl),
		WithTargetRoute(config.Point{500, 300}, config.Point{4000, 300}),
		WithAgent(100, 300),
	)

	dissolved := ts.RunUntil(func(ts *TestSim) bool { return ts.Stats().Dissolutions > 0 }, 60*10)
	if dissolved == -1 {
		dumpLog(t, ts)
		t.Fatal("group never dissolved")
	}

	var armedTick int
	for _, e := range ts.Events().Filter(simlog.CatGroup, "armed") {
		if e.Tick <= dissolved {
			armedTick = e.Tick
		}
	}
	require.NotZero(t, armedTick)
	waited := float64(dissolved-armedTick) * ts.Dt()
	delay := ts.Tuning().Group.NoLOSDelay
	assert.GreaterOrEqual(t, waited, delay-1e-6)
	assert.Less(t, waited, delay+ts.Dt()+1e-6)
	assert.Zero(t, ts.Group().Size())
}

func TestWorld_ThreatOnsetDissolvesAndAgentFlees(t *testing.T) {
	ts := NewTestSim(
		WithTuning(crawl),
		WithTargetRoute(config.Point{600, 500}),
		WithThreatWindow(1, 100),
		WithFleePoint(0, 0),
		WithAgent(100, 500),
	)
	a := ts.Agents()[0]

	require.NotEqual(t, -1, ts.RunUntil(func(ts *TestSim) bool { return ts.Group().IsMember(a.ID) }, 30))
	ts.RunTicks(90)

	assert.True(t, ts.Target().Threatened())
	assert.True(t, ts.Events().HasEntry(simlog.CatTarget, "threat_on", ""))
	assert.Equal(t, 1, ts.Stats().Dissolutions)
	assert.False(t, ts.Group().IsMember(a.ID))
	assert.Equal(t, perception.ModeFlee, a.Mode())
}

func TestWorld_ThreatenedTargetDespawnsAgent(t *testing.T) {
	ts := NewTestSim(
		WithTargetRoute(config.Point{300, 500}),
		WithThreatWindow(0, 1000),
		WithAgent(280, 500),
	)
	first := ts.Agents()[0]
	oldID := first.ID

	ts.RunTicks(1)
	assert.False(t, first.Alive())
	assert.Equal(t, 1, ts.Stats().Despawns)
	_, ok := ts.Agent(oldID)
	assert.False(t, ok)

	respawned := ts.RunUntil(func(ts *TestSim) bool { return ts.Agents()[0].ID != oldID }, 60*5)
	require.NotEqual(t, -1, respawned)
	assert.Equal(t, first.Label, ts.Agents()[0].Label)
	assert.Equal(t, first.Spawn(), ts.Agents()[0].Spawn())
}

func TestWorld_TargetCrossesChasmByJumping(t *testing.T) {
	ts := NewTestSim(
		WithChasm(900, 80, 1000, 600),
		WithJumpLink(870, 300, 1030, 300),
		WithTargetRoute(config.Point{700, 300}, config.Point{1200, 300}),
	)

	landed := ts.RunUntil(func(ts *TestSim) bool {
		return ts.Events().HasEntry(simlog.CatFollow, "landed", "")
	}, 60*10)
	if landed == -1 {
		dumpLog(t, ts)
		t.Fatal("target never landed")
	}
	assert.GreaterOrEqual(t, ts.Stats().Launches, 1)
	assert.Zero(t, ts.Stats().Fallbacks)
	assert.Greater(t, ts.Target().Location().X, 1000.0)
}

func TestWorld_PickupStartsCooldown(t *testing.T) {
	ts := NewTestSim(
		WithTuning(func(tu *config.Tuning) { tu.World.CollectibleCooldown = 2 }),
		WithCollectible(100, 100),
		WithAgent(110, 100),
	)

	ts.RunTicks(1)
	require.Equal(t, 1, ts.Stats().Pickups)
	assert.True(t, ts.Snapshot().Collectibles[0].Cooldown)

	ts.RunTicks(60)
	assert.Equal(t, 1, ts.Stats().Pickups, "picked up again during cooldown")

	require.NotEqual(t, -1, ts.RunUntil(func(ts *TestSim) bool { return ts.Stats().Pickups == 2 }, 120))
}

func TestWorld_AgentWandersToCollectibleWhenTargetUnseen(t *testing.T) {
	ts := NewTestSim(
		WithTargetRoute(config.Point{100, 1200}),
		WithCollectible(1400, 100),
		WithAgent(1000, 100),
	)
	a := ts.Agents()[0]

	got := ts.RunUntil(func(ts *TestSim) bool { return ts.Stats().Pickups > 0 }, 60*5)
	if got == -1 {
		dumpLog(t, ts)
		t.Fatal("agent never reached the collectible")
	}
	assert.Equal(t, perception.ModeCollect, a.Mode())
	assert.False(t, ts.Group().IsMember(a.ID))
}

func TestWorld_FerryCompletesRun(t *testing.T) {
	ts := NewTestSim(
		WithFerry(config.Ferry{
			Spawn:           config.Point{0, 1200},
			StartWait:       config.Point{100, 1200},
			Drop:            config.Point{300, 1200},
			EndWait:         config.Point{500, 1200},
			Despawn:         config.Point{600, 1200},
			UnloadSeconds:   0.5,
			BridgeCycle:     2,
			BridgeUpSeconds: 1,
			BridgeOffset:    0.5,
			RespawnDelay:    100,
		}),
	)

	done := ts.RunUntil(func(ts *TestSim) bool { return ts.Stats().BoatRuns > 0 }, 60*30)
	if done == -1 {
		dumpLog(t, ts)
		t.Fatal("boat never finished")
	}

	var path []string
	for _, e := range ts.Events().Filter(simlog.CatFerry, "state") {
		path = append(path, e.Value)
	}
	assert.Equal(t, []string{
		"spawned → go_to_start_bridge",
		"go_to_start_bridge → wait_at_start_bridge",
		"wait_at_start_bridge → go_to_operator",
		"go_to_operator → wait_at_operator",
		"wait_at_operator → go_to_end_bridge",
		"go_to_end_bridge → wait_at_end_bridge",
		"wait_at_end_bridge → go_to_despawn",
		"go_to_despawn → despawn",
	}, path)

	ts.RunTicks(1)
	_, active := ts.BoatState()
	assert.False(t, active)
	assert.False(t, ts.Snapshot().Ferry.Active)
}

func TestWorld_BridgesAlternate(t *testing.T) {
	ts := NewTestSim(WithFerry(config.Ferry{BridgeCycle: 4, BridgeUpSeconds: 1, BridgeOffset: 2, RespawnDelay: 1000}))
	ts.RunTicks(30) // t=0.5
	assert.True(t, ts.BridgeRaised(ferry.TagStartBridge))
	assert.False(t, ts.BridgeRaised(ferry.TagEndBridge))
	ts.RunTicks(120) // t=2.5
	assert.False(t, ts.BridgeRaised(ferry.TagStartBridge))
	assert.True(t, ts.BridgeRaised(ferry.TagEndBridge))
	assert.False(t, ts.BridgeRaised("nope"))
}

func TestWorld_ApplyTuning(t *testing.T) {
	ts := NewTestSim(WithDefaultArena())
	tu := ts.Tuning()
	tu.Group.NoLOSDelay = 7
	tu.Follower.MaxSpeed = 650
	ts.ApplyTuning(tu)

	assert.Equal(t, 7.0, ts.Group().NoLOSDelay())
	for _, a := range ts.Agents() {
		assert.Equal(t, 650.0, a.Follower().Config().MaxSpeed)
	}
	assert.Equal(t, ts.Tuning().World.TargetMaxSpeed, ts.Target().Follower().Config().MaxSpeed)
}

func TestWorld_RejectsInvalidTuning(t *testing.T) {
	cfg := config.Default()
	cfg.Tuning.Perception.Interval = 0
	_, err := NewWorld(cfg, Params{})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestWorld_DeterministicForSeed(t *testing.T) {
	run := func() Snapshot {
		w, err := NewWorld(config.Default(), Params{Seed: 99})
		require.NoError(t, err)
		for i := 0; i < 600; i++ {
			w.Step(1.0 / 60)
		}
		return w.Snapshot()
	}
	assert.Equal(t, run(), run())
}

func TestWorld_GroupInvariantsHoldOnDefaultArena(t *testing.T) {
	ts := NewTestSim(WithDefaultArena(), WithSeed(3))
	for i := 0; i < 60*60; i++ {
		ts.Step(ts.Dt())
		g := ts.Group()
		for _, id := range g.LOSMembers() {
			if !g.IsMember(id) {
				t.Fatalf("tick %d: %s has LOS but is not a member", ts.Tick(), id)
			}
		}
		if _, armed := g.DeadlineAt(); armed && len(g.LOSMembers()) > 0 {
			t.Fatalf("tick %d: deadline armed while %d members have LOS", ts.Tick(), len(g.LOSMembers()))
		}
	}
	t.Log(ts.Events().Summary(ts.Tick()))
}

func TestWorld_SnapshotEncodes(t *testing.T) {
	ts := NewTestSim(WithDefaultArena())
	ts.RunTicks(120)

	data, err := json.Marshal(ts.Snapshot())
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded["agents"], len(config.DefaultScenario().Spawns))
	assert.Contains(t, decoded, "ferry")
}

func TestWorld_PublishesMetrics(t *testing.T) {
	rec := metrics.New()
	w, err := NewWorld(config.Default(), Params{Seed: 1, Metrics: rec})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		w.Step(1.0 / 60)
	}

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "pursuit_ticks_total" {
			found = true
			assert.Equal(t, 10.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}
