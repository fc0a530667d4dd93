package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/runstore"
	"github.com/Garsondee/Pursuit-Sense/internal/sim"
	"github.com/Garsondee/Pursuit-Sense/internal/simlog"
)

type runStats struct {
	runIndex int
	seed     int64
	ticks    int

	firstJoinTick     int
	firstLOSLossTick  int
	firstDissolveTick int
	firstCatchTick    int
	firstThreatTick   int
	firstLaunchTick   int

	joins        int
	joinRejected int
	armed        int
	canceled     int
	losGain      int
	losLoss      int
	modeChanges  int
	ferryChanges int
	fallbackBy   map[string]struct{}
	despawnedBy  map[string]struct{}
	totals       sim.Stats
	finalMembers int
	locked       bool
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var cfgPath string
	var dbPath string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&cfgPath, "config", "", "YAML config file (built-in arena when empty)")
	flag.StringVar(&dbPath, "db", "", "sqlite file to record run summaries in (optional)")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	var store *runstore.Store
	ctx := context.Background()
	if dbPath != "" {
		store = runstore.New(dbPath)
		if err := store.Init(ctx); err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		defer store.Close()
	}

	source := cfgPath
	if source == "" {
		source = "built-in"
	}
	fmt.Printf("=== Headless Pursuit Report ===\n")
	fmt.Printf("config=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", source, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs, err := runScenario(cfg, i+1, seed, ticks)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			return
		}
		all = append(all, rs)
		printRun(rs)
		if store != nil {
			saved, err := store.SaveRun(ctx, toRun(rs))
			if err != nil {
				fmt.Printf("error: save run %d: %v\n", i+1, err)
				return
			}
			fmt.Printf("saved run id=%s\n\n", saved.ID)
		}
	}

	printAggregate(all)
}

func runScenario(cfg *config.Config, runIndex int, seed int64, ticks int) (runStats, error) {
	w, err := sim.NewWorld(cfg, sim.Params{Seed: seed})
	if err != nil {
		return runStats{}, err
	}
	dt := 1 / float64(cfg.Tuning.World.TickRate)
	for i := 0; i < ticks; i++ {
		w.Step(dt)
	}
	return collect(w.Events(), runIndex, seed, ticks, w.Stats(), len(w.Group().Members()), w.Group().Locked()), nil
}

func collect(log *simlog.Log, runIndex int, seed int64, ticks int, totals sim.Stats, members int, locked bool) runStats {
	entries := log.Entries()
	fallbackBy := map[string]struct{}{}
	despawnedBy := map[string]struct{}{}
	for _, e := range entries {
		switch {
		case e.Category == simlog.CatFollow && e.Key == "launch_fallback":
			fallbackBy[e.Agent] = struct{}{}
		case e.Category == simlog.CatAgent && e.Key == "despawn":
			despawnedBy[e.Agent] = struct{}{}
		}
	}

	return runStats{
		runIndex:          runIndex,
		seed:              seed,
		ticks:             ticks,
		firstJoinTick:     firstTick(entries, simlog.CatGroup, "join", ""),
		firstLOSLossTick:  firstTick(entries, simlog.CatGroup, "los_loss", ""),
		firstDissolveTick: firstTick(entries, simlog.CatGroup, "dissolved", ""),
		firstCatchTick:    firstTick(entries, simlog.CatTarget, "caught", ""),
		firstThreatTick:   firstTick(entries, simlog.CatTarget, "threat_on", ""),
		firstLaunchTick:   firstTick(entries, simlog.CatFollow, "launch", ""),
		joins:             log.CountCategory(simlog.CatGroup, "join"),
		joinRejected:      log.CountCategory(simlog.CatGroup, "join_rejected"),
		armed:             log.CountCategory(simlog.CatGroup, "armed"),
		canceled:          log.CountCategory(simlog.CatGroup, "canceled"),
		losGain:           log.CountCategory(simlog.CatGroup, "los_gain"),
		losLoss:           log.CountCategory(simlog.CatGroup, "los_loss"),
		modeChanges:       log.CountCategory(simlog.CatSense, "mode"),
		ferryChanges:      log.CountCategory(simlog.CatFerry, "state"),
		fallbackBy:        fallbackBy,
		despawnedBy:       despawnedBy,
		totals:            totals,
		finalMembers:      members,
		locked:            locked,
	}
}

func firstTick(entries []simlog.Entry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func toRun(rs runStats) runstore.Run {
	return runstore.Run{
		Seed:          rs.seed,
		Ticks:         rs.ticks,
		Dissolutions:  rs.totals.Dissolutions,
		Catches:       rs.totals.Catches,
		Launches:      rs.totals.Launches,
		Fallbacks:     rs.totals.Fallbacks,
		FinishedPaths: rs.totals.FinishedPaths,
	}
}

// classifyRun labels a run by how the pursuit went.
func classifyRun(rs runStats) (string, string) {
	switch {
	case rs.joins == 0:
		return "no_contact", "no agent ever joined the group"
	case rs.totals.Catches == 0 && rs.totals.Dissolutions == 0:
		return "stalled", fmt.Sprintf("group formed (joins=%d) but never caught or dissolved", rs.joins)
	case rs.totals.Catches == 0:
		return "evaded", fmt.Sprintf("dissolutions=%d without a catch", rs.totals.Dissolutions)
	case rs.armed > 0 && rs.canceled*2 >= rs.armed*3:
		return "flickering", fmt.Sprintf("armed=%d canceled=%d", rs.armed, rs.canceled)
	default:
		return "caught", fmt.Sprintf("catches=%d", rs.totals.Catches)
	}
}

func printRun(rs runStats) {
	outcome, reason := classifyRun(rs)
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s (%s)\n", outcome, reason)
	fmt.Printf("phase_markers: join=%d los_loss=%d dissolve=%d catch=%d threat=%d launch=%d\n",
		rs.firstJoinTick, rs.firstLOSLossTick, rs.firstDissolveTick, rs.firstCatchTick, rs.firstThreatTick, rs.firstLaunchTick)
	fmt.Printf("group_events: join=%d join_rejected=%d armed=%d canceled=%d los_gain=%d los_loss=%d\n",
		rs.joins, rs.joinRejected, rs.armed, rs.canceled, rs.losGain, rs.losLoss)
	fmt.Printf("totals: catches=%d dissolutions=%d despawns=%d pickups=%d launches=%d fallbacks=%d finished_paths=%d boat_runs=%d\n",
		rs.totals.Catches, rs.totals.Dissolutions, rs.totals.Despawns, rs.totals.Pickups,
		rs.totals.Launches, rs.totals.Fallbacks, rs.totals.FinishedPaths, rs.totals.BoatRuns)
	fmt.Printf("mode_changes=%d ferry_transitions=%d final_members=%d locked=%t\n",
		rs.modeChanges, rs.ferryChanges, rs.finalMembers, rs.locked)
	fmt.Printf("fallback_labels: %s\n", joinSet(rs.fallbackBy))
	fmt.Printf("despawned_labels: %s\n", joinSet(rs.despawnedBy))
	fmt.Println()
}

func printAggregate(all []runStats) {
	var total sim.Stats
	totalJoins, totalArmed, totalCanceled, totalModes := 0, 0, 0, 0
	joinTicks := make([]int, 0, len(all))
	catchTicks := make([]int, 0, len(all))
	dissolveTicks := make([]int, 0, len(all))
	outcomes := map[string]int{}
	fallbackGlobal := map[string]struct{}{}

	for _, rs := range all {
		total.Catches += rs.totals.Catches
		total.Dissolutions += rs.totals.Dissolutions
		total.Despawns += rs.totals.Despawns
		total.Launches += rs.totals.Launches
		total.Fallbacks += rs.totals.Fallbacks
		total.FinishedPaths += rs.totals.FinishedPaths
		totalJoins += rs.joins
		totalArmed += rs.armed
		totalCanceled += rs.canceled
		totalModes += rs.modeChanges
		if rs.firstJoinTick >= 0 {
			joinTicks = append(joinTicks, rs.firstJoinTick)
		}
		if rs.firstCatchTick >= 0 {
			catchTicks = append(catchTicks, rs.firstCatchTick)
		}
		if rs.firstDissolveTick >= 0 {
			dissolveTicks = append(dissolveTicks, rs.firstDissolveTick)
		}
		outcome, _ := classifyRun(rs)
		outcomes[outcome]++
		for label := range rs.fallbackBy {
			fallbackGlobal[label] = struct{}{}
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", n)
	fmt.Printf("avg_per_run: catches=%.1f dissolutions=%.1f despawns=%.1f launches=%.1f fallbacks=%.1f finished_paths=%.1f\n",
		avg(total.Catches, n), avg(total.Dissolutions, n), avg(total.Despawns, n),
		avg(total.Launches, n), avg(total.Fallbacks, n), avg(total.FinishedPaths, n))
	fmt.Printf("avg_group_events_per_run: join=%.1f armed=%.1f canceled=%.1f mode_changes=%.1f\n",
		avg(totalJoins, n), avg(totalArmed, n), avg(totalCanceled, n), avg(totalModes, n))
	fmt.Printf("phase_marker_avg_ticks: first_join=%s first_catch=%s first_dissolve=%s\n",
		avgTickString(joinTicks), avgTickString(catchTicks), avgTickString(dissolveTicks))
	fmt.Printf("launch_fallback_rate=%s\n", rate(total.Fallbacks, total.Launches+total.Fallbacks))
	fmt.Printf("outcomes: %s\n", formatCounts(outcomes))
	fmt.Printf("fallback_labels=%d [%s]\n", len(fallbackGlobal), joinSet(fallbackGlobal))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func rate(part, whole int) string {
	if whole <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(whole)*100)
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func joinSet(set map[string]struct{}) string {
	if len(set) == 0 {
		return "none"
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
