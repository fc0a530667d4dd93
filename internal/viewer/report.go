package viewer

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Pursuit-Sense/internal/sim"
)

// summaryLines is the short status block shown at the top of the panel.
func summaryLines(s sim.Snapshot) []string {
	lines := []string{fmt.Sprintf("tick %d  t=%.2fs", s.Tick, s.Time)}

	switch {
	case s.Target == nil:
		lines = append(lines, "target: none")
	case !s.Target.Alive:
		lines = append(lines, "target: respawning")
	default:
		threat := ""
		if s.Target.Threatened {
			threat = "  THREAT"
		}
		lines = append(lines, fmt.Sprintf("target: (%.0f, %.0f)%s", s.Target.X, s.Target.Y, threat))
	}

	g := s.Group
	group := fmt.Sprintf("group: %d members, %d with LOS", len(g.Members), len(g.LOS))
	if g.DeadlineAt != nil {
		group += fmt.Sprintf(", dissolve at %.2fs", *g.DeadlineAt)
	}
	if g.Locked {
		group += fmt.Sprintf(", locked until %.2fs", g.LockedTill)
	}
	lines = append(lines, group)

	if f := s.Ferry; f != nil {
		state := "idle"
		if f.Active {
			state = f.State
		}
		lines = append(lines, fmt.Sprintf("ferry: %s  runs=%d  bridges %s/%s", state, f.Runs, upDown(f.StartBridge), upDown(f.EndBridge)))
	}

	st := s.Stats
	lines = append(lines,
		fmt.Sprintf("catches=%d dissolves=%d despawns=%d pickups=%d", st.Catches, st.Dissolutions, st.Despawns, st.Pickups),
		fmt.Sprintf("launches=%d fallbacks=%d finished=%d", st.Launches, st.Fallbacks, st.FinishedPaths),
	)
	return lines
}

func upDown(raised bool) string {
	if raised {
		return "up"
	}
	return "down"
}

// Report renders a snapshot as plain text for pasting into bug reports.
func Report(s sim.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("=== PURSUIT REPORT ===\n")
	for _, l := range summaryLines(s) {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}

	sb.WriteString("\n--- agents ---\n")
	for _, a := range s.Agents {
		flags := ""
		if a.Member {
			flags += " member"
		}
		if a.HasLOS {
			flags += " los"
		}
		if a.Walking {
			flags += " link"
		}
		if !a.Alive {
			flags += " dead"
		}
		fmt.Fprintf(&sb, "%-4s %-8s %-9s (%7.1f, %7.1f, %5.1f) seg=%d/%d%s\n",
			a.Label, a.Mode, a.State, a.X, a.Y, a.Z, a.Segment, len(a.Path), flags)
		if a.LKP != nil {
			fmt.Fprintf(&sb, "     lkp (%.1f, %.1f)\n", a.LKP[0], a.LKP[1])
		}
	}
	return sb.String()
}
