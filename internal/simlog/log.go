// Package simlog records structured simulation events: an unbounded,
// machine-readable Log for headless runs and tests, and a small Ring for
// on-screen display.
package simlog

import (
	"fmt"
	"sort"
	"strings"
)

// Categories used across the simulation.
const (
	CatFollow = "follow" // segment, finished, launch, launch_fallback, landed
	CatSense  = "sense"  // los_gain, los_loss, mode
	CatGroup  = "group"  // join, join_rejected, armed, canceled, dissolved, locked
	CatTarget = "target" // caught, respawn, threat_on, threat_off
	CatFerry  = "ferry"  // state
	CatAgent  = "agent"  // spawn, despawn
)

// Global is the agent label for events not tied to one agent.
const Global = "--"

// Entry is one recorded event.
type Entry struct {
	Tick     int
	Agent    string // short agent label, or Global
	Category string
	Key      string  // event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] A3   group     armed            at=12.50
func (e Entry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// Log collects events. It is not safe for concurrent use; the simulation
// writes to it from its single update goroutine.
type Log struct {
	entries []Entry
	verbose bool
	subs    []func(Entry)
}

// NewLog creates a Log. If verbose is true, AddVerbose entries are kept too.
func NewLog(verbose bool) *Log {
	return &Log{verbose: verbose}
}

// Subscribe registers fn to be called with every entry as it is added.
func (l *Log) Subscribe(fn func(Entry)) {
	if fn != nil {
		l.subs = append(l.subs, fn)
	}
}

// Add records a new entry.
func (l *Log) Add(tick int, agent, category, key, value string, numVal float64) {
	e := Entry{
		Tick:     tick,
		Agent:    agent,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	}
	l.entries = append(l.entries, e)
	for _, fn := range l.subs {
		fn(e)
	}
}

// AddVerbose records an entry only when verbose mode is on.
func (l *Log) AddVerbose(tick int, agent, category, key, value string, numVal float64) {
	if !l.verbose {
		return
	}
	l.Add(tick, agent, category, key, value, numVal)
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.entries) }

// Entries returns all recorded entries.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (l *Log) Filter(category, key string) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns entries for a specific agent label.
func (l *Log) FilterAgent(label string) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (l *Log) FilterTickRange(fromTick, toTick int) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (l *Log) CountCategory(category, key string) int {
	n := 0
	for _, e := range l.entries {
		if (category == "" || e.Category == category) && (key == "" || e.Key == key) {
			n++
		}
	}
	return n
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (l *Log) LastOf(category, key string) (Entry, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if (category == "" || e.Category == category) && (key == "" || e.Key == key) {
			return e, true
		}
	}
	return Entry{}, false
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (l *Log) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Counts returns the number of entries per "category/key".
func (l *Log) Counts() map[string]int {
	out := make(map[string]int)
	for _, e := range l.entries {
		out[e.Category+"/"+e.Key]++
	}
	return out
}

// Format returns the full log as a single string for t.Log output.
func (l *Log) Format() string {
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (l *Log) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range l.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns event counts grouped by category, one line per category.
//
//	--- Summary at T=600 ---
//	follow: finished=4  segment=12
func (l *Log) Summary(tick int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)

	byCat := map[string]map[string]int{}
	for _, e := range l.entries {
		if byCat[e.Category] == nil {
			byCat[e.Category] = map[string]int{}
		}
		byCat[e.Category][e.Key]++
	}
	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		keys := make([]string, 0, len(byCat[c]))
		for k := range byCat[c] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(&sb, "%s:", c)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%d ", k, byCat[c][k])
		}
		sb.WriteByte('\n')
	}
	if len(cats) == 0 {
		sb.WriteString("no events\n")
	}
	return sb.String()
}
