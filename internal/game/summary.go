package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LeaderSummary is one leader at the end of a match.
type LeaderSummary struct {
	Name   string
	Team   string
	Active bool
	Crowd  int // followers + 1; 0 once defeated
}

// CategorySummary is one pool category at the end of a match.
type CategorySummary struct {
	Category string
	Capacity int
	Idle     int
	Active   int
}

// Summary is the end-of-match report.
type Summary struct {
	Match       string
	Scenario    string
	Seed        int64
	Ticks       uint64
	Simulated   time.Duration
	Started     time.Time
	Winner      string // team name; empty when no single team remains
	Leaders     []LeaderSummary
	Pools       []CategorySummary
	Spawned     int
	Recruited   int
	Transferred int
	Combats     int
	Ties        int
	Defeated    []string
	Released    int
}

var titleCase = cases.Title(language.English)

func (g *Game) teamName(id int) string {
	if t := g.scenario.Team(id); t != nil {
		return titleCase.String(t.Name)
	}
	return fmt.Sprintf("Team %d", id)
}

// Summary reports the match as of the last completed tick.
func (g *Game) Summary() Summary {
	s := Summary{
		Match:       g.match.String(),
		Scenario:    g.scenario.Name,
		Seed:        g.seed,
		Ticks:       g.runner.Tick(),
		Simulated:   g.runner.Now(),
		Started:     g.started,
		Spawned:     g.stats.spawned,
		Recruited:   g.stats.recruited,
		Transferred: g.stats.transferred,
		Combats:     g.stats.combats,
		Ties:        g.stats.ties,
		Defeated:    append([]string(nil), g.stats.defeated...),
		Released:    g.stats.released,
	}
	for _, l := range g.leaders {
		ls := LeaderSummary{Name: l.Name, Team: g.teamName(int(l.Team)), Active: l.Active}
		if l.Active {
			ls.Crowd = l.CrowdSize()
		}
		s.Leaders = append(s.Leaders, ls)
	}
	if teams := g.activeTeams(); g.teams > 1 && len(teams) == 1 {
		s.Winner = g.teamName(int(teams[0]))
	}
	for _, cat := range g.pool.Categories() {
		st, _ := g.pool.Stats(cat)
		s.Pools = append(s.Pools, CategorySummary{
			Category: cat.String(),
			Capacity: st.Capacity,
			Idle:     st.Idle,
			Active:   st.Active,
		})
	}
	return s
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "match %s (%s, seed %d)\n", s.Match, s.Scenario, s.Seed)
	fmt.Fprintf(&b, "  %s ticks, %s simulated", humanize.Comma(int64(s.Ticks)), s.Simulated.Round(time.Millisecond))
	if !s.Started.IsZero() {
		fmt.Fprintf(&b, ", started %s", humanize.Time(s.Started))
	}
	b.WriteString("\n")
	if s.Winner != "" {
		fmt.Fprintf(&b, "  winner: %s\n", s.Winner)
	} else {
		b.WriteString("  winner: none\n")
	}
	for _, l := range s.Leaders {
		status := fmt.Sprintf("crowd %d", l.Crowd)
		if !l.Active {
			status = "defeated"
		}
		fmt.Fprintf(&b, "  leader %-12s %-10s %s\n", l.Name, l.Team, status)
	}
	fmt.Fprintf(&b, "  %s spawned, %s recruited, %s transferred\n",
		humanize.Comma(int64(s.Spawned)), humanize.Comma(int64(s.Recruited)), humanize.Comma(int64(s.Transferred)))
	fmt.Fprintf(&b, "  %s %s (%d tied), %s released on defeat\n",
		humanize.Comma(int64(s.Combats)), english.PluralWord(s.Combats, "combat", ""), s.Ties, humanize.Comma(int64(s.Released)))
	for _, p := range s.Pools {
		fmt.Fprintf(&b, "  pool %-8s %d/%d idle, %d active\n", p.Category, p.Idle, p.Capacity, p.Active)
	}
	return b.String()
}
