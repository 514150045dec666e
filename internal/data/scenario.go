package data

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/crowdclash/server/internal/world"
	"gopkg.in/yaml.v3"
)

// ErrNoLeaders is returned for a scenario without any leader.
var ErrNoLeaders = errors.New("scenario has no leaders")

// TeamEntry is one team: id, display name and tint.
type TeamEntry struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Color string `yaml:"color"` // "#rrggbb"
}

// PointEntry is a position on the ground plane.
type PointEntry struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
}

// LeaderEntry places one leader at scene setup.
type LeaderEntry struct {
	Name      string       `yaml:"name"`
	Team      int          `yaml:"team"`
	Enemy     int          `yaml:"enemy"`
	Control   string       `yaml:"control"` // "player" or "ai"
	X         float64      `yaml:"x"`
	Z         float64      `yaml:"z"`
	Heading   float64      `yaml:"heading"` // degrees
	Waypoints []PointEntry `yaml:"waypoints"`
	Loop      bool         `yaml:"loop"`
}

// SpawnPointEntry is where neutral units enter the world. A missing
// heading means a random one per spawn.
type SpawnPointEntry struct {
	X       float64  `yaml:"x"`
	Z       float64  `yaml:"z"`
	Heading *float64 `yaml:"heading"` // degrees
}

type scenarioFile struct {
	Name        string            `yaml:"name"`
	Teams       []TeamEntry       `yaml:"teams"`
	Leaders     []LeaderEntry     `yaml:"leaders"`
	SpawnPoints []SpawnPointEntry `yaml:"spawn_points"`
}

// Scenario is a validated scene description.
type Scenario struct {
	Name        string
	Teams       []TeamEntry
	Leaders     []LeaderEntry
	SpawnPoints []SpawnPointEntry

	colors map[int]world.Color
	teams  map[int]*TeamEntry
}

// LoadScenario loads and validates a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(raw)
}

// ParseScenario validates scenario YAML already in memory.
func ParseScenario(raw []byte) (*Scenario, error) {
	var f scenarioFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	s := &Scenario{
		Name:        f.Name,
		Teams:       f.Teams,
		Leaders:     f.Leaders,
		SpawnPoints: f.SpawnPoints,
		colors:      make(map[int]world.Color, len(f.Teams)),
		teams:       make(map[int]*TeamEntry, len(f.Teams)),
	}
	for i := range s.Teams {
		t := &s.Teams[i]
		if t.ID <= 0 || t.ID > math.MaxUint8 {
			return nil, fmt.Errorf("team %q: id %d out of range 1..255", t.Name, t.ID)
		}
		if _, dup := s.teams[t.ID]; dup {
			return nil, fmt.Errorf("team id %d defined twice", t.ID)
		}
		c, err := world.ParseColor(t.Color)
		if err != nil {
			return nil, fmt.Errorf("team %q: %w", t.Name, err)
		}
		s.teams[t.ID] = t
		s.colors[t.ID] = c
	}
	if len(s.Leaders) == 0 {
		return nil, ErrNoLeaders
	}
	for _, l := range s.Leaders {
		if _, ok := s.teams[l.Team]; !ok {
			return nil, fmt.Errorf("leader %q: unknown team %d", l.Name, l.Team)
		}
		if _, ok := s.teams[l.Enemy]; !ok {
			return nil, fmt.Errorf("leader %q: unknown enemy team %d", l.Name, l.Enemy)
		}
		if l.Team == l.Enemy {
			return nil, fmt.Errorf("leader %q: team and enemy are both %d", l.Name, l.Team)
		}
		if _, err := parseControl(l.Control); err != nil {
			return nil, fmt.Errorf("leader %q: %w", l.Name, err)
		}
	}
	return s, nil
}

func parseControl(s string) (world.Control, error) {
	switch strings.ToLower(s) {
	case "player", "":
		return world.ControlPlayer, nil
	case "ai":
		return world.ControlAI, nil
	}
	return world.ControlPlayer, fmt.Errorf("unknown control %q (want player or ai)", s)
}

// Team returns the team entry for id, or nil.
func (s *Scenario) Team(id int) *TeamEntry { return s.teams[id] }

// LeaderSpecs converts the leader entries into world specs. speed is used
// for player leaders, aiSpeed for computer-controlled ones.
func (s *Scenario) LeaderSpecs(speed, aiSpeed float64) []world.LeaderSpec {
	out := make([]world.LeaderSpec, 0, len(s.Leaders))
	for _, l := range s.Leaders {
		ctl, _ := parseControl(l.Control)
		sp := speed
		if ctl == world.ControlAI {
			sp = aiSpeed
		}
		out = append(out, world.LeaderSpec{
			Name:    l.Name,
			Team:    world.Team(l.Team),
			Enemy:   world.Team(l.Enemy),
			Color:   s.colors[l.Team],
			Control: ctl,
			Pos:     world.Vec2{X: l.X, Z: l.Z},
			Heading: l.Heading * math.Pi / 180,
			Speed:   sp,
		})
	}
	return out
}

// Waypoints returns the route of leader i.
func (s *Scenario) Waypoints(i int) []world.Vec2 {
	pts := s.Leaders[i].Waypoints
	out := make([]world.Vec2, len(pts))
	for j, p := range pts {
		out[j] = world.Vec2{X: p.X, Z: p.Z}
	}
	return out
}
