package data

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crowdclash/server/internal/world"
)

const duel = `
name: test
teams:
  - {id: 1, name: red, color: "#ff0000"}
  - {id: 2, name: blue, color: "#0000ff"}
leaders:
  - name: hero
    team: 1
    enemy: 2
    control: player
    waypoints: [{x: 5, z: 0}, {x: 5, z: 5}]
    loop: true
  - name: rival
    team: 2
    enemy: 1
    control: ai
    x: 30
    heading: 180
spawn_points:
  - {x: 0, z: 10}
  - {x: 10, z: 0, heading: 90}
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(duel))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	specs := s.LeaderSpecs(5, 3.5)
	if len(specs) != 2 {
		t.Fatalf("expected 2 leaders, got %d", len(specs))
	}
	hero, rival := specs[0], specs[1]
	if hero.Control != world.ControlPlayer || hero.Speed != 5 || hero.Color != (world.Color{R: 255}) {
		t.Fatalf("unexpected hero spec %+v", hero)
	}
	if rival.Control != world.ControlAI || rival.Speed != 3.5 || rival.Team != 2 || rival.Enemy != 1 {
		t.Fatalf("unexpected rival spec %+v", rival)
	}
	if math.Abs(rival.Heading-math.Pi) > 1e-9 {
		t.Fatalf("heading not converted to radians: %v", rival.Heading)
	}
	if wp := s.Waypoints(0); len(wp) != 2 || wp[1] != (world.Vec2{X: 5, Z: 5}) {
		t.Fatalf("unexpected waypoints %v", wp)
	}
	if s.SpawnPoints[0].Heading != nil || *s.SpawnPoints[1].Heading != 90 {
		t.Fatalf("unexpected spawn headings")
	}
	if s.Team(2).Name != "blue" || s.Team(9) != nil {
		t.Fatalf("team lookup broken")
	}
}

func TestParseScenarioErrors(t *testing.T) {
	cases := map[string]string{
		"no leaders":   "teams: [{id: 1, name: a, color: '#000000'}]\n",
		"unknown team": "teams: [{id: 1, name: a, color: '#000000'}]\nleaders: [{name: x, team: 1, enemy: 3}]\n",
		"same team":    "teams: [{id: 1, name: a, color: '#000000'}]\nleaders: [{name: x, team: 1, enemy: 1}]\n",
		"bad color":    "teams: [{id: 1, name: a, color: red}]\nleaders: [{name: x, team: 1, enemy: 1}]\n",
		"bad control":  "teams: [{id: 1, name: a, color: '#000000'}, {id: 2, name: b, color: '#ffffff'}]\nleaders: [{name: x, team: 1, enemy: 2, control: robot}]\n",
		"dup team":     "teams: [{id: 1, name: a, color: '#000000'}, {id: 1, name: b, color: '#ffffff'}]\n",
	}
	for name, doc := range cases {
		if _, err := ParseScenario([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	_, err := ParseScenario([]byte(cases["no leaders"]))
	if !errors.Is(err, ErrNoLeaders) {
		t.Fatalf("expected ErrNoLeaders, got %v", err)
	}
	if _, err := ParseScenario([]byte(cases["bad control"])); err == nil || !strings.Contains(err.Error(), "robot") {
		t.Fatalf("expected control name in error, got %v", err)
	}
}

func TestShippedScenarioLoads(t *testing.T) {
	s, err := LoadScenario(filepath.Join("..", "..", "data", "scenario.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.SpawnPoints) == 0 {
		t.Fatalf("shipped scenario has no spawn points")
	}
}
