package world

import (
	"fmt"
	"sort"
)

// Team is a small integer team id. TeamNone marks unaffiliated actors.
type Team uint8

const TeamNone Team = 0

// Role is the closed set of actor classifications used by proximity
// handling.
type Role uint8

const (
	RoleNeutral Role = iota
	RoleLeader
	RoleFollower
)

func (r Role) String() string {
	switch r {
	case RoleLeader:
		return "leader"
	case RoleFollower:
		return "follower"
	default:
		return "neutral"
	}
}

// Tag classifies an actor for proximity handling: neutral units, a team's
// leader, or a team's followers.
type Tag struct {
	Role Role
	Team Team
}

var NeutralTag = Tag{Role: RoleNeutral, Team: TeamNone}

func LeaderTag(t Team) Tag   { return Tag{Role: RoleLeader, Team: t} }
func FollowerTag(t Team) Tag { return Tag{Role: RoleFollower, Team: t} }

func (t Tag) IsNeutral() bool { return t.Role == RoleNeutral }

func (t Tag) String() string {
	if t.Role == RoleNeutral {
		return "neutral"
	}
	return fmt.Sprintf("%s/%d", t.Role, t.Team)
}

// Color is a cosmetic tint.
type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

var ColorWhite = Color{255, 255, 255}

func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// ParseColor accepts "#rrggbb".
func ParseColor(s string) (Color, error) {
	var c Color
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("color %q: want #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("color %q: %w", s, err)
	}
	return c, nil
}

// Category selects a unit pool. Categories are fixed at unit creation.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryUnit          // generic recruitable unit
	CategoryRunner        // faster unit variant
)

var categoryNames = map[Category]string{
	CategoryUnit:   "unit",
	CategoryRunner: "runner",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// CategoryByName resolves a configured category name.
func CategoryByName(name string) (Category, bool) {
	for c, n := range categoryNames {
		if n == name {
			return c, true
		}
	}
	return CategoryNone, false
}

// CategoryNames lists every known category name, sorted.
func CategoryNames() []string {
	out := make([]string, 0, len(categoryNames))
	for _, n := range categoryNames {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
