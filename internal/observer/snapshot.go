// Package observer serves a read-only spectator feed of match snapshots
// over websocket.
package observer

import "github.com/crowdclash/server/internal/core/event"

const ProtocolVersion = 1

// LeaderState is one leader as seen by spectators.
type LeaderState struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Team   int     `json:"team"`
	Color  string  `json:"color"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Crowd  int     `json:"crowd"`
	Mode   string  `json:"mode,omitempty"`
	Locked bool    `json:"locked,omitempty"`
}

// UnitCounts tallies units by state.
type UnitCounts struct {
	Idle      int `json:"idle"`
	Neutral   int `json:"neutral"`
	Following int `json:"following"`
}

// Snapshot is one published frame.
type Snapshot struct {
	Type            string         `json:"type"`
	ProtocolVersion int            `json:"protocol_version"`
	Match           string         `json:"match"`
	Tick            uint64         `json:"tick"`
	Leaders         []LeaderState  `json:"leaders"`
	Units           UnitCounts     `json:"units"`
	Events          []event.Record `json:"events,omitempty"`
}
