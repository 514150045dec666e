package world

import "github.com/crowdclash/server/internal/core/ecs"

// TintSink observes cosmetic tint changes (visual-tint collaborator).
type TintSink interface {
	Tinted(id ecs.EntityID, c Color)
}

// CountDisplay renders a leader's crowd size (text-display collaborator).
type CountDisplay interface {
	ShowCount(leader ecs.EntityID, name string, count int)
}
