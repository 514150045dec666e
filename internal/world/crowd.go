package world

import "github.com/crowdclash/server/internal/core/ecs"

// Crowd is the ordered set of followers owned by one leader. Order is
// recruitment order. Only the owning leader's conflict engine mutates it.
type Crowd struct {
	members []ecs.EntityID
	index   map[ecs.EntityID]int
}

func (c *Crowd) Len() int { return len(c.members) }

func (c *Crowd) Contains(id ecs.EntityID) bool {
	_, ok := c.index[id]
	return ok
}

// Add appends id. Adding a member twice is a no-op and returns false.
func (c *Crowd) Add(id ecs.EntityID) bool {
	if c.index == nil {
		c.index = make(map[ecs.EntityID]int)
	}
	if _, ok := c.index[id]; ok {
		return false
	}
	c.index[id] = len(c.members)
	c.members = append(c.members, id)
	return true
}

// Remove deletes id, preserving the order of the rest.
func (c *Crowd) Remove(id ecs.EntityID) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	delete(c.index, id)
	c.members = append(c.members[:i], c.members[i+1:]...)
	for j := i; j < len(c.members); j++ {
		c.index[c.members[j]] = j
	}
	return true
}

// Members returns a copy of the crowd in recruitment order.
func (c *Crowd) Members() []ecs.EntityID {
	out := make([]ecs.EntityID, len(c.members))
	copy(out, c.members)
	return out
}

// Drain empties the crowd and returns its former members in recruitment
// order. Callers apply membership changes to the returned slice, never to a
// crowd they are iterating.
func (c *Crowd) Drain() []ecs.EntityID {
	out := c.members
	c.members = nil
	c.index = nil
	return out
}

func (c *Crowd) Clear() {
	c.members = nil
	c.index = nil
}
