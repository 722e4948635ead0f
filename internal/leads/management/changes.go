package management

import (
	"time"

	"github.com/google/uuid"
)

// changeSet records which lead columns a write touched, in first-touch
// order. The names travel on LeadSaved for the rescore guard.
type changeSet struct {
	order []string
	seen  map[string]struct{}
}

func newChangeSet() *changeSet {
	return &changeSet{seen: map[string]struct{}{}}
}

func (c *changeSet) mark(names ...string) {
	for _, name := range names {
		if _, ok := c.seen[name]; ok {
			continue
		}
		c.seen[name] = struct{}{}
		c.order = append(c.order, name)
	}
}

func (c *changeSet) has(name string) bool {
	_, ok := c.seen[name]
	return ok
}

func (c *changeSet) empty() bool { return len(c.order) == 0 }

func (c *changeSet) names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *changeSet) setString(name string, field *string, value string) {
	if *field != value {
		*field = value
		c.mark(name)
	}
}

func (c *changeSet) setDate(name string, field **time.Time, value *time.Time) {
	if sameDate(*field, value) {
		return
	}
	*field = value
	c.mark(name)
}

func (c *changeSet) setUUID(name string, field **uuid.UUID, value *uuid.UUID) {
	if sameUUID(*field, value) {
		return
	}
	*field = value
	c.mark(name)
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

func sameUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
