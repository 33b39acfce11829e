package orchestrator

import (
	"sort"

	"github.com/dshills/orchestrate/service"
)

// entry is the resolved projection of one descriptor for one event:
// the bound handler plus its effective dispatch attributes.
type entry struct {
	identity  string
	event     string
	priority  int
	retention service.Retention
	seq       uint64 // merge order; the stable tie-break for equal priorities
	handler   service.Handler
	def       service.Definition
	desc      service.Descriptor
}

// eventCache maps event names to priority-sorted resolved entries.
// It is not self-locking; the orchestrator's mutex linearizes all
// access so that cache and instance store mutate under one primitive.
type eventCache struct {
	entries map[string][]*entry
}

func newEventCache() *eventCache {
	return &eventCache{entries: make(map[string][]*entry)}
}

// insert merges new entries and re-sorts only the events that received
// them; merge cost is proportional to affected events, not cache size.
func (c *eventCache) insert(es []*entry) {
	touched := make(map[string]bool, len(es))
	for _, e := range es {
		c.entries[e.event] = append(c.entries[e.event], e)
		touched[e.event] = true
	}

	for event := range touched {
		list := c.entries[event]
		// (priority desc, seq asc) is a total order, so the sort is
		// deterministic and equal priorities keep merge order.
		sort.Slice(list, func(i, j int) bool {
			if list[i].priority != list[j].priority {
				return list[i].priority > list[j].priority
			}
			return list[i].seq < list[j].seq
		})
	}
}

// snapshot returns a copy of an event's entry list.
func (c *eventCache) snapshot(event string) []*entry {
	list := c.entries[event]
	if len(list) == 0 {
		return nil
	}
	out := make([]*entry, len(list))
	copy(out, list)
	return out
}

// events returns all event names with at least one entry, sorted.
func (c *eventCache) events() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// count returns the number of entries for an event.
func (c *eventCache) count(event string) int {
	return len(c.entries[event])
}
