package orchestrator

import (
	"sort"
	"sync"

	"github.com/dshills/orchestrate/service"
)

// PreFireHook runs before any handler of a fire call. Returning false
// vetoes the dispatch: no handlers run and Fire returns the zero Return.
type PreFireHook interface {
	// Name identifies the hook; registering the same name replaces it.
	Name() string
	// Priority orders pre hooks; higher runs first.
	Priority() int
	// Before observes the call about to be dispatched.
	Before(event string, ctx *service.Context) bool
}

// PostFireHook runs after a fire call completes. Post hooks run from
// lowest to highest priority so higher-priority hooks observe the
// final aggregate value.
type PostFireHook interface {
	Name() string
	Priority() int
	// After observes the completed call and its aggregate return.
	After(event string, ctx *service.Context, ret *Return)
}

// PreFireFunc adapts a function to PreFireHook.
func PreFireFunc(name string, priority int, fn func(event string, ctx *service.Context) bool) PreFireHook {
	return &preFunc{name: name, prio: priority, fn: fn}
}

// PostFireFunc adapts a function to PostFireHook.
func PostFireFunc(name string, priority int, fn func(event string, ctx *service.Context, ret *Return)) PostFireHook {
	return &postFunc{name: name, prio: priority, fn: fn}
}

type preFunc struct {
	name string
	prio int
	fn   func(string, *service.Context) bool
}

func (h *preFunc) Name() string  { return h.name }
func (h *preFunc) Priority() int { return h.prio }
func (h *preFunc) Before(event string, ctx *service.Context) bool {
	if h.fn == nil {
		return true
	}
	return h.fn(event, ctx)
}

type postFunc struct {
	name string
	prio int
	fn   func(string, *service.Context, *Return)
}

func (h *postFunc) Name() string  { return h.name }
func (h *postFunc) Priority() int { return h.prio }
func (h *postFunc) After(event string, ctx *service.Context, ret *Return) {
	if h.fn != nil {
		h.fn(event, ctx, ret)
	}
}

// hookSet holds the registered fire hooks in priority order.
type hookSet struct {
	mu   sync.RWMutex
	pre  []PreFireHook
	post []PostFireHook
}

func newHookSet() *hookSet {
	return &hookSet{}
}

// registerPre adds a pre-fire hook, replacing any hook with the same name.
func (s *hookSet) registerPre(h PreFireHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.pre {
		if existing.Name() == h.Name() {
			s.pre[i] = h
			s.sortPre()
			return
		}
	}
	s.pre = append(s.pre, h)
	s.sortPre()
}

// registerPost adds a post-fire hook, replacing any hook with the same name.
func (s *hookSet) registerPost(h PostFireHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.post {
		if existing.Name() == h.Name() {
			s.post[i] = h
			s.sortPost()
			return
		}
	}
	s.post = append(s.post, h)
	s.sortPost()
}

// unregister removes a hook by name from both lists.
func (s *hookSet) unregister(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	for i, h := range s.pre {
		if h.Name() == name {
			s.pre = append(s.pre[:i], s.pre[i+1:]...)
			removed = true
			break
		}
	}
	for i, h := range s.post {
		if h.Name() == name {
			s.post = append(s.post[:i], s.post[i+1:]...)
			removed = true
			break
		}
	}
	return removed
}

// runPre runs pre hooks in priority order; false if any hook vetoes.
func (s *hookSet) runPre(event string, ctx *service.Context) bool {
	s.mu.RLock()
	hooks := make([]PreFireHook, len(s.pre))
	copy(hooks, s.pre)
	s.mu.RUnlock()

	for _, h := range hooks {
		if !h.Before(event, ctx) {
			return false
		}
	}
	return true
}

// runPost runs post hooks from lowest to highest priority.
func (s *hookSet) runPost(event string, ctx *service.Context, ret *Return) {
	s.mu.RLock()
	hooks := make([]PostFireHook, len(s.post))
	copy(hooks, s.post)
	s.mu.RUnlock()

	for _, h := range hooks {
		h.After(event, ctx, ret)
	}
}

func (s *hookSet) sortPre() {
	sort.SliceStable(s.pre, func(i, j int) bool {
		return s.pre[i].Priority() > s.pre[j].Priority()
	})
}

func (s *hookSet) sortPost() {
	sort.SliceStable(s.post, func(i, j int) bool {
		return s.post[i].Priority() < s.post[j].Priority()
	})
}
