package moderation

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/storage"
)

// fakePlatform is an in-memory stand-in for the Discord adapter
type fakePlatform struct {
	mu          sync.Mutex
	roles       map[string]bool // guildID/roleID
	members     map[string]bool // guildID/memberID
	memberRoles map[string]bool // guildID/memberID/roleID
	kicked      []string
	grantErr    error
	revokeErr   error
	kickErr     error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		roles:       make(map[string]bool),
		members:     make(map[string]bool),
		memberRoles: make(map[string]bool),
	}
}

func (p *fakePlatform) addRole(guildID, roleID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roles[guildID+"/"+roleID] = true
}

func (p *fakePlatform) removeRole(guildID, roleID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.roles, guildID+"/"+roleID)
}

func (p *fakePlatform) addMember(guildID, memberID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members[guildID+"/"+memberID] = true
}

func (p *fakePlatform) removeMember(guildID, memberID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.members, guildID+"/"+memberID)
}

func (p *fakePlatform) GrantRole(ctx context.Context, guildID, memberID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.grantErr != nil {
		return p.grantErr
	}
	p.memberRoles[guildID+"/"+memberID+"/"+roleID] = true
	return nil
}

func (p *fakePlatform) RevokeRole(ctx context.Context, guildID, memberID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.revokeErr != nil {
		return p.revokeErr
	}
	delete(p.memberRoles, guildID+"/"+memberID+"/"+roleID)
	return nil
}

func (p *fakePlatform) Kick(ctx context.Context, guildID, memberID, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.kickErr != nil {
		return p.kickErr
	}
	p.kicked = append(p.kicked, guildID+"/"+memberID+"/"+reason)
	delete(p.members, guildID+"/"+memberID)
	return nil
}

func (p *fakePlatform) RoleExists(ctx context.Context, guildID, roleID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roles[guildID+"/"+roleID], nil
}

func (p *fakePlatform) MemberExists(ctx context.Context, guildID, memberID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.members[guildID+"/"+memberID], nil
}

func (p *fakePlatform) MemberHasRole(ctx context.Context, guildID, memberID, roleID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.memberRoles[guildID+"/"+memberID+"/"+roleID], nil
}

func (p *fakePlatform) hasRole(guildID, memberID, roleID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.memberRoles[guildID+"/"+memberID+"/"+roleID]
}

func (p *fakePlatform) kickCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.kicked)
}

// fakeClock is a manually advanced millisecond clock
type fakeClock struct {
	mu sync.Mutex
	ms int64
}

func (c *fakeClock) NowMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ms
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms += d.Milliseconds()
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := t.stopped
	t.stopped = true
	return !was
}

// fakeScheduler captures scheduled callbacks so tests fire them manually
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) Schedule(delay time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: delay, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// fireAll runs every pending callback that has not been stopped
func (s *fakeScheduler) fireAll() {
	s.mu.Lock()
	pending := s.timers
	s.timers = nil
	s.mu.Unlock()

	for _, t := range pending {
		if !t.stopped {
			t.fn()
		}
	}
}

func (s *fakeScheduler) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, t := range s.timers {
		if !t.stopped {
			count++
		}
	}
	return count
}

type testEngine struct {
	mod      *Moderation
	store    storage.Store
	platform *fakePlatform
	clock    *fakeClock
	sched    *fakeScheduler
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	store, err := storage.NewJSONStore(filepath.Join(t.TempDir(), "guilds.json"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	platform := newFakePlatform()
	clock := &fakeClock{ms: 1_000}
	sched := &fakeScheduler{}

	mod, err := New(Options{
		Store:     store,
		Platform:  platform,
		Clock:     clock,
		Scheduler: sched,
	})
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}

	return &testEngine{mod: mod, store: store, platform: platform, clock: clock, sched: sched}
}

// collect registers a handler that appends every payload of event
func (e *testEngine) collect(event Event) *[]interface{} {
	var payloads []interface{}
	var mu sync.Mutex
	e.mod.On(event, func(payload interface{}) {
		mu.Lock()
		defer mu.Unlock()
		payloads = append(payloads, payload)
	})
	return &payloads
}

var errDenied = errors.New("missing permissions")
