package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
)

const (
	// spamLimit is the message count inside a burst that triggers the mute
	spamLimit = 7
	// spamWindow is how long a member's counter lives without a reset
	spamWindow = 15 * time.Second
	// spamGap is the quiet time that resets a member's counter
	spamGap = 5 * time.Second

	spamMuteDuration = time.Hour
	spamMuteReason   = "Anti-Spam System."
)

// spamEntry tracks one member's current burst. burstStartMs is the timestamp
// of the message that opened the burst, not the latest one: the gap is
// measured from the start of the burst.
type spamEntry struct {
	count        int
	burstStartMs int64
	timer        Timer
}

// AntiSpam mutes members that flood a channel. Each member carries a message
// counter that dies after spamWindow of tracking or resets after a spamGap
// of quiet; reaching spamLimit inside one burst issues a one-hour tempmute
// through the mute ledger.
type AntiSpam struct {
	store storage.Store
	clock Clock
	sched Scheduler
	mutes *MuteManager

	mu      sync.Mutex
	entries map[string]*spamEntry // guildID/memberID
}

func newAntiSpam(store storage.Store, clock Clock, sched Scheduler, mutes *MuteManager) *AntiSpam {
	return &AntiSpam{
		store:   store,
		clock:   clock,
		sched:   sched,
		mutes:   mutes,
		entries: make(map[string]*spamEntry),
	}
}

// Handle counts one message from the member and reports whether it crossed
// the spam limit and got the member tempmuted. Members are not counted while
// the system is off or they are immune. The guild needs a resolvable mute
// role before any counting happens.
func (a *AntiSpam) Handle(ctx context.Context, actor ActorContext, memberID string) (bool, error) {
	const op = "AntiSpam#Handle"
	if err := actor.validate(op); err != nil {
		return false, err
	}
	if memberID == "" {
		return false, invalidArgument(op, "memberId")
	}

	rec, err := a.store.Get(ctx, actor.GuildID)
	if err != nil {
		return false, err
	}
	if !rec.Systems.AntiSpam || rec.IsImmune(memberID) {
		return false, nil
	}

	roleID, err := a.mutes.Role(ctx, actor.GuildID)
	if err != nil {
		return false, err
	}
	if roleID == "" {
		return false, newError(CodeNoMuteRole, op, "guild %s has no resolvable mute role", actor.GuildID)
	}

	if !a.track(actor.GuildID, memberID) {
		return false, nil
	}

	if _, err := a.mutes.Create(ctx, models.MuteTypeTemp, actor, memberID, spamMuteReason, spamMuteDuration); err != nil {
		return false, err
	}
	return true, nil
}

// track advances the member's counter and reports whether it hit the limit.
// Hitting the limit clears the entry so counting restarts after the mute.
func (a *AntiSpam) track(guildID, memberID string) bool {
	key := guildID + "/" + memberID
	now := a.clock.NowMs()

	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.entries[key]
	if !ok {
		a.startEntry(key, now)
		return false
	}

	if now-entry.burstStartMs > spamGap.Milliseconds() {
		entry.timer.Stop()
		a.startEntry(key, now)
		return false
	}

	entry.count++
	if entry.count < spamLimit {
		return false
	}

	entry.timer.Stop()
	delete(a.entries, key)
	return true
}

// startEntry opens a fresh burst for key. Caller holds a.mu.
func (a *AntiSpam) startEntry(key string, now int64) {
	entry := &spamEntry{count: 1, burstStartMs: now}
	entry.timer = a.sched.Schedule(spamWindow, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.entries[key] == entry {
			delete(a.entries, key)
		}
	})
	a.entries[key] = entry
}

// CancelAll stops every window timer and drops all counters, for shutdown
func (a *AntiSpam) CancelAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, entry := range a.entries {
		entry.timer.Stop()
		delete(a.entries, key)
	}
}
