package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

func enableAntiSpam(t *testing.T, e *testEngine) {
	t.Helper()
	if err := e.mod.Systems.Configure(context.Background(), testGuild, models.SystemsConfig{AntiSpam: true}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
}

// spam sends n messages from the member and fails the test if any of them
// triggers a mute
func spam(t *testing.T, e *testEngine, memberID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		muted, err := e.mod.AntiSpam.Handle(context.Background(), testActor(), memberID)
		if err != nil {
			t.Fatalf("Handle message %d: %v", i+1, err)
		}
		if muted {
			t.Fatalf("muted at message %d", i+1)
		}
	}
}

func TestAntiSpamMutesAtLimit(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	enableAntiSpam(t, e)
	ctx := context.Background()

	muted := e.collect(EventMuteMember)

	spam(t, e, testMember, 6)

	got, err := e.mod.AntiSpam.Handle(ctx, testActor(), testMember)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !got {
		t.Fatal("message 7 did not trigger the mute")
	}

	mute, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if mute == nil {
		t.Fatal("no mute stored after the limit")
	}
	if mute.Type != models.MuteTypeTemp {
		t.Errorf("type = %q, want %q", mute.Type, models.MuteTypeTemp)
	}
	if mute.DurationMs != 3_600_000 {
		t.Errorf("duration = %d, want 3600000", mute.DurationMs)
	}
	if mute.Reason != "Anti-Spam System." {
		t.Errorf("reason = %q", mute.Reason)
	}
	if len(*muted) != 1 {
		t.Errorf("muteMember events = %d, want 1", len(*muted))
	}
	if e.sched.pendingCount() != 1 {
		t.Errorf("pending timers = %d, want 1 (the expiry)", e.sched.pendingCount())
	}
}

func TestAntiSpamQuietGapResetsCount(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	enableAntiSpam(t, e)
	ctx := context.Background()

	spam(t, e, testMember, 6)

	// A quiet spell restarts the burst, so six more messages stay under
	// the limit
	e.clock.advance(6 * time.Second)
	spam(t, e, testMember, 6)

	got, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if got != nil {
		t.Fatalf("muted despite the quiet gap: %+v", got)
	}

	// The seventh message of the new burst does mute
	mutedNow, err := e.mod.AntiSpam.Handle(ctx, testActor(), testMember)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !mutedNow {
		t.Error("seventh message of the new burst did not mute")
	}
}

func TestAntiSpamWindowExpiryClearsCounter(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	enableAntiSpam(t, e)

	spam(t, e, testMember, 6)

	// The tracking window lapses before the gap would reset anything
	e.clock.advance(3 * time.Second)
	e.sched.fireAll()

	spam(t, e, testMember, 6)

	got, err := e.mod.Mutes.GetMute(context.Background(), testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if got != nil {
		t.Fatalf("muted despite the window expiry: %+v", got)
	}
}

func TestAntiSpamDisabledAndImmunity(t *testing.T) {
	ctx := context.Background()

	t.Run("system off", func(t *testing.T) {
		e := newTestEngine(t)
		setupMuteRole(t, e)

		spam(t, e, testMember, 10)
		got, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
		if err != nil {
			t.Fatalf("GetMute: %v", err)
		}
		if got != nil {
			t.Errorf("muted with the system off: %+v", got)
		}
	})

	t.Run("immune member", func(t *testing.T) {
		e := newTestEngine(t)
		setupMuteRole(t, e)
		enableAntiSpam(t, e)
		if err := e.mod.Systems.SetImmunity(ctx, testGuild, testMember, true); err != nil {
			t.Fatalf("SetImmunity: %v", err)
		}

		spam(t, e, testMember, 10)
		got, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
		if err != nil {
			t.Fatalf("GetMute: %v", err)
		}
		if got != nil {
			t.Errorf("immune member was muted: %+v", got)
		}
	})
}

func TestAntiSpamRequiresMuteRole(t *testing.T) {
	e := newTestEngine(t)
	e.platform.addMember(testGuild, testMember)
	enableAntiSpam(t, e)

	if _, err := e.mod.AntiSpam.Handle(context.Background(), testActor(), testMember); !IsCode(err, CodeNoMuteRole) {
		t.Fatalf("error = %v, want NoMuteRole", err)
	}
}

func TestAntiSpamCountsPerMember(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	enableAntiSpam(t, e)
	e.platform.addMember(testGuild, "member-2")
	ctx := context.Background()

	spam(t, e, testMember, 6)
	spam(t, e, "member-2", 6)

	for _, member := range []string{testMember, "member-2"} {
		got, err := e.mod.Mutes.GetMute(ctx, testGuild, member)
		if err != nil {
			t.Fatalf("GetMute(%s): %v", member, err)
		}
		if got != nil {
			t.Errorf("%s muted at six messages: %+v", member, got)
		}
	}
}
