package moderation

import (
	"context"
	"testing"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

func TestWarnCreate(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	added := e.collect(EventWarnAdd)

	warn, err := e.mod.Warn(ctx, testActor(), testMember, "rude")
	if err != nil {
		t.Fatalf("Warn: %v", err)
	}
	if warn.ID != 1 {
		t.Errorf("case id = %d, want 1", warn.ID)
	}
	if warn.Reason != "rude" {
		t.Errorf("reason = %q", warn.Reason)
	}
	if warn.Timestamp != e.clock.NowMs() {
		t.Errorf("timestamp = %d, want %d", warn.Timestamp, e.clock.NowMs())
	}
	if len(*added) != 1 {
		t.Errorf("warnAdd events = %d, want 1", len(*added))
	}

	count, err := e.mod.Warns.Count(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestWarnDefaultReason(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)

	warn, err := e.mod.Warn(context.Background(), testActor(), testMember, "")
	if err != nil {
		t.Fatalf("Warn: %v", err)
	}
	if warn.Reason != DefaultReason {
		t.Errorf("reason = %q, want %q", warn.Reason, DefaultReason)
	}
}

func TestWarnCountIsPerMember(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	e.platform.addMember(testGuild, "member-2")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := e.mod.Warn(ctx, testActor(), testMember, ""); err != nil {
			t.Fatalf("Warn member-1: %v", err)
		}
	}
	if _, err := e.mod.Warn(ctx, testActor(), "member-2", ""); err != nil {
		t.Fatalf("Warn member-2: %v", err)
	}

	// Three records exist guild-wide but neither member hits the
	// three-warn escalation
	mute, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if mute != nil {
		t.Error("escalation fired on guild-wide count")
	}

	count, err := e.mod.Warns.Count(ctx, testGuild, "member-2")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("member-2 count = %d, want 1", count)
	}
}

func TestWarnAutoMuteAtThree(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	muted := e.collect(EventMuteMember)

	for i := 0; i < 3; i++ {
		if _, err := e.mod.Warn(ctx, testActor(), testMember, ""); err != nil {
			t.Fatalf("Warn %d: %v", i+1, err)
		}
	}

	mute, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if mute == nil {
		t.Fatal("no auto mute after third warn")
	}
	if mute.Type != models.MuteTypeTemp {
		t.Errorf("type = %q, want %q", mute.Type, models.MuteTypeTemp)
	}
	if mute.DurationMs != 3_600_000 {
		t.Errorf("duration = %d, want 3600000", mute.DurationMs)
	}
	if mute.Reason != "User reached 3 warns | AutoMute." {
		t.Errorf("reason = %q", mute.Reason)
	}
	if len(*muted) != 1 {
		t.Errorf("muteMember events = %d, want 1", len(*muted))
	}

	// Warns four and five stay above the threshold without re-triggering
	for i := 0; i < 2; i++ {
		if _, err := e.mod.Warn(ctx, testActor(), testMember, ""); err != nil {
			t.Fatalf("Warn %d: %v", i+4, err)
		}
	}
	if len(*muted) != 1 {
		t.Errorf("muteMember events after five warns = %d, want 1", len(*muted))
	}
}

func TestWarnAutoKickAtSix(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	kicks := e.collect(EventWarnKick)

	for i := 0; i < 6; i++ {
		if _, err := e.mod.Warn(ctx, testActor(), testMember, ""); err != nil {
			t.Fatalf("Warn %d: %v", i+1, err)
		}
	}

	if e.platform.kickCount() != 1 {
		t.Fatalf("kicks = %d, want 1", e.platform.kickCount())
	}
	if len(*kicks) != 1 {
		t.Errorf("warnKick events = %d, want 1", len(*kicks))
	}

	// The ledger resets so a new warn starts a fresh cycle
	count, err := e.mod.Warns.Count(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("count after kick = %d, want 0", count)
	}

	e.platform.addMember(testGuild, testMember)
	if _, err := e.mod.Warn(ctx, testActor(), testMember, ""); err != nil {
		t.Fatalf("Warn after kick: %v", err)
	}
	if e.platform.kickCount() != 1 {
		t.Errorf("kicks after fresh warn = %d, want 1", e.platform.kickCount())
	}
	count, err = e.mod.Warns.Count(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count after fresh warn = %d, want 1", count)
	}
}

func TestWarnAutoKickClearsEvenIfKickFails(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := e.mod.Warn(ctx, testActor(), testMember, ""); err != nil {
			t.Fatalf("Warn %d: %v", i+1, err)
		}
	}

	e.platform.kickErr = errDenied
	if _, err := e.mod.Warn(ctx, testActor(), testMember, ""); err != nil {
		t.Fatalf("sixth warn: %v", err)
	}

	count, err := e.mod.Warns.Count(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 even with failed kick", count)
	}
}

func TestUnwarnRemovesMostRecent(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	removedEvents := e.collect(EventWarnRemove)

	first, err := e.mod.Warn(ctx, testActor(), testMember, "first")
	if err != nil {
		t.Fatalf("Warn: %v", err)
	}
	second, err := e.mod.Warn(ctx, testActor(), testMember, "second")
	if err != nil {
		t.Fatalf("Warn: %v", err)
	}

	removed, err := e.mod.Unwarn(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("Unwarn: %v", err)
	}
	if removed.UID != second.UID {
		t.Errorf("removed uid = %s, want most recent %s", removed.UID, second.UID)
	}
	if len(*removedEvents) != 1 {
		t.Errorf("warnRemove events = %d, want 1", len(*removedEvents))
	}

	warns, err := e.mod.Warns.All(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(warns) != 1 || warns[0].UID != first.UID {
		t.Fatalf("remaining warns = %+v, want only %s", warns, first.UID)
	}
}

func TestUnwarnWithoutWarns(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)

	if _, err := e.mod.Unwarn(context.Background(), testGuild, testMember); !IsCode(err, CodeNoWarns) {
		t.Fatalf("error = %v, want NoWarns", err)
	}
}

func TestWarnAllEmptyForUnknownMember(t *testing.T) {
	e := newTestEngine(t)

	warns, err := e.mod.Warns.All(context.Background(), testGuild, "ghost")
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(warns) != 0 {
		t.Errorf("warns = %+v, want empty", warns)
	}
}
