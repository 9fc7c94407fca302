package moderation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

const (
	testGuild   = "guild-1"
	testRole    = "role-mute"
	testMember  = "member-1"
	testMod     = "mod-1"
	testChannel = "channel-1"
)

func testActor() ActorContext {
	return ActorContext{GuildID: testGuild, ModeratorID: testMod, ChannelID: testChannel}
}

func setupMuteRole(t *testing.T, e *testEngine) {
	t.Helper()
	e.platform.addRole(testGuild, testRole)
	e.platform.addMember(testGuild, testMember)
	if err := e.mod.Mutes.SetRole(context.Background(), testGuild, testRole); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
}

func TestMuteLifecycle(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	muted := e.collect(EventMuteMember)
	unmuted := e.collect(EventUnmuteMember)

	mute, err := e.mod.Mute(ctx, testActor(), testMember, "spamming")
	if err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if mute.ID != 1 {
		t.Errorf("case id = %d, want 1", mute.ID)
	}
	if mute.Type != models.MuteTypePermanent {
		t.Errorf("type = %q, want %q", mute.Type, models.MuteTypePermanent)
	}
	if mute.Reason != "spamming" {
		t.Errorf("reason = %q", mute.Reason)
	}
	if !e.platform.hasRole(testGuild, testMember, testRole) {
		t.Error("mute role was not granted")
	}
	if len(*muted) != 1 {
		t.Fatalf("muteMember events = %d, want 1", len(*muted))
	}

	got, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if got == nil || got.UID != mute.UID {
		t.Fatalf("GetMute = %+v, want uid %s", got, mute.UID)
	}

	if _, err := e.mod.Mute(ctx, testActor(), testMember, "again"); !IsCode(err, CodeAlreadyMuted) {
		t.Fatalf("second mute error = %v, want AlreadyMuted", err)
	}

	removed, err := e.mod.Unmute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("Unmute: %v", err)
	}
	if removed.UID != mute.UID {
		t.Errorf("unmuted uid = %s, want %s", removed.UID, mute.UID)
	}
	if e.platform.hasRole(testGuild, testMember, testRole) {
		t.Error("mute role was not revoked")
	}
	if len(*unmuted) != 1 {
		t.Errorf("unmuteMember events = %d, want 1", len(*unmuted))
	}

	got, err = e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute after unmute: %v", err)
	}
	if got != nil {
		t.Errorf("mute still present after unmute: %+v", got)
	}

	if _, err := e.mod.Unmute(ctx, testGuild, testMember); !IsCode(err, CodeNotMuted) {
		t.Fatalf("second unmute error = %v, want NotMuted", err)
	}
}

func TestMuteDefaultReason(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)

	mute, err := e.mod.Mute(context.Background(), testActor(), testMember, "")
	if err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if mute.Reason != DefaultReason {
		t.Errorf("reason = %q, want %q", mute.Reason, DefaultReason)
	}
}

func TestMutePreconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("no mute role configured", func(t *testing.T) {
		e := newTestEngine(t)
		e.platform.addMember(testGuild, testMember)
		if _, err := e.mod.Mute(ctx, testActor(), testMember, ""); !IsCode(err, CodeNoMuteRole) {
			t.Fatalf("error = %v, want NoMuteRole", err)
		}
	})

	t.Run("mute role deleted from guild", func(t *testing.T) {
		e := newTestEngine(t)
		setupMuteRole(t, e)
		e.platform.removeRole(testGuild, testRole)
		if _, err := e.mod.Mute(ctx, testActor(), testMember, ""); !IsCode(err, CodeNoMuteRole) {
			t.Fatalf("error = %v, want NoMuteRole", err)
		}
	})

	t.Run("tempmute without duration", func(t *testing.T) {
		e := newTestEngine(t)
		setupMuteRole(t, e)
		if _, err := e.mod.TempMute(ctx, testActor(), testMember, "", 0); !IsCode(err, CodeInvalidArgument) {
			t.Fatalf("error = %v, want InvalidArgument", err)
		}
	})

	t.Run("missing member id", func(t *testing.T) {
		e := newTestEngine(t)
		setupMuteRole(t, e)
		if _, err := e.mod.Mute(ctx, testActor(), "", ""); !IsCode(err, CodeInvalidArgument) {
			t.Fatalf("error = %v, want InvalidArgument", err)
		}
	})
}

func TestMuteGrantFailureRollsBack(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	e.platform.grantErr = errDenied
	ctx := context.Background()

	muted := e.collect(EventMuteMember)

	if _, err := e.mod.Mute(ctx, testActor(), testMember, ""); !IsCode(err, CodeRoleGrantFailed) {
		t.Fatalf("error = %v, want RoleGrantFailed", err)
	}
	if len(*muted) != 0 {
		t.Error("muteMember emitted despite failed grant")
	}

	got, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if got != nil {
		t.Fatalf("record persisted despite failed grant: %+v", got)
	}

	// The case counter must not burn a number on a failed grant
	e.platform.grantErr = nil
	mute, err := e.mod.Mute(ctx, testActor(), testMember, "")
	if err != nil {
		t.Fatalf("Mute after recovery: %v", err)
	}
	if mute.ID != 1 {
		t.Errorf("case id = %d, want 1", mute.ID)
	}
}

func TestUnmuteWithoutRoleAssignment(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	if _, err := e.mod.Mute(ctx, testActor(), testMember, ""); err != nil {
		t.Fatalf("Mute: %v", err)
	}

	// Someone stripped the role manually out of band
	if err := e.platform.RevokeRole(ctx, testGuild, testMember, testRole); err != nil {
		t.Fatalf("RevokeRole: %v", err)
	}

	if _, err := e.mod.Unmute(ctx, testGuild, testMember); !IsCode(err, CodeMissingRoleAssignment) {
		t.Fatalf("error = %v, want MissingRoleAssignment", err)
	}
}

func TestUnmuteRevokeFailureStillRemoves(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	if _, err := e.mod.Mute(ctx, testActor(), testMember, ""); err != nil {
		t.Fatalf("Mute: %v", err)
	}
	e.platform.revokeErr = errDenied

	unmuted := e.collect(EventUnmuteMember)
	if _, err := e.mod.Unmute(ctx, testGuild, testMember); err != nil {
		t.Fatalf("Unmute: %v", err)
	}
	if len(*unmuted) != 1 {
		t.Errorf("unmuteMember events = %d, want 1", len(*unmuted))
	}

	got, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if got != nil {
		t.Error("record survived an unmute with failed revoke")
	}
}

func TestConcurrentMuteCreatesOneRecord(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	const attempts = 16
	var created, rejected int32
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := e.mod.Mute(ctx, testActor(), testMember, "")
			switch {
			case err == nil:
				atomic.AddInt32(&created, 1)
			case IsCode(err, CodeAlreadyMuted):
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("Mute: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("successful creates = %d, want 1", created)
	}
	if rejected != attempts-1 {
		t.Errorf("AlreadyMuted rejections = %d, want %d", rejected, attempts-1)
	}

	rec, err := e.store.Get(ctx, testGuild)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(rec.Mutes) != 1 {
		t.Fatalf("stored mutes = %d, want 1", len(rec.Mutes))
	}
	if rec.Cases != 1 {
		t.Errorf("cases counter = %d, want 1", rec.Cases)
	}
}

func TestFailedUnmuteKeepsExpiryArmed(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	unmuted := e.collect(EventUnmuteMember)

	if _, err := e.mod.TempMute(ctx, testActor(), testMember, "", time.Minute); err != nil {
		t.Fatalf("TempMute: %v", err)
	}

	// Role stripped out of band, so the manual unmute is rejected
	if err := e.platform.RevokeRole(ctx, testGuild, testMember, testRole); err != nil {
		t.Fatalf("RevokeRole: %v", err)
	}
	if _, err := e.mod.Unmute(ctx, testGuild, testMember); !IsCode(err, CodeMissingRoleAssignment) {
		t.Fatalf("error = %v, want MissingRoleAssignment", err)
	}

	// A rejected unmute must not disarm the expiry
	if e.sched.pendingCount() != 1 {
		t.Fatalf("pending timers after failed unmute = %d, want 1", e.sched.pendingCount())
	}

	e.clock.advance(time.Minute)
	e.sched.fireAll()

	got, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if got != nil {
		t.Errorf("tempmute never expired: %+v", got)
	}
	if len(*unmuted) != 1 {
		t.Errorf("unmuteMember events = %d, want 1", len(*unmuted))
	}
}

func TestTempMuteExpiry(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	unmuted := e.collect(EventUnmuteMember)

	mute, err := e.mod.TempMute(ctx, testActor(), testMember, "cool off", 5*time.Second)
	if err != nil {
		t.Fatalf("TempMute: %v", err)
	}
	if mute.DurationMs != 5_000 {
		t.Errorf("duration = %d, want 5000", mute.DurationMs)
	}
	if want := e.clock.NowMs() + 5_000; mute.ExpiresAt != want {
		t.Errorf("expiresAt = %d, want %d", mute.ExpiresAt, want)
	}
	if e.sched.pendingCount() != 1 {
		t.Fatalf("pending timers = %d, want 1", e.sched.pendingCount())
	}

	e.clock.advance(5 * time.Second)
	e.sched.fireAll()

	if e.platform.hasRole(testGuild, testMember, testRole) {
		t.Error("mute role still held after expiry")
	}
	if len(*unmuted) != 1 {
		t.Fatalf("unmuteMember events = %d, want 1", len(*unmuted))
	}

	got, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if got != nil {
		t.Errorf("record still present after expiry: %+v", got)
	}
}

func TestTempMuteManualUnmuteCancelsTimer(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	unmuted := e.collect(EventUnmuteMember)

	if _, err := e.mod.TempMute(ctx, testActor(), testMember, "", time.Minute); err != nil {
		t.Fatalf("TempMute: %v", err)
	}
	if _, err := e.mod.Unmute(ctx, testGuild, testMember); err != nil {
		t.Fatalf("Unmute: %v", err)
	}
	if e.sched.pendingCount() != 0 {
		t.Errorf("pending timers = %d, want 0", e.sched.pendingCount())
	}

	// Even if the timer fires anyway, the record is gone and no second
	// unmute happens
	e.clock.advance(time.Minute)
	e.sched.fireAll()

	if len(*unmuted) != 1 {
		t.Errorf("unmuteMember events = %d, want 1", len(*unmuted))
	}
}

func TestExpiryUnresolvableMemberSkips(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	unmuted := e.collect(EventUnmuteMember)

	if _, err := e.mod.TempMute(ctx, testActor(), testMember, "", time.Second); err != nil {
		t.Fatalf("TempMute: %v", err)
	}
	e.platform.removeMember(testGuild, testMember)

	e.clock.advance(time.Second)
	e.sched.fireAll()

	if len(*unmuted) != 0 {
		t.Error("unmuteMember emitted for unresolvable member")
	}
	got, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if got == nil {
		t.Error("record removed even though the member could not be resolved")
	}
}

func TestReconcileAll(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	e.platform.addMember(testGuild, "member-2")
	ctx := context.Background()

	if _, err := e.mod.TempMute(ctx, testActor(), testMember, "", time.Second); err != nil {
		t.Fatalf("TempMute overdue: %v", err)
	}
	if _, err := e.mod.TempMute(ctx, testActor(), "member-2", "", time.Hour); err != nil {
		t.Fatalf("TempMute pending: %v", err)
	}

	// Simulate a restart: timers are lost but records persist
	e.mod.Mutes.CancelAll()
	e.clock.advance(time.Minute)

	unmuted := e.collect(EventUnmuteMember)
	if err := e.mod.ReconcileAll(ctx); err != nil {
		t.Fatalf("ReconcileAll: %v", err)
	}

	if len(*unmuted) != 1 {
		t.Fatalf("unmuteMember events = %d, want 1", len(*unmuted))
	}
	if e.platform.hasRole(testGuild, testMember, testRole) {
		t.Error("overdue mute role still held")
	}
	if !e.platform.hasRole(testGuild, "member-2", testRole) {
		t.Error("pending mute role was revoked")
	}
	if e.sched.pendingCount() != 1 {
		t.Errorf("pending timers = %d, want 1", e.sched.pendingCount())
	}

	// Reconciliation is idempotent: a second sweep changes nothing
	if err := e.mod.ReconcileAll(ctx); err != nil {
		t.Fatalf("second ReconcileAll: %v", err)
	}
	if len(*unmuted) != 1 {
		t.Errorf("unmuteMember events after resweep = %d, want 1", len(*unmuted))
	}
	if e.sched.pendingCount() != 1 {
		t.Errorf("pending timers after resweep = %d, want 1", e.sched.pendingCount())
	}
}

func TestHandleRejoinRegrantsRole(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)
	ctx := context.Background()

	mute, err := e.mod.Mute(ctx, testActor(), testMember, "spamming")
	if err != nil {
		t.Fatalf("Mute: %v", err)
	}

	// Leaving drops the role assignment
	if err := e.platform.RevokeRole(ctx, testGuild, testMember, testRole); err != nil {
		t.Fatalf("RevokeRole: %v", err)
	}

	muted := e.collect(EventMuteMember)
	rejoined, err := e.mod.Mutes.HandleRejoin(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("HandleRejoin: %v", err)
	}
	if rejoined == nil || rejoined.Reason != RejoinReason {
		t.Fatalf("rejoin record = %+v, want reason %q", rejoined, RejoinReason)
	}
	if !e.platform.hasRole(testGuild, testMember, testRole) {
		t.Error("mute role not re-granted on rejoin")
	}
	if len(*muted) != 1 {
		t.Errorf("muteMember events = %d, want 1", len(*muted))
	}

	// Stored record keeps the original reason
	got, err := e.mod.Mutes.GetMute(ctx, testGuild, testMember)
	if err != nil {
		t.Fatalf("GetMute: %v", err)
	}
	if got.Reason != mute.Reason {
		t.Errorf("stored reason = %q, want %q", got.Reason, mute.Reason)
	}
}

func TestHandleRejoinNotMuted(t *testing.T) {
	e := newTestEngine(t)
	setupMuteRole(t, e)

	rejoined, err := e.mod.Mutes.HandleRejoin(context.Background(), testGuild, testMember)
	if err != nil {
		t.Fatalf("HandleRejoin: %v", err)
	}
	if rejoined != nil {
		t.Errorf("rejoin record = %+v, want nil", rejoined)
	}
}

func TestMuteRoleLookup(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	roleID, err := e.mod.Mutes.Role(ctx, testGuild)
	if err != nil {
		t.Fatalf("Role: %v", err)
	}
	if roleID != "" {
		t.Errorf("role = %q, want empty", roleID)
	}

	setupMuteRole(t, e)
	roleID, err = e.mod.Mutes.Role(ctx, testGuild)
	if err != nil {
		t.Fatalf("Role: %v", err)
	}
	if roleID != testRole {
		t.Errorf("role = %q, want %q", roleID, testRole)
	}

	// A deleted role reads back as unset
	e.platform.removeRole(testGuild, testRole)
	roleID, err = e.mod.Mutes.Role(ctx, testGuild)
	if err != nil {
		t.Fatalf("Role: %v", err)
	}
	if roleID != "" {
		t.Errorf("role = %q, want empty after deletion", roleID)
	}
}
