package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
	"github.com/google/uuid"
)

// DefaultReason is recorded when a moderator omits the reason
const DefaultReason = "No reason provided."

// RejoinReason is recorded on the re-grant event when a muted member rejoins
const RejoinReason = "Member rejoined server."

var (
	errMuteGone     = errors.New("mute record no longer exists")
	errUnresolvable = errors.New("member or mute role no longer resolves")
)

// MuteManager owns the mute lifecycle: creation, expiry scheduling, manual
// unmute and startup reconciliation.
//
// Every mutation runs inside the store's per-guild Update cycle, so two
// concurrent creates for the same member cannot both pass the already-muted
// check — at most one active mute per member holds even under interleaving.
// Expiry timers are tracked per mute UID; a manual unmute cancels the timer
// while holding the guild lock, and a timer that fires anyway re-checks the
// record before acting, so each mute is unmuted exactly once.
type MuteManager struct {
	store    storage.Store
	platform Platform
	clock    Clock
	sched    Scheduler
	bus      *EventBus

	timersMu sync.Mutex
	timers   map[string]Timer
}

func newMuteManager(store storage.Store, platform Platform, clock Clock, sched Scheduler, bus *EventBus) *MuteManager {
	return &MuteManager{
		store:    store,
		platform: platform,
		clock:    clock,
		sched:    sched,
		bus:      bus,
		timers:   make(map[string]Timer),
	}
}

// SetRole stores the role granted to muted members
func (m *MuteManager) SetRole(ctx context.Context, guildID, roleID string) error {
	const op = "MuteManager#SetRole"
	if guildID == "" {
		return invalidArgument(op, "guildId")
	}
	if roleID == "" {
		return invalidArgument(op, "roleId")
	}

	_, err := m.store.Update(ctx, guildID, func(rec *models.GuildRecord) error {
		rec.MuteRoleID = roleID
		return nil
	})
	return err
}

// Role returns the guild's mute role id, or "" when it is unset or no
// longer resolves in the guild
func (m *MuteManager) Role(ctx context.Context, guildID string) (string, error) {
	const op = "MuteManager#Role"
	if guildID == "" {
		return "", invalidArgument(op, "guildId")
	}

	rec, err := m.store.Get(ctx, guildID)
	if err != nil {
		return "", err
	}
	if rec.MuteRoleID == "" {
		return "", nil
	}

	ok, err := m.platform.RoleExists(ctx, guildID, rec.MuteRoleID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return rec.MuteRoleID, nil
}

// GetMute returns the member's active mute, or nil if there is none
func (m *MuteManager) GetMute(ctx context.Context, guildID, memberID string) (*models.MuteRecord, error) {
	const op = "MuteManager#GetMute"
	if guildID == "" {
		return nil, invalidArgument(op, "guildId")
	}
	if memberID == "" {
		return nil, invalidArgument(op, "memberId")
	}

	rec, err := m.store.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if mute := rec.ActiveMute(memberID); mute != nil {
		copied := *mute
		return &copied, nil
	}
	return nil, nil
}

// Create mutes a member. For tempmutes the expiry is computed once from the
// injected clock and an expiry callback is scheduled after the record is
// persisted. The role grant happens before the record is persisted; if the
// grant fails nothing is stored.
func (m *MuteManager) Create(ctx context.Context, muteType models.MuteType, actor ActorContext, memberID, reason string, duration time.Duration) (*models.MuteRecord, error) {
	const op = "MuteManager#Create"
	if !muteType.Valid() {
		return nil, invalidArgument(op, "type")
	}
	if err := actor.validate(op); err != nil {
		return nil, err
	}
	if memberID == "" {
		return nil, invalidArgument(op, "memberId")
	}
	if muteType == models.MuteTypeTemp && duration <= 0 {
		return nil, invalidArgument(op, "duration")
	}
	if reason == "" {
		reason = DefaultReason
	}

	var created *models.MuteRecord
	_, err := m.store.Update(ctx, actor.GuildID, func(rec *models.GuildRecord) error {
		if rec.ActiveMute(memberID) != nil {
			return newError(CodeAlreadyMuted, op, "member %s already has a mute", memberID)
		}

		roleID := rec.MuteRoleID
		if roleID == "" {
			return newError(CodeNoMuteRole, op, "guild %s has no mute role configured", actor.GuildID)
		}
		ok, err := m.platform.RoleExists(ctx, actor.GuildID, roleID)
		if err != nil {
			return wrapError(CodeNoMuteRole, op, err, "resolving mute role %s", roleID)
		}
		if !ok {
			return newError(CodeNoMuteRole, op, "mute role %s no longer exists in guild %s", roleID, actor.GuildID)
		}

		mute := models.MuteRecord{
			UID:         uuid.NewString(),
			ID:          rec.NextCase(),
			Type:        muteType,
			GuildID:     actor.GuildID,
			MemberID:    memberID,
			ModeratorID: actor.ModeratorID,
			ChannelID:   actor.ChannelID,
			Reason:      reason,
		}
		if muteType == models.MuteTypeTemp {
			mute.DurationMs = duration.Milliseconds()
			mute.ExpiresAt = m.clock.NowMs() + mute.DurationMs
		}

		// Grant before persisting. A failed grant aborts the update, so no
		// record (and no case number) survives a grant failure.
		if err := m.platform.GrantRole(ctx, actor.GuildID, memberID, roleID); err != nil {
			return wrapError(CodeRoleGrantFailed, op, err, "granting mute role to member %s", memberID)
		}

		rec.Mutes = append(rec.Mutes, mute)
		created = &mute
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.bus.Emit(EventMuteMember, created)

	if created.Temporary() {
		m.scheduleExpiry(*created)
	}
	return created, nil
}

// Delete lifts a member's mute. The expiry timer (if any) is cancelled while
// the guild lock is held, only after every precondition has passed: a Delete
// that fails leaves a tempmute armed. A revoke failure is logged but does not
// block the unmute: the record is still removed and the event still fires.
func (m *MuteManager) Delete(ctx context.Context, guildID, memberID string) (*models.MuteRecord, error) {
	const op = "MuteManager#Delete"
	if guildID == "" {
		return nil, invalidArgument(op, "guildId")
	}
	if memberID == "" {
		return nil, invalidArgument(op, "memberId")
	}

	var removed *models.MuteRecord
	_, err := m.store.Update(ctx, guildID, func(rec *models.GuildRecord) error {
		mute := rec.ActiveMute(memberID)
		if mute == nil {
			return newError(CodeNotMuted, op, "member %s has no mute", memberID)
		}

		roleID := rec.MuteRoleID
		if roleID == "" {
			return newError(CodeNoMuteRole, op, "guild %s has no mute role configured", guildID)
		}

		has, err := m.platform.MemberHasRole(ctx, guildID, memberID, roleID)
		if err != nil {
			return wrapError(CodeMissingRoleAssignment, op, err, "checking mute role on member %s", memberID)
		}
		if !has {
			return newError(CodeMissingRoleAssignment, op, "member %s does not hold the mute role", memberID)
		}

		m.cancelTimer(mute.UID)

		if err := m.platform.RevokeRole(ctx, guildID, memberID, roleID); err != nil {
			logger.Error(fmt.Sprintf("No se pudo quitar el rol de mute a %s en %s: %v", memberID, guildID, err), "MuteManager")
		}

		copied := *mute
		rec.RemoveMute(mute.UID)
		removed = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.bus.Emit(EventUnmuteMember, removed)
	return removed, nil
}

// HandleRejoin re-grants the mute role when a member with an active mute
// rejoins the guild. The stored record is untouched; the emitted event is a
// copy tagged with the rejoin reason. Returns nil when the member is not muted.
func (m *MuteManager) HandleRejoin(ctx context.Context, guildID, memberID string) (*models.MuteRecord, error) {
	const op = "MuteManager#HandleRejoin"

	mute, err := m.GetMute(ctx, guildID, memberID)
	if err != nil || mute == nil {
		return nil, err
	}

	roleID, err := m.Role(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if roleID == "" {
		return nil, newError(CodeNoMuteRole, op, "guild %s has no resolvable mute role", guildID)
	}

	if err := m.platform.GrantRole(ctx, guildID, memberID, roleID); err != nil {
		return nil, wrapError(CodeRoleGrantFailed, op, err, "re-granting mute role to member %s", memberID)
	}

	rejoined := *mute
	rejoined.Reason = RejoinReason
	m.bus.Emit(EventMuteMember, &rejoined)
	return &rejoined, nil
}

// ReconcileAll sweeps every known guild: overdue tempmutes are revoked and
// removed immediately, pending ones get their expiry re-scheduled for the
// remaining delay. Timers are tracked per record UID, so running it twice
// schedules nothing new and re-expires nothing.
func (m *MuteManager) ReconcileAll(ctx context.Context) error {
	ids, err := m.store.GuildIDs(ctx)
	if err != nil {
		return err
	}

	for _, guildID := range ids {
		if err := m.reconcileGuild(ctx, guildID); err != nil {
			logger.Error(fmt.Sprintf("Error reconciliando mutes del servidor %s: %v", guildID, err), "MuteManager")
		}
	}
	return nil
}

func (m *MuteManager) reconcileGuild(ctx context.Context, guildID string) error {
	var expired []models.MuteRecord
	var pending []models.MuteRecord

	_, err := m.store.Update(ctx, guildID, func(rec *models.GuildRecord) error {
		expired = expired[:0]
		pending = pending[:0]

		now := m.clock.NowMs()
		kept := rec.Mutes[:0]
		for _, mute := range rec.Mutes {
			if !mute.Expired(now) {
				if mute.Temporary() {
					pending = append(pending, mute)
				}
				kept = append(kept, mute)
				continue
			}

			if !m.resolvable(ctx, rec, mute.MemberID) {
				logger.Warn(fmt.Sprintf("Mute vencido de %s en %s no se puede resolver, se omite", mute.MemberID, guildID), "MuteManager")
				kept = append(kept, mute)
				continue
			}

			if err := m.platform.RevokeRole(ctx, guildID, mute.MemberID, rec.MuteRoleID); err != nil {
				logger.Error(fmt.Sprintf("No se pudo quitar el rol de mute a %s en %s: %v", mute.MemberID, guildID, err), "MuteManager")
			}
			expired = append(expired, mute)
		}
		rec.Mutes = kept
		return nil
	})
	if err != nil {
		return err
	}

	for i := range expired {
		m.bus.Emit(EventUnmuteMember, &expired[i])
	}
	for _, mute := range pending {
		m.scheduleExpiry(mute)
	}
	return nil
}

// resolvable reports whether the guild's mute role and the member still
// resolve on the platform. Lookup failures count as unresolvable.
func (m *MuteManager) resolvable(ctx context.Context, rec *models.GuildRecord, memberID string) bool {
	if rec.MuteRoleID == "" {
		return false
	}
	if ok, err := m.platform.RoleExists(ctx, rec.GuildID, rec.MuteRoleID); err != nil || !ok {
		return false
	}
	if ok, err := m.platform.MemberExists(ctx, rec.GuildID, memberID); err != nil || !ok {
		return false
	}
	return true
}

// scheduleExpiry arms the expiry callback for a tempmute. Scheduling is
// keyed by record UID so re-arming an already-armed mute is a no-op.
func (m *MuteManager) scheduleExpiry(mute models.MuteRecord) {
	m.timersMu.Lock()
	defer m.timersMu.Unlock()

	if _, exists := m.timers[mute.UID]; exists {
		return
	}

	delay := time.Duration(mute.ExpiresAt-m.clock.NowMs()) * time.Millisecond
	if delay < 0 {
		delay = 0
	}

	uid := mute.UID
	guildID := mute.GuildID
	m.timers[uid] = m.sched.Schedule(delay, func() {
		m.expire(uid, guildID)
	})
}

func (m *MuteManager) cancelTimer(uid string) {
	m.timersMu.Lock()
	defer m.timersMu.Unlock()

	if t, ok := m.timers[uid]; ok {
		t.Stop()
		delete(m.timers, uid)
	}
}

// CancelAll stops every pending expiry timer, for shutdown.
// Records stay in storage; reconciliation re-arms them on the next start.
func (m *MuteManager) CancelAll() {
	m.timersMu.Lock()
	defer m.timersMu.Unlock()

	for uid, t := range m.timers {
		t.Stop()
		delete(m.timers, uid)
	}
}

// expire is the scheduled callback for a tempmute. Guild record and mute
// role are re-resolved at fire time; if the record is already gone (a manual
// unmute won the race) nothing happens.
func (m *MuteManager) expire(uid, guildID string) {
	defer m.cancelTimer(uid)

	ctx := context.Background()
	var removed *models.MuteRecord

	_, err := m.store.Update(ctx, guildID, func(rec *models.GuildRecord) error {
		var mute *models.MuteRecord
		for i := range rec.Mutes {
			if rec.Mutes[i].UID == uid {
				mute = &rec.Mutes[i]
				break
			}
		}
		if mute == nil {
			return errMuteGone
		}

		if !m.resolvable(ctx, rec, mute.MemberID) {
			return errUnresolvable
		}

		if err := m.platform.RevokeRole(ctx, guildID, mute.MemberID, rec.MuteRoleID); err != nil {
			logger.Error(fmt.Sprintf("No se pudo quitar el rol de mute a %s en %s: %v", mute.MemberID, guildID, err), "MuteManager")
		}

		copied := *mute
		rec.RemoveMute(uid)
		removed = &copied
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errMuteGone):
			// Manual unmute got there first
		case errors.Is(err, errUnresolvable):
			logger.Warn(fmt.Sprintf("Mute %s en %s no se puede resolver al expirar, se omite", uid, guildID), "MuteManager")
		default:
			logger.Error(fmt.Sprintf("Error al expirar mute %s en %s: %v", uid, guildID, err), "MuteManager")
		}
		return
	}

	m.bus.Emit(EventUnmuteMember, removed)
}
