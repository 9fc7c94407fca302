package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
	"github.com/google/uuid"
)

// Escalation thresholds. They trigger on the exact warn count, so a member
// who keeps a warn count above a threshold does not re-trigger it on every
// later warn.
const (
	autoMuteThreshold = 3
	autoKickThreshold = 6

	autoMuteDuration = time.Hour
	autoMuteReason   = "User reached 3 warns | AutoMute."
	autoKickReason   = "User reached 6 warns | AutoKick."
)

// WarnManager owns the warn ledger and its automatic escalation.
type WarnManager struct {
	store    storage.Store
	platform Platform
	clock    Clock
	bus      *EventBus
	mutes    *MuteManager
}

func newWarnManager(store storage.Store, platform Platform, clock Clock, bus *EventBus, mutes *MuteManager) *WarnManager {
	return &WarnManager{
		store:    store,
		platform: platform,
		clock:    clock,
		bus:      bus,
		mutes:    mutes,
	}
}

// Create records a warn for a member and applies the escalation for the
// member's resulting warn count. The count is always the number of records
// held by that member, never the guild-wide total.
//
// At exactly 3 warns a one-hour tempmute is issued on top of the warn. At
// exactly 6 the member is kicked and their warn records are wiped in the
// same update, so the next warn starts a fresh cycle; the wipe happens
// whether or not the kick itself succeeds.
func (w *WarnManager) Create(ctx context.Context, actor ActorContext, memberID, reason string) (*models.WarnRecord, error) {
	const op = "WarnManager#Create"
	if err := actor.validate(op); err != nil {
		return nil, err
	}
	if memberID == "" {
		return nil, invalidArgument(op, "memberId")
	}
	if reason == "" {
		reason = DefaultReason
	}

	var created *models.WarnRecord
	var count int
	_, err := w.store.Update(ctx, actor.GuildID, func(rec *models.GuildRecord) error {
		warn := models.WarnRecord{
			UID:         uuid.NewString(),
			ID:          rec.NextCase(),
			GuildID:     actor.GuildID,
			MemberID:    memberID,
			ModeratorID: actor.ModeratorID,
			ChannelID:   actor.ChannelID,
			Reason:      reason,
			Timestamp:   w.clock.NowMs(),
		}
		rec.Warns = append(rec.Warns, warn)
		count = rec.WarnCount(memberID)
		if count == autoKickThreshold {
			rec.ClearMemberWarns(memberID)
		}
		created = &warn
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch count {
	case autoKickThreshold:
		if err := w.platform.Kick(ctx, actor.GuildID, memberID, autoKickReason); err != nil {
			logger.Error(fmt.Sprintf("AutoKick de %s en %s falló: %v", memberID, actor.GuildID, err), "WarnManager")
		}
		w.bus.Emit(EventWarnKick, created)
	case autoMuteThreshold:
		if _, err := w.mutes.Create(ctx, models.MuteTypeTemp, actor, memberID, autoMuteReason, autoMuteDuration); err != nil {
			logger.Error(fmt.Sprintf("AutoMute de %s en %s falló: %v", memberID, actor.GuildID, err), "WarnManager")
		}
		w.bus.Emit(EventWarnAdd, created)
	default:
		w.bus.Emit(EventWarnAdd, created)
	}
	return created, nil
}

// Delete removes the member's most recent warn
func (w *WarnManager) Delete(ctx context.Context, guildID, memberID string) (*models.WarnRecord, error) {
	const op = "WarnManager#Delete"
	if guildID == "" {
		return nil, invalidArgument(op, "guildId")
	}
	if memberID == "" {
		return nil, invalidArgument(op, "memberId")
	}

	var removed *models.WarnRecord
	_, err := w.store.Update(ctx, guildID, func(rec *models.GuildRecord) error {
		last := rec.LastWarn(memberID)
		if last == nil {
			return newError(CodeNoWarns, op, "member %s has no warns", memberID)
		}

		copied := *last
		kept := rec.Warns[:0]
		for _, warn := range rec.Warns {
			if warn.UID != copied.UID {
				kept = append(kept, warn)
			}
		}
		rec.Warns = kept
		removed = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.bus.Emit(EventWarnRemove, removed)
	return removed, nil
}

// All returns the member's warn records in insertion order
func (w *WarnManager) All(ctx context.Context, guildID, memberID string) ([]models.WarnRecord, error) {
	const op = "WarnManager#All"
	if guildID == "" {
		return nil, invalidArgument(op, "guildId")
	}
	if memberID == "" {
		return nil, invalidArgument(op, "memberId")
	}

	rec, err := w.store.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return rec.MemberWarns(memberID), nil
}

// Count returns how many warns the member currently holds
func (w *WarnManager) Count(ctx context.Context, guildID, memberID string) (int, error) {
	const op = "WarnManager#Count"
	if guildID == "" {
		return 0, invalidArgument(op, "guildId")
	}
	if memberID == "" {
		return 0, invalidArgument(op, "memberId")
	}

	rec, err := w.store.Get(ctx, guildID)
	if err != nil {
		return 0, err
	}
	return rec.WarnCount(memberID), nil
}
