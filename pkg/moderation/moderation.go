// Package moderation implements the guild moderation engine: mute and warn
// ledgers with per-guild persistence, automatic escalation, scheduled
// tempmute expiry, and restart reconciliation. It is platform-facing through
// the Platform interface and storage-facing through storage.Store, so both
// sides can be substituted in tests.
package moderation

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
)

// ActorContext identifies who performed a moderation action and where
type ActorContext struct {
	GuildID     string
	ModeratorID string
	ChannelID   string
}

func (a ActorContext) validate(op string) error {
	if a.GuildID == "" {
		return invalidArgument(op, "guildId")
	}
	if a.ModeratorID == "" {
		return invalidArgument(op, "moderatorId")
	}
	if a.ChannelID == "" {
		return invalidArgument(op, "channelId")
	}
	return nil
}

// Options configures a Moderation instance. Store and Platform are
// required; Clock and Scheduler default to the system implementations.
type Options struct {
	Store     storage.Store
	Platform  Platform
	Clock     Clock
	Scheduler Scheduler
}

// Moderation is the engine facade. Independent instances share nothing, not
// even event subscribers.
type Moderation struct {
	store storage.Store
	bus   *EventBus

	Mutes    *MuteManager
	Warns    *WarnManager
	Systems  *Systems
	AutoRole *AutoRole
	AntiSpam *AntiSpam
}

// New wires a moderation engine from its dependencies
func New(opts Options) (*Moderation, error) {
	const op = "moderation.New"
	if opts.Store == nil {
		return nil, invalidArgument(op, "store")
	}
	if opts.Platform == nil {
		return nil, invalidArgument(op, "platform")
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = SystemScheduler()
	}

	bus := NewEventBus()
	mutes := newMuteManager(opts.Store, opts.Platform, opts.Clock, opts.Scheduler, bus)
	warns := newWarnManager(opts.Store, opts.Platform, opts.Clock, bus, mutes)

	return &Moderation{
		store:    opts.Store,
		bus:      bus,
		Mutes:    mutes,
		Warns:    warns,
		Systems:  newSystems(opts.Store, opts.Platform),
		AutoRole: newAutoRole(opts.Store, opts.Platform),
		AntiSpam: newAntiSpam(opts.Store, opts.Clock, opts.Scheduler, mutes),
	}, nil
}

// On subscribes a handler to every future emission of event
func (m *Moderation) On(event Event, handler EventHandler) {
	m.bus.On(event, handler)
}

// Once subscribes a handler to the next emission of event only
func (m *Moderation) Once(event Event, handler EventHandler) {
	m.bus.Once(event, handler)
}

// Mute creates a permanent mute
func (m *Moderation) Mute(ctx context.Context, actor ActorContext, memberID, reason string) (*models.MuteRecord, error) {
	return m.Mutes.Create(ctx, models.MuteTypePermanent, actor, memberID, reason, 0)
}

// TempMute creates a mute that expires after duration
func (m *Moderation) TempMute(ctx context.Context, actor ActorContext, memberID, reason string, duration time.Duration) (*models.MuteRecord, error) {
	return m.Mutes.Create(ctx, models.MuteTypeTemp, actor, memberID, reason, duration)
}

// Unmute lifts a member's active mute
func (m *Moderation) Unmute(ctx context.Context, guildID, memberID string) (*models.MuteRecord, error) {
	return m.Mutes.Delete(ctx, guildID, memberID)
}

// Warn records a warn and applies any escalation it triggers
func (m *Moderation) Warn(ctx context.Context, actor ActorContext, memberID, reason string) (*models.WarnRecord, error) {
	return m.Warns.Create(ctx, actor, memberID, reason)
}

// Unwarn removes a member's most recent warn
func (m *Moderation) Unwarn(ctx context.Context, guildID, memberID string) (*models.WarnRecord, error) {
	return m.Warns.Delete(ctx, guildID, memberID)
}

// ReconcileAll restores scheduled expiries and settles overdue mutes for
// every guild in storage. Call it once the gateway is ready.
func (m *Moderation) ReconcileAll(ctx context.Context) error {
	return m.Mutes.ReconcileAll(ctx)
}

// HandleMemberJoin runs the member-join pipeline: anti-join first, then mute
// re-grant for returning muted members, then the auto role
func (m *Moderation) HandleMemberJoin(ctx context.Context, guildID, memberID string) error {
	kicked, err := m.Systems.AntiJoin(ctx, guildID, memberID)
	if err != nil {
		return err
	}
	if kicked {
		return nil
	}

	if _, err := m.Mutes.HandleRejoin(ctx, guildID, memberID); err != nil && !IsCode(err, CodeNoMuteRole) {
		return err
	}

	return m.AutoRole.Apply(ctx, guildID, memberID)
}

// Close cancels pending expiry and spam-window timers and releases the store
func (m *Moderation) Close() error {
	m.Mutes.CancelAll()
	m.AntiSpam.CancelAll()
	return m.store.Close()
}
