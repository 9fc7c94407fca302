package moderation

import (
	"context"
	"strings"

	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
)

// restrictedLinks are the substrings the anti-link system flags in messages
var restrictedLinks = []string{
	"https://",
	"http://",
	"discord.gg",
	"discord.com",
	".xyz",
	".online",
	".com",
	".ru",
	".space",
}

// Systems implements the per-guild automated systems: anti-join, anti-link
// and the immunity list that exempts members from them.
type Systems struct {
	store    storage.Store
	platform Platform
}

func newSystems(store storage.Store, platform Platform) *Systems {
	return &Systems{store: store, platform: platform}
}

// Enabled returns the guild's system toggles
func (s *Systems) Enabled(ctx context.Context, guildID string) (models.SystemsConfig, error) {
	const op = "Systems#Enabled"
	if guildID == "" {
		return models.SystemsConfig{}, invalidArgument(op, "guildId")
	}

	rec, err := s.store.Get(ctx, guildID)
	if err != nil {
		return models.SystemsConfig{}, err
	}
	return rec.Systems, nil
}

// Configure replaces the guild's system toggles
func (s *Systems) Configure(ctx context.Context, guildID string, cfg models.SystemsConfig) error {
	const op = "Systems#Configure"
	if guildID == "" {
		return invalidArgument(op, "guildId")
	}

	_, err := s.store.Update(ctx, guildID, func(rec *models.GuildRecord) error {
		rec.Systems = cfg
		return nil
	})
	return err
}

// SetImmunity marks or unmarks a member as exempt from the automated systems
func (s *Systems) SetImmunity(ctx context.Context, guildID, memberID string, status bool) error {
	const op = "Systems#SetImmunity"
	if guildID == "" {
		return invalidArgument(op, "guildId")
	}
	if memberID == "" {
		return invalidArgument(op, "memberId")
	}

	_, err := s.store.Update(ctx, guildID, func(rec *models.GuildRecord) error {
		rec.SetImmunity(memberID, status)
		return nil
	})
	return err
}

// IsImmune reports whether a member is exempt from the automated systems
func (s *Systems) IsImmune(ctx context.Context, guildID, memberID string) (bool, error) {
	const op = "Systems#IsImmune"
	if guildID == "" {
		return false, invalidArgument(op, "guildId")
	}
	if memberID == "" {
		return false, invalidArgument(op, "memberId")
	}

	rec, err := s.store.Get(ctx, guildID)
	if err != nil {
		return false, err
	}
	return rec.IsImmune(memberID), nil
}

// AntiJoin kicks a newly joined member when the guild has the system on.
// Returns true when the member was kicked.
func (s *Systems) AntiJoin(ctx context.Context, guildID, memberID string) (bool, error) {
	const op = "Systems#AntiJoin"
	if guildID == "" {
		return false, invalidArgument(op, "guildId")
	}
	if memberID == "" {
		return false, invalidArgument(op, "memberId")
	}

	rec, err := s.store.Get(ctx, guildID)
	if err != nil {
		return false, err
	}
	if !rec.Systems.AntiJoin || rec.IsImmune(memberID) {
		return false, nil
	}

	if err := s.platform.Kick(ctx, guildID, memberID, "Anti-Join System."); err != nil {
		return false, wrapError(CodeKickFailed, op, err, "kicking member %s", memberID)
	}
	return true, nil
}

// AntiLink reports whether a message should be removed for containing a
// restricted link. Immune members and guilds with the system off always
// pass. The caller owns the actual message deletion.
func (s *Systems) AntiLink(ctx context.Context, guildID, memberID, content string) (bool, error) {
	const op = "Systems#AntiLink"
	if guildID == "" {
		return false, invalidArgument(op, "guildId")
	}
	if memberID == "" {
		return false, invalidArgument(op, "memberId")
	}

	rec, err := s.store.Get(ctx, guildID)
	if err != nil {
		return false, err
	}
	if !rec.Systems.AntiLink || rec.IsImmune(memberID) {
		return false, nil
	}

	for _, link := range restrictedLinks {
		if strings.Contains(content, link) {
			return true, nil
		}
	}
	return false, nil
}
