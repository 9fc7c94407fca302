package moderation

import (
	"context"

	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
)

// AutoRole manages the role granted to every member that joins the guild.
type AutoRole struct {
	store    storage.Store
	platform Platform
}

func newAutoRole(store storage.Store, platform Platform) *AutoRole {
	return &AutoRole{store: store, platform: platform}
}

// Get returns the guild's auto role id, or "" when unset or no longer
// resolvable in the guild
func (a *AutoRole) Get(ctx context.Context, guildID string) (string, error) {
	const op = "AutoRole#Get"
	if guildID == "" {
		return "", invalidArgument(op, "guildId")
	}

	rec, err := a.store.Get(ctx, guildID)
	if err != nil {
		return "", err
	}
	if rec.AutoRoleID == "" {
		return "", nil
	}

	ok, err := a.platform.RoleExists(ctx, guildID, rec.AutoRoleID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return rec.AutoRoleID, nil
}

// Set stores the guild's auto role
func (a *AutoRole) Set(ctx context.Context, guildID, roleID string) error {
	const op = "AutoRole#Set"
	if guildID == "" {
		return invalidArgument(op, "guildId")
	}
	if roleID == "" {
		return invalidArgument(op, "roleId")
	}

	_, err := a.store.Update(ctx, guildID, func(rec *models.GuildRecord) error {
		rec.AutoRoleID = roleID
		return nil
	})
	return err
}

// Clear removes the guild's auto role configuration
func (a *AutoRole) Clear(ctx context.Context, guildID string) error {
	const op = "AutoRole#Clear"
	if guildID == "" {
		return invalidArgument(op, "guildId")
	}

	_, err := a.store.Update(ctx, guildID, func(rec *models.GuildRecord) error {
		rec.AutoRoleID = ""
		return nil
	})
	return err
}

// Apply grants the configured auto role to a member. It is a no-op when the
// system is off or the role is unset or unresolvable.
func (a *AutoRole) Apply(ctx context.Context, guildID, memberID string) error {
	const op = "AutoRole#Apply"
	if guildID == "" {
		return invalidArgument(op, "guildId")
	}
	if memberID == "" {
		return invalidArgument(op, "memberId")
	}

	rec, err := a.store.Get(ctx, guildID)
	if err != nil {
		return err
	}
	if !rec.Systems.AutoRole {
		return nil
	}

	roleID, err := a.Get(ctx, guildID)
	if err != nil || roleID == "" {
		return err
	}

	if err := a.platform.GrantRole(ctx, guildID, memberID, roleID); err != nil {
		return wrapError(CodeRoleGrantFailed, op, err, "granting auto role to member %s", memberID)
	}
	return nil
}
