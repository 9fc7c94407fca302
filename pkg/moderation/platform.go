package moderation

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Platform is the capability surface the ledgers need from the chat
// platform. The production implementation wraps a discordgo session; tests
// substitute a double.
type Platform interface {
	GrantRole(ctx context.Context, guildID, memberID, roleID string) error
	RevokeRole(ctx context.Context, guildID, memberID, roleID string) error
	Kick(ctx context.Context, guildID, memberID, reason string) error

	// RoleExists reports whether the role still resolves in the guild
	RoleExists(ctx context.Context, guildID, roleID string) (bool, error)
	// MemberExists reports whether the member still resolves in the guild
	MemberExists(ctx context.Context, guildID, memberID string) (bool, error)
	// MemberHasRole reports whether the member currently holds the role
	MemberHasRole(ctx context.Context, guildID, memberID, roleID string) (bool, error)
}

// SessionPlatform adapts a discordgo session to the Platform contract
type SessionPlatform struct {
	session *discordgo.Session
}

// NewSessionPlatform wraps a connected discordgo session
func NewSessionPlatform(session *discordgo.Session) *SessionPlatform {
	return &SessionPlatform{session: session}
}

func (p *SessionPlatform) GrantRole(ctx context.Context, guildID, memberID, roleID string) error {
	return p.session.GuildMemberRoleAdd(guildID, memberID, roleID, discordgo.WithContext(ctx))
}

func (p *SessionPlatform) RevokeRole(ctx context.Context, guildID, memberID, roleID string) error {
	return p.session.GuildMemberRoleRemove(guildID, memberID, roleID, discordgo.WithContext(ctx))
}

func (p *SessionPlatform) Kick(ctx context.Context, guildID, memberID, reason string) error {
	return p.session.GuildMemberDeleteWithReason(guildID, memberID, reason, discordgo.WithContext(ctx))
}

func (p *SessionPlatform) RoleExists(ctx context.Context, guildID, roleID string) (bool, error) {
	// The state cache is authoritative for roles while the gateway is up
	role, err := p.session.State.Role(guildID, roleID)
	if err == nil && role != nil {
		return true, nil
	}

	roles, err := p.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.ID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (p *SessionPlatform) MemberExists(ctx context.Context, guildID, memberID string) (bool, error) {
	member, err := p.member(ctx, guildID, memberID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

func (p *SessionPlatform) MemberHasRole(ctx context.Context, guildID, memberID, roleID string) (bool, error) {
	member, err := p.member(ctx, guildID, memberID)
	if err != nil || member == nil {
		return false, err
	}
	for _, id := range member.Roles {
		if id == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (p *SessionPlatform) member(ctx context.Context, guildID, memberID string) (*discordgo.Member, error) {
	if member, err := p.session.State.Member(guildID, memberID); err == nil && member != nil {
		return member, nil
	}

	member, err := p.session.GuildMember(guildID, memberID, discordgo.WithContext(ctx))
	if err != nil {
		if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Response != nil && restErr.Response.StatusCode == 404 {
			return nil, nil
		}
		return nil, err
	}
	return member, nil
}
