package models

// ImmunityUser marca a un miembro como exento de los sistemas automáticos
type ImmunityUser struct {
	Status   bool   `bson:"status" json:"status"`
	MemberID string `bson:"memberId" json:"memberId"`
}

// SystemsConfig guarda los sistemas automáticos activados por servidor
type SystemsConfig struct {
	AutoRole bool `bson:"autoRole" json:"autoRole"`
	AntiJoin bool `bson:"antiJoin" json:"antiJoin"`
	AntiLink bool `bson:"antiLink" json:"antiLink"`
	AntiSpam bool `bson:"antiSpam" json:"antiSpam"`
}

// GuildRecord representa el documento completo de moderación de un servidor:
// guildId, muteRole, autoRole, cases, mutes[], warns[], immunityUsers[]
type GuildRecord struct {
	GuildID       string         `bson:"guildId" json:"guildId"`
	MuteRoleID    string         `bson:"muteRole,omitempty" json:"muteRole,omitempty"`
	AutoRoleID    string         `bson:"autoRole,omitempty" json:"autoRole,omitempty"`
	Cases         int            `bson:"cases" json:"cases"`
	Mutes         []MuteRecord   `bson:"mutes" json:"mutes"`
	Warns         []WarnRecord   `bson:"warns" json:"warns"`
	ImmunityUsers []ImmunityUser `bson:"immunityUsers" json:"immunityUsers"`
	Systems       SystemsConfig  `bson:"systems" json:"systems"`
}

// NewGuildRecord returns the default record created on first reference to a guild
func NewGuildRecord(guildID string) *GuildRecord {
	return &GuildRecord{
		GuildID:       guildID,
		Mutes:         make([]MuteRecord, 0),
		Warns:         make([]WarnRecord, 0),
		ImmunityUsers: make([]ImmunityUser, 0),
	}
}

// NextCase increments and returns the guild's case counter.
// Case numbers are display-only and are never reused.
func (g *GuildRecord) NextCase() int {
	g.Cases++
	return g.Cases
}

// ActiveMute returns the active mute for a member, or nil if there is none
func (g *GuildRecord) ActiveMute(memberID string) *MuteRecord {
	for i := range g.Mutes {
		if g.Mutes[i].MemberID == memberID {
			return &g.Mutes[i]
		}
	}
	return nil
}

// RemoveMute removes the mute identified by uid from the active list.
// Returns false if no mute with that uid exists.
func (g *GuildRecord) RemoveMute(uid string) bool {
	for i := range g.Mutes {
		if g.Mutes[i].UID == uid {
			g.Mutes = append(g.Mutes[:i], g.Mutes[i+1:]...)
			return true
		}
	}
	return false
}

// WarnCount counts the warns that belong to a member.
// The warn list holds every member's warns, so the count is computed
// per member and never taken from len(Warns).
func (g *GuildRecord) WarnCount(memberID string) int {
	count := 0
	for i := range g.Warns {
		if g.Warns[i].MemberID == memberID {
			count++
		}
	}
	return count
}

// LastWarn returns the most recent warn for a member, or nil
func (g *GuildRecord) LastWarn(memberID string) *WarnRecord {
	for i := len(g.Warns) - 1; i >= 0; i-- {
		if g.Warns[i].MemberID == memberID {
			return &g.Warns[i]
		}
	}
	return nil
}

// MemberWarns returns every warn for a member in creation order
func (g *GuildRecord) MemberWarns(memberID string) []WarnRecord {
	warns := make([]WarnRecord, 0)
	for i := range g.Warns {
		if g.Warns[i].MemberID == memberID {
			warns = append(warns, g.Warns[i])
		}
	}
	return warns
}

// ClearMemberWarns removes every warn for a member and reports how many were removed
func (g *GuildRecord) ClearMemberWarns(memberID string) int {
	kept := g.Warns[:0]
	removed := 0
	for i := range g.Warns {
		if g.Warns[i].MemberID == memberID {
			removed++
			continue
		}
		kept = append(kept, g.Warns[i])
	}
	g.Warns = kept
	return removed
}

// IsImmune reports whether a member is exempt from the automated systems
func (g *GuildRecord) IsImmune(memberID string) bool {
	for i := range g.ImmunityUsers {
		if g.ImmunityUsers[i].MemberID == memberID {
			return g.ImmunityUsers[i].Status
		}
	}
	return false
}

// SetImmunity sets or updates the immunity flag for a member
func (g *GuildRecord) SetImmunity(memberID string, status bool) {
	for i := range g.ImmunityUsers {
		if g.ImmunityUsers[i].MemberID == memberID {
			g.ImmunityUsers[i].Status = status
			return
		}
	}
	g.ImmunityUsers = append(g.ImmunityUsers, ImmunityUser{
		Status:   status,
		MemberID: memberID,
	})
}
