package models

// MuteType distinguishes permanent mutes from temporary ones
type MuteType string

const (
	// MuteTypePermanent is lifted only by an explicit unmute
	MuteTypePermanent MuteType = "mute"
	// MuteTypeTemp expires on its own after DurationMs
	MuteTypeTemp MuteType = "tempmute"
)

// Valid reports whether t is a known mute type
func (t MuteType) Valid() bool {
	return t == MuteTypePermanent || t == MuteTypeTemp
}

// MuteRecord representa un silencio activo dentro de un servidor.
// UID es la llave estable del registro; ID es solo el número de caso
// que se muestra en los logs de auditoría.
type MuteRecord struct {
	UID         string   `bson:"uid" json:"uid"`
	ID          int      `bson:"id" json:"id"`
	Type        MuteType `bson:"type" json:"type"`
	GuildID     string   `bson:"guildId" json:"guildId"`
	MemberID    string   `bson:"memberId" json:"memberId"`
	ModeratorID string   `bson:"moderatorId" json:"moderatorId"`
	ChannelID   string   `bson:"channelId" json:"channelId"`
	Reason      string   `bson:"reason" json:"reason"`

	// Present only for tempmutes, in milliseconds since epoch
	DurationMs int64 `bson:"time,omitempty" json:"time,omitempty"`
	ExpiresAt  int64 `bson:"unmutedAt,omitempty" json:"unmutedAt,omitempty"`
}

// Temporary reports whether the mute expires on its own
func (m *MuteRecord) Temporary() bool {
	return m.Type == MuteTypeTemp
}

// Expired reports whether a temporary mute is overdue at nowMs.
// Permanent mutes never expire.
func (m *MuteRecord) Expired(nowMs int64) bool {
	return m.Temporary() && nowMs >= m.ExpiresAt
}
