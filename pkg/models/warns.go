package models

// WarnRecord representa una advertencia individual.
// UID es la llave estable del registro; ID es el número de caso.
type WarnRecord struct {
	UID         string `bson:"uid" json:"uid"`
	ID          int    `bson:"id" json:"id"`
	GuildID     string `bson:"guildId" json:"guildId"`
	MemberID    string `bson:"memberId" json:"memberId"`
	ModeratorID string `bson:"moderatorId" json:"moderatorId"`
	ChannelID   string `bson:"channelId" json:"channelId"`
	Reason      string `bson:"reason" json:"reason"`
	Timestamp   int64  `bson:"timestamp" json:"timestamp"`
}
