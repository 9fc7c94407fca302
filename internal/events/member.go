// Package events provides event handlers for member events
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMemberEvents registers all member-related event handlers
func RegisterMemberEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onGuildMemberAdd(client))
	client.Session.AddHandler(onGuildMemberRemove)
	client.Session.AddHandler(onGuildMemberUpdate)
}

// onGuildMemberAdd is called when a new member joins the server
func onGuildMemberAdd(client *discord.ExtendedClient) func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		logger.Info(fmt.Sprintf("👋 Nuevo miembro: %s#%s en servidor %s",
			m.User.Username, m.User.Discriminator, m.GuildID), "Member")

		if client.Moderation == nil || m.User.Bot {
			return
		}

		// Anti-Join, restauración de silencios y auto-role en un solo paso
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := client.Moderation.HandleMemberJoin(ctx, m.GuildID, m.User.ID); err != nil {
			logger.Error(fmt.Sprintf("Error procesando entrada de %s en %s: %v",
				m.User.ID, m.GuildID, err), "Member")
		}
	}
}

// onGuildMemberRemove is called when a member leaves the server
func onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	logger.Info(fmt.Sprintf("👋 Adiós: %s#%s salió del servidor %s",
		m.User.Username, m.User.Discriminator, m.GuildID), "Member")
}

// onGuildMemberUpdate is called when a member is updated (roles, nickname, etc.)
func onGuildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	// Solo loguear si hay cambios significativos
	if m.BeforeUpdate != nil {
		// Detectar cambio de nickname
		oldNick := m.BeforeUpdate.Nick
		newNick := m.Nick

		if oldNick != newNick {
			logger.Debug(fmt.Sprintf("✏️ %s cambió nickname: '%s' → '%s'",
				m.User.Username, oldNick, newNick), "Member")
		}

		// Detectar cambio de roles
		if len(m.BeforeUpdate.Roles) != len(m.Roles) {
			logger.Debug(fmt.Sprintf("🎭 Roles actualizados para %s", m.User.Username), "Member")
		}
	}
}
