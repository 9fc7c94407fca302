// Package events provides event handlers for message events
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// RegisterMessageEvents registers all message-related event handlers
func RegisterMessageEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onMessageCreate(client))
	client.Session.AddHandler(onMessageDelete)
}

// onMessageCreate is called when a new message is created
func onMessageCreate(client *discord.ExtendedClient) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Ignorar mensajes de bots y DMs
		if m.Author.Bot || m.GuildID == "" {
			return
		}

		if client.Moderation != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			actor := moderation.ActorContext{
				GuildID:     m.GuildID,
				ModeratorID: s.State.User.ID,
				ChannelID:   m.ChannelID,
			}
			muted, err := client.Moderation.AntiSpam.Handle(ctx, actor, m.Author.ID)
			if err != nil && !moderation.IsCode(err, moderation.CodeNoMuteRole) && !moderation.IsCode(err, moderation.CodeAlreadyMuted) {
				logger.Error(fmt.Sprintf("Error evaluando Anti-Spam: %v", err), "Message")
			}
			if muted {
				notice := &discordgo.MessageEmbed{
					Title:       "🛑 Anti-Spam",
					Description: fmt.Sprintf("<@%s> ha sido silenciado una hora por hacer spam.", m.Author.ID),
					Color:       0xe74c3c,
				}
				if _, err := s.ChannelMessageSendEmbed(m.ChannelID, notice); err != nil {
					logger.Error(fmt.Sprintf("Error enviando aviso Anti-Spam: %v", err), "Message")
				}
				logger.Info(fmt.Sprintf("🛑 %s silenciado por spam en %s", m.Author.Username, m.GuildID), "Message")
				return
			}

			flagged, err := client.Moderation.Systems.AntiLink(ctx, m.GuildID, m.Author.ID, m.Content)
			if err != nil {
				logger.Error(fmt.Sprintf("Error evaluando Anti-Link: %v", err), "Message")
			}
			if flagged {
				if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
					logger.Error(fmt.Sprintf("Error eliminando mensaje con enlace: %v", err), "Message")
					return
				}

				notice := &discordgo.MessageEmbed{
					Title:       "🔗 Anti-Link",
					Description: fmt.Sprintf("<@%s>, los enlaces no están permitidos en este servidor.", m.Author.ID),
					Color:       0xe74c3c,
				}
				if _, err := s.ChannelMessageSendEmbed(m.ChannelID, notice); err != nil {
					logger.Error(fmt.Sprintf("Error enviando aviso Anti-Link: %v", err), "Message")
				}

				logger.Info(fmt.Sprintf("🔗 Mensaje con enlace eliminado de %s en %s",
					m.Author.Username, m.GuildID), "Message")
				return
			}
		}

		// Responder a menciones del bot
		for _, mention := range m.Mentions {
			if mention.ID == s.State.User.ID {
				embed := &discordgo.MessageEmbed{
					Title:       "👋 ¡Hola!",
					Description: "Usa comandos **slash (/)** para interactuar conmigo.\nEscribe `/utils help` para ver todos los comandos disponibles.",
					Color:       0x3498db,
					Fields: []*discordgo.MessageEmbedField{
						{
							Name:   "🔧 Moderación",
							Value:  "`/mod` - Comandos de moderación",
							Inline: true,
						},
						{
							Name:   "❓ Ayuda",
							Value:  "`/utils help` - Ver todos los comandos",
							Inline: true,
						},
					},
				}
				_, err := s.ChannelMessageSendEmbed(m.ChannelID, embed)
				if err != nil {
					logger.Error(fmt.Sprintf("Error enviando respuesta: %v", err), "Message")
				}
				break
			}
		}
	}
}

// onMessageDelete is called when a message is deleted
func onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	logger.Debug(fmt.Sprintf("🗑️ Mensaje eliminado: ID %s en canal %s",
		m.ID, m.ChannelID), "Message")
}
