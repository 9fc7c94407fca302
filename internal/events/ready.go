// Package events provides event handlers for the bot
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient) {
	client.Session.AddHandler(onReady(client))
	client.Session.AddHandler(onDebug)
}

// onReady is called when the bot successfully connects to Discord
func onReady(client *discord.ExtendedClient) func(s *discordgo.Session, r *discordgo.Ready) {
	return func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Success(fmt.Sprintf("✅ Bot conectado: %s#%s", r.User.Username, r.User.Discriminator), "Ready")
		logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

		// Establecer estado del bot
		err := s.UpdateGameStatus(0, "🛡️ Moderando con /mod")
		if err != nil {
			logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
		}

		// Reconciliar silencios temporales pendientes tras el reinicio
		if client.Moderation != nil {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()

				if err := client.Moderation.ReconcileAll(ctx); err != nil {
					logger.Error(fmt.Sprintf("Error reconciliando silencios: %v", err), "Ready")
					return
				}
				logger.Success("✅ Silencios temporales reconciliados", "Ready")
			}()
		}

		logger.Debug("Estado del bot establecido correctamente", "Ready")
	}
}

func onDebug(s *discordgo.Session, log string) {
	logger.Debug(log, "DiscordGO")
}
