// Package events provides a registry for organizing bot events.
// Events are organized by category (guild, member, message, shard, etc.)
package events

import (
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
)

// RegisterAll registers all events with the Discord client
// Add your event registration calls here
func RegisterAll(client *discord.ExtendedClient) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready event (bot startup + reconciliation)
	RegisterReadyEvent(client)

	// Guild events (server join/leave)
	RegisterGuildEvents(client)

	// Member events (anti-join, rejoin restore, auto-role)
	RegisterMemberEvents(client)

	// Message events (anti-link)
	RegisterMessageEvents(client)

	// Shard events (disconnect/resume)
	RegisterShardEvents(client)

	// Add more categories here as needed:
	// RegisterInteractionEvents(client)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
