// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (utils, mod, etc.)
package commands

import (
	"github.com/PancyStudios/PancyModGo/internal/commands/mod"
	"github.com/PancyStudios/PancyModGo/internal/commands/utils"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
// Add your command registration calls here
func RegisterAll(client *discord.ExtendedClient) {
	// Utility commands (/utils ping, /utils status, /utils stats, /utils help)
	utils.RegisterUtilsCommands(client)

	// Moderation commands (/mod mute, /mod tempmute, /mod warn, /mod systems, ...)
	mod.RegisterModCommands(client)

	// Add more categories here as needed:
	// RegisterFunCommands(client)
}
