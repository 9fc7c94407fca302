package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
)

// guildStore is the store the status command probes; wired at startup
var guildStore storage.Store

// SetStore wires the persistence backend into the status command
func SetStore(store storage.Store) {
	guildStore = store
}

// createStatusCommand creates the /utils status subcommand
func createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		statusHandler,
	)
}

// statusHandler handles the /utils status command
func statusHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		storageStatus := "🔴 Sin conexión"
		if guildStore != nil {
			opCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := guildStore.GuildIDs(opCtx); err == nil {
				storageStatus = "🟢 Operativo"
			}
			cancel()
		}

		ctx.Reply(fmt.Sprintf(
			"📊 **Estado del Bot**\n"+
				"• Bot: 🟢 Online\n"+
				"• Almacenamiento: %s\n"+
				"• Servidores: %d",
			storageStatus,
			ctx.Client.GuildCount(),
		))
	}()
	return nil
}
