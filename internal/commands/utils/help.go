package utils

import (
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
)

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		helpHandler,
	)
}

// helpHandler handles the /utils help command
func helpHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		ctx.Reply(
			"📖 **Ayuda de PancyMod Go**\n\n" +
				"**Comandos disponibles:**\n" +
				"• `/utils ping` - Comprueba la latencia\n" +
				"• `/utils status` - Estado del bot\n" +
				"• `/utils stats` - Estadísticas del bot\n" +
				"• `/mod ban <usuario> [razón]` - Banea a un usuario\n" +
				"• `/mod kick <usuario> [razón]` - Expulsa a un usuario\n" +
				"• `/mod mute <usuario> [razón]` - Silencia a un usuario\n" +
				"• `/mod tempmute <usuario> <duración> [razón]` - Silencio temporal\n" +
				"• `/mod unmute <usuario>` - Quita el silencio\n" +
				"• `/mod warn <usuario> [razón]` - Advierte a un usuario\n" +
				"• `/mod unwarn <usuario>` - Quita la última advertencia\n" +
				"• `/mod warns [usuario]` - Lista las advertencias\n" +
				"• `/mod muterole [rol]` - Configura el rol de silencio\n" +
				"• `/mod immunity <usuario> <estado>` - Exime de los sistemas\n" +
				"• `/mod systems` - Configura los sistemas automáticos",
		)
	}()
	return nil
}
