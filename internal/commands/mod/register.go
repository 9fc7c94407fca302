// Package mod provides moderation commands organized as subcommands under /mod
// Each command is in its own file for better organization
package mod

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient) {
	// Create individual subcommands (each can be in its own file)
	banCmd := createBanCommand()
	kickCmd := createKickCommand()
	muteCmd := createMuteCommand()
	tempMuteCmd := createTempMuteCommand()
	unmuteCmd := createUnmuteCommand()
	warnCmd := createWarnCommand()
	unwarnCmd := createUnwarnCommand()
	warningsCmd := createWarningsCommand()
	muteRoleCmd := createMuteRoleCommand()
	immunityCmd := createImmunityCommand()
	systemsCmd := createSystemsCommand()

	// Build the /mod command group with all subcommands
	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		banCmd,
		kickCmd,
		muteCmd,
		tempMuteCmd,
		unmuteCmd,
		warnCmd,
		unwarnCmd,
		warningsCmd,
		muteRoleCmd,
		immunityCmd,
		systemsCmd,
	)

	// Register the command group
	client.CommandHandler.AddGlobalCommand(modGroup)
}

// commandContext bounds every moderation call a handler makes
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// friendlyError maps an engine failure to a user-facing message
func friendlyError(err error) string {
	switch moderation.CodeOf(err) {
	case moderation.CodeAlreadyMuted:
		return "❌ Ese usuario ya está silenciado."
	case moderation.CodeNotMuted:
		return "❌ Ese usuario no está silenciado."
	case moderation.CodeNoWarns:
		return "❌ Ese usuario no tiene advertencias."
	case moderation.CodeNoMuteRole:
		return "❌ Este servidor no tiene configurado un rol de silencio. Usa `/mod muterole`."
	case moderation.CodeMissingRoleAssignment:
		return "❌ Ese usuario no tiene asignado el rol de silencio."
	case moderation.CodeRoleGrantFailed:
		return "❌ No se pudo asignar el rol de silencio. Revisa los permisos del bot."
	case moderation.CodeInvalidArgument:
		return "❌ Parámetros inválidos."
	default:
		return "❌ Ocurrió un error al ejecutar la acción."
	}
}
