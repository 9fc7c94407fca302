// Package mod - /mod unwarn command
package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createUnwarnCommand creates the /mod unwarn subcommand
func createUnwarnCommand() *discord.Command {
	return discord.NewCommand(
		"unwarn",
		"Elimina la advertencia más reciente de un usuario",
		"mod",
		unwarnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario al que quitar la advertencia",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

// unwarnHandler handles the /mod unwarn command
func unwarnHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	opCtx, cancel := commandContext()
	defer cancel()

	warn, err := ctx.Client.Moderation.Unwarn(opCtx, ctx.Interaction.GuildID, user.ID)
	if err != nil {
		return ctx.ReplyEphemeral(friendlyError(err))
	}

	return ctx.Reply(fmt.Sprintf("✅ Se eliminó la advertencia más reciente de **%s**. (Caso #%d)\n**Razón original:** %s",
		user.Username,
		warn.ID,
		warn.Reason,
	))
}
