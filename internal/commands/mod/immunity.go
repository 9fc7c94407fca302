// Package mod - /mod immunity command
package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createImmunityCommand creates the /mod immunity subcommand
func createImmunityCommand() *discord.Command {
	return discord.NewCommand(
		"immunity",
		"Exime a un usuario de los sistemas automáticos",
		"mod",
		immunityHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a configurar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "estado",
			Description: "true para eximir, false para quitar la exención",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionManageServer)
}

// immunityHandler handles the /mod immunity command
func immunityHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	status := ctx.GetBoolOption("estado")

	opCtx, cancel := commandContext()
	defer cancel()

	if err := ctx.Client.Moderation.Systems.SetImmunity(opCtx, ctx.Interaction.GuildID, user.ID, status); err != nil {
		return ctx.ReplyEphemeral(friendlyError(err))
	}

	if status {
		return ctx.Reply(fmt.Sprintf("✅ **%s** ahora es inmune a los sistemas automáticos.", user.Username))
	}
	return ctx.Reply(fmt.Sprintf("✅ **%s** ya no es inmune a los sistemas automáticos.", user.Username))
}
