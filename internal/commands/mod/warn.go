// Package mod - /mod warn command
package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createWarnCommand creates the /mod warn subcommand
func createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Advierte a un usuario",
		"mod",
		warnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a advertir",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón de la advertencia",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

// warnHandler handles the /mod warn command
func warnHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	reason := ctx.GetStringOption("razon")

	opCtx, cancel := commandContext()
	defer cancel()

	warn, err := ctx.Client.Moderation.Warn(opCtx, ctx.Actor(), user.ID, reason)
	if err != nil {
		return ctx.ReplyEphemeral(friendlyError(err))
	}

	count, err := ctx.Client.Moderation.Warns.Count(opCtx, ctx.Interaction.GuildID, user.ID)
	if err != nil {
		count = -1
	}

	msg := fmt.Sprintf("⚠️ **%s** ha sido advertido. (Caso #%d)\n**Razón:** %s\n**Moderador:** %s",
		user.Username,
		warn.ID,
		warn.Reason,
		ctx.User().Username,
	)
	if count >= 0 {
		msg += fmt.Sprintf("\n**Advertencias:** %d", count)
	}
	return ctx.Reply(msg)
}
