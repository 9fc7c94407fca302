// Package mod - /mod unmute command
package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createUnmuteCommand creates the /mod unmute subcommand
func createUnmuteCommand() *discord.Command {
	return discord.NewCommand(
		"unmute",
		"Quita el silencio a un usuario",
		"mod",
		unmuteHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a des-silenciar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionManageRoles)
}

// unmuteHandler handles the /mod unmute command
func unmuteHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	opCtx, cancel := commandContext()
	defer cancel()

	mute, err := ctx.Client.Moderation.Unmute(opCtx, ctx.Interaction.GuildID, user.ID)
	if err != nil {
		return ctx.ReplyEphemeral(friendlyError(err))
	}

	return ctx.Reply(fmt.Sprintf("🔊 **%s** ya no está silenciado. (Caso #%d)", user.Username, mute.ID))
}
