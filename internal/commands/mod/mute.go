// Package mod - /mod mute command
package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createMuteCommand creates the /mod mute subcommand
func createMuteCommand() *discord.Command {
	return discord.NewCommand(
		"mute",
		"Silencia a un usuario permanentemente",
		"mod",
		muteHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a silenciar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del silencio",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionManageRoles)
}

// muteHandler handles the /mod mute command
func muteHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	reason := ctx.GetStringOption("razon")

	opCtx, cancel := commandContext()
	defer cancel()

	mute, err := ctx.Client.Moderation.Mute(opCtx, ctx.Actor(), user.ID, reason)
	if err != nil {
		return ctx.ReplyEphemeral(friendlyError(err))
	}

	return ctx.Reply(fmt.Sprintf("🔇 **%s** ha sido silenciado. (Caso #%d)\n**Razón:** %s",
		user.Username,
		mute.ID,
		mute.Reason,
	))
}
