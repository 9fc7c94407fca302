// Package mod - /mod tempmute command
package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createTempMuteCommand creates the /mod tempmute subcommand
func createTempMuteCommand() *discord.Command {
	return discord.NewCommand(
		"tempmute",
		"Silencia a un usuario temporalmente",
		"mod",
		tempMuteHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a silenciar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duracion",
			Description: "Duración en minutos",
			Required:    true,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
			MaxValue:    40320, // 28 days max
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

// tempMuteHandler handles the /mod tempmute command
func tempMuteHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	minutes := ctx.GetIntOption("duracion")
	if minutes < 1 {
		return ctx.ReplyEphemeral("❌ La duración debe ser al menos 1 minuto.")
	}

	reason := ctx.GetStringOption("razon")

	opCtx, cancel := commandContext()
	defer cancel()

	mute, err := ctx.Client.Moderation.TempMute(opCtx, ctx.Actor(), user.ID, reason, time.Duration(minutes)*time.Minute)
	if err != nil {
		return ctx.ReplyEphemeral(friendlyError(err))
	}

	return ctx.Reply(fmt.Sprintf("🔇 **%s** ha sido silenciado por %d minutos. (Caso #%d)\n**Razón:** %s\n**Expira:** <t:%d:R>",
		user.Username,
		minutes,
		mute.ID,
		mute.Reason,
		mute.ExpiresAt/1000,
	))
}
