// Package mod - /mod muterole command
package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createMuteRoleCommand creates the /mod muterole subcommand
func createMuteRoleCommand() *discord.Command {
	return discord.NewCommand(
		"muterole",
		"Configura o muestra el rol de silencio del servidor",
		"mod",
		muteRoleHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "rol",
			Description: "Rol a usar para silenciar (omitir para consultar)",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionManageServer)
}

// muteRoleHandler handles the /mod muterole command
func muteRoleHandler(ctx *discord.CommandContext) error {
	opCtx, cancel := commandContext()
	defer cancel()

	role := ctx.GetRoleOption("rol")
	if role == nil {
		current, err := ctx.Client.Moderation.Mutes.Role(opCtx, ctx.Interaction.GuildID)
		if err != nil {
			return ctx.ReplyEphemeral(friendlyError(err))
		}
		if current == "" {
			return ctx.ReplyEphemeral("ℹ️ Este servidor no tiene configurado un rol de silencio.")
		}
		return ctx.ReplyEphemeral(fmt.Sprintf("ℹ️ El rol de silencio actual es <@&%s>.", current))
	}

	if err := ctx.Client.Moderation.Mutes.SetRole(opCtx, ctx.Interaction.GuildID, role.ID); err != nil {
		return ctx.ReplyEphemeral(friendlyError(err))
	}

	return ctx.Reply(fmt.Sprintf("✅ Rol de silencio configurado: <@&%s>", role.ID))
}
