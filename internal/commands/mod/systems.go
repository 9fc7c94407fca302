// Package mod - /mod systems command
package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// createSystemsCommand creates the /mod systems subcommand
func createSystemsCommand() *discord.Command {
	return discord.NewCommand(
		"systems",
		"Configura los sistemas automáticos del servidor",
		"mod",
		systemsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "antilink",
			Description: "Eliminar mensajes con enlaces",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "antijoin",
			Description: "Expulsar automáticamente a los nuevos miembros",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "antispam",
			Description: "Silenciar automáticamente a quien haga spam",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "autorole",
			Description: "Asignar un rol automáticamente al entrar",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "rol",
			Description: "Rol a asignar con el sistema autorole",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionManageServer)
}

func onOff(v bool) string {
	if v {
		return "✅ activado"
	}
	return "❌ desactivado"
}

// systemsHandler handles the /mod systems command
func systemsHandler(ctx *discord.CommandContext) error {
	opCtx, cancel := commandContext()
	defer cancel()

	mod := ctx.Client.Moderation
	guildID := ctx.Interaction.GuildID

	current, err := mod.Systems.Enabled(opCtx, guildID)
	if err != nil {
		return ctx.ReplyEphemeral(friendlyError(err))
	}

	cfg := models.SystemsConfig{
		AutoRole: current.AutoRole,
		AntiJoin: current.AntiJoin,
		AntiLink: current.AntiLink,
		AntiSpam: current.AntiSpam,
	}
	if opt := ctx.GetOption("antilink"); opt != nil {
		cfg.AntiLink = opt.BoolValue()
	}
	if opt := ctx.GetOption("antijoin"); opt != nil {
		cfg.AntiJoin = opt.BoolValue()
	}
	if opt := ctx.GetOption("antispam"); opt != nil {
		cfg.AntiSpam = opt.BoolValue()
	}
	if opt := ctx.GetOption("autorole"); opt != nil {
		cfg.AutoRole = opt.BoolValue()
	}

	if err := mod.Systems.Configure(opCtx, guildID, cfg); err != nil {
		return ctx.ReplyEphemeral(friendlyError(err))
	}

	if role := ctx.GetRoleOption("rol"); role != nil {
		if err := mod.AutoRole.Set(opCtx, guildID, role.ID); err != nil {
			return ctx.ReplyEphemeral(friendlyError(err))
		}
	}

	return ctx.Reply(fmt.Sprintf("⚙️ Sistemas del servidor:\n> **Anti-Link:** %s\n> **Anti-Join:** %s\n> **Anti-Spam:** %s\n> **Auto-Role:** %s",
		onOff(cfg.AntiLink),
		onOff(cfg.AntiJoin),
		onOff(cfg.AntiSpam),
		onOff(cfg.AutoRole),
	))
}
