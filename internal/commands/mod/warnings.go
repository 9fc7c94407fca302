package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// createWarningsCommand creates the /mod warns subcommand
func createWarningsCommand() *discord.Command {
	return discord.NewCommand(
		"warns",
		"Lista de advertencias de un usuario",
		"mod",
		warningsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "[STAFF] Usuario a buscar (opcional)",
			Required:    false,
		},
	)
}

func warningsHandler(ctx *discord.CommandContext) error {
	// Goroutine para no bloquear el hilo principal
	go func() {
		defer errors.RecoverMiddleware()()

		// 1. Determinar objetivo y permisos
		targetUser := ctx.GetUserOption("usuario")
		isSelf := false

		perms, err := ctx.Session.UserChannelPermissions(ctx.User().ID, ctx.Interaction.ChannelID)
		if err != nil {
			perms = 0
		}
		isModerator := (perms & discordgo.PermissionManageMessages) != 0

		if targetUser == nil {
			targetUser = ctx.User()
			isSelf = true
		}

		// Si intenta ver advertencias de otro y no es moderador
		if !isSelf && !isModerator {
			ctx.ReplyEphemeral("❌ No tienes permisos para ver la lista de advertencias de otro usuario.")
			return
		}

		// 2. Feedback inicial
		embedLoading := &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("🔖 - Lista de advertencias de %s", targetUser.Username),
			Description: "Espere un momento mientras obtenemos las advertencias...\n\n> 💫 - **Cantidad de advertencias:** Desconocido\n> 🕒 - **Fecha de consulta:** Cargando...",
			Color:       0x3498db, // Blue
			Footer: &discordgo.MessageEmbedFooter{
				Text:    "💫 - Developed by PancyStudios",
				IconURL: ctx.Guild().IconURL(""),
			},
		}

		if err := ctx.ReplyEphemeralEmbed(embedLoading); err != nil {
			logger.Error(fmt.Sprintf("Error enviando reply inicial warnings: %v", err), "CMD-Warnings")
			return
		}

		// 3. Consulta al motor de moderación
		opCtx, cancel := commandContext()
		defer cancel()

		warns, err := ctx.Client.Moderation.Warns.All(opCtx, ctx.Interaction.GuildID, targetUser.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error consultando advertencias: %v", err), "CMD-Warnings")
			ctx.EditReply("❌ Error al consultar las advertencias.")
			return
		}

		if len(warns) == 0 {
			ctx.EditReplyEmbed(&discordgo.MessageEmbed{
				Title:       fmt.Sprintf("🔖 - Lista de advertencias de %s", targetUser.Username),
				Color:       0x00FF00, // Green
				Description: fmt.Sprintf("No se han encontrado advertencias del usuario en este servidor\n\n> 💫 - **Cantidad de advertencias:** 0\n> 🕒 - **Fecha de consulta:** <t:%d>", time.Now().Unix()),
				Footer: &discordgo.MessageEmbedFooter{
					Text:    "💫 - Developed by PancyStudios",
					IconURL: ctx.Guild().IconURL(""),
				},
			})
			return
		}

		// 4. Construir lista de advertencias
		embedList := &discordgo.MessageEmbed{
			Title: fmt.Sprintf("🔖 - Lista de advertencias de %s (%s)", targetUser.Username, targetUser.ID),
			Color: 0xFFA500, // Orange
			Footer: &discordgo.MessageEmbedFooter{
				Text:    "💫 - Developed by PancyStudios",
				IconURL: ctx.Guild().IconURL(""),
			},
		}

		var description string

		for _, warn := range warns {
			modName := "Oculto"

			if isModerator {
				modUser, err := ctx.Session.User(warn.ModeratorID)
				if err == nil {
					modName = modUser.Username
				} else {
					modName = warn.ModeratorID // Fallback al ID si no se encuentra
				}
			}

			description += fmt.Sprintf("> **Advertencia:** %s \n> **Moderador:** %s \n> **Caso:** #%d \n\n", warn.Reason, modName, warn.ID)
		}

		description += fmt.Sprintf("> 💫 - **Cantidad de advertencias:** %d \n> 🕒 - **Fecha de consulta:** <t:%d>", len(warns), time.Now().Unix())

		embedList.Description = description

		// 5. Enviar respuesta final
		ctx.EditReplyEmbed(embedList)
	}()

	return nil
}
