// Package web provides API routes for the web server.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
	"github.com/gin-gonic/gin"
)

// SetupAPIRoutes sets up the API routes. The store powers the read-only
// moderation inspection endpoints.
func SetupAPIRoutes(s *Server, store storage.Store) {
	api := s.Group("/api")
	{
		api.GET("/status", statusHandler(store))
		api.GET("/health", healthHandler)
		api.GET("/bot", botInfoHandler)
		api.GET("/guilds/:id/moderation", guildModerationHandler(store))
	}
}

// statusHandler returns the bot and storage status
func statusHandler(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := discord.Get()

		botOnline := false
		if client != nil {
			botOnline = client.IsReady()
		}

		storageOnline := false
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			_, err := store.GuildIDs(ctx)
			storageOnline = err == nil
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"storage": gin.H{
				"isOnline": storageOnline,
			},
			"bot": gin.H{
				"isOnline": botOnline,
			},
		})
	}
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyMod Go is running",
	})
}

// botInfoHandler returns information about the bot
func botInfoHandler(c *gin.Context) {
	client := discord.Get()

	if client == nil || !client.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "El bot no está disponible en este momento.",
		})
		return
	}

	user := client.Session.State.User

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"discriminator": user.Discriminator,
		"avatar":        user.Avatar,
		"guilds":        client.GuildCount(),
		"isReady":       client.IsReady(),
	})
}

// guildModerationHandler returns the moderation summary of a guild
func guildModerationHandler(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		guildID := c.Param("id")
		if guildID == "" || store == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Se requiere el id del servidor.",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		rec, err := store.Get(ctx, guildID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "No se pudo leer el registro del servidor.",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"guildId":     rec.GuildID,
			"cases":       rec.Cases,
			"muteRole":    rec.MuteRoleID,
			"autoRole":    rec.AutoRoleID,
			"activeMutes": len(rec.Mutes),
			"warns":       len(rec.Warns),
			"systems":     rec.Systems,
		})
	}
}
