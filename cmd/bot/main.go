// Package main is the entry point for the PancyMod Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/commands"
	"github.com/PancyStudios/PancyModGo/internal/commands/utils"
	"github.com/PancyStudios/PancyModGo/internal/events"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/mqtt"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
	"github.com/PancyStudios/PancyModGo/pkg/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando PancyMod Go...", "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	var mod *moderation.Moderation
	errors.Init(cfg.ErrorWebhook, func() {
		if mod != nil {
			if err := mod.Close(); err != nil {
				logger.Error(fmt.Sprintf("Error cerrando el motor de moderación: %v", err), "Main")
			}
		}
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				return
			}
		}
	})

	// Initialize guild storage
	store, stopWatch, err := openStore(cfg)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error abriendo el almacenamiento (%s): %v", cfg.StorageBackend, err), "Main")
		os.Exit(1)
	}
	if stopWatch != nil {
		defer stopWatch()
	}
	logger.Success(fmt.Sprintf("Almacenamiento listo: %s", cfg.StorageBackend), "Main")

	// Initialize MQTT
	mqttClientID := "pancymod"
	if !cfg.IsProd() {
		mqttClientID = "pancymod_canary"
	}

	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
	)
	defer mqttClient.Destroy()

	// Initialize web server
	webServer := web.Init(cfg.LogsWebhook)
	web.SetupAPIRoutes(webServer, store)
	webServer.StartAsync(cfg.Port)

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Initialize the moderation engine on top of the live session
	mod, err = moderation.New(moderation.Options{
		Store:    store,
		Platform: moderation.NewSessionPlatform(discordClient.Session),
	})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creando el motor de moderación: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		if err := mod.Close(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando el motor de moderación: %v", err), "Main")
		}
	}()

	discordClient.AttachModeration(mod)
	utils.SetStore(store)
	mqtt.AttachModerationRelay(mqttClient, mod)

	// Register commands using the new commands package
	commands.RegisterAll(discordClient)

	// Register events using the new events package
	events.RegisterAll(discordClient)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func(discordClient *discord.ExtendedClient) {
		err := discordClient.Stop()
		if err != nil {

		}
	}(discordClient)

	logger.Success("PancyMod Go iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancyMod Go...", "Main")
}

// openStore builds the guild store selected by configuration. The returned
// stop function is non-nil only for backends with a background watcher.
func openStore(cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.StorageBackend {
	case "json":
		store, err := storage.NewJSONStore(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		stop := store.StartWatch(30 * time.Second)
		return store, stop, nil
	case "pebble":
		store, err := storage.NewPebbleStore(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		store, err := storage.NewMongoStore(ctx, cfg.MongoDBURL, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("backend de almacenamiento desconocido: %q", cfg.StorageBackend)
	}
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
