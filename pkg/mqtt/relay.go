package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// relayTopic is the base topic moderation events are published under
const relayTopic = "pancy/moderation/events"

// AttachModerationRelay republishes every moderation lifecycle event on the
// broker, one subtopic per event name, and answers remote warn and mute
// queries. Services outside the bot process (dashboards, audit collectors)
// consume these instead of talking to Discord.
func AttachModerationRelay(mc *MqttCommunicator, mod *moderation.Moderation) {
	if mc == nil || mod == nil {
		return
	}

	relay := func(event moderation.Event) moderation.EventHandler {
		topic := fmt.Sprintf("%s/%s", relayTopic, event)
		return func(payload interface{}) {
			if err := mc.Publish(topic, payload); err != nil {
				logger.Error(fmt.Sprintf("No se pudo publicar el evento '%s' en MQTT: %v", event, err), "MQTT")
			}
		}
	}

	for _, event := range []moderation.Event{
		moderation.EventMuteMember,
		moderation.EventUnmuteMember,
		moderation.EventWarnAdd,
		moderation.EventWarnRemove,
		moderation.EventWarnKick,
	} {
		mod.On(event, relay(event))
	}

	// Remote query: warns of a member
	mc.On("moderation/warns", func(payload map[string]interface{}) (interface{}, error) {
		guildID, _ := payload["guildId"].(string)
		memberID, _ := payload["memberId"].(string)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return mod.Warns.All(ctx, guildID, memberID)
	})

	// Remote query: active mute of a member
	mc.On("moderation/mute", func(payload map[string]interface{}) (interface{}, error) {
		guildID, _ := payload["guildId"].(string)
		memberID, _ := payload["memberId"].(string)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return mod.Mutes.GetMute(ctx, guildID, memberID)
	})

	logger.System("Relay de eventos de moderación conectado a MQTT", "MQTT")
}
