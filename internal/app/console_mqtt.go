package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/mocap_streamer/internal/config"
	"github.com/relabs-tech/mocap_streamer/internal/stream"
)

// RunConsoleMQTT subscribes to the frame topic and prints every frame.
func RunConsoleMQTT() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required for the console")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)
	checkFeed(cfg, "console")

	token := client.Subscribe(cfg.TopicFrames, 0, func(_ mqtt.Client, msg mqtt.Message) {
		records, err := stream.DecodeFrame(msg.Payload())
		if err != nil {
			log.Printf("console: frame unmarshal error: %v", err)
			return
		}
		fmt.Print(formatFrame(records))
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicFrames)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

// checkFeed warns when the config also drives a streamer that does not
// publish to MQTT, so the subscriber would wait forever.
func checkFeed(cfg *config.Config, component string) bool {
	if cfg.SourceKind == "" || cfg.HasTransport(config.TransportMQTT) {
		return true
	}
	log.Printf("%s: WARNING: TRANSPORTS=%s has no mqtt, a streamer using this config will not publish to %s",
		component, strings.Join(cfg.Transports, ","), cfg.TopicFrames)
	return false
}

// formatFrame renders one frame as a header line plus one line per joint.
func formatFrame(records []stream.Record) string {
	if len(records) == 0 {
		return "[FRAME] empty\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[FRAME] t=%s  joints=%d\n", records[0].Time, len(records))
	for _, r := range records {
		fmt.Fprintf(&b,
			"  %-13s pos=(%7.2f %7.2f %7.2f)  rot=(%6.3f %6.3f %6.3f %6.3f)  acc=(%6.2f %6.2f %6.2f)\n",
			r.Name,
			r.Position[0], r.Position[1], r.Position[2],
			r.Rotation[0], r.Rotation[1], r.Rotation[2], r.Rotation[3],
			r.Acc[0], r.Acc[1], r.Acc[2],
		)
	}
	return b.String()
}
