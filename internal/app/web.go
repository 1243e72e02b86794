package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/mocap_streamer/internal/config"
	"github.com/relabs-tech/mocap_streamer/internal/stream"
)

// latestFrame keeps the most recent frame received from the broker.
type latestFrame struct {
	mu      sync.RWMutex
	records []stream.Record
	have    bool
}

func (l *latestFrame) store(payload []byte) error {
	records, err := stream.DecodeFrame(payload)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.records = records
	l.have = true
	l.mu.Unlock()
	return nil
}

// ServeHTTP writes the latest frame as JSON, or 503 before the first one.
func (l *latestFrame) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(l.records); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// RunWeb serves the latest streamed frame over HTTP, fed by the MQTT topic.
func RunWeb() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required for the web server")
	}

	latest := &latestFrame{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)
	checkFeed(cfg, "web")

	token := client.Subscribe(cfg.TopicFrames, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := latest.store(msg.Payload()); err != nil {
			log.Printf("web: frame unmarshal error: %v", err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to MQTT topic %s", cfg.TopicFrames)

	mux := http.NewServeMux()
	mux.Handle("/api/frame", latest)
	mux.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
