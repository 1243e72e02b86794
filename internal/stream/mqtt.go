package stream

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the part of an MQTT client the transport uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTTransport publishes each frame as one QoS 0 message.
type MQTTTransport struct {
	pub     Publisher
	topic   string
	timeout time.Duration
	close   func()
}

// NewMQTTTransport connects to broker and returns a transport publishing on
// topic.
func NewMQTTTransport(broker, clientID, topic string) (*MQTTTransport, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}

	t := NewMQTTTransportPublisher(client, topic)
	t.close = func() { client.Disconnect(250) }
	return t, nil
}

// NewMQTTTransportPublisher wraps an already connected publisher.
func NewMQTTTransportPublisher(pub Publisher, topic string) *MQTTTransport {
	return &MQTTTransport{pub: pub, topic: topic, timeout: time.Second}
}

// Topic returns the publish topic.
func (m *MQTTTransport) Topic() string {
	return m.topic
}

// Send publishes the encoded frame. The wait only covers handing the
// message to the network; QoS 0 has no acknowledgement.
func (m *MQTTTransport) Send(_ context.Context, records []Record) error {
	payload, err := EncodeFrame(records)
	if err != nil {
		return err
	}
	token := m.pub.Publish(m.topic, 0, false, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("mqtt publish %s: timed out after %s", m.topic, m.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", m.topic, err)
	}
	return nil
}

// Close disconnects the client if the transport created it.
func (m *MQTTTransport) Close() error {
	if m.close != nil {
		m.close()
	}
	return nil
}
