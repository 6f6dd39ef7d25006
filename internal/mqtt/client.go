package mqtt

import (
	"fmt"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Client defines the interface for MQTT operations
type Client interface {
	Publish(topic string, payload []byte, retained bool) error
	Close()
}

// mqttClient implements the Client interface
type mqttClient struct {
	client mqttlib.Client
}

// NewClient connects to the broker and returns a Client.
func NewClient(brokerURL, clientID, username, password string, logger *zap.Logger) (Client, error) {
	opts := mqttlib.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqttlib.Client, err error) {
			logger.Warn("mqtt connection lost", zap.Error(err))
		})

	client := mqttlib.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", brokerURL, token.Error())
	}

	logger.Info("mqtt connected", zap.String("broker", brokerURL), zap.String("client_id", clientID))
	return &mqttClient{client: client}, nil
}

// Publish sends a message to a topic
func (m *mqttClient) Publish(topic string, payload []byte, retained bool) error {
	token := m.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish %s: timed out", topic)
	}
	return token.Error()
}

func (m *mqttClient) Close() {
	m.client.Disconnect(250)
}
