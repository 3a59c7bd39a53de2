package mqtt

import (
	"encoding/json"
	"fmt"

	"safeview-shield/internal/logger"
	"safeview-shield/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Client struct {
	client mqtt.Client
	config models.MQTTConfig
}

func NewClient(cfg models.MQTTConfig) *Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.User != "" {
		opts.SetUsername(cfg.User)
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Infof("Connected to MQTT broker at %s", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		logger.Warnf("Lost connection to MQTT broker: %v", err)
	})

	return &Client{
		client: mqtt.NewClient(opts),
		config: cfg,
	}
}

func (c *Client) Connect() error {
	token := c.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.config.Broker, token.Error())
	}
	return nil
}

// Subscribe forwards player commands from the configured command topic.
func (c *Client) Subscribe(commands chan<- models.Command) error {
	token := c.client.Subscribe(c.config.CommandTopic, 0, func(client mqtt.Client, msg mqtt.Message) {
		cmd, err := DecodeCommand(msg.Payload())
		if err != nil {
			logger.Warnf("Failed to decode player command: %v", err)
			return
		}
		commands <- cmd
	})

	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.config.CommandTopic, token.Error())
	}

	logger.Infof("Subscribed to topic: %s", c.config.CommandTopic)
	return nil
}

// DecodeCommand accepts either a JSON object or a bare command name such as "pause".
func DecodeCommand(payload []byte) (models.Command, error) {
	var cmd models.Command
	if err := json.Unmarshal(payload, &cmd); err == nil {
		if cmd.Type == "" {
			return cmd, fmt.Errorf("command has no type")
		}
		return cmd, nil
	}

	var name string
	if err := json.Unmarshal(payload, &name); err == nil && name != "" {
		return models.Command{Type: name}, nil
	}

	if len(payload) > 0 && json.Valid(payload) {
		return cmd, fmt.Errorf("unsupported command payload: %s", payload)
	}
	if len(payload) > 0 {
		return models.Command{Type: string(payload)}, nil
	}
	return cmd, fmt.Errorf("empty command payload")
}

func (c *Client) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := c.client.Publish(topic, 0, false, data)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *Client) Disconnect() {
	c.client.Disconnect(250)
}
