package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/CatfishW/novus-pay/internal/config"
	"github.com/CatfishW/novus-pay/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Notifier receives order status transition events so the crediting
// collaborator (the game server) can react without polling. Implementations
// must not block the transition path.
type Notifier interface {
	NotifyTransition(orderID string, from, to models.OrderStatus)
}

type logNotifier struct{}

// NewLogNotifier is the default when no broker is configured.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) NotifyTransition(orderID string, from, to models.OrderStatus) {
	slog.Info("order transition", "order_id", orderID, "from", from, "to", to)
}

type transitionEvent struct {
	OrderID string `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	At      string `json:"at"`
}

// MqttNotifier publishes transition events to a broker topic.
type MqttNotifier struct {
	client mqtt.Client
	topic  string
}

func NewMqttNotifier(cfg *config.MqttConfig) (*MqttNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetConnectRetry(true)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		slog.Info("mqtt notifier connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		slog.Warn("mqtt notifier connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt broker: %w", token.Error())
	}
	return &MqttNotifier{client: client, topic: cfg.Topic}, nil
}

func (n *MqttNotifier) NotifyTransition(orderID string, from, to models.OrderStatus) {
	payload, err := json.Marshal(transitionEvent{
		OrderID: orderID,
		From:    string(from),
		To:      string(to),
		At:      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		slog.Error("marshal transition event", "order_id", orderID, "error", err)
		return
	}

	token := n.client.Publish(n.topic, 1, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			slog.Error("publish transition event failed", "order_id", orderID, "error", token.Error())
		}
	}()
}
