package produce

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-form-service/utils"
)

// NotificationMessage is the payload the delivery workers consume. Signature
// is HMAC-SHA256 over "recipient\ncontent" with the shared signing key so a
// worker can verify the message came from this service.
type NotificationMessage struct {
	Type      string `json:"type"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
	Signature string `json:"signature,omitempty"`
}

type NotificationService struct {
	channel    *amqp.Channel
	signingKey string
}

func InitNotificationService(channel *amqp.Channel, signingKey string) *NotificationService {
	return &NotificationService{
		channel:    channel,
		signingKey: signingKey,
	}
}

// Send publishes a one-time-code notification for the recipient. Recipients
// containing '@' are routed to the email queue, everything else to SMS.
func (s *NotificationService) Send(ctx context.Context, recipient, content string) error {
	channelName := "sms"
	if strings.Contains(recipient, "@") {
		channelName = "email"
	}

	message := NotificationMessage{
		Type:      "otp",
		Channel:   channelName,
		Recipient: recipient,
		Content:   content,
	}
	if s.signingKey != "" {
		message.Signature = utils.ComputeHMACSHA256(s.signingKey, recipient+"\n"+content)
	}

	return s.publish(ctx, "notification."+channelName, message)
}

func (s *NotificationService) publish(ctx context.Context, routingKey string, message NotificationMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal notification message: %w", err)
	}

	err = s.channel.PublishWithContext(
		ctx,
		"notification_exchange", // exchange
		routingKey,              // routing key
		false,                   // mandatory
		false,                   // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish notification message: %w", err)
	}

	return nil
}
