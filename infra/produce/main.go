package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	NotificationService *NotificationService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel, signingKey string) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	notificationService := InitNotificationService(channel, signingKey)
	if notificationService == nil {
		panic("Failed to initialize Notification service")
	}

	produceInstance = &Produce{
		NotificationService: notificationService,
	}

	return produceInstance
}

func GetProduce() *Produce {
	if produceInstance == nil {
		panic("Produce not initialized. Call InitProduce() first.")
	}
	return produceInstance
}
