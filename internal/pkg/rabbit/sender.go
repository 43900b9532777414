package rabbit

import (
	"encoding/json"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

// Sender performs messages sending using rabbit mq broker
type Sender struct {
	ChannelProvider *ChannelProvider
}

// NewSender initializes rabbit sender
func NewSender(provider *ChannelProvider) *Sender {
	return &Sender{ChannelProvider: provider}
}

// Send sends the message to queue
func (sender *Sender) Send(message interface{}, queue string, replyQueue string) error {
	cmdapp.Log.Infof("Sending message to %s", queue)

	msgBytes, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "Can't marshal message")
	}

	err = sender.ChannelProvider.RunOnChannelWithRetry(func(ch *amqp.Channel) error {
		return ch.Publish(
			"", // exchange
			sender.ChannelProvider.QueueName(queue),
			false, // mandatory
			false,
			amqp.Publishing{
				DeliveryMode: amqp.Persistent,
				ContentType:  "application/json",
				Body:         msgBytes,
				ReplyTo:      replyQueue,
			})
	})
	if err != nil {
		return errors.Wrap(err, "Can't send message")
	}
	return nil
}
