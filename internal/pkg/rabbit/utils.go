package rabbit

import "github.com/streadway/amqp"

// DeclareQueue declares queue
func DeclareQueue(ch *amqp.Channel, qName string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		qName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

// DeclareExchange declares fanout exchange for status events
func DeclareExchange(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(
		name,
		"fanout",
		false, // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
}

// NewChannel creates exclusive queue bound to exchange and returns consume channel
func NewChannel(ch *amqp.Channel, exchange string) (<-chan amqp.Delivery, error) {
	err := DeclareExchange(ch, exchange)
	if err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare(
		"",    // name - generated
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	err = ch.QueueBind(q.Name, "", exchange, false, nil)
	if err != nil {
		return nil, err
	}
	return Consume(ch, q.Name, true)
}

// Consume starts consuming queue messages
func Consume(ch *amqp.Channel, qName string, autoAck bool) (<-chan amqp.Delivery, error) {
	return ch.Consume(
		qName,
		"",      // consumer
		autoAck, // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
}
