package messages

// Sender sends a message to message broker queue
type Sender interface {
	Send(message interface{}, queue string, replyQueue string) error
}
