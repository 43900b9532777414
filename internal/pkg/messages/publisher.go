package messages

// Publisher publish a call id to some topic
type Publisher interface {
	Publish(id string, topic string) error
}
