package queue

import (
	"github.com/google/uuid"

	"VolunteerHub/internal/model"
	"VolunteerHub/storage/mq"
)

// Producer publishes signup lifecycle messages. It satisfies the signup
// service's EventPublisher interface.
type Producer struct{}

func NewProducer() *Producer {
	return &Producer{}
}

func (Producer) PublishSignupCreated(msg model.SignupCreatedMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	return mq.PublishMessage(mq.SignupExchange, mq.QueueSignupCreated, msg)
}

func (Producer) PublishSignupAutoClosed(msg model.SignupAutoClosedMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	return mq.PublishMessage(mq.SignupExchange, mq.QueueSignupAutoClosed, msg)
}
