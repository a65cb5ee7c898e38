package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message wraps a delivered job with its acknowledgement handle.
type Message struct {
	job         *Job
	deliveryTag uint64
	channel     *amqp.Channel
}

// NewTestMessage builds a message without a broker, for worker tests.
func NewTestMessage(job *Job) *Message {
	return &Message{job: job}
}

// Job returns the delivered job.
func (m *Message) Job() *Job {
	return m.job
}

// Ack acknowledges successful processing.
func (m *Message) Ack() error {
	if m.channel == nil {
		return nil
	}
	return m.channel.Ack(m.deliveryTag, false)
}

// Nack signals failed processing, optionally requeueing. A non-requeued
// message is dead-lettered.
func (m *Message) Nack(requeue bool) error {
	if m.channel == nil {
		return nil
	}
	return m.channel.Nack(m.deliveryTag, false, requeue)
}
