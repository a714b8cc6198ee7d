package queue

import (
	"encoding/json"

	"github.com/streadway/amqp"
)

// AMQPQueue publishes jobs to a RabbitMQ broker. Consumption happens in
// cmd/worker, so only the Publisher half is implemented here.
type AMQPQueue struct {
	URL string
}

func NewAMQPQueue(url string) *AMQPQueue {
	return &AMQPQueue{URL: url}
}

// Publish declares the durable queue for the topic and sends the payload
// as JSON, dialing a fresh connection per publish.
func (q *AMQPQueue) Publish(topic string, payload any) error {
	conn, err := amqp.Dial(q.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	declared, err := ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return ch.Publish(
		"",
		declared.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

var _ Publisher = (*AMQPQueue)(nil)
