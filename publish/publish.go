// Package publish sends scan results to an MQTT broker.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ericlevine/zxscan"
)

// Message is the JSON payload published for each decoded file.
type Message struct {
	File    string `json:"file"`
	Text    string `json:"text"`
	Format  string `json:"format"`
	Attempt string `json:"attempt"`
	Rotated bool   `json:"rotated"`
}

// NewMessage describes result, decoded from file.
func NewMessage(file string, result *zxscan.Result) Message {
	return Message{
		File:    file,
		Text:    result.Text,
		Format:  result.Format.String(),
		Attempt: result.Attempt,
		Rotated: result.Rotated,
	}
}

// client is the part of mqtt.Client the publisher needs.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher publishes scan results on one topic.
type Publisher struct {
	client  client
	topic   string
	timeout time.Duration
}

// Connect opens a connection to broker and returns a Publisher for topic.
func Connect(broker, clientID, topic string) (*Publisher, error) {
	options := mqtt.NewClientOptions()
	options.AddBroker(broker)
	options.SetClientID(clientID)

	c := mqtt.NewClient(options)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", broker, token.Error())
	}
	return newPublisher(c, topic), nil
}

func newPublisher(c client, topic string) *Publisher {
	return &Publisher{client: c, topic: topic, timeout: 5 * time.Second}
}

// Topic returns the topic results are published on.
func (p *Publisher) Topic() string {
	return p.topic
}

// Publish sends msg at QoS 0 and waits for the client to hand it off.
func (p *Publisher) Publish(msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.File, err)
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish %s: timed out after %v", msg.File, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.File, err)
	}
	return nil
}

// Close disconnects, allowing 250ms for pending work.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
