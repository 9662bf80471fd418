package pubsub

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	_ PubSubClient = (*client)(nil)
	_ PubSubClient = (*LocalClient)(nil)
	_ PubSubClient = (*MockPubSubClient)(nil)
)

// New creates a client publishing to Google Cloud Pub/Sub in the given project.
func New(ctx context.Context, projectID string) (PubSubClient, error) {
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return &client{client: pubSubC}, nil
}

// NewEvent stamps a tournament event with a fresh id.
func NewEvent(eventType EventType, tournamentID, gameNumber int, at time.Time) TournamentEvent {
	return TournamentEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		TournamentID: tournamentID,
		GameNumber:   gameNumber,
		OccurredAt:   at,
	}
}

func (c *client) SendMessage(topic EventType, data any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return fmt.Errorf("failed to encode message: %w", err)
	}
	result := c.client.Topic(string(topic)).Publish(ctx, &pubsub.Message{Data: msgpackData})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	log.Info("SendMessage", "topic", topic, "serverID", serverID)
	return nil
}

func (c *client) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

func (c *client) Close() error {
	return c.client.Close()
}

// NewLocal creates a client that hands every message straight to deliver on the caller's
// goroutine. Messages sent before a deliver function is set are dropped.
func NewLocal(deliver DeliverFunc) *LocalClient {
	return &LocalClient{deliver: deliver}
}

// SetDeliver replaces the delivery function.
func (c *LocalClient) SetDeliver(deliver DeliverFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliver = deliver
}

func (c *LocalClient) SendMessage(topic EventType, data any) error {
	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return fmt.Errorf("failed to encode message: %w", err)
	}

	c.mu.RLock()
	deliver := c.deliver
	c.mu.RUnlock()
	if deliver == nil {
		log.Warn("No local subscriber, dropping message", "topic", topic)
		return nil
	}
	log.Debug("Delivering message locally", "topic", topic, "bytes", len(msgpackData))
	return deliver(topic, msgpackData)
}

func (c *LocalClient) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

func (c *LocalClient) Close() error {
	return nil
}

func decode(data []byte, returnValue any) error {
	// Unmarshal the MessagePack data into the provided pointer struct
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
