package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const urgentMessageTopic = "urgent_messages"

// UrgentMessage is the one-way notification queued when a patient dispatches
// a message to a doctor.
type UrgentMessage struct {
	RequesterID int64     `json:"requester_id"`
	DoctorID    int64     `json:"doctor_id"`
	Channel     string    `json:"channel"`
	SentAt      time.Time `json:"sent_at"`
}

// Producer is the collaborator interface the dispatcher invokes; delivery
// beyond the broker is trusted.
type Producer interface {
	PublishUrgentMessage(ctx context.Context, msg UrgentMessage) error
}

type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(broker string) *KafkaProducer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      []string{broker},
		Topic:        urgentMessageTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: int(kafka.RequireOne),
	})
	return &KafkaProducer{writer: writer}
}

var _ Producer = (*KafkaProducer)(nil)

func (kp *KafkaProducer) PublishUrgentMessage(ctx context.Context, msg UrgentMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// Key by doctor id so messages for one doctor stay on one partition.
	err = kp.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.DoctorID, 10)),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to produce urgent message: %w", err)
	}
	return nil
}

func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}
