package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"ms-attendance/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
	Topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer, Topic: topic}
}

// PublishAttendanceUpdated streams one attendance update, keyed by kegiatan
// id so updates for one event stay ordered.
func (p *Producer) PublishAttendanceUpdated(update models.AttendanceUpdate) error {
	msgBytes, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal attendance update: %w", err)
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(strconv.FormatInt(update.KegiatanID, 10)),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
