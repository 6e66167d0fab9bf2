package repository

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// AnalyticsSink best-effort event mirror for the analytics pipeline.
// Callers are permitted to discard the result; losing an event is acceptable.
type AnalyticsSink interface {
	Emit(ctx context.Context, key string, payload interface{}) error
}

// KafkaAnalyticsSink AnalyticsSink backed by a kafka topic
type KafkaAnalyticsSink struct {
	writer *kafka.Writer
}

// NewKafkaAnalyticsSink create KafkaAnalyticsSink
func NewKafkaAnalyticsSink(writer *kafka.Writer) *KafkaAnalyticsSink {
	return &KafkaAnalyticsSink{writer: writer}
}

// Emit 將 payload 序列化後寫入 kafka topic
func (s *KafkaAnalyticsSink) Emit(ctx context.Context, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	})
}
