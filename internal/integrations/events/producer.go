package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
)

// Producer публикует доменные события в Kafka
// В mock режиме события только логируются
type Producer struct {
	producer sarama.SyncProducer
	topics   Topics
	mockMode bool
	log      Logger
}

// NewProducer создает продюсер; в mock режиме подключения к брокерам нет
func NewProducer(brokers []string, topics Topics, mockMode bool, log Logger) (*Producer, error) {
	if mockMode {
		log.Info("Kafka producer running in mock mode, no broker connection")
		return &Producer{topics: topics, mockMode: true, log: log}, nil
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("events: failed to create producer: %w", err)
	}

	log.Info("Kafka producer connected to brokers: %v", brokers)
	return NewProducerWithClient(producer, topics, log), nil
}

// NewProducerWithClient оборачивает готовый sarama.SyncProducer
func NewProducerWithClient(producer sarama.SyncProducer, topics Topics, log Logger) *Producer {
	return &Producer{producer: producer, topics: topics, log: log}
}

// Publish отправляет событие; ключ сообщения - публичный ID заказа
// Ошибка публикации только логируется, бизнес-операция не должна от нее падать
func (p *Producer) Publish(ctx context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Kafka: failed to marshal event %s: %v", event.Type, err)
		return
	}

	topic := p.topicFor(event.Type)

	if p.mockMode {
		p.log.Info("Kafka mock publish topic=%s key=%s: %s", topic, event.OrderPublicID, string(data))
		return
	}

	if ctx.Err() != nil {
		p.log.Warn("Kafka: context done, event %s for order=%s dropped", event.Type, event.OrderPublicID)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.OrderPublicID),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Error("Kafka: failed to send %s to topic %s: %v", event.Type, topic, err)
		return
	}

	p.log.Info("Kafka: %s sent to %s partition=%d offset=%d order=%s", event.Type, topic, partition, offset, event.OrderPublicID)
}

func (p *Producer) topicFor(eventType string) string {
	if strings.HasPrefix(eventType, "booking.") {
		return p.topics.Booking
	}
	return p.topics.Order
}

// Close закрывает соединение с брокерами
func (p *Producer) Close() error {
	if p.mockMode || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
