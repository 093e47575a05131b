package mq

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
)

// KafkaProducer 同步生产者，负责向通知主题发布事件
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaProducer(brokers []string, topic string) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("启动 Sarama 生产者失败: %w", err)
	}

	return &KafkaProducer{
		producer: producer,
		topic:    topic,
	}, nil
}

// SendMessage 序列化并发送一条消息，key 用于分区路由
func (k *KafkaProducer) SendMessage(key string, message any) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(bytes),
	}

	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("发送消息到 kafka 失败: %w", err)
	}
	return nil
}

func (k *KafkaProducer) Close() error {
	return k.producer.Close()
}
