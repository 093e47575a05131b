package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/IBM/sarama"

	"github.com/Gopher0727/GroupGuard/internal/apperrors"
	"github.com/Gopher0727/GroupGuard/internal/services"
)

// ActivityConsumer 活动事件消费者
// 从 Kafka 接收群组活动事件并交给记录器处理
type ActivityConsumer struct {
	recorderService *services.RecorderService
}

func NewActivityConsumer(recorderService *services.RecorderService) *ActivityConsumer {
	return &ActivityConsumer{
		recorderService: recorderService,
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (consumer *ActivityConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (consumer *ActivityConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (consumer *ActivityConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		log.Printf("消费活动事件: topic = %s, partition = %d, offset = %d", message.Topic, message.Partition, message.Offset)

		var req services.RecordRequest
		if err := json.Unmarshal(message.Value, &req); err != nil {
			log.Printf("反序列化活动事件失败: %v", err)
			session.MarkMessage(message, "")
			continue
		}

		_, err := consumer.recorderService.Record(session.Context(), req)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidActivity) {
				// 非法事件无法通过重放修复，直接丢弃
				log.Printf("丢弃非法活动事件: %v", err)
				session.MarkMessage(message, "")
				continue
			}
			// 存储不可用时不提交位点，等待重平衡后重放
			log.Printf("处理活动事件失败: %v", err)
			return err
		}

		session.MarkMessage(message, "")
	}
	return nil
}

// StartConsumer 启动消费者组循环
func StartConsumer(ctx context.Context, brokers []string, groupID string, topic string, consumer *ActivityConsumer) (sarama.ConsumerGroup, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	client, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			if err := client.Consume(ctx, []string{topic}, consumer); err != nil {
				log.Printf("消费者错误: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return client, nil
}
