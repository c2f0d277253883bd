package producer

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Xushengqwer/go-common/core"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/models/enums"
	"github.com/Xushengqwer/confession_service/models/events"
)

// messageWriter kafka.Writer 中用到的部分，测试时替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer 把审核和删除事件写入 Kafka
type KafkaProducer struct {
	writer messageWriter
	logger *core.ZapLogger
	topics config.Topics
}

// NewKafkaProducer 创建生产者。消息按帖子 ID 分区，同一帖子的事件保持有序。
func NewKafkaProducer(cfg config.KafkaConfig, logger *core.ZapLogger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newKafkaProducer(writer, cfg.Topics, logger)
}

func newKafkaProducer(writer messageWriter, topics config.Topics, logger *core.ZapLogger) *KafkaProducer {
	return &KafkaProducer{writer: writer, logger: logger, topics: topics}
}

// SendEvent 序列化并发送事件到指定主题
func (p *KafkaProducer) SendEvent(ctx context.Context, topic, key string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("序列化事件失败", zap.Error(err), zap.String("topic", topic))
		return err
	}

	p.logger.Debug("发送 Kafka 消息",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.ByteString("payload", eventBytes))

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: eventBytes,
	})
	if err != nil {
		p.logger.Error("写入 Kafka 消息失败", zap.Error(err), zap.String("topic", topic))
	} else {
		p.logger.Info("Kafka 消息已发送", zap.String("topic", topic), zap.String("key", key))
	}
	return err
}

// PublishModerationEvent 通过和拒绝分别写入各自的主题
func (p *KafkaProducer) PublishModerationEvent(ctx context.Context, event *events.ModerationEvent) error {
	topic := p.topics.ConfessionApproved
	if event.Status == enums.StatusRejected {
		topic = p.topics.ConfessionRejected
	}
	return p.SendEvent(ctx, topic, strconv.FormatUint(event.PostID, 10), event)
}

func (p *KafkaProducer) PublishContentDeleted(ctx context.Context, event *events.ContentDeletedEvent) error {
	key := string(event.TargetType) + ":" + strconv.FormatUint(event.TargetID, 10)
	return p.SendEvent(ctx, p.topics.ContentDeleted, key, event)
}

// Close 刷新缓冲并关闭连接
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
