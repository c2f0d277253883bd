package consumer

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/confession_service/config"
)

// MessageHandler 处理一条 Kafka 消息。返回错误表示可以重试。
type MessageHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// messageReader kafka.Reader 中用到的部分
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	handleTimeout = 30 * time.Second
	// 处理失败的消息最多重试的次数，之后提交位移并记录错误
	maxHandleAttempts = 3
)

// Consumer Kafka 消费者。处理成功后才提交位移，积分记账依赖事件 ID 去重。
type Consumer struct {
	reader  messageReader
	handler MessageHandler
	logger  *core.ZapLogger
	topic   string
	backoff time.Duration
}

// NewConsumer 创建 Kafka Consumer 实例
func NewConsumer(cfg *appConfig.KafkaConfig, groupID string, topicName string, handler MessageHandler, logger *core.ZapLogger) (*Consumer, error) {
	if topicName == "" {
		return nil, errors.New("kafka topic 名称不能为空")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers 配置不能为空")
	}

	logger.Info("初始化 Kafka 消费者",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", topicName),
		zap.String("group_id", groupID))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topicName,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  3 * time.Second,
	})
	return newConsumer(reader, topicName, handler, logger), nil
}

func newConsumer(reader messageReader, topic string, handler MessageHandler, logger *core.ZapLogger) *Consumer {
	return &Consumer{reader: reader, handler: handler, logger: logger, topic: topic, backoff: time.Second}
}

// Start 阻塞运行消费循环，ctx 取消或 reader 关闭时返回
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("Kafka 消费者已启动", zap.String("topic", c.topic))
	defer c.logger.Info("Kafka 消费者已停止", zap.String("topic", c.topic))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				c.logger.Warn("消费者读取循环退出", zap.String("topic", c.topic), zap.Error(err))
				return
			}
			c.logger.Error("读取 Kafka 消息失败", zap.String("topic", c.topic), zap.Error(err))
			if !c.sleep(ctx, c.backoff) {
				return
			}
			continue
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("提交 Kafka 位移失败", zap.String("topic", msg.Topic), zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// process 有限次重试，放弃时只记录日志
func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	for attempt := 1; attempt <= maxHandleAttempts; attempt++ {
		handleCtx, cancel := context.WithTimeout(ctx, handleTimeout)
		err := c.handler.Handle(handleCtx, msg)
		cancel()
		if err == nil {
			return
		}
		c.logger.Error("处理 Kafka 消息时发生错误",
			zap.Error(err),
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt))
		if attempt == maxHandleAttempts || !c.sleep(ctx, c.backoff*time.Duration(attempt)) {
			break
		}
	}
	// TODO: 重试耗尽的消息转发到死信主题
	c.logger.Error("放弃处理 Kafka 消息", zap.String("topic", msg.Topic), zap.Int64("offset", msg.Offset), zap.ByteString("key", msg.Key))
}

func (c *Consumer) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close 关闭 Kafka Reader
func (c *Consumer) Close() error {
	c.logger.Info("正在关闭 Kafka 消费者...", zap.String("topic", c.topic))
	if err := c.reader.Close(); err != nil {
		c.logger.Error("关闭 Kafka Reader 失败", zap.Error(err), zap.String("topic", c.topic))
		return err
	}
	c.logger.Info("Kafka 消费者已成功关闭", zap.String("topic", c.topic))
	return nil
}
