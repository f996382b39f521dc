package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Xushengqwer/publication_service/config"
	"github.com/Xushengqwer/publication_service/models/dto"
)

// AuditProducer 审计日志事件的 Kafka 生产者。
// - 约定: 每次成功的变更操作恰好发出一条事件；发送失败只记日志，绝不回滚业务变更。
type AuditProducer interface {
	// SendAuditLog 发送审计日志事件到审计主题。
	SendAuditLog(ctx context.Context, title string, changeDescription string, postID uint64, actorName string) error

	// Close 关闭底层 writer，冲刷未发送的事件。
	Close() error
}

// kafkaAuditProducer 是 AuditProducer 的 kafka-go 实现。
type kafkaAuditProducer struct {
	writer *kafka.Writer
	logger *core.ZapLogger
	topics config.Topics
}

// NewAuditProducer 创建一个新的审计事件生产者实例。
func NewAuditProducer(cfg config.KafkaConfig, logger *core.ZapLogger) AuditProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &kafkaAuditProducer{
		writer: writer,
		logger: logger,
		topics: cfg.Topics,
	}
}

// SendAuditLog 组装统一的事件结构并发送到审计主题。
func (p *kafkaAuditProducer) SendAuditLog(ctx context.Context, title string, changeDescription string, postID uint64, actorName string) error {
	event := dto.AuditLogEvent{
		EventID:           uuid.New().String(), // 生成唯一的 EventID
		Title:             title,
		ChangeDescription: changeDescription,
		PostID:            postID,
		ActorName:         actorName,
		Timestamp:         time.Now(),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("序列化审计事件失败", zap.Error(err), zap.Uint64("postID", postID))
		return err
	}

	p.logger.Debug("发送审计事件",
		zap.String("topic", p.topics.AuditLog),
		zap.ByteString("payload", eventBytes))

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topics.AuditLog,
		Value: eventBytes,
	})

	if err != nil {
		p.logger.Error("写入审计事件到 Kafka 失败",
			zap.Error(err),
			zap.String("topic", p.topics.AuditLog),
			zap.Uint64("postID", postID))
	} else {
		p.logger.Info("审计事件发送成功",
			zap.String("topic", p.topics.AuditLog),
			zap.Uint64("postID", postID),
			zap.String("change", changeDescription))
	}
	return err
}

// Close 关闭 Kafka writer。
func (p *kafkaAuditProducer) Close() error {
	return p.writer.Close()
}
