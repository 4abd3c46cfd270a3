package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/Hozymaister/Workshift-sub001/config"
)

// 换班事件类型
const (
	TypeExchangeProposed = "exchange.proposed"
	TypeExchangeApproved = "exchange.approved"
	TypeExchangeRejected = "exchange.rejected"
)

// Event 换班申请生命周期事件（事务提交后投递）
type Event struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	ExchangeID     uint      `json:"exchange_id"`
	RequesterID    uint      `json:"requester_id"`
	RequesteeID    *uint     `json:"requestee_id,omitempty"`
	RequestShiftID uint      `json:"request_shift_id"`
	OfferedShiftID *uint     `json:"offered_shift_id,omitempty"`
	ActorID        uint      `json:"actor_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewEvent 生成带唯一 ID 的事件
func NewEvent(eventType string, occurredAt time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: occurredAt.UTC(),
	}
}

// Publisher 事件投递接口
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher 未启用事件投递时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// SQSClient SendMessage 子集，便于测试替换
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher 基于 AWS SQS 的事件投递
type SQSPublisher struct {
	client   SQSClient
	queueURL string
}

// NewSQSPublisher 创建 SQSPublisher
func NewSQSPublisher(client SQSClient, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// Publish 序列化事件并发送，事件类型写入消息属性 EventType，同时注入追踪上下文
func (p *SQSPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	attrs := map[string]types.MessageAttributeValue{
		"EventType": {
			DataType:    aws.String("String"),
			StringValue: aws.String(e.Type),
		},
	}
	otel.GetTextMapPropagator().Inject(ctx, attributeCarrier(attrs))

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("发送事件到 SQS 失败: %w", err)
	}
	return nil
}

// NewPublisher 按配置创建 Publisher；未启用时返回 NopPublisher
func NewPublisher(ctx context.Context, cfg *config.EventsConfig) (Publisher, error) {
	if !cfg.Enabled {
		return NopPublisher{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}

	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewSQSPublisher(client, cfg.QueueURL), nil
}

// attributeCarrier 将追踪上下文写入 SQS 消息属性
type attributeCarrier map[string]types.MessageAttributeValue

func (c attributeCarrier) Get(key string) string {
	if attr, ok := c[key]; ok && attr.StringValue != nil {
		return *attr.StringValue
	}
	return ""
}

func (c attributeCarrier) Set(key, value string) {
	c[key] = types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(value),
	}
}

func (c attributeCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
