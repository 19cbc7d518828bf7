package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/metrics"
	"github.com/Shopify/sarama"
)

// Config holds the broker and topic settings.
type Config struct {
	Brokers       []string
	GroupID       string
	RequestTopic  string
	ResponseTopic string
}

func (c Config) validate() error {
	if len(c.Brokers) == 0 {
		return ErrNoBrokers
	}
	if c.RequestTopic == "" || c.ResponseTopic == "" {
		return ErrNoTopic
	}
	return nil
}

// Consumer reads prediction requests from a consumer group and replies
// through a synchronous producer.
type Consumer struct {
	cfg      Config
	group    sarama.ConsumerGroup
	producer sarama.SyncProducer
	handler  *Handler
	logger   logger.Logger
}

// NewConsumer connects the consumer group and the reply producer.
func NewConsumer(cfg Config, predictor Predictor, opts ...Option) (*Consumer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = "energy-api"
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	saramaConfig.Consumer.MaxWaitTime = 250 * time.Millisecond
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Retry.Max = 3

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		_ = group.Close()
		return nil, fmt.Errorf("create producer: %w", err)
	}

	return newConsumer(cfg, group, producer, predictor, opts...), nil
}

func newConsumer(cfg Config, group sarama.ConsumerGroup, producer sarama.SyncProducer, predictor Predictor, opts ...Option) *Consumer {
	return &Consumer{
		cfg:      cfg,
		group:    group,
		producer: producer,
		handler:  NewHandler(predictor, producer, cfg.ResponseTopic, opts...),
		logger:   logger.Get().Named("kafka-consumer"),
	}
}

// Run consumes until ctx is canceled or the group is closed.
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			metrics.RecordKafkaError("consume")
			c.logger.Warn(ctx, "consumer group error", logger.Error(err))
		}
	}()

	c.logger.Info(ctx, "consuming prediction requests",
		logger.String("topic", c.cfg.RequestTopic),
		logger.String("group", c.cfg.GroupID),
	)
	for {
		// Consume returns on every rebalance and must be called again.
		if err := c.group.Consume(ctx, []string{c.cfg.RequestTopic}, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("consume %s: %w", c.cfg.RequestTopic, err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close stops the group and the producer.
func (c *Consumer) Close() error {
	return errors.Join(c.group.Close(), c.producer.Close())
}
