// Package kafka serves predictions over a request/response topic pair.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/metrics"
	"github.com/Shopify/sarama"
	"github.com/google/uuid"
)

// Predictor runs one building through the prediction pipeline.
type Predictor interface {
	Predict(ctx context.Context, in building.Input) (pipeline.Result, error)
}

// Handler implements sarama.ConsumerGroupHandler. Every consumed message
// is answered with exactly one reply on the response topic.
type Handler struct {
	predictor     Predictor
	producer      sarama.SyncProducer
	responseTopic string
	newID         func() string
	logger        logger.Logger
}

// NewHandler creates a handler that replies through producer.
func NewHandler(predictor Predictor, producer sarama.SyncProducer, responseTopic string, opts ...Option) *Handler {
	h := &Handler{
		predictor:     predictor,
		producer:      producer,
		responseTopic: responseTopic,
		newID:         uuid.NewString,
		logger:        logger.Get().Named("kafka"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *Handler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *Handler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for message := range claim.Messages() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		h.Handle(ctx, message)
		session.MarkMessage(message, "")
	}
	return nil
}

// Handle predicts one message and produces its reply. Produce failures are
// logged and counted; the message is still considered handled.
func (h *Handler) Handle(ctx context.Context, message *sarama.ConsumerMessage) {
	start := time.Now()
	metrics.RecordKafkaConsumed(message.Topic)

	reply := h.reply(ctx, message)
	if err := h.send(reply); err != nil {
		metrics.RecordKafkaProduced(h.responseTopic, "error")
		metrics.RecordKafkaError("produce")
		h.logger.Error(logger.WithRequestID(ctx, reply.RequestID), "failed to produce reply",
			logger.String("topic", h.responseTopic),
			logger.Error(err),
		)
		return
	}
	metrics.RecordKafkaProduced(h.responseTopic, reply.Status)
	h.logger.Debug(logger.WithRequestID(ctx, reply.RequestID), "request answered",
		logger.String("status", reply.Status),
		logger.Duration("elapsed", time.Since(start)),
	)
}

func (h *Handler) reply(ctx context.Context, message *sarama.ConsumerMessage) Reply {
	var req Request
	if err := json.Unmarshal(message.Value, &req); err != nil {
		metrics.RecordKafkaError("decode")
		return h.badRequest(string(message.Key), "malformed request: "+err.Error())
	}
	if req.RequestID == "" {
		req.RequestID = string(message.Key)
	}
	if req.RequestID == "" {
		req.RequestID = h.newID()
	}
	if req.Building == nil {
		return h.badRequest(req.RequestID, "building is required")
	}

	ctx = logger.WithRequestID(ctx, req.RequestID)
	res, err := h.predictor.Predict(ctx, *req.Building)
	if err != nil {
		detail := apperr.DetailOf(err)
		return Reply{RequestID: req.RequestID, Status: apperr.Status(err), Error: &detail}
	}
	res.RequestID = req.RequestID
	return Reply{RequestID: req.RequestID, Status: res.Status, Result: &res}
}

func (h *Handler) badRequest(id, msg string) Reply {
	if id == "" {
		id = h.newID()
	}
	return Reply{RequestID: id, Status: apperr.StatusBadRequest, Error: &apperr.Detail{Message: msg}}
}

func (h *Handler) send(reply Reply) error {
	raw, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	_, _, err = h.producer.SendMessage(&sarama.ProducerMessage{
		Topic: h.responseTopic,
		Key:   sarama.StringEncoder(reply.RequestID),
		Value: sarama.ByteEncoder(raw),
	})
	return err
}
