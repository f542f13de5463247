package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/slwc/membership/internal/lib/sl"
)

// ErrDrop помечает сообщение, которое нет смысла обрабатывать повторно.
// Обработчик оборачивает его через %w, и сообщение снимается с очереди без requeue.
var ErrDrop = errors.New("drop message")

// Handler обрабатывает тело сообщения.
type Handler func(body []byte) error

// workers не больше prefetch из SetupChannel.
const workers = 10

// ConsumerMessage подписывается на очередь и обрабатывает сообщения в фоне до отмены ctx.
// Успех подтверждается Ack, ошибка обработчика возвращает сообщение в очередь.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler Handler) error {
	const op = "rabbitmq.ConsumerMessage"
	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go dispatch(ctx, log.With(slog.String("queue", queueName)), deliveries, handler)
	return nil
}

func dispatch(ctx context.Context, log *slog.Logger, deliveries <-chan amqp.Delivery, handler Handler) {
	sem := make(chan struct{}, workers)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Info("delivery channel closed")
				return
			}
			sem <- struct{}{}
			go func() {
				defer func() { <-sem }()
				settle(log, d, handler)
			}()
		}
	}
}

func settle(log *slog.Logger, d amqp.Delivery, handler Handler) {
	err := handler(d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
	case errors.Is(err, ErrDrop):
		log.Error("message dropped", slog.Uint64("tag", d.DeliveryTag), sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	default:
		log.Warn("handler failed, message requeued", slog.Bool("redelivered", d.Redelivered), sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	}
}
