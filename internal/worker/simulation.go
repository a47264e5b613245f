package worker

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"pix-charge-api/internal/domain"
	"pix-charge-api/internal/repo"
)

// QueueConsumer is the queue surface the worker needs.
type QueueConsumer interface {
	DeclareQueue(name string) error
	Consume(queue string) (<-chan amqp.Delivery, error)
}

// PaymentSimulationWorker consumes simulation_payment and records each
// simulated payment: an append-only audit entry plus the paid status on
// the charge itself when it is still pending.
type PaymentSimulationWorker struct {
	queue   QueueConsumer
	charges repo.ChargeRepo
	logs    repo.SimulationLogRepo
	log     *zap.Logger
}

func NewPaymentSimulationWorker(
	queue QueueConsumer,
	charges repo.ChargeRepo,
	logs repo.SimulationLogRepo,
	log *zap.Logger,
) *PaymentSimulationWorker {
	return &PaymentSimulationWorker{
		queue:   queue,
		charges: charges,
		logs:    logs,
		log:     log,
	}
}

// Start declares the queue and launches the consume loop. It returns once
// consumption is set up; the loop runs until ctx is cancelled or the
// delivery channel closes.
func (w *PaymentSimulationWorker) Start(ctx context.Context) error {
	if err := w.queue.DeclareQueue(domain.SimulationQueue); err != nil {
		return err
	}
	deliveries, err := w.queue.Consume(domain.SimulationQueue)
	if err != nil {
		return err
	}

	w.log.Info("simulation worker started", zap.String("queue", domain.SimulationQueue))
	go w.run(ctx, deliveries)
	return nil
}

func (w *PaymentSimulationWorker) run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			w.log.Info("simulation worker stopped")
			return
		case delivery, ok := <-deliveries:
			if !ok {
				w.log.Warn("delivery channel closed")
				return
			}
			w.Handle(ctx, delivery)
		}
	}
}

// Handle processes one delivery. Messages are acked only after successful
// processing; malformed bodies and processing failures are rejected with
// no requeue.
func (w *PaymentSimulationWorker) Handle(ctx context.Context, delivery amqp.Delivery) {
	var msg domain.SimulationMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		w.log.Error("malformed simulation message", zap.Error(err))
		w.reject(delivery)
		return
	}

	if err := w.process(ctx, msg.ChargeID); err != nil {
		w.log.Error("process simulation", zap.String("charge_id", msg.ChargeID), zap.Error(err))
		w.reject(delivery)
		return
	}

	if err := delivery.Ack(false); err != nil {
		w.log.Error("ack delivery", zap.Error(err))
	}
}

func (w *PaymentSimulationWorker) process(ctx context.Context, chargeID string) error {
	charge, err := w.charges.FindById(ctx, chargeID)
	if err != nil {
		return err
	}
	if charge == nil {
		// The event is not redelivered for an unknown charge.
		w.log.Error("charge not found", zap.String("charge_id", chargeID))
		return nil
	}

	previousStatus := charge.Status

	if err := w.logs.Append(ctx, domain.SimulationLog{
		ChargeID:       chargeID,
		ReceivedAt:     time.Now(),
		PreviousStatus: previousStatus,
		NewStatus:      domain.ChargePaid,
	}); err != nil {
		return err
	}

	paid, err := charge.MarkAsPaid()
	if err != nil {
		// Terminal charges keep their state; the audit entry above still
		// records the simulation.
		w.log.Warn("charge already finalized",
			zap.String("charge_id", chargeID),
			zap.String("status", string(previousStatus)))
		return nil
	}
	if err := w.charges.UpdateStatus(ctx, paid.ID, paid.Status); err != nil {
		return err
	}

	w.log.Info("payment simulation processed",
		zap.String("charge_id", chargeID),
		zap.String("previous_status", string(previousStatus)),
		zap.String("new_status", string(domain.ChargePaid)))
	return nil
}

func (w *PaymentSimulationWorker) reject(delivery amqp.Delivery) {
	if err := delivery.Nack(false, false); err != nil {
		w.log.Error("nack delivery", zap.Error(err))
	}
}
