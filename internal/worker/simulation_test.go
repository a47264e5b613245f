package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pix-charge-api/internal/domain"
)

type fakeChargeRepo struct {
	charges       map[string]domain.Charge
	updateCalls   int
	updatedStatus domain.ChargeStatus
	findErr       error
}

func newFakeChargeRepo() *fakeChargeRepo {
	return &fakeChargeRepo{charges: map[string]domain.Charge{}}
}

func (f *fakeChargeRepo) Create(_ context.Context, charge domain.Charge) (*domain.Charge, error) {
	f.charges[charge.ID] = charge
	return &charge, nil
}

func (f *fakeChargeRepo) FindById(_ context.Context, id string) (*domain.Charge, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	charge, ok := f.charges[id]
	if !ok {
		return nil, nil
	}
	return &charge, nil
}

func (f *fakeChargeRepo) UpdateStatus(_ context.Context, id string, status domain.ChargeStatus) error {
	f.updateCalls++
	f.updatedStatus = status
	charge := f.charges[id]
	charge.Status = status
	f.charges[id] = charge
	return nil
}

type fakeSimulationLog struct {
	entries   []domain.SimulationLog
	appendErr error
}

func (f *fakeSimulationLog) Append(_ context.Context, entry domain.SimulationLog) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeAcknowledger struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (f *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks++
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacks++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacks++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Acks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acks
}

type workerFixture struct {
	repo   *fakeChargeRepo
	logs   *fakeSimulationLog
	acker  *fakeAcknowledger
	worker *PaymentSimulationWorker
}

func newWorkerFixture() *workerFixture {
	f := &workerFixture{
		repo:  newFakeChargeRepo(),
		logs:  &fakeSimulationLog{},
		acker: &fakeAcknowledger{},
	}
	f.worker = NewPaymentSimulationWorker(nil, f.repo, f.logs, zap.NewNop())
	return f
}

func (f *workerFixture) delivery(body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: f.acker, Body: []byte(body)}
}

func (f *workerFixture) seedCharge(status domain.ChargeStatus) domain.Charge {
	charge := domain.NewCharge("Joao Silva", "12345678901", decimal.NewFromFloat(50), "test").WithPixKey()
	charge.Status = status
	f.repo.charges[charge.ID] = charge
	return charge
}

func TestHandleSimulationForPendingCharge(t *testing.T) {
	f := newWorkerFixture()
	charge := f.seedCharge(domain.ChargePending)

	f.worker.Handle(context.Background(), f.delivery(`{"charge_id":"`+charge.ID+`"}`))

	require.Len(t, f.logs.entries, 1)
	entry := f.logs.entries[0]
	assert.Equal(t, charge.ID, entry.ChargeID)
	assert.Equal(t, domain.ChargePending, entry.PreviousStatus)
	assert.Equal(t, domain.ChargePaid, entry.NewStatus)
	assert.False(t, entry.ReceivedAt.IsZero())

	assert.Equal(t, 1, f.repo.updateCalls)
	assert.Equal(t, domain.ChargePaid, f.repo.updatedStatus)

	assert.Equal(t, 1, f.acker.acks)
	assert.Zero(t, f.acker.nacks)
}

func TestHandleSimulationForFinalizedCharge(t *testing.T) {
	f := newWorkerFixture()
	charge := f.seedCharge(domain.ChargePaid)

	f.worker.Handle(context.Background(), f.delivery(`{"charge_id":"`+charge.ID+`"}`))

	// The simulation is audited with the real previous status, but a
	// finalized charge keeps its state.
	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, domain.ChargePaid, f.logs.entries[0].PreviousStatus)
	assert.Zero(t, f.repo.updateCalls)
	assert.Equal(t, 1, f.acker.acks)
}

func TestHandleSimulationForUnknownCharge(t *testing.T) {
	f := newWorkerFixture()

	f.worker.Handle(context.Background(), f.delivery(`{"charge_id":"missing"}`))

	assert.Empty(t, f.logs.entries)
	assert.Zero(t, f.repo.updateCalls)
	assert.Equal(t, 1, f.acker.acks)
	assert.Zero(t, f.acker.nacks)
}

func TestHandleMalformedMessage(t *testing.T) {
	f := newWorkerFixture()

	f.worker.Handle(context.Background(), f.delivery(`{charge_id`))

	// Poison messages are rejected permanently.
	assert.Empty(t, f.logs.entries)
	assert.Zero(t, f.acker.acks)
	assert.Equal(t, 1, f.acker.nacks)
	assert.False(t, f.acker.requeue)
}

func TestHandleProcessingFailure(t *testing.T) {
	f := newWorkerFixture()
	charge := f.seedCharge(domain.ChargePending)
	f.logs.appendErr = errors.New("mongo unavailable")

	f.worker.Handle(context.Background(), f.delivery(`{"charge_id":"`+charge.ID+`"}`))

	assert.Zero(t, f.repo.updateCalls)
	assert.Zero(t, f.acker.acks)
	assert.Equal(t, 1, f.acker.nacks)
	assert.False(t, f.acker.requeue)
}

type fakeQueueConsumer struct {
	declared   []string
	deliveries chan amqp.Delivery
}

func (f *fakeQueueConsumer) DeclareQueue(name string) error {
	f.declared = append(f.declared, name)
	return nil
}

func (f *fakeQueueConsumer) Consume(string) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func TestStartConsumesDeliveries(t *testing.T) {
	f := newWorkerFixture()
	charge := f.seedCharge(domain.ChargePending)
	consumer := &fakeQueueConsumer{deliveries: make(chan amqp.Delivery, 1)}
	f.worker = NewPaymentSimulationWorker(consumer, f.repo, f.logs, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.worker.Start(ctx))
	assert.Equal(t, []string{domain.SimulationQueue}, consumer.declared)

	consumer.deliveries <- f.delivery(`{"charge_id":"` + charge.ID + `"}`)

	assert.Eventually(t, func() bool {
		return f.acker.Acks() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHandleStoreFailure(t *testing.T) {
	f := newWorkerFixture()
	f.repo.findErr = errors.New("connection reset")

	f.worker.Handle(context.Background(), f.delivery(`{"charge_id":"any"}`))

	assert.Empty(t, f.logs.entries)
	assert.Zero(t, f.acker.acks)
	assert.Equal(t, 1, f.acker.nacks)
}
