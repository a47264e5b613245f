package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pix-charge-api/internal/domain"
	"pix-charge-api/internal/infrastructure/cache"
	"pix-charge-api/internal/repo"
)

var (
	// ErrFindCharge is returned when a lookup finds no charge. The text is
	// part of the API contract.
	ErrFindCharge = errors.New("Occurred an error while trying to find the charge")

	// ErrChargeNotFound is returned when a simulation is requested for a
	// charge that does not exist.
	ErrChargeNotFound = errors.New("Charge not found")
)

// SimulationPublisher is the queue surface the service needs to request a
// payment simulation.
type SimulationPublisher interface {
	DeclareQueue(name string) error
	Publish(ctx context.Context, queue string, body []byte) error
}

type CreateChargeInput struct {
	PayerName     string
	PayerDocument string
	Amount        decimal.Decimal
	Description   string
}

type ChargeService interface {
	CreateCharge(ctx context.Context, input CreateChargeInput) (*domain.ChargeView, error)
	FindChargeById(ctx context.Context, id string) (*domain.ChargeView, error)
	RequestSimulation(ctx context.Context, chargeID string) error
}

type chargeService struct {
	charges   repo.ChargeRepo
	cache     cache.Cache
	publisher SimulationPublisher
	log       *zap.Logger
}

func NewChargeService(
	charges repo.ChargeRepo,
	viewCache cache.Cache,
	publisher SimulationPublisher,
	log *zap.Logger,
) ChargeService {
	return &chargeService{
		charges:   charges,
		cache:     viewCache,
		publisher: publisher,
		log:       log,
	}
}

// CreateCharge persists a new pending charge with a freshly generated pix
// key and returns its external view. Store errors propagate unchanged.
func (s *chargeService) CreateCharge(ctx context.Context, input CreateChargeInput) (*domain.ChargeView, error) {
	charge := domain.NewCharge(input.PayerName, input.PayerDocument, input.Amount, input.Description)
	charge = charge.WithPixKey()

	created, err := s.charges.Create(ctx, charge)
	if err != nil {
		return nil, err
	}

	s.log.Info("charge created", zap.String("charge_id", created.ID))
	view := created.View()
	return &view, nil
}

// FindChargeById is a cache-aside read. A cache hit is authoritative and
// never touches the store; a malformed cached payload fails the call
// instead of falling through, so cache corruption surfaces immediately.
func (s *chargeService) FindChargeById(ctx context.Context, id string) (*domain.ChargeView, error) {
	key := cacheKey(id)

	cached, found, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		var view domain.ChargeView
		if err := json.Unmarshal(cached, &view); err != nil {
			return nil, fmt.Errorf("decode cached charge %s: %w", id, err)
		}
		return &view, nil
	}

	charge, err := s.charges.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if charge == nil {
		return nil, ErrFindCharge
	}

	view := charge.View()
	payload, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, payload); err != nil {
		return nil, err
	}
	return &view, nil
}

// RequestSimulation enqueues a payment simulation for an existing charge.
// The store is consulted directly, never the cache.
func (s *chargeService) RequestSimulation(ctx context.Context, chargeID string) error {
	charge, err := s.charges.FindById(ctx, chargeID)
	if err != nil {
		return err
	}
	if charge == nil {
		return ErrChargeNotFound
	}

	if err := s.publisher.DeclareQueue(domain.SimulationQueue); err != nil {
		return err
	}
	body, err := json.Marshal(domain.SimulationMessage{ChargeID: chargeID})
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, domain.SimulationQueue, body); err != nil {
		return err
	}

	s.log.Info("simulation requested", zap.String("charge_id", chargeID))
	return nil
}

func cacheKey(id string) string {
	return "charge:" + id
}
