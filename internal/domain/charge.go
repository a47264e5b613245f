package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ChargeStatus string

const (
	ChargePending   ChargeStatus = "pending"
	ChargePaid      ChargeStatus = "paid"
	ChargeCancelled ChargeStatus = "cancelled"
)

// ErrChargeFinalized is returned when a paid or cancelled charge is
// transitioned again.
var ErrChargeFinalized = errors.New("charge is already in a final state")

// Charge is a value type. Transitions never mutate the receiver; they
// return the next state and the caller is responsible for persisting it.
type Charge struct {
	ID             string
	PayerName      string
	PayerDocument  string
	Amount         decimal.Decimal
	Description    string
	PixKey         string
	ExpirationDate *time.Time
	Status         ChargeStatus
	CreatedAt      time.Time
}

// NewCharge builds a pending charge with a fresh id.
func NewCharge(payerName, payerDocument string, amount decimal.Decimal, description string) Charge {
	return Charge{
		ID:            uuid.NewString(),
		PayerName:     payerName,
		PayerDocument: payerDocument,
		Amount:        amount,
		Description:   description,
		Status:        ChargePending,
		CreatedAt:     time.Now(),
	}
}

// WithPixKey returns a copy carrying a generated pix key. A key is
// generated at most once; a charge that already has one is returned as is.
func (c Charge) WithPixKey() Charge {
	if c.PixKey != "" {
		return c
	}
	c.PixKey = uuid.NewString()
	return c
}

func (c Charge) MarkAsPaid() (Charge, error) {
	if c.Status != ChargePending {
		return c, ErrChargeFinalized
	}
	c.Status = ChargePaid
	return c, nil
}

func (c Charge) Cancel() (Charge, error) {
	if c.Status != ChargePending {
		return c, ErrChargeFinalized
	}
	c.Status = ChargeCancelled
	return c, nil
}
