package domain

import "time"

// SimulationLog is one append-only audit record written when a payment
// simulation event is processed for a charge.
type SimulationLog struct {
	ChargeID       string       `bson:"charge_id"`
	ReceivedAt     time.Time    `bson:"received_at"`
	PreviousStatus ChargeStatus `bson:"previous_status"`
	NewStatus      ChargeStatus `bson:"new_status"`
}

// SimulationMessage is the queue payload for a payment simulation request.
type SimulationMessage struct {
	ChargeID string `json:"charge_id"`
}

// SimulationQueue is the queue every simulation request is published to
// and the worker consumes from.
const SimulationQueue = "simulation_payment"
