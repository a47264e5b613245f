package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"pix-charge-api/internal/domain"
)

// simulationLogCollection is append-only; records are never updated or
// removed by this service.
const simulationLogCollection = "simulate-payment-logs"

type SimulationLogRepo interface {
	Append(ctx context.Context, entry domain.SimulationLog) error
}

type simulationLogRepo struct {
	db *mongo.Database
}

func NewSimulationLogRepo(db *mongo.Database) SimulationLogRepo {
	return &simulationLogRepo{db: db}
}

func (r *simulationLogRepo) Append(ctx context.Context, entry domain.SimulationLog) error {
	_, err := r.db.Collection(simulationLogCollection).InsertOne(ctx, entry)
	return err
}
