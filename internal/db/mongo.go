package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minutes_linker/internal/config"
	"minutes_linker/internal/models"
)

// MongoDB is the outcome journal: an audit trail of what each run did. It is never read by the engine.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	outcomes *mongo.Collection
	logger   *slog.Logger
}

func NewMongoDB(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Connection))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)

	d := &MongoDB{
		client:   client,
		database: db,
		outcomes: db.Collection(cfg.Collections.Outcomes),
		logger:   logger,
	}

	d.createIndexes(ctx)
	return d, nil
}

func (d *MongoDB) createIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "run_id", Value: 1}}},
		{Keys: bson.D{{Key: "minutes_url", Value: 1}, {Key: "issue", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
	}
	if _, err := d.outcomes.Indexes().CreateMany(ctx, indexes); err != nil {
		d.logger.Warn("failed to create outcome indexes", "error", err)
	}
}

func (d *MongoDB) SaveOutcome(ctx context.Context, rec *models.OutcomeRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := d.outcomes.InsertOne(ctx, rec)
	return err
}

// RunSummary counts the outcomes of a run per kind.
func (d *MongoDB) RunSummary(ctx context.Context, runID string) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := d.outcomes.Aggregate(ctx, SummaryPipeline(runID))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Kind  string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	summary := make(map[string]int, len(rows))
	for _, row := range rows {
		summary[row.Kind] = row.Count
	}
	return summary, nil
}

func SummaryPipeline(runID string) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "run_id", Value: runID}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$kind"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

func (d *MongoDB) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}
