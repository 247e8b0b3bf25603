package job

import (
	"context"
	"time"

	"github.com/BartekS5/csvbatch/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExecutionsCollection is the collection holding job execution documents.
const ExecutionsCollection = "job_executions"

// MongoRepository stores job executions in MongoDB, one document per launch.
type MongoRepository struct {
	Coll    *mongo.Collection
	Timeout time.Duration
}

func NewMongoRepository(client *mongo.Client, database string) *MongoRepository {
	return &MongoRepository{
		Coll:    client.Database(database).Collection(ExecutionsCollection),
		Timeout: 10 * time.Second,
	}
}

func (m *MongoRepository) Create(ctx context.Context, exec *models.JobExecution) error {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, err := m.Coll.InsertOne(ctx, exec)
	return err
}

func (m *MongoRepository) Update(ctx context.Context, exec *models.JobExecution) error {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, err := m.Coll.ReplaceOne(ctx, bson.M{"_id": exec.ID}, exec, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoRepository) List(ctx context.Context, jobName string, limit int) ([]models.JobExecution, error) {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	filter := bson.M{}
	if jobName != "" {
		filter["jobName"] = jobName
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cursor, err := m.Coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.JobExecution
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
