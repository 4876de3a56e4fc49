package history

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Gauravv801/QA-Eval/pkg/errors"
	"github.com/Gauravv801/QA-Eval/pkg/observability"
)

const (
	defaultDatabase   = "qaeval"
	defaultCollection = "runs"
)

// MongoStore persists runs in a MongoDB collection, keyed by run id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOptions configures the MongoDB backend.
type MongoOptions struct {
	URI        string // required, e.g. mongodb://localhost:27017
	Database   string // defaults to "qaeval"
	Collection string // defaults to "runs"
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo URI is required")
	}
	if opts.Database == "" {
		opts.Database = defaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = defaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, run *Run) error {
	start := time.Now()
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": run.ID},
		run,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeStorage, err, "saving run %s", run.ID)
	}
	observability.History().OnSave(ctx, "mongo", time.Since(start), err)
	return err
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	start := time.Now()
	var run Run
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	observability.History().OnLoad(ctx, "mongo", err == nil, time.Since(start))
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "loading run %s", id)
	}
	return &run, nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context, limit int) ([]*Run, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"report": 0})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "listing runs")
	}
	defer cur.Close(ctx)

	var runs []*Run
	if err := cur.All(ctx, &runs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decoding runs")
	}
	return runs, nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "deleting run %s", id)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
