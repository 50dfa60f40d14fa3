package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps runs in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the expiry index exists.
// Database defaults to "zclosure" and Collection to "runs".
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "zclosure"
	}
	if cfg.Collection == "" {
		cfg.Collection = "runs"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create ttl index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

type runDoc struct {
	ID        string    `bson:"_id"`
	Source    string    `bson:"source"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
	Trees     int       `bson:"trees"`
	Taxa      int       `bson:"taxa"`
	Splits    int       `bson:"splits"`
	Options   string    `bson:"options,omitempty"`
	Result    string    `bson:"result,omitempty"`
}

func toDoc(r *Run) runDoc {
	return runDoc{
		ID:        r.ID,
		Source:    r.Source,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
		Trees:     r.Trees,
		Taxa:      r.Taxa,
		Splits:    r.Splits,
		Options:   string(r.Options),
		Result:    string(r.Result),
	}
}

func fromDoc(d runDoc) *Run {
	r := &Run{
		ID:        d.ID,
		Source:    d.Source,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
		Trees:     d.Trees,
		Taxa:      d.Taxa,
		Splits:    d.Splits,
	}
	if d.Options != "" {
		r.Options = json.RawMessage(d.Options)
	}
	if d.Result != "" {
		r.Result = json.RawMessage(d.Result)
	}
	return r
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	if err := zerrors.ValidateRunID(id); err != nil {
		return nil, err
	}
	var doc runDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	run := fromDoc(doc)
	if run.IsExpired() {
		return nil, notFound(id)
	}
	return run, nil
}

func (s *MongoStore) Save(ctx context.Context, run *Run) error {
	if err := zerrors.ValidateRunID(run.ID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": run.ID}, toDoc(run), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := zerrors.ValidateRunID(id); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Run, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"result": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.M{"expires_at": bson.M{"$gt": time.Now()}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var docs []runDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode runs: %w", err)
	}
	out := make([]*Run, len(docs))
	for i, d := range docs {
		out[i] = fromDoc(d)
	}
	return out, nil
}

// Cleanup deletes expired runs now instead of waiting for the TTL monitor.
func (s *MongoStore) Cleanup(ctx context.Context) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	if err != nil {
		return fmt.Errorf("cleanup runs: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
