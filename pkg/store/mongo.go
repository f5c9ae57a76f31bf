package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps snapshots in a single collection, one document per
// snapshot, keyed by state.snapshot_id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB at uri and uses the given database and
// collection. The connection is verified with a ping before returning.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoStore) Put(ctx context.Context, snap *Snapshot) error {
	filter := bson.M{"state.snapshot_id": snap.State.SnapshotID}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, filter, snap, opts); err != nil {
		return fmt.Errorf("store snapshot %s: %w", snap.State.SnapshotID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.M{"state.snapshot_id": id}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	return &snap, nil
}

func (s *MongoStore) List(ctx context.Context, repoName string) ([]State, error) {
	filter := bson.M{}
	if repoName != "" {
		filter["state.repo_name"] = repoName
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "state.created_at", Value: -1}, {Key: "state.snapshot_id", Value: 1}}).
		SetProjection(bson.M{"state": 1})

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer cur.Close(ctx)

	var states []State
	for cur.Next(ctx) {
		var doc struct {
			State State `bson:"state"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode snapshot state: %w", err)
		}
		states = append(states, doc.State)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return states, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"state.snapshot_id": id}); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
