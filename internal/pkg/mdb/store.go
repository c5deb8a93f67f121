package mdb

import (
	"context"
	"fmt"

	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"github.com/sebastienferry/site-purge/internal/pkg/purge"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store exposes the collections of a MongoDB database to the purge.
type Store struct {
	db           *MDB
	transactions bool
}

func NewStore(db *MDB, transactions bool) *Store {
	return &Store{
		db:           db,
		transactions: transactions,
	}
}

type idOnly struct {
	ID interface{} `bson:"_id"`
}

// List the ids of every document of the collection, sorted by _id
func (s *Store) ListDocuments(ctx context.Context, collection purge.CollectionName) ([]purge.DocumentHandle, error) {

	findOptions := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := s.db.collection(string(collection)).Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, classify(err)
	}

	var ids []idOnly
	if err := cur.All(ctx, &ids); err != nil {
		return nil, classify(err)
	}

	handles := make([]purge.DocumentHandle, 0, len(ids))
	for _, id := range ids {
		handles = append(handles, purge.DocumentHandle{Collection: collection, Key: id.ID})
	}
	return handles, nil
}

// Get the number of documents in a collection.
func (s *Store) Count(ctx context.Context, collection purge.CollectionName) (int64, error) {
	count, err := s.db.collection(string(collection)).CountDocuments(ctx, bson.D{})
	return count, classify(err)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) NewBatch() purge.Batch {
	return &batch{store: s}
}

// A batch is committed as a single deleteMany on one collection.
type batch struct {
	store      *Store
	collection purge.CollectionName
	ids        []interface{}
	mixed      bool
}

func (b *batch) Delete(handle purge.DocumentHandle) {
	if len(b.ids) == 0 {
		b.collection = handle.Collection
	} else if handle.Collection != b.collection {
		b.mixed = true
	}
	b.ids = append(b.ids, handle.Key)
}

func (b *batch) Len() int {
	return len(b.ids)
}

func (b *batch) Commit(ctx context.Context) error {

	if len(b.ids) == 0 {
		return nil
	}
	if b.mixed {
		return fmt.Errorf("batch spans several collections, starting with %s", b.collection)
	}
	if len(b.ids) > purge.MaxBatchSize {
		return fmt.Errorf("batch of %d deletions exceeds the %d limit", len(b.ids), purge.MaxBatchSize)
	}

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: b.ids}}}}
	coll := b.store.db.collection(string(b.collection))

	var result *mongo.DeleteResult
	var err error
	if b.store.transactions {
		result, err = b.deleteInTransaction(ctx, coll, filter)
	} else {
		result, err = coll.DeleteMany(ctx, filter)
	}
	if err != nil {
		return b.failed(err)
	}

	// Documents removed concurrently are not an error
	if result != nil && int(result.DeletedCount) != len(b.ids) {
		log.WarnWithFields("fewer documents deleted than staged", log.Fields{
			"collection": b.collection,
			"staged":     len(b.ids),
			"deleted":    result.DeletedCount,
		})
	}
	return nil
}

// Outside a transaction a failed deleteMany may have removed part of the
// batch, while the purge only counts committed batches.
func (b *batch) failed(err error) error {
	if !b.store.transactions {
		log.WarnWithFields("deleteMany failed outside a transaction, part of the batch may be deleted", log.Fields{
			"collection": b.collection,
			"staged":     len(b.ids),
			"error":      err,
		})
	}
	return classify(err)
}

func (b *batch) deleteInTransaction(ctx context.Context, coll *mongo.Collection, filter bson.D) (*mongo.DeleteResult, error) {

	session, err := b.store.db.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	res, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return coll.DeleteMany(sc, filter)
	})
	if err != nil {
		return nil, err
	}
	result, _ := res.(*mongo.DeleteResult)
	return result, nil
}
