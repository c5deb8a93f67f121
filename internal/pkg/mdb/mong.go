package mdb

import (
	"context"
	"errors"
	"time"

	"github.com/sebastienferry/site-purge/internal/pkg/config"
	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MDB struct {
	Uri      string
	Database string
	Timeout  time.Duration
	client   *mongo.Client
}

// NewMongo returns a new, not yet connected, MDB
func NewMongo(uri string, database string, timeout time.Duration) *MDB {
	return &MDB{
		Uri:      uri,
		Database: database,
		Timeout:  timeout,
	}
}

// Connect to the MongoDB server and check the connection
func (m *MDB) Connect(ctx context.Context) error {

	connectOpts := options.Client().ApplyURI(m.Uri)
	if m.Timeout > 0 {
		connectOpts.SetConnectTimeout(m.Timeout).SetServerSelectionTimeout(m.Timeout)
	}

	client, err := mongo.Connect(ctx, connectOpts)
	if err != nil {
		return classify(err)
	}
	m.client = client

	if err := m.Ping(ctx); err != nil {
		return err
	}
	log.Info("successfully connected to the server ", config.ObfuscateCredentials(m.Uri))
	return nil
}

func (m *MDB) Disconnect(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func (m *MDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return errors.New("mongodb client not connected")
	}
	return classify(m.client.Ping(ctx, nil))
}

func (m *MDB) collection(name string) *mongo.Collection {
	return m.client.Database(m.Database).Collection(name)
}
