package mdb

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"github.com/sebastienferry/site-purge/internal/pkg/purge"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassify(t *testing.T) {
	plain := errors.New("duplicate key")

	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"nil", nil, false},
		{"plain", plain, false},
		{"unauthorized", &mongo.CommandError{Code: 13, Name: "Unauthorized"}, true},
		{"authentication failed", &mongo.CommandError{Code: 18, Name: "AuthenticationFailed"}, true},
		{"network", &mongo.CommandError{Code: 6, Labels: []string{"NetworkError"}}, true},
		{"other command error", &mongo.CommandError{Code: 11000, Name: "DuplicateKey"}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := classify(test.err)
			if test.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, test.err)
			assert.Equal(t, test.unavailable, errors.Is(got, purge.ErrUnavailable))
		})
	}
}

func TestBatchRejectsMixedCollections(t *testing.T) {
	b := NewStore(NewMongo("mongodb://localhost:27017", "backoffice", 0), false).NewBatch()
	b.Delete(purge.DocumentHandle{Collection: purge.Sites, Key: "a"})
	b.Delete(purge.DocumentHandle{Collection: purge.JobCards, Key: "b"})

	assert.Equal(t, 2, b.Len())
	assert.Error(t, b.Commit(context.Background()))
}

func TestEmptyBatchCommit(t *testing.T) {
	b := NewStore(NewMongo("mongodb://localhost:27017", "backoffice", 0), false).NewBatch()
	assert.NoError(t, b.Commit(context.Background()))
}

func TestPingWithoutConnection(t *testing.T) {
	assert.Error(t, NewMongo("mongodb://localhost:27017", "backoffice", 0).Ping(context.Background()))
}

func TestFailedCommitWarnsOutsideTransaction(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	tests := []struct {
		transactions bool
		warned       bool
	}{
		{false, true},
		{true, false},
	}

	for _, test := range tests {
		buf.Reset()
		b := NewStore(NewMongo("mongodb://localhost:27017", "backoffice", 0), test.transactions).NewBatch().(*batch)
		b.Delete(purge.DocumentHandle{Collection: purge.Inventory, Key: "a"})
		b.Delete(purge.DocumentHandle{Collection: purge.Inventory, Key: "b"})

		cause := &mongo.CommandError{Code: 112, Name: "WriteConflict"}
		err := b.failed(cause)
		assert.ErrorIs(t, err, cause)

		out := buf.String()
		assert.Equal(t, test.warned, bytes.Contains([]byte(out), []byte("outside a transaction")), "transactions=%v", test.transactions)
		if test.warned {
			assert.Contains(t, out, "collection=inventory")
			assert.Contains(t, out, "staged=2")
		}
	}
}
