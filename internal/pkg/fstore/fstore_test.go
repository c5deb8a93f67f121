package fstore

import (
	"context"
	"errors"
	"testing"

	"github.com/sebastienferry/site-purge/internal/pkg/purge"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err         error
		unavailable bool
	}{
		{status.Error(codes.Unavailable, "connection reset"), true},
		{status.Error(codes.Unauthenticated, "token expired"), true},
		{status.Error(codes.PermissionDenied, "missing role"), true},
		{status.Error(codes.DeadlineExceeded, "timeout"), true},
		{status.Error(codes.Aborted, "contention"), false},
		{status.Error(codes.InvalidArgument, "too many writes"), false},
		{errors.New("plain"), false},
	}

	for _, test := range tests {
		got := classify(test.err)
		assert.ErrorIs(t, got, test.err)
		assert.Equal(t, test.unavailable, errors.Is(got, purge.ErrUnavailable), "classify(%v)", test.err)
	}
	assert.NoError(t, classify(nil))
}

func TestBatchRejectsForeignHandles(t *testing.T) {
	b := (&Store{}).NewBatch()
	b.Delete(purge.DocumentHandle{Collection: purge.Sites, Key: "not-a-ref"})

	assert.Zero(t, b.Len())
	assert.Error(t, b.Commit(context.Background()))
}

func TestEmptyBatchCommit(t *testing.T) {
	assert.NoError(t, (&Store{}).NewBatch().Commit(context.Background()))
}
