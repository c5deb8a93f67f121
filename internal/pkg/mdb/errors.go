package mdb

import (
	"errors"
	"fmt"

	"github.com/sebastienferry/site-purge/internal/pkg/purge"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
)

// classify marks network and authentication failures as purge.ErrUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || isAuthError(err) {
		return fmt.Errorf("%w: %w", purge.ErrUnavailable, err)
	}
	return err
}

func isAuthError(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorCode(codeUnauthorized) || se.HasErrorCode(codeAuthenticationFailed)
	}
	return false
}
