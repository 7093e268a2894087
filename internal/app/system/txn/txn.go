// Package txn wraps multi-document MongoDB transactions.
//
// Transactions require a replica set (or mongos). Standalone servers —
// common in local dev and CI — reject session/transaction commands, so
// WithTransaction detects that case and falls back to running the
// callback without a transaction. Production deployments run against a
// replica set and always get real transactional semantics.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// WithTransaction runs fn inside a MongoDB transaction. All writes fn
// makes through the session context commit together or abort together.
// The session is always released, whatever fn returns.
//
// If the server does not support transactions, fn runs once outside a
// transaction and a warning is logged.
func WithTransaction(ctx context.Context, client *mongo.Client, logger *zap.Logger, fn func(sc mongo.SessionContext) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			logger.Warn("mongo sessions unavailable; running without transaction", zap.Error(err))
			return fn(mongo.NewSessionContext(ctx, nil))
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		logger.Warn("mongo transactions unavailable; running without transaction", zap.Error(err))
		return fn(mongo.NewSessionContext(ctx, nil))
	}
	return err
}

// Command error codes returned when the server cannot run transactions.
//
//	20  IllegalOperation (transaction numbers on non-replica-set member)
//	51  command not supported
//	263 operation not allowed in a multi-document transaction
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err indicates the MongoDB deployment
// cannot run multi-document transactions.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if ok := asCommandError(err, &cmdErr); ok {
		if notSupportedCodes[cmdErr.Code] {
			return true
		}
	}

	// Driver-wrapped errors lose the code; fall back to keyword pairs.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") &&
		(strings.Contains(msg, "replica set") || strings.Contains(msg, "session")) {
		return true
	}
	if strings.Contains(msg, "session") && strings.Contains(msg, "not supported") {
		return true
	}
	if strings.Contains(msg, "illegal operation") && strings.Contains(msg, "transaction") {
		return true
	}
	return false
}

func asCommandError(err error, target *mongo.CommandError) bool {
	if ce, ok := err.(mongo.CommandError); ok {
		*target = ce
		return true
	}
	return false
}
