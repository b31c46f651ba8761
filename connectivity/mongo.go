package connectivity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoDriver = "mongodb"

// Server codes that mean the credentials were rejected.
var mongoAuthCodes = map[int32]struct{}{
	11: {}, // UserNotFound
	13: {}, // Unauthorized
	18: {}, // AuthenticationFailed
}

// MongoConnector opens MongoDB clients and pings the admin database.
type MongoConnector struct{}

func (MongoConnector) Driver() string {
	return mongoDriver
}

// Connect builds a client for uri. The driver connects lazily, so server
// selection happens during the first Ping and is bounded by timeout.
func (MongoConnector) Connect(ctx context.Context, uri string, timeout time.Duration) (Session, error) {
	opts := options.Client().ApplyURI(uri)
	if err := opts.Validate(); err != nil {
		return nil, newProbeError(KindConfiguration, "", fmt.Errorf("invalid mongodb uri: %w", err))
	}
	if timeout > 0 {
		opts.SetServerSelectionTimeout(timeout)
		opts.SetConnectTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return &mongoSession{client: client}, nil
}

func (MongoConnector) Classify(err error) *ProbeError {
	return classifyMongoError(err)
}

type mongoSession struct {
	client *mongo.Client
}

func (s *mongoSession) Ping(ctx context.Context) (Response, error) {
	var result bson.M
	cmd := bson.D{{Key: "ping", Value: 1}}
	if err := s.client.Database("admin").RunCommand(ctx, cmd).Decode(&result); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return Response(result), nil
}

func (s *mongoSession) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}

func classifyMongoError(err error) *ProbeError {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		kind := KindServer
		if _, ok := mongoAuthCodes[cmdErr.Code]; ok {
			kind = KindAuthentication
		}
		probeErr := newProbeError(kind, strconv.Itoa(int(cmdErr.Code)), err)
		if cmdErr.Message != "" {
			probeErr.Message = cmdErr.Message
		}
		return probeErr
	}

	// Handshake auth failures reach the caller wrapped in server selection
	// and connection errors without a typed code.
	if msg := strings.ToLower(err.Error()); strings.Contains(msg, "auth error") || strings.Contains(msg, "authentication failed") {
		return newProbeError(KindAuthentication, "", err)
	}

	switch {
	case mongo.IsTimeout(err):
		return newProbeError(KindTimeout, "", err)
	case mongo.IsNetworkError(err):
		return newProbeError(KindNetwork, "", err)
	}
	return nil
}
