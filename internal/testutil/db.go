package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/mentorlink/mentorlink/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultTestTimeout bounds each test's database work.
const DefaultTestTimeout = 10 * time.Second

var dbCounter int

// SetupTestDB connects to the local MongoDB instance and returns a
// fresh, uniquely named database that is dropped when the test ends.
// Set MONGO_TEST_URI to point somewhere other than localhost. Tests
// that need a database are skipped when no server is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongo not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo not reachable: %v", err)
	}

	dbCounter++
	name := fmt.Sprintf("mentorlink_test_%d_%d", time.Now().UnixNano(), dbCounter)
	db := client.Database(name)

	// unique-key behavior in the stores depends on the real indexes
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context bounded by DefaultTestTimeout.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultTestTimeout)
}
