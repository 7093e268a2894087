// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/mentorlink/mentorlink/internal/app/system/mailer"
	"github.com/mentorlink/mentorlink/internal/app/system/tasks"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and back-end dependencies for the app. The
// struct is built once in ConnectDB and passed by value to the later
// lifecycle hooks, so long-lived components live here as pointers.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Mail delivers email asynchronously; started in Startup and
	// drained in Shutdown.
	Mail *mailer.Queue

	// Tasks runs periodic background jobs (expired-code cleanup).
	Tasks *tasks.Runner
}
