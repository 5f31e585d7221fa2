// Package archive stores collection run records in MongoDB.
//
// Archival is optional. The collect command opens a Store only when
// --archive-uri is set; without the flag no connection is attempted and
// collection proceeds as usual. Each archived document records which
// packages a run touched and how each one fared, so long-running data
// gathering stays auditable after the raw files have been reprocessed.
package archive

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lablink-dev/figgen/pkg/errors"
)

const (
	databaseName   = "figgen"
	collectionName = "collections"
)

// PackageResult records the outcome for one package within a run.
// Error is empty for packages that collected cleanly.
type PackageResult struct {
	Name     string `bson:"name"`
	Versions int    `bson:"versions"`
	Error    string `bson:"error,omitempty"`
}

// Run is one archived collection run.
type Run struct {
	ID         uuid.UUID
	Kind       string
	StartedAt  time.Time
	FinishedAt time.Time
	Packages   []PackageResult
}

// document is the stored form of a run. The uuid is stored as its string
// form so documents stay readable in mongosh.
func (r Run) document() bson.M {
	return bson.M{
		"run_id":      r.ID.String(),
		"kind":        r.Kind,
		"started_at":  r.StartedAt.UTC(),
		"finished_at": r.FinishedAt.UTC(),
		"packages":    r.Packages,
	}
}

// Store archives collection runs in a MongoDB collection.
type Store struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// Open connects to MongoDB at uri and verifies the deployment is reachable
// with a ping before returning.
func Open(ctx context.Context, uri string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to archive")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "archive unreachable")
	}
	return &Store{
		client: client,
		runs:   client.Database(databaseName).Collection(collectionName),
	}, nil
}

// SaveRun inserts one run document.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	if _, err := s.runs.InsertOne(ctx, run.document()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "archive run %s", run.ID)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
