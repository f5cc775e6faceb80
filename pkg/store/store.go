// Package store persists routed layouts.
//
// Routing itself never touches storage. A store is where the CLI and the
// HTTP API hand finished layouts for later viewing or checking.
//
// Backends:
//   - memory: process-local, for tests and the API server without a database
//   - file: one JSON document per layout in a directory
//   - mongodb: a shared document collection for multi-instance deployments
//
// # Usage
//
//	st, err := store.Open(ctx, "mongodb://localhost:27017")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	doc := store.NewDocument(layout)
//	if err := st.Save(ctx, doc); err != nil {
//	    return err
//	}
package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	perrors "github.com/matzehuels/perfroute/pkg/errors"
	"github.com/matzehuels/perfroute/pkg/project"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// Document is one stored layout.
type Document struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Layout    *project.Layout `json:"layout" bson:"layout"`
}

// Summary describes a document without its layout.
type Summary struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	RoutedNets int       `json:"routed_nets" bson:"routed_nets"`
	FailedNets int       `json:"failed_nets" bson:"failed_nets"`
}

// NewDocument wraps a layout with a fresh ID.
func NewDocument(l *project.Layout) *Document {
	return &Document{
		ID:        uuid.NewString(),
		Name:      l.Name,
		CreatedAt: time.Now().UTC(),
		Layout:    l,
	}
}

// Summary returns the document's listing entry.
func (d *Document) Summary() Summary {
	s := Summary{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}
	if d.Layout != nil && d.Layout.Result != nil {
		s.RoutedNets = d.Layout.Result.RoutedNets
		s.FailedNets = d.Layout.Result.FailedNets
	}
	return s
}

// Store is the interface for layout storage backends.
type Store interface {
	// Save inserts or replaces a document.
	Save(ctx context.Context, doc *Document) error

	// Load returns a document by ID, or ErrNotFound.
	Load(ctx context.Context, id string) (*Document, error)

	// List returns every document summary, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a document. Deleting a missing document returns
	// ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Open selects a backend from a URI: "memory:" (or empty) for memory,
// "file:<dir>" or a plain directory path for files, and "mongodb://" or
// "mongodb+srv://" for MongoDB.
func Open(ctx context.Context, uri string) (Store, error) {
	switch {
	case uri == "" || uri == "memory:":
		return NewMemoryStore(), nil
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		if err := perrors.ValidateBackendURI(uri, "mongodb", "mongodb+srv"); err != nil {
			return nil, err
		}
		return NewMongoStore(ctx, MongoConfig{URI: uri})
	case strings.HasPrefix(uri, "file:"):
		return NewFileStore(strings.TrimPrefix(strings.TrimPrefix(uri, "file:"), "//"))
	case strings.Contains(uri, "://"):
		return nil, perrors.New(perrors.ErrCodeUnsupported, "unsupported store %q", uri)
	default:
		return NewFileStore(uri)
	}
}

// sortSummaries orders newest first; the ID breaks ties.
func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
