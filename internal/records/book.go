package records

import (
	"context"

	"github.com/desertthunder/inbody/internal/models"
)

// RecordStore is what a [Book] needs from the remote side. [Adapter] implements it.
type RecordStore interface {
	ReadAll(ctx context.Context) ([]models.Measurement, error)
	AppendOne(ctx context.Context, m models.Measurement) (*AppendResult, error)
}

// Book keeps a [Collection] in step with a [RecordStore].
type Book struct {
	store      RecordStore
	collection *Collection
}

// NewBook creates an empty [Book].
func NewBook(store RecordStore) *Book {
	return &Book{store: store, collection: &Collection{}}
}

// Reload re-reads the sheet and replaces the collection. On error the collection is unchanged.
func (b *Book) Reload(ctx context.Context) error {
	records, err := b.store.ReadAll(ctx)
	if err != nil {
		return err
	}
	b.collection.Replace(records)
	return nil
}

// Add appends m remotely, then mirrors it locally.
func (b *Book) Add(ctx context.Context, m models.Measurement) (*AppendResult, error) {
	result, err := b.store.AppendOne(ctx, m)
	if err != nil {
		return nil, err
	}
	b.collection.Append(m)
	return result, nil
}

// Records exposes the local mirror.
func (b *Book) Records() *Collection {
	return b.collection
}
