package services

import (
	"client-registry/models"
	"context"
)

// Repository is the write side every managed entity supports.
type Repository[T any] interface {
	Add(ctx context.Context, item *T) error
	// Drop soft-deletes item and mirrors the change onto it.
	Drop(ctx context.Context, item *T) error
	// Delete hard-deletes item; deleting a missing row is not an error.
	Delete(ctx context.Context, item *T) error
	// Modify writes only the fields that differ from the stored row.
	Modify(ctx context.Context, item *T) error
	// SearchByID returns nil, nil when no row matches.
	SearchByID(ctx context.Context, id int64) (*T, error)
}

// Criteria is a search filter the Manager can copy before caching it.
type Criteria[C any] interface {
	Clone() C
}

// Finder adds paginated criteria search to a Repository.
type Finder[T any, C any] interface {
	Repository[T]
	SearchBy(ctx context.Context, criteria C, page int) (models.LastSearch[C], error)
	PageSize() int
}

// ItemValidator holds the domain rules checked before writes.
type ItemValidator[T any] interface {
	ValidateNew(item *T) error
	ValidateStored(item *T) error
}
