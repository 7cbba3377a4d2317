package services

import (
	"client-registry/metrics"
	"client-registry/models"
	"context"
	"log/slog"
	"time"
)

// Manager validates writes, delegates to a Finder and keeps the last search
// consistent with the store by re-running it after every successful mutation.
//
// A Manager is owned by a single caller; it does no locking of its own.
// Cached criteria never share memory with the caller.
type Manager[T any, C Criteria[C]] struct {
	finder    Finder[T, C]
	validator ItemValidator[T]
	metrics   metrics.Recorder

	lastSearch   *models.LastSearch[C]
	lastSelected *T
}

// NewManager creates a manager with an empty search cache.
func NewManager[T any, C Criteria[C]](finder Finder[T, C], validator ItemValidator[T], recorder metrics.Recorder) *Manager[T, C] {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Manager[T, C]{
		finder:    finder,
		validator: validator,
		metrics:   recorder,
	}
}

// PageSize returns the finder's page size.
func (m *Manager[T, C]) PageSize() int {
	return m.finder.PageSize()
}

// ==================== MUTATIONS ====================

func (m *Manager[T, C]) Add(ctx context.Context, item *T) error {
	return m.mutate(ctx, "add", item, m.validator.ValidateNew, m.finder.Add)
}

func (m *Manager[T, C]) Drop(ctx context.Context, item *T) error {
	return m.mutate(ctx, "drop", item, nil, m.finder.Drop)
}

func (m *Manager[T, C]) Delete(ctx context.Context, item *T) error {
	return m.mutate(ctx, "delete", item, nil, m.finder.Delete)
}

func (m *Manager[T, C]) Modify(ctx context.Context, item *T) error {
	return m.mutate(ctx, "modify", item, m.validator.ValidateStored, m.finder.Modify)
}

// mutate runs validate and apply, then refreshes the cached search. A refresh
// failure is returned as a *ReplayError; the write itself has already happened.
func (m *Manager[T, C]) mutate(ctx context.Context, op string, item *T, validate func(*T) error, apply func(context.Context, *T) error) error {
	start := time.Now()

	if validate != nil {
		if err := validate(item); err != nil {
			m.metrics.Observe(ctx, op, false, time.Since(start))
			return err
		}
	}
	if err := apply(ctx, item); err != nil {
		m.metrics.Observe(ctx, op, false, time.Since(start))
		return err
	}
	m.metrics.Observe(ctx, op, true, time.Since(start))

	return m.replay(ctx, op)
}

func (m *Manager[T, C]) replay(ctx context.Context, op string) error {
	if m.lastSearch == nil {
		return nil
	}

	fresh, err := m.finder.SearchBy(ctx, m.lastSearch.Criteria, m.lastSearch.Page)
	if err != nil {
		slog.Warn("cached search could not be refreshed",
			"operation", op,
			"page", m.lastSearch.Page,
			"error", err,
		)
		m.metrics.ReplayFailed(ctx, op)
		return &ReplayError{Op: op, Err: err}
	}
	m.cache(fresh)
	return nil
}

// ==================== SEARCHES ====================

// SearchBy runs the search and caches its result, replacing any previous one.
func (m *Manager[T, C]) SearchBy(ctx context.Context, criteria C, page int) (models.LastSearch[C], error) {
	start := time.Now()
	result, err := m.finder.SearchBy(ctx, criteria, page)
	m.metrics.Observe(ctx, "search_by", err == nil, time.Since(start))
	if err != nil {
		return models.LastSearch[C]{}, err
	}
	m.cache(result)
	return result, nil
}

func (m *Manager[T, C]) cache(s models.LastSearch[C]) {
	s.Criteria = s.Criteria.Clone()
	m.lastSearch = &s
}

func (m *Manager[T, C]) SearchByID(ctx context.Context, id int64) (*T, error) {
	start := time.Now()
	item, err := m.finder.SearchByID(ctx, id)
	m.metrics.Observe(ctx, "search_by_id", err == nil, time.Since(start))
	return item, err
}

// ==================== SESSION STATE ====================

// LastSearch returns a copy of the cached search, or nil before the first search.
func (m *Manager[T, C]) LastSearch() *models.LastSearch[C] {
	if m.lastSearch == nil {
		return nil
	}
	s := *m.lastSearch
	s.Criteria = s.Criteria.Clone()
	return &s
}

// LastSelected returns a copy of the most recently selected item, or nil.
func (m *Manager[T, C]) LastSelected() *T {
	if m.lastSelected == nil {
		return nil
	}
	item := *m.lastSelected
	return &item
}

func (m *Manager[T, C]) SetLastSelected(item T) {
	m.lastSelected = &item
}
