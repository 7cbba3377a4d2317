package database

import (
	"client-registry/models"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// ClientRepo stores clients through a ConnectionProvider. Every call takes its
// own connection and releases it before returning.
type ClientRepo struct {
	db       ConnectionProvider
	dialect  Dialect
	pageSize int
}

func NewClientRepo(db ConnectionProvider, dialect Dialect, pageSize int) (*ClientRepo, error) {
	if pageSize <= 0 {
		return nil, &ConfigurationError{Field: "page size", Reason: fmt.Sprintf("must be positive, got %d", pageSize)}
	}
	return &ClientRepo{db: db, dialect: dialect, pageSize: pageSize}, nil
}

// PageSize returns the number of clients per search page.
func (r *ClientRepo) PageSize() int {
	return r.pageSize
}

// ==================== MUTATIONS ====================

// Add inserts the client. The generated identifier is not written back;
// look the client up again to learn it.
func (r *ClientRepo) Add(ctx context.Context, client *models.Client) error {
	const op = "client_repo.add"

	a := &args{dialect: r.dialect}
	columns := make([]string, len(clientFields))
	marks := make([]string, len(clientFields))
	for i, col := range clientFields {
		columns[i] = col.name
		marks[i] = a.add(col.get(client))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		clientTable, strings.Join(columns, ", "), strings.Join(marks, ", "))

	_, err := r.exec(ctx, op, query, a.values...)
	return err
}

// Drop marks the client inactive and mirrors the change onto client.
func (r *ClientRepo) Drop(ctx context.Context, client *models.Client) error {
	const op = "client_repo.drop"
	if client == nil || !client.HasID() {
		return &ItemShouldExistError{Op: op, Record: client}
	}

	a := &args{dialect: r.dialect}
	query := fmt.Sprintf("UPDATE %s SET client_active = %s WHERE %s = %s",
		clientTable, a.add(false), clientIDColumn, a.add(*client.ID))

	if _, err := r.exec(ctx, op, query, a.values...); err != nil {
		return err
	}
	client.Active = false
	return nil
}

// Delete removes the row. Deleting an identifier that is already gone is not an error.
func (r *ClientRepo) Delete(ctx context.Context, client *models.Client) error {
	const op = "client_repo.delete"
	if client == nil || !client.HasID() {
		return &ItemShouldExistError{Op: op, Record: client}
	}

	a := &args{dialect: r.dialect}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", clientTable, clientIDColumn, a.add(*client.ID))

	res, err := r.exec(ctx, op, query, a.values...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.Debug("delete matched no rows", "op", op, "id_client", *client.ID)
	}
	return nil
}

// Modify writes only the columns whose values differ from the stored row.
// Nothing is written when the stored row already equals client.
func (r *ClientRepo) Modify(ctx context.Context, client *models.Client) error {
	const op = "client_repo.modify"
	if client == nil || !client.HasID() {
		return &ItemShouldExistError{Op: op, Record: client}
	}

	persisted, err := r.SearchByID(ctx, *client.ID)
	if err != nil {
		return err
	}
	if persisted == nil {
		return &ItemShouldExistError{Op: op, Record: client}
	}
	if persisted.Equal(*client) {
		return nil
	}

	query, values, changed := clientUpdate(r.dialect, persisted, client)
	if !changed {
		return nil
	}
	_, err = r.exec(ctx, op, query, values...)
	return err
}

// clientUpdate builds the UPDATE for the columns that differ between persisted
// and incoming. It reports false when no column changed.
func clientUpdate(d Dialect, persisted, incoming *models.Client) (string, []any, bool) {
	a := &args{dialect: d}
	var sets []string
	for _, col := range clientFields {
		next := col.get(incoming)
		if col.get(persisted) == next {
			continue
		}
		sets = append(sets, col.name+" = "+a.add(next))
	}
	if len(sets) == 0 {
		return "", nil, false
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		clientTable, strings.Join(sets, ", "), clientIDColumn, a.add(*incoming.ID))
	return query, a.values, true
}

// ==================== LOOKUPS ====================

// SearchByID returns the stored client, or nil when no row has that identifier.
func (r *ClientRepo) SearchByID(ctx context.Context, id int64) (*models.Client, error) {
	const op = "client_repo.search_by_id"

	a := &args{dialect: r.dialect}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		clientSelectList(), clientTable, clientIDColumn, a.add(id))

	clients, err := r.queryClients(ctx, op, query, a.values...)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, nil
	}
	return &clients[0], nil
}

// ==================== HELPERS ====================

func (r *ClientRepo) exec(ctx context.Context, op, query string, values ...any) (sql.Result, error) {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	slog.Debug("executing statement", "op", op, "statement", query)
	res, err := conn.ExecContext(ctx, query, values...)
	if err != nil {
		return nil, &StoreExecutionError{Op: op, Statement: query, Err: err, Constraint: isConstraintViolation(err)}
	}
	return res, nil
}

// queryClients runs query and decodes every row, or returns no clients at all.
func (r *ClientRepo) queryClients(ctx context.Context, op, query string, values ...any) ([]models.Client, error) {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	slog.Debug("executing query", "op", op, "statement", query)
	rows, err := conn.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, &StoreExecutionError{Op: op, Statement: query, Err: err}
	}
	defer rows.Close()

	// Initialize with empty slice to avoid serializing null
	clients := make([]models.Client, 0)
	for rows.Next() {
		client, err := fromRow(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreExecutionError{Op: op, Statement: query, Err: err}
	}
	return clients, nil
}
