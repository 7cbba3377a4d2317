package database

import (
	"client-registry/models"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var marshalResult = json.Marshal

// SearchBy returns one page of the clients matching criteria, ordered by name.
// Pages past the end come back empty without querying rows; page numbers
// below 1 are rejected.
func (r *ClientRepo) SearchBy(ctx context.Context, criteria models.ClientCriteria, page int) (models.ClientSearch, error) {
	const op = "client_repo.search_by"
	if page < 1 {
		return models.ClientSearch{}, fmt.Errorf("%s: %w, got %d", op, ErrInvalidPage, page)
	}

	a := &args{dialect: r.dialect}
	whereClause := clientPredicate(a, criteria)

	total, err := r.count(ctx, op, whereClause, a.values)
	if err != nil {
		return models.ClientSearch{}, err
	}
	totalPages := (total + r.pageSize - 1) / r.pageSize
	if page > totalPages {
		return models.ClientSearch{
			Page:       page,
			TotalPages: totalPages,
			Criteria:   criteria,
			Result:     "[]",
		}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY client_name ASC, %s ASC LIMIT %s OFFSET %s",
		clientSelectList(), clientTable, whereClause, clientIDColumn,
		a.add(r.pageSize), a.add((page-1)*r.pageSize))

	clients, err := r.queryClients(ctx, op, query, a.values...)
	if err != nil {
		return models.ClientSearch{}, err
	}

	result, err := marshalResult(clients)
	if err != nil {
		return models.ClientSearch{}, &SerializationError{Op: op, Err: err}
	}

	return models.ClientSearch{
		Page:       page,
		TotalPages: totalPages,
		Criteria:   criteria,
		Result:     string(result),
	}, nil
}

// clientPredicate renders the WHERE clause for criteria, binding values into a.
// Identifier and status match exactly; the name matches as a case-sensitive substring.
func clientPredicate(a *args, criteria models.ClientCriteria) string {
	if criteria.IsEmpty() {
		return ""
	}
	where := []string{}
	if criteria.ID != nil {
		where = append(where, clientIDColumn+" = "+a.add(*criteria.ID))
	}
	if criteria.Active != nil {
		where = append(where, "client_active = "+a.add(*criteria.Active))
	}
	if criteria.Name != nil {
		where = append(where, a.dialect.Substring("client_name", a.add(*criteria.Name)))
	}
	return "WHERE " + strings.Join(where, " AND ")
}

func (r *ClientRepo) count(ctx context.Context, op, whereClause string, values []any) (int, error) {
	conn, err := r.db.GetConnection(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	query := strings.TrimSpace(fmt.Sprintf("SELECT COUNT(*) FROM %s %s", clientTable, whereClause))
	slog.Debug("executing query", "op", op, "statement", query)

	var total int
	err = conn.QueryRowContext(ctx, query, values...).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &IntegrityError{Op: op, Statement: query}
	}
	if err != nil {
		return 0, &StoreExecutionError{Op: op, Statement: query, Err: err}
	}
	return total, nil
}
