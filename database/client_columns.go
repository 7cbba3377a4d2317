package database

import (
	"client-registry/models"
	"fmt"
	"strconv"
	"strings"
)

const (
	clientTable    = "client"
	clientIDColumn = "id_client"
)

// clientColumn pairs a stored column with the record field it mirrors.
type clientColumn struct {
	name   string
	get    func(c *models.Client) any
	decode func(v any, c *models.Client) error
}

// clientFields lists every mutable column. Inserts, diffs and decoding
// all iterate it, so a column added here is written, compared and read.
var clientFields = []clientColumn{
	{
		name: "client_active",
		get:  func(c *models.Client) any { return c.Active },
		decode: func(v any, c *models.Client) error {
			b, err := asBool(v)
			if err != nil {
				return err
			}
			c.Active = b
			return nil
		},
	},
	{
		name: "client_name",
		get:  func(c *models.Client) any { return c.Name },
		decode: func(v any, c *models.Client) error {
			s, err := asString(v)
			if err != nil {
				return err
			}
			c.Name = s
			return nil
		},
	},
}

var clientIDField = clientColumn{
	name: clientIDColumn,
	get: func(c *models.Client) any {
		if c.ID == nil {
			return nil
		}
		return *c.ID
	},
	decode: func(v any, c *models.Client) error {
		id, err := asInt64(v)
		if err != nil {
			return err
		}
		c.ID = &id
		return nil
	},
}

// clientColumns is the strict order every SELECT returns.
var clientColumns = append([]clientColumn{clientIDField}, clientFields...)

func clientSelectList() string {
	names := make([]string, len(clientColumns))
	for i, col := range clientColumns {
		names[i] = col.name
	}
	return strings.Join(names, ", ")
}

// rowSource is the part of *sql.Rows that fromRow reads.
type rowSource interface {
	Columns() ([]string, error)
	Scan(dest ...any) error
}

// fromRow maps the current row onto a Client. It either decodes every column
// or fails with a RowDecodeError naming the first offending one.
func fromRow(row rowSource) (models.Client, error) {
	names, err := row.Columns()
	if err != nil {
		return models.Client{}, &RowDecodeError{Column: "*", Err: err}
	}
	for i, col := range clientColumns {
		if i >= len(names) {
			return models.Client{}, &RowDecodeError{Column: col.name, Err: fmt.Errorf("%w: column missing", ErrColumnMismatch)}
		}
		if names[i] != col.name {
			return models.Client{}, &RowDecodeError{Column: col.name, Err: fmt.Errorf("%w: got %q at position %d", ErrColumnMismatch, names[i], i)}
		}
	}
	if len(names) > len(clientColumns) {
		return models.Client{}, &RowDecodeError{Column: names[len(clientColumns)], Err: fmt.Errorf("%w: extra column", ErrColumnMismatch)}
	}

	raw := make([]any, len(clientColumns))
	dest := make([]any, len(clientColumns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := row.Scan(dest...); err != nil {
		return models.Client{}, &RowDecodeError{Column: "*", Err: err}
	}

	var client models.Client
	for i, col := range clientColumns {
		if err := col.decode(raw[i], &client); err != nil {
			return models.Client{}, &RowDecodeError{Column: col.name, Err: err}
		}
	}
	return client, nil
}

func asInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case int:
		return int64(t), nil
	case []byte:
		return strconv.ParseInt(string(t), 10, 64)
	case string:
		return strconv.ParseInt(t, 10, 64)
	case nil:
		return 0, fmt.Errorf("unexpected NULL")
	default:
		return 0, fmt.Errorf("unsupported type %T for integer", v)
	}
}

func asBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case int64:
		return t != 0, nil
	case []byte:
		return strconv.ParseBool(string(t))
	case string:
		return strconv.ParseBool(t)
	case nil:
		return false, fmt.Errorf("unexpected NULL")
	default:
		return false, fmt.Errorf("unsupported type %T for boolean", v)
	}
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case nil:
		return "", fmt.Errorf("unexpected NULL")
	default:
		return "", fmt.Errorf("unsupported type %T for text", v)
	}
}
