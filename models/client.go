package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Client is the managed entity. A nil ID means the client has not been persisted yet.
type Client struct {
	ID     *int64 `json:"id_client"`
	Active bool   `json:"client_active"`
	Name   string `json:"client_name"`
}

// NewClient returns an active, unsaved client.
func NewClient(name string) Client {
	return Client{Active: true, Name: name}
}

// HasID reports whether the client carries a store-assigned identifier.
func (c Client) HasID() bool {
	return c.ID != nil
}

// Equal compares every field, including the identifier value.
func (c Client) Equal(other Client) bool {
	if (c.ID == nil) != (other.ID == nil) {
		return false
	}
	if c.ID != nil && *c.ID != *other.ID {
		return false
	}
	return c.Active == other.Active && c.Name == other.Name
}

func (c Client) String() string {
	id := "None"
	if c.ID != nil {
		id = strconv.FormatInt(*c.ID, 10)
	}
	return fmt.Sprintf("{ id: %s, active: %t, name: %s }", id, c.Active, c.Name)
}

// ClientCriteria holds one optional matcher per searchable column.
// Nil fields do not constrain the search.
type ClientCriteria struct {
	ID     *int64  `json:"id_client,omitempty"`
	Active *bool   `json:"client_active,omitempty"`
	Name   *string `json:"client_name,omitempty"`
}

// IsEmpty reports whether the criteria match every client.
func (c ClientCriteria) IsEmpty() bool {
	return c.ID == nil && c.Active == nil && c.Name == nil
}

// Clone returns criteria that share no pointers with c.
func (c ClientCriteria) Clone() ClientCriteria {
	var out ClientCriteria
	if c.ID != nil {
		out.ID = Int64(*c.ID)
	}
	if c.Active != nil {
		out.Active = Bool(*c.Active)
	}
	if c.Name != nil {
		out.Name = String(*c.Name)
	}
	return out
}

// LastSearch is one page of a search together with the inputs that produced it.
// Result is a JSON array of records in display order.
type LastSearch[C any] struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Criteria   C      `json:"criteria"`
	Result     string `json:"result"`
}

// DecodeResult unmarshals the serialized page into records of type T.
// A malformed page is reported as a *SerializationError.
func DecodeResult[T any, C any](s LastSearch[C]) ([]T, error) {
	records := make([]T, 0)
	if s.Result == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(s.Result), &records); err != nil {
		return nil, &SerializationError{Op: "decode_result", Err: err}
	}
	return records, nil
}

// ClientSearch is the cached search type for clients.
type ClientSearch = LastSearch[ClientCriteria]

// DecodeClients returns the clients of a cached page.
func DecodeClients(s ClientSearch) ([]Client, error) {
	return DecodeResult[Client](s)
}

// Int64 and friends build optional values for criteria and identifiers.
func Int64(v int64) *int64 { return &v }

func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }
