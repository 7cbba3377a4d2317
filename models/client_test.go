package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_String(t *testing.T) {
	assert.Equal(t, "{ id: None, active: true, name: Famsa }", NewClient("Famsa").String())
	assert.Equal(t, "{ id: 7, active: false, name: Acme }", Client{ID: Int64(7), Name: "Acme"}.String())
}

func TestClient_Equal(t *testing.T) {
	a := Client{ID: Int64(1), Active: true, Name: "Famsa"}

	assert.True(t, a.Equal(Client{ID: Int64(1), Active: true, Name: "Famsa"}), "identifier compared by value")
	assert.False(t, a.Equal(Client{Active: true, Name: "Famsa"}))
	assert.False(t, a.Equal(Client{ID: Int64(2), Active: true, Name: "Famsa"}))
	assert.False(t, a.Equal(Client{ID: Int64(1), Active: false, Name: "Famsa"}))
	assert.True(t, NewClient("x").Equal(NewClient("x")))
}

func TestDecodeClients(t *testing.T) {
	t.Run("Serialized page", func(t *testing.T) {
		clients, err := DecodeClients(ClientSearch{Result: `[{"id_client":3,"client_active":false,"client_name":"Acme"}]`})
		require.NoError(t, err)
		require.Len(t, clients, 1)
		assert.True(t, clients[0].Equal(Client{ID: Int64(3), Name: "Acme"}))
	})

	t.Run("Empty result", func(t *testing.T) {
		clients, err := DecodeClients(ClientSearch{})
		require.NoError(t, err)
		assert.Empty(t, clients)
		assert.NotNil(t, clients)
	})

	t.Run("Malformed result", func(t *testing.T) {
		_, err := DecodeClients(ClientSearch{Result: "{"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSerialization))

		var serr *SerializationError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "decode_result", serr.Op)
	})
}

func TestClientCriteria_IsEmpty(t *testing.T) {
	assert.True(t, ClientCriteria{}.IsEmpty())
	assert.False(t, ClientCriteria{Name: String("")}.IsEmpty())
}

func TestClientCriteria_Clone(t *testing.T) {
	original := ClientCriteria{ID: Int64(4), Active: Bool(true), Name: String("Acme")}
	clone := original.Clone()
	assert.Equal(t, original, clone)

	*clone.ID = 9
	*clone.Active = false
	*clone.Name = "Globex"
	assert.Equal(t, int64(4), *original.ID)
	assert.True(t, *original.Active)
	assert.Equal(t, "Acme", *original.Name)

	assert.Equal(t, ClientCriteria{}, ClientCriteria{}.Clone())
}
