package services

import (
	"client-registry/database"
	"client-registry/metrics"
	"client-registry/models"
	"client-registry/validator"
)

// ClientManager manages clients for one caller.
type ClientManager = Manager[models.Client, models.ClientCriteria]

// ClientFinder is the store-facing contract a ClientManager needs.
type ClientFinder = Finder[models.Client, models.ClientCriteria]

var _ ClientFinder = (*database.ClientRepo)(nil)

// NewClientManager wires a manager to the client rules of v.
func NewClientManager(finder ClientFinder, v *validator.Validator, recorder metrics.Recorder) *ClientManager {
	return NewManager[models.Client, models.ClientCriteria](finder, clientRules{v: v}, recorder)
}

// clientRules adapts the validator to ItemValidator.
type clientRules struct {
	v *validator.Validator
}

func (r clientRules) ValidateNew(c *models.Client) error {
	return r.v.ValidateNewClient(c)
}

func (r clientRules) ValidateStored(c *models.Client) error {
	return r.v.ValidateStoredClient(c)
}
