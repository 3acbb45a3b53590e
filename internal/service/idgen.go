package service

import "github.com/google/uuid"

// IDGenerator mints identifiers for new rows. Injected so tests can use
// deterministic values.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func NewIDGenerator() IDGenerator {
	return &uuidGenerator{}
}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}
