// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for bearer and JWT parsing, HTTP response writing,
// HTTP client initialization and identifier generation.
package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered document identifiers.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
