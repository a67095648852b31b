package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/tasktrack/internal/constants"
	"github.com/yukikurage/tasktrack/internal/repository"
)

// ReferenceGenerator mints human-readable identifiers such as user-000123.
type ReferenceGenerator struct {
	refRepo repository.ReferenceRepository
}

// NewReferenceGenerator creates a new ReferenceGenerator
func NewReferenceGenerator(refRepo repository.ReferenceRepository) *ReferenceGenerator {
	return &ReferenceGenerator{refRepo: refRepo}
}

// GenerateReference appends one reference row and formats its ID under prefix.
func (g *ReferenceGenerator) GenerateReference(ctx context.Context, prefix string) (string, error) {
	ref, err := g.refRepo.Create(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to generate reference: %w", err)
	}
	return FormatReference(prefix, ref.ID), nil
}

// GenerateUsername returns a fresh reference with the username prefix.
func (g *ReferenceGenerator) GenerateUsername(ctx context.Context) (string, error) {
	return g.GenerateReference(ctx, constants.UsernamePrefix)
}

// FormatReference zero-pads id to six digits; larger ids widen the string.
func FormatReference(prefix string, id uint64) string {
	return fmt.Sprintf("%s-%0*d", prefix, constants.ReferenceDigits, id)
}
