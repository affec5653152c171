// Package mock provides function-field mock implementations of the
// domain service interfaces for tests.
package mock

import (
	"context"

	"github.com/jwhitaker/courier"
)

// Compile-time interface check
var _ courier.Generator = (*Generator)(nil)

// Generator is a mock implementation of courier.Generator.
type Generator struct {
	GenerateFn            func(ctx context.Context, req courier.GenerationRequest) courier.GenerationResult
	GenerateWithSubjectFn func(ctx context.Context, req courier.GenerationRequest) courier.GenerationResult
}

func (g *Generator) Generate(ctx context.Context, req courier.GenerationRequest) courier.GenerationResult {
	if g.GenerateFn != nil {
		return g.GenerateFn(ctx, req)
	}
	return courier.GenerationResult{Content: req.Prompt, Source: courier.SourceFallback}
}

func (g *Generator) GenerateWithSubject(ctx context.Context, req courier.GenerationRequest) courier.GenerationResult {
	if g.GenerateWithSubjectFn != nil {
		return g.GenerateWithSubjectFn(ctx, req)
	}
	return courier.GenerationResult{Subject: "Email", Content: req.Prompt, Source: courier.SourceFallback}
}
