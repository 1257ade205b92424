package llm

import (
	"context"

	"github.com/mnemograph/mnemo/internal/domain"
)

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	VerifyContradictionResponse *domain.ContradictionVerification
	VerifyContradictionError    error
	ExtractEntitiesResponse     []string
	ExtractEntitiesError        error

	// Call tracking for assertions
	VerifyContradictionCalls []struct{ New, Existing string }
	ExtractEntitiesCalls     []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		VerifyContradictionResponse: &domain.ContradictionVerification{
			IsContradiction: false,
			Reasoning:       "mock verification",
		},
	}
}

func (c *MockClient) VerifyContradiction(_ context.Context, newContent, existingContent string) (*domain.ContradictionVerification, error) {
	c.VerifyContradictionCalls = append(c.VerifyContradictionCalls, struct{ New, Existing string }{newContent, existingContent})
	if c.VerifyContradictionError != nil {
		return nil, c.VerifyContradictionError
	}
	return c.VerifyContradictionResponse, nil
}

func (c *MockClient) ExtractEntities(_ context.Context, text string) ([]string, error) {
	c.ExtractEntitiesCalls = append(c.ExtractEntitiesCalls, text)
	if c.ExtractEntitiesError != nil {
		return nil, c.ExtractEntitiesError
	}
	return c.ExtractEntitiesResponse, nil
}
