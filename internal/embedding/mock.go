package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

const mockDimensions = 1536

// MockClient produces deterministic pseudo-embeddings derived from the
// input text, so tests and local runs get stable vectors without an API.
type MockClient struct {
	Err        error
	EmbedCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Embed(_ context.Context, text string) ([]float32, error) {
	c.EmbedCalls = append(c.EmbedCalls, text)
	if c.Err != nil {
		return nil, c.Err
	}

	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, mockDimensions)
	for i := range vec {
		// Cycle through the digest to fill the vector with values in [-1, 1).
		word := binary.BigEndian.Uint32(sum[(i*4)%28 : (i*4)%28+4])
		vec[i] = float32(int32(word))/float32(1<<31) + float32(i%7)*0.001
	}
	return vec, nil
}
