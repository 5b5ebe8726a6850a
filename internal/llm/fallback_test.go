package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstaidguide/firstaid-api/pkg/logging"
)

func TestFallbackClientPrefersPrimary(t *testing.T) {
	primary := &stubClient{resp: Response{Text: "primary"}}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	c := NewFallbackClient(primary, fallback, logging.Default())

	resp, err := c.Complete(context.Background(), Request{Model: "m"})
	require.NoError(t, err)

	assert.Equal(t, "primary", resp.Text)
	assert.Empty(t, fallback.requests)
}

func TestFallbackClientFallsBackOnce(t *testing.T) {
	primary := &stubClient{err: errors.New("throttled")}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	c := NewFallbackClient(primary, fallback, logging.Default())

	resp, err := c.Complete(context.Background(), Request{Model: "m"})
	require.NoError(t, err)

	assert.Equal(t, "fallback", resp.Text)
	assert.Len(t, primary.requests, 1)
	assert.Len(t, fallback.requests, 1)
}

func TestFallbackClientReturnsFallbackError(t *testing.T) {
	primary := &stubClient{err: errors.New("primary down")}
	fallback := &stubClient{err: errors.New("fallback down")}
	c := NewFallbackClient(primary, fallback, logging.Default())

	_, err := c.Complete(context.Background(), Request{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback down")
}

func TestFallbackClientWithoutFallbackPropagatesPrimaryError(t *testing.T) {
	primary := &stubClient{err: errors.New("primary down")}
	c := NewFallbackClient(primary, nil, logging.Default())

	_, err := c.Complete(context.Background(), Request{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary down")
}
