package model

import (
	"context"
	"errors"
	"testing"

	"github.com/aion-pfm/aion/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticResolver(t *testing.T) {
	resolver := NewStaticResolver()
	_, err := resolver.Resolve("claude-3-5-sonnet-20241022")
	assert.Error(t, err)

	primary := NewMockGateway()
	fallback := NewMockGateway()
	resolver.Register("claude-3-5-sonnet-20241022", primary)
	resolver.SetDefault(fallback)

	gw, err := resolver.Resolve("claude-3-5-sonnet-20241022")
	require.NoError(t, err)
	assert.Same(t, primary, gw)

	gw, err = resolver.Resolve("gpt-4o-mini")
	require.NoError(t, err)
	assert.Same(t, fallback, gw)
}

func TestStaticResolver_PrefixRouting(t *testing.T) {
	resolver := NewStaticResolver()
	anthropicGW := NewMockGateway()
	openaiGW := NewMockGateway()
	pinned := NewMockGateway()
	fallback := NewMockGateway()

	resolver.RegisterPrefix("claude-", anthropicGW)
	resolver.RegisterPrefix("gpt-", openaiGW)
	resolver.Register("claude-3-5-haiku-20241022", pinned)
	resolver.SetDefault(fallback)

	gw, err := resolver.Resolve("claude-3-5-sonnet-20241022")
	require.NoError(t, err)
	assert.Same(t, anthropicGW, gw)

	gw, err = resolver.Resolve("gpt-4o-mini")
	require.NoError(t, err)
	assert.Same(t, openaiGW, gw)

	// An exact binding wins over a matching prefix.
	gw, err = resolver.Resolve("claude-3-5-haiku-20241022")
	require.NoError(t, err)
	assert.Same(t, pinned, gw)

	gw, err = resolver.Resolve("gemini-2.5-flash")
	require.NoError(t, err)
	assert.Same(t, fallback, gw)

	// Re-registering a prefix replaces its gateway.
	replacement := NewMockGateway()
	resolver.RegisterPrefix("gpt-", replacement)
	gw, err = resolver.Resolve("gpt-4o")
	require.NoError(t, err)
	assert.Same(t, replacement, gw)
}

func TestMockGateway_Script(t *testing.T) {
	ctx := context.Background()
	gw := NewMockGateway()
	gw.Enqueue(Response{Text: "first"})
	gw.EnqueueError(errors.New("rate limited"))

	resp, err := gw.Generate(ctx, Request{History: []core.Turn{core.NewUserTurn("hi")}})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Text)

	_, err = gw.Generate(ctx, Request{})
	assert.Error(t, err)

	// Exhausted script falls back to echoing the last user text.
	resp, err = gw.Generate(ctx, Request{History: []core.Turn{core.NewUserTurn("anything")}})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "anything")

	assert.Len(t, gw.Requests(), 3)
}
