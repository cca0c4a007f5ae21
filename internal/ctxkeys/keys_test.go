package ctxkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithUserAndCan(t *testing.T) {
	ctx := WithUser(context.Background(), "ana@example.com", "Ana", RoleAnalyst)

	assert.Equal(t, "ana@example.com", Email(ctx))
	assert.Equal(t, "Ana", Name(ctx))
	assert.Equal(t, RoleAnalyst, Role(ctx))
	assert.True(t, Can(ctx, RoleViewer))
	assert.True(t, Can(ctx, RoleAnalyst))
	assert.False(t, Can(ctx, RoleAdmin))
	assert.False(t, Can(ctx, "root"), "unknown minimum role never passes")
}

func TestAnonymousContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, Email(ctx))
	assert.False(t, Can(ctx, RoleViewer))
}
