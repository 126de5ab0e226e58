package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(NewContext(context.Background(), nil))
	assert.False(t, ok)

	ctx := NewContext(context.Background(), &Claims{UserID: "admin-1", Role: RoleAdmin})
	claims, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "admin-1", claims.UserID)
}
