package helpers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/linkbio/pkg/helpers"
)

func TestBcryptHasher(t *testing.T) {
	h := helpers.BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, h.Compare(hash, "password123"))
	assert.False(t, h.Compare(hash, "password124"))
	assert.False(t, h.Compare("not-a-hash", "password123"))

	again, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salted")
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	hash, err := helpers.BcryptHasher{}.Hash("pw")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
