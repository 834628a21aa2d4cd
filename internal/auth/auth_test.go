package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &entity.User{ID: "u1", Email: "c@example.com", Role: entity.RoleCashier, StoreID: "store-1"}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, "c@example.com", claims.Email)
	assert.Equal(t, entity.RoleCashier, claims.Role)
	assert.Equal(t, "store-1", claims.StoreID)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)
	user := &entity.User{ID: "u1", Role: entity.RoleCustomer}

	token, err := other.Issue(user)
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	assert.Error(t, err)

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err = expired.Issue(user)
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pa55word")
	require.NoError(t, err)
	assert.NotEqual(t, "pa55word", hash)

	assert.NoError(t, h.Compare(hash, "pa55word"))
	assert.Error(t, h.Compare(hash, "wrong"))
}

func TestBcryptHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}
