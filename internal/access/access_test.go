package access

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAllowlist(t *testing.T) {
	a := DefaultAllowlist()

	assert.True(t, a.Allows(Admin, DIAN))
	assert.True(t, a.Allows(Salesperson, Sales))
	assert.False(t, a.Allows(Salesperson, Billing))
	assert.False(t, a.Allows(Mechanic, Sales))
	assert.True(t, a.Allows(Accountant, Sales))
	assert.False(t, a.Allows("guest", Dashboard))

	assert.Equal(t, allModules, a.Modules(Admin))
	assert.Equal(t, []Module{Dashboard, Vehicles, Inventory, Workshop}, a.Modules(Mechanic))
	assert.Empty(t, a.Modules("guest"))
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	raw, err := tokens.Generate("u-1", Salesperson, "Juan Pérez")
	require.NoError(t, err)

	claims, err := tokens.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, Salesperson, claims.Role)
	assert.Equal(t, "Juan Pérez", claims.Name)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	other, err := NewTokens("other", time.Hour).Generate("u-1", Admin, "")
	require.NoError(t, err)
	_, err = tokens.Validate(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewTokens("secret", time.Nanosecond).Generate("u-1", Admin, "")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = tokens.Validate(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Role: Admin}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tokens.Validate(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: Admin}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Validate(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUsers_Authenticate(t *testing.T) {
	ana, err := NewUser("ana", "s3creta", Salesperson, "Ana Gómez")
	require.NoError(t, err)

	users, err := ParseUsers("  ;" + ana.Username + ":" + ana.PasswordHash + ":salesperson:Ana Gómez; ")
	require.NoError(t, err)
	require.Len(t, users, 1)

	u, err := users.Authenticate("ana", "s3creta")
	require.NoError(t, err)
	assert.Equal(t, Salesperson, u.Role)
	assert.Equal(t, "Ana Gómez", u.Name)

	_, err = users.Authenticate("ana", "otra")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Authenticate("nadie", "s3creta")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseUsers_Malformed(t *testing.T) {
	for _, s := range []string{"ana", "ana:hash", ":hash:admin", "ana::admin"} {
		_, err := ParseUsers(s)
		assert.Error(t, err, s)
	}
}
