package unit

import (
	"testing"

	"github.com/B25-sm/clicktosell-sub002/pkg/token"

	"github.com/stretchr/testify/assert"
)

func TestJWTRoundTrip(t *testing.T) {
	signed, err := token.GenerateJWT("u1", string(token.RoleUser), "realtime_service")
	assert.NoError(t, err)

	claims, err := token.ParseJWT(signed)
	assert.NoError(t, err, "a freshly issued token should parse")
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, string(token.RoleUser), claims.Role)
	assert.Equal(t, "realtime_service", claims.Issuer)
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	_, err := token.ParseJWT("not-a-token")
	assert.Error(t, err, "malformed tokens must be rejected")
}
