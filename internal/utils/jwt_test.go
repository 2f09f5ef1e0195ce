package utils

import (
    "testing"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewAccessTokenClaims(t *testing.T) {
    at, err := NewAccessToken("segredo", 42, "gestor", 7, 15)
    require.NoError(t, err)
    require.NotEmpty(t, at.Token)

    parsed, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
        return []byte("segredo"), nil
    }, jwt.WithValidMethods([]string{"HS256"}))
    require.NoError(t, err)
    require.True(t, parsed.Valid)

    claims := parsed.Claims.(jwt.MapClaims)
    assert.Equal(t, float64(42), claims["sub"])
    assert.Equal(t, "gestor", claims["role"])
    assert.Equal(t, float64(7), claims["unidade_id"])
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
    at, err := NewAccessToken("segredo", 42, "operador", 7, 15)
    require.NoError(t, err)

    _, err = jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
        return []byte("outro-segredo"), nil
    }, jwt.WithValidMethods([]string{"HS256"}))
    assert.Error(t, err)
}

func TestNewRefreshTokenIsUnique(t *testing.T) {
    a, err := NewRefreshToken(30)
    require.NoError(t, err)
    b, err := NewRefreshToken(30)
    require.NoError(t, err)

    assert.Len(t, a.Raw, 96)
    assert.NotEqual(t, a.Raw, b.Raw)
}

func TestHashRefreshRawIsDeterministic(t *testing.T) {
    h1 := HashRefreshRaw("token-a")
    h2 := HashRefreshRaw("token-a")

    assert.Equal(t, h1, h2)
    assert.Len(t, h1, 64)
    assert.NotEqual(t, h1, HashRefreshRaw("token-b"))
}

func TestPasswordRoundTrip(t *testing.T) {
    hash, err := HashPassword("minha-senha", 4)
    require.NoError(t, err)
    assert.NotEqual(t, "minha-senha", hash)

    assert.True(t, VerifyPassword(hash, "minha-senha"))
    assert.False(t, VerifyPassword(hash, "senha-errada"))
    assert.False(t, VerifyPassword("hash-invalido", "minha-senha"))
}
