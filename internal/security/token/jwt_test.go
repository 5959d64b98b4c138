package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskflow/domain"
)

func TestIssueAndVerify(t *testing.T) {
	m, err := NewManager("s3cret", "")
	require.NoError(t, err)

	user := domain.User{ID: "2", Username: "employee1", Role: domain.RoleEmployee, Name: "Nidal"}
	first, err := m.Issue(context.Background(), user, time.Now())
	require.NoError(t, err)
	second, err := m.Issue(context.Background(), user, time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims, err := m.Verify(first)
	require.NoError(t, err)
	assert.Equal(t, "2", claims.Subject)
	assert.Equal(t, "employee1", claims.Username)
	assert.Equal(t, domain.RoleEmployee, claims.Role)
	assert.Equal(t, defaultIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	m, err := NewManager("s3cret", "taskflow")
	require.NoError(t, err)
	other, err := NewManager("other", "taskflow")
	require.NoError(t, err)
	elsewhere, err := NewManager("s3cret", "elsewhere")
	require.NoError(t, err)

	user := domain.User{ID: "1", Username: "manager1", Role: domain.RoleManager}
	forged, err := other.Issue(context.Background(), user, time.Now())
	require.NoError(t, err)
	_, err = m.Verify(forged)
	assert.Error(t, err)

	wrongIssuer, err := elsewhere.Issue(context.Background(), user, time.Now())
	require.NoError(t, err)
	_, err = m.Verify(wrongIssuer)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(unsigned)
	assert.Error(t, err)

	_, err = m.Verify("token_1_123_abc")
	assert.Error(t, err)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", "")
	assert.Error(t, err)
}

func TestFromHeader(t *testing.T) {
	assert.Equal(t, "abc", FromHeader("Bearer abc"))
	assert.Equal(t, "abc", FromHeader("abc"))
	assert.Equal(t, "", FromHeader(""))
}
