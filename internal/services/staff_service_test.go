package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgate-backend/internal/auth"
	"vgate-backend/internal/domain"
)

func TestStaffLogin(t *testing.T) {
	adminHash, err := auth.HashPassword("admin-pass")
	require.NoError(t, err)
	securityHash, err := auth.HashPassword("gate-pass")
	require.NoError(t, err)

	jwt := auth.NewJWTManager("test-secret", time.Hour)
	svc := NewStaffService(StaffCredentials{
		AdminUsername:        "admin",
		AdminPasswordHash:    adminHash,
		SecurityUsername:     "security",
		SecurityPasswordHash: securityHash,
	}, jwt)

	token, role, err := svc.Login("admin", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, role)

	claims, err := jwt.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)

	_, role, err = svc.Login("security", "gate-pass")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleSecurity, role)

	_, _, err = svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
	_, _, err = svc.Login("nobody", "x")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}

func TestStaffLoginDisabledWithoutHash(t *testing.T) {
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	svc := NewStaffService(StaffCredentials{AdminUsername: "admin"}, jwt)

	_, _, err := svc.Login("admin", "")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)
}
