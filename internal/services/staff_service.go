package services

import (
	"vgate-backend/internal/auth"
	"vgate-backend/internal/domain"
)

// StaffCredentials holds the configured admin and security accounts. The
// hashes come from configuration, never from source.
type StaffCredentials struct {
	AdminUsername        string
	AdminPasswordHash    string
	SecurityUsername     string
	SecurityPasswordHash string
}

// StaffService authenticates the two fixed staff roles. There is no staff
// table; admin and security are single configured accounts.
type StaffService struct {
	creds StaffCredentials
	jwt   *auth.JWTManager
}

func NewStaffService(creds StaffCredentials, jwt *auth.JWTManager) *StaffService {
	return &StaffService{creds: creds, jwt: jwt}
}

// Login matches the username against the configured admin and security
// accounts and returns a role-scoped token.
func (s *StaffService) Login(username, password string) (token, role string, err error) {
	switch username {
	case s.creds.AdminUsername:
		if s.creds.AdminPasswordHash == "" || !auth.CheckPassword(s.creds.AdminPasswordHash, password) {
			return "", "", domain.ErrBadCredentials
		}
		role = auth.RoleAdmin
	case s.creds.SecurityUsername:
		if s.creds.SecurityPasswordHash == "" || !auth.CheckPassword(s.creds.SecurityPasswordHash, password) {
			return "", "", domain.ErrBadCredentials
		}
		role = auth.RoleSecurity
	default:
		return "", "", domain.ErrBadCredentials
	}

	token, err = s.jwt.Issue(0, role, username)
	if err != nil {
		return "", "", err
	}
	return token, role, nil
}
