package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/sales-crm/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongPurpose = errors.New("token used for wrong purpose")
)

const (
	purposeAccess  = "access"
	purposeRefresh = "refresh"
)

type claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
	Purpose  string `json:"purpose"`
}

// Manager issues and parses the service's access and refresh tokens.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Issue signs a fresh access/refresh pair for the user.
func (m *Manager) Issue(user *model.User, now time.Time) (*TokenPair, error) {
	access, err := m.sign(user, now, m.accessTTL, purposeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(user, now, m.refreshTTL, purposeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, nil
}

func (m *Manager) sign(user *model.User, now time.Time, ttl time.Duration, purpose string) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: user.Username,
		Role:     string(user.Role),
		Purpose:  purpose,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(m.secret)
}

// ParseAccess validates an access token and returns its principal.
func (m *Manager) ParseAccess(raw string) (model.Principal, error) {
	return m.parse(raw, purposeAccess)
}

// ParseRefresh validates a refresh token and returns its principal.
func (m *Manager) ParseRefresh(raw string) (model.Principal, error) {
	return m.parse(raw, purposeRefresh)
}

func (m *Manager) parse(raw, purpose string) (model.Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return model.Principal{}, ErrInvalidToken
	}
	if c.Purpose != purpose {
		return model.Principal{}, ErrWrongPurpose
	}

	var userID uint
	if _, err := fmt.Sscanf(c.Subject, "%d", &userID); err != nil {
		return model.Principal{}, ErrInvalidToken
	}
	return model.Principal{
		UserID:   userID,
		Username: c.Username,
		Role:     model.UserRole(c.Role),
	}, nil
}
