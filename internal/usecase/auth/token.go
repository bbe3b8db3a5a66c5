package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Principal is the authenticated caller extracted from a bearer token.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the caller may use operator routes.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenUseCase issues and verifies HS256 access tokens. Login itself lives
// with the external account service; this side only trusts its tokens.
type TokenUseCase struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenUseCase(secret string, expiryMin int) *TokenUseCase {
	return &TokenUseCase{
		secret: []byte(secret),
		expiry: time.Duration(expiryMin) * time.Minute,
		now:    time.Now,
	}
}

// Issue signs a token for userID with the given role.
func (uc *TokenUseCase) Issue(userID uuid.UUID, role string) (string, time.Time, error) {
	now := uc.now()
	expiresAt := now.Add(uc.expiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	tokenString, err := token.SignedString(uc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify parses tokenString and returns its principal. Any failure maps to
// domain.ErrInvalidToken.
func (uc *TokenUseCase) Verify(tokenString string) (*Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return uc.secret, nil
	}, jwt.WithTimeFunc(uc.now))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	role := c.Role
	if role == "" {
		role = RoleMember
	}
	return &Principal{UserID: userID, Role: role}, nil
}
