package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"altiushub/internal/model"
)

// Token kinds. A refresh token can never be used where an access token is
// expected, and vice versa.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

var (
	// ErrTokenMalformed is returned when a token cannot be decoded, carries a
	// bad signature, or is of the wrong kind for the operation.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired is returned when a structurally valid token has expired.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenNotFresh is returned when freshness is required but the token
	// was issued via refresh rather than a password login.
	ErrTokenNotFresh = errors.New("token not fresh")
)

// Claims is the verified payload of a hub token. Role is a copy of the user's
// role at issuance time; Fresh is true only for access tokens issued directly
// from a password login.
type Claims struct {
	UserID uint       `json:"user_id"`
	Role   model.Role `json:"role"`
	Kind   string     `json:"kind"`
	Fresh  bool       `json:"fresh"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies signed, time-limited tokens. Verification is
// a pure computation over the process-wide secret; no I/O, no server-side
// token state.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService creates a token service with the given HMAC secret and
// default lifetimes for the two token kinds.
func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken signs a new access token for the user. A ttl of zero uses
// the service default; fresh marks the token as password-verified.
func (s *JWTService) IssueAccessToken(userID uint, role model.Role, fresh bool, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = s.accessTTL
	}
	return s.sign(userID, role, TokenKindAccess, fresh, ttl)
}

// IssueRefreshToken signs a new refresh token for the user. Refresh tokens
// are never fresh.
func (s *JWTService) IssueRefreshToken(userID uint, role model.Role) (string, error) {
	return s.sign(userID, role, TokenKindRefresh, false, s.refreshTTL)
}

func (s *JWTService) sign(userID uint, role model.Role, kind string, fresh bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		Kind:   kind,
		Fresh:  fresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks an access token's signature and expiry, and its freshness
// when requireFresh is set. Refresh tokens presented here fail as malformed.
func (s *JWTService) Verify(tokenString string, requireFresh bool) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Kind != TokenKindAccess {
		return nil, ErrTokenMalformed
	}
	if requireFresh && !claims.Fresh {
		return nil, ErrTokenNotFresh
	}
	return claims, nil
}

// Refresh verifies a refresh token (signature and expiry only) and issues a
// new non-fresh access token for the same subject and role. Freshness is not
// checked; refresh tokens are never fresh by definition.
func (s *JWTService) Refresh(refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Kind != TokenKindRefresh {
		return "", ErrTokenMalformed
	}
	return s.IssueAccessToken(claims.UserID, claims.Role, false, 0)
}

func (s *JWTService) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
