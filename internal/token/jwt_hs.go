package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims — что мы доверяем из access-токена внешнего identity-сервиса.
type Claims struct {
	UserID      uuid.UUID
	DisplayName string
	Role        string
	// ShopID заполнен только у продавцов
	ShopID *uuid.UUID
	Exp    time.Time
}

// HSVerifier проверяет HS256 access-токены. Подписью владеет identity-сервис,
// здесь только верификация общим секретом.
type HSVerifier struct {
	accessSecret []byte
	issuer       string
	audience     string
}

func NewHSVerifier(accessSecret, issuer, audience string) *HSVerifier {
	return &HSVerifier{
		accessSecret: []byte(accessSecret),
		issuer:       issuer,
		audience:     audience,
	}
}

type customClaims struct {
	Sub    string `json:"sub"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	ShopID string `json:"shop_id,omitempty"`
	jwt.RegisteredClaims
}

func (v *HSVerifier) ParseAndValidateAccess(ctx context.Context, token string) (*Claims, error) {
	// exp обязателен: токен без срока жизни — это токен навсегда
	parsed, err := jwt.ParseWithClaims(token, &customClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.accessSecret, nil
	}, jwt.WithAudience(v.audience), jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	cc, ok := parsed.Claims.(*customClaims)
	if !ok || !parsed.Valid || cc.ExpiresAt == nil {
		return nil, errors.New("invalid token")
	}
	uid, err := uuid.Parse(cc.Sub)
	if err != nil {
		return nil, err
	}
	claims := &Claims{
		UserID:      uid,
		DisplayName: cc.Name,
		Role:        cc.Role,
		Exp:         cc.ExpiresAt.Time,
	}
	if cc.ShopID != "" {
		sid, err := uuid.Parse(cc.ShopID)
		if err != nil {
			return nil, err
		}
		claims.ShopID = &sid
	}
	return claims, nil
}
