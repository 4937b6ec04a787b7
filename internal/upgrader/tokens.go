package upgrader

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService signs short-lived download links for migration reports.
type TokenService struct {
	Secret   []byte
	Issuer   string
	Duration time.Duration
}

type DownloadClaims struct {
	ReportID string `json:"report_id"`
	jwt.RegisteredClaims
}

func (ts TokenService) Sign(reportID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ts.Duration)

	claims := DownloadClaims{
		ReportID: reportID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.Issuer,
			Subject:   reportID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(ts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

func (ts TokenService) Parse(tokenString string) (*DownloadClaims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &DownloadClaims{}, func(token *jwt.Token) (any, error) {
		// enforce HS256
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.Secret, nil
	}, jwt.WithIssuer(ts.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := tok.Claims.(*DownloadClaims)
	if !ok || !tok.Valid || claims.ReportID == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
