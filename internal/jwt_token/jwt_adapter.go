package jwttoken

import (
	"kinship/internal/platform/middleware"
	id "kinship/pkg/domain"
)

// JWTServiceAdapter exposes JWTService through the middleware.JWTValidator interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := claims.Account()
	if err != nil {
		return nil, err
	}
	// Session id is informational; tokens minted without one stay valid.
	sessionID, _ := id.ParseSessionID(claims.SessionID)
	return &middleware.JWTClaims{
		UserID:    userID,
		SessionID: sessionID,
	}, nil
}
