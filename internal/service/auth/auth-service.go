package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"MarketChat/entity"
	"MarketChat/internal/config"
	"MarketChat/internal/lib/sl"
	"MarketChat/internal/lib/validate"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the party identity inside a bearer token.
type Claims struct {
	PartyType string `json:"party_type"`
	jwt.RegisteredClaims
}

type AuthService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	log    *slog.Logger
}

func NewAuthService(conf *config.Config, log *slog.Logger) (*AuthService, error) {
	if conf.JWT.Secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	return &AuthService{
		secret: []byte(conf.JWT.Secret),
		issuer: conf.JWT.Issuer,
		ttl:    time.Duration(conf.JWT.TTL) * time.Hour,
		log:    log.With(sl.Module("auth")),
	}, nil
}

// Issue signs a token for party valid for the configured ttl.
func (s *AuthService) Issue(party entity.Party) (string, error) {
	if !party.Type.Valid() || !validate.PartyID(party.ID) {
		return "", entity.Validation("invalid party %s/%s", party.Type, party.ID)
	}
	now := time.Now()
	claims := Claims{
		PartyType: string(party.Type),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   party.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Authenticate validates the token and returns the party it names.
func (s *AuthService) Authenticate(token string) (entity.Party, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		s.log.Debug("token rejected", sl.Err(err))
		return entity.Party{}, entity.Unauthenticated("invalid or expired token")
	}

	partyType, err := entity.ParseSenderType(claims.PartyType)
	if err != nil {
		return entity.Party{}, entity.Unauthenticated("token carries unknown party type")
	}
	if !validate.PartyID(claims.Subject) {
		return entity.Party{}, entity.Unauthenticated("token carries malformed subject")
	}
	return entity.Party{ID: claims.Subject, Type: partyType}, nil
}
