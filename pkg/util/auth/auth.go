package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"statsboard-backend/config"
	"statsboard-backend/pkg/entity/model"
)

type key string

const (
	AccessTokenKey key = "AuthToken"
	UserIDKey      key = "UserID"
)

// AccessTokenTTL is the lifetime of tokens issued by GenerateAccessToken.
const AccessTokenTTL = 15 * time.Minute

type CustomClaims struct {
	UserId string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateAccessToken generates a new access token
func GenerateAccessToken(userId string) (string, error) {
	return GenerateAccessTokenWithSecret(userId, []byte(config.C.JwtTokenSecret), AccessTokenTTL)
}

func GenerateAccessTokenWithSecret(userId string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    config.C.AppName,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return tokenString, nil
}

// GetTokenFromBearer gets id token from Bearer string.
func GetTokenFromBearer(str string) (string, error) {
	if !strings.HasPrefix(str, "Bearer") {
		return "", model.NewAuthError(errors.New("Invalid token format"))
	}
	token := strings.TrimSpace(strings.TrimPrefix(str, "Bearer"))
	if token == "" {
		return "", model.NewAuthError(errors.New("Invalid token format"))
	}
	return token, nil
}

// SetTokenToContext sets token data to context.
func SetTokenToContext(ctx context.Context, token string) (context.Context, error) {
	if token == "" {
		return nil, model.NewAuthError(errors.New("Unable to set token in context. Token is empty"))
	}
	return context.WithValue(ctx, AccessTokenKey, token), nil
}

func GetTokenFromContext(ctx context.Context) (string, error) {
	token, ok := ctx.Value(AccessTokenKey).(string)
	if !ok {
		return "", model.NewAuthError(errors.New("jwt token is missing"))
	}
	return token, nil
}

// SetUserIDToContext stores the authenticated user id.
func SetUserIDToContext(ctx context.Context, userID model.ID) (context.Context, error) {
	if userID == "" {
		return nil, model.NewAuthError(errors.New("Unable to set user in context. User id is empty"))
	}
	return context.WithValue(ctx, UserIDKey, userID), nil
}

func GetUserIDFromContext(ctx context.Context) (model.ID, error) {
	id, ok := ctx.Value(UserIDKey).(model.ID)
	if !ok || id == "" {
		return "", model.NewAuthError(errors.New("authenticated user is missing"))
	}
	return id, nil
}

func ValidateTokenAndReturnClaims(tokenString string, secret []byte) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&CustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserId == "" {
		return nil, errors.New("token has no user")
	}

	return claims, nil
}

// IsJWTExpired reports whether err returned by ValidateTokenAndReturnClaims is an expiry.
func IsJWTExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
