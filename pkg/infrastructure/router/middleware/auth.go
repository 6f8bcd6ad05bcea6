package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/infrastructure/router/handler"
	"statsboard-backend/pkg/util/auth"
)

// AuthOptions of options for auth
type AuthOptions struct {
	Secret []byte
}

// Auth is a middleware of authenticating users. It stores the token and the user id
// of a valid bearer token in the request context.
func Auth(opts AuthOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			header := c.Request().Header.Get(echo.HeaderAuthorization)

			if header == "" {
				return handler.HandleError(c, model.NewAuthError(errors.New("Missing jwt token")))
			}
			accessToken, err := auth.GetTokenFromBearer(header)
			if err != nil {
				return handler.HandleError(c, model.NewAuthError(err))
			}

			claims, err := auth.ValidateTokenAndReturnClaims(accessToken, opts.Secret)
			if err != nil {
				return handler.HandleError(c, model.NewAuthError(err))
			}

			ctx, err = auth.SetTokenToContext(ctx, accessToken)
			if err != nil {
				return handler.HandleError(c, model.NewAuthError(err))
			}
			ctx, err = auth.SetUserIDToContext(ctx, model.ID(claims.UserId))
			if err != nil {
				return handler.HandleError(c, model.NewAuthError(err))
			}

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
