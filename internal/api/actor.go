package api

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Austinpowers7/storehive-backend/internal/apperr"
	"github.com/Austinpowers7/storehive-backend/internal/auth"
	"github.com/Austinpowers7/storehive-backend/internal/authz"
)

const tokenContextKey = "user"

func jwtMiddleware(signingKey []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: signingKey,
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		},
	})
}

// actorFrom builds the caller from the verified token claims.
func actorFrom(c echo.Context) (authz.Actor, error) {
	token, ok := c.Get(tokenContextKey).(*jwt.Token)
	if !ok {
		return authz.Actor{}, &apperr.Error{Kind: apperr.KindUnauthorized, Message: "Unauthorized"}
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return authz.Actor{}, &apperr.Error{Kind: apperr.KindUnauthorized, Message: "Unauthorized"}
	}

	actor := authz.Actor{
		ID:      claims.ID,
		Email:   claims.Email,
		Role:    claims.Role,
		StoreID: claims.StoreID,
	}
	if err := actor.Validate(); err != nil {
		return authz.Actor{}, &apperr.Error{Kind: apperr.KindUnauthorized, Message: "invalid token claims", Err: err}
	}
	return actor, nil
}

// withActor resolves the caller before running fn.
func withActor(fn func(c echo.Context, actor authz.Actor) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorFrom(c)
		if err != nil {
			return respondError(c, err)
		}
		return fn(c, actor)
	}
}
