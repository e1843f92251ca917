package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/routedash/routedash/internal/presentation/http/response"
	"github.com/routedash/routedash/pkg/errorbank"
)

// HeaderPrincipal carries the authenticated caller's id, forwarded by the
// identity edge. Token verification happens upstream; this layer only trusts
// the header.
const HeaderPrincipal = "X-User-ID"

const principalKey = "principal.id"

// RequirePrincipal rejects requests that arrive without a usable principal id
// and stores the id on the request context for handlers.
func RequirePrincipal() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderPrincipal)
			if id == "" {
				return response.New(c).WithError(errorbank.Unauthorized("missing principal")).Build()
			}
			if _, err := uuid.Parse(id); err != nil {
				return response.New(c).WithError(errorbank.Unauthorized("invalid principal")).Build()
			}
			c.Set(principalKey, id)
			return next(c)
		}
	}
}

// PrincipalID returns the caller id stored by RequirePrincipal, or an empty
// string on routes that skipped it.
func PrincipalID(c echo.Context) string {
	id, _ := c.Get(principalKey).(string)
	return id
}
