package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SecretTokenHeader is the header Telegram fills with the secret given to setWebhook
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecretMiddleware rejects webhook calls that do not carry the configured secret.
// An empty secret disables the check.
func WebhookSecretMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}

			token := c.Request().Header.Get(SecretTokenHeader)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing secret token header")
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid secret token")
			}

			return next(c)
		}
	}
}
