package middleware

import (
	"client-registry/session"

	"github.com/gofiber/fiber/v2"
)

// SessionHeader carries the session identifier in both directions.
const SessionHeader = "X-Session-ID"

// SessionRequired attaches the caller's session, starting a new one when the
// header is missing or names an expired session. The identifier in use is
// always echoed back in SessionHeader.
func SessionRequired(store *session.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, _ := store.Resolve(c.Get(SessionHeader))

		c.Locals("sessionID", sess.ID)
		c.Locals("session", sess)
		c.Set(SessionHeader, sess.ID)

		return c.Next()
	}
}

func GetSessionID(c *fiber.Ctx) string {
	sessionID, ok := c.Locals("sessionID").(string)
	if !ok {
		return ""
	}
	return sessionID
}

func GetSession(c *fiber.Ctx) *session.Session {
	sess, ok := c.Locals("session").(*session.Session)
	if !ok {
		return nil
	}
	return sess
}
