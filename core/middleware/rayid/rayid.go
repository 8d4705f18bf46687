package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response (and accepted request) header carrying the RayID.
const HeaderName = "X-Ray-ID"

// LocalsKey is where the RayID is stored on the fiber context.
const LocalsKey = "ray_id"

// New returns a middleware assigning every request a RayID. An incoming
// X-Ray-ID header is kept so callers can correlate their own logs.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(HeaderName, id)
		return c.Next()
	}
}
