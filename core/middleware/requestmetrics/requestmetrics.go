package requestmetrics

import (
	"time"

	"catalog-sync/core/metrics"

	"github.com/gofiber/fiber/v2"
)

// New returns a middleware recording Prometheus metrics for every request.
// The matched route pattern is used as endpoint label to keep cardinality bounded.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		metrics.RecordRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
