package syncer

import (
	"context"
	"time"

	"catalog-sync/core/metrics"
	"catalog-sync/core/remote"

	"go.uber.org/zap"
)

// RetryingClient wraps a remote.Client with bounded exponential backoff on transient errors.
type RetryingClient struct {
	inner  remote.Client
	cfg    Config
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryingClient wraps inner. Values below one attempt are raised to one.
func NewRetryingClient(inner remote.Client, cfg Config, logger *zap.Logger) *RetryingClient {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingClient{inner: inner, cfg: cfg, logger: logger, sleep: sleepContext}
}

// Backoff returns the wait before retry number n (1-based).
func (c *RetryingClient) Backoff(n int) time.Duration {
	d := c.cfg.InitialBackoff
	for i := 1; i < n; i++ {
		d *= 2
		if c.cfg.MaxBackoff > 0 && d >= c.cfg.MaxBackoff {
			return c.cfg.MaxBackoff
		}
	}
	if c.cfg.MaxBackoff > 0 && d > c.cfg.MaxBackoff {
		return c.cfg.MaxBackoff
	}
	return d
}

func (c *RetryingClient) do(ctx context.Context, op string, call func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = call()
		if err == nil {
			metrics.RecordRemoteCall(op, "ok")
			return nil
		}
		metrics.RecordRemoteCall(op, string(remote.KindOf(err)))

		if !remote.IsTransient(err) || attempt >= c.cfg.MaxAttempts {
			return err
		}

		wait := c.Backoff(attempt)
		c.logger.Warn("Retrying remote call",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))
		if serr := c.sleep(ctx, wait); serr != nil {
			return &remote.Error{Op: op, Kind: remote.KindCanceled, Message: serr.Error(), Err: serr}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *RetryingClient) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", func() error {
		return c.inner.Ping(ctx)
	})
}

func (c *RetryingClient) CreateProduct(ctx context.Context, params remote.ProductParams) (*remote.Product, error) {
	var out *remote.Product
	err := c.do(ctx, "create_product", func() (err error) {
		out, err = c.inner.CreateProduct(ctx, params)
		return err
	})
	return out, err
}

func (c *RetryingClient) RetrieveProduct(ctx context.Context, id string) (*remote.Product, error) {
	var out *remote.Product
	err := c.do(ctx, "retrieve_product", func() (err error) {
		out, err = c.inner.RetrieveProduct(ctx, id)
		return err
	})
	return out, err
}

func (c *RetryingClient) UpdateProduct(ctx context.Context, id string, params remote.ProductParams) (*remote.Product, error) {
	var out *remote.Product
	err := c.do(ctx, "update_product", func() (err error) {
		out, err = c.inner.UpdateProduct(ctx, id, params)
		return err
	})
	return out, err
}

func (c *RetryingClient) CreatePrice(ctx context.Context, params remote.PriceParams) (*remote.Price, error) {
	var out *remote.Price
	err := c.do(ctx, "create_price", func() (err error) {
		out, err = c.inner.CreatePrice(ctx, params)
		return err
	})
	return out, err
}

func (c *RetryingClient) RetrievePrice(ctx context.Context, id string) (*remote.Price, error) {
	var out *remote.Price
	err := c.do(ctx, "retrieve_price", func() (err error) {
		out, err = c.inner.RetrievePrice(ctx, id)
		return err
	})
	return out, err
}

func (c *RetryingClient) DeactivatePrice(ctx context.Context, id string) (*remote.Price, error) {
	var out *remote.Price
	err := c.do(ctx, "deactivate_price", func() (err error) {
		out, err = c.inner.DeactivatePrice(ctx, id)
		return err
	})
	return out, err
}

func (c *RetryingClient) ListProducts(ctx context.Context) ([]remote.Product, error) {
	var out []remote.Product
	err := c.do(ctx, "list_products", func() (err error) {
		out, err = c.inner.ListProducts(ctx)
		return err
	})
	return out, err
}

func (c *RetryingClient) ListPrices(ctx context.Context, productID string) ([]remote.Price, error) {
	var out []remote.Price
	err := c.do(ctx, "list_prices", func() (err error) {
		out, err = c.inner.ListPrices(ctx, productID)
		return err
	})
	return out, err
}
