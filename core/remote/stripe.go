package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v84"
	"golang.org/x/time/rate"
)

// StripeClient implements Client on the Stripe API.
type StripeClient struct {
	sc      *stripe.Client
	limiter *rate.Limiter
}

// NewStripeClient creates a Stripe-backed client. SDK-level network retries are
// disabled so that the orchestrator's retry policy is the only one in effect.
func NewStripeClient(cfg Config) (*StripeClient, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is not configured")
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: time.Duration(timeout) * time.Second},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIURL != "" {
		backendConfig.URL = stripe.String(cfg.APIURL)
	}

	sc := stripe.NewClient(cfg.SecretKey, stripe.WithBackends(stripe.NewBackendsWithConfig(backendConfig)))

	return &StripeClient{
		sc:      sc,
		limiter: newLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}, nil
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (c *StripeClient) wait(ctx context.Context, op string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return translate(ctx, op, err)
	}
	return nil
}

// Ping lists a single product to verify connectivity and credentials.
func (c *StripeClient) Ping(ctx context.Context) error {
	const op = "ping"
	if err := c.wait(ctx, op); err != nil {
		return err
	}
	params := &stripe.ProductListParams{ListParams: stripe.ListParams{Limit: stripe.Int64(1)}}
	for _, err := range c.sc.V1Products.List(ctx, params) {
		if err != nil {
			return translate(ctx, op, err)
		}
		break
	}
	return nil
}

func (c *StripeClient) CreateProduct(ctx context.Context, p ProductParams) (*Product, error) {
	const op = "create_product"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	params := &stripe.ProductCreateParams{
		Name:        stripe.String(p.Name),
		Description: optionalString(p.Description),
		Metadata:    p.Metadata,
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	product, err := c.sc.V1Products.Create(ctx, params)
	if err != nil {
		return nil, translate(ctx, op, err)
	}
	return productFromStripe(product), nil
}

func (c *StripeClient) RetrieveProduct(ctx context.Context, id string) (*Product, error) {
	const op = "retrieve_product"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	product, err := c.sc.V1Products.Retrieve(ctx, id, &stripe.ProductRetrieveParams{})
	if err != nil {
		return nil, translate(ctx, op, err)
	}
	if product.Deleted {
		return nil, NewError(op, KindNotFound, fmt.Sprintf("product %s was deleted", id))
	}
	return productFromStripe(product), nil
}

func (c *StripeClient) UpdateProduct(ctx context.Context, id string, p ProductParams) (*Product, error) {
	const op = "update_product"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	params := &stripe.ProductUpdateParams{
		Name:        stripe.String(p.Name),
		Description: stripe.String(p.Description),
		Metadata:    p.Metadata,
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	product, err := c.sc.V1Products.Update(ctx, id, params)
	if err != nil {
		return nil, translate(ctx, op, err)
	}
	return productFromStripe(product), nil
}

func (c *StripeClient) CreatePrice(ctx context.Context, p PriceParams) (*Price, error) {
	const op = "create_price"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	params := &stripe.PriceCreateParams{
		Product:    stripe.String(p.ProductID),
		Currency:   stripe.String(p.Currency),
		UnitAmount: stripe.Int64(p.UnitAmount),
		Metadata:   p.Metadata,
	}
	if p.Interval != IntervalNone {
		params.Recurring = &stripe.PriceCreateRecurringParams{
			Interval: stripe.String(string(p.Interval)),
		}
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	price, err := c.sc.V1Prices.Create(ctx, params)
	if err != nil {
		return nil, translate(ctx, op, err)
	}
	return priceFromStripe(price), nil
}

func (c *StripeClient) RetrievePrice(ctx context.Context, id string) (*Price, error) {
	const op = "retrieve_price"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	price, err := c.sc.V1Prices.Retrieve(ctx, id, &stripe.PriceRetrieveParams{})
	if err != nil {
		return nil, translate(ctx, op, err)
	}
	return priceFromStripe(price), nil
}

func (c *StripeClient) DeactivatePrice(ctx context.Context, id string) (*Price, error) {
	const op = "deactivate_price"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	price, err := c.sc.V1Prices.Update(ctx, id, &stripe.PriceUpdateParams{Active: stripe.Bool(false)})
	if err != nil {
		return nil, translate(ctx, op, err)
	}
	return priceFromStripe(price), nil
}

func (c *StripeClient) ListProducts(ctx context.Context) ([]Product, error) {
	const op = "list_products"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	var products []Product
	for p, err := range c.sc.V1Products.List(ctx, &stripe.ProductListParams{Active: stripe.Bool(true)}) {
		if err != nil {
			return nil, translate(ctx, op, err)
		}
		products = append(products, *productFromStripe(p))
	}
	return products, nil
}

func (c *StripeClient) ListPrices(ctx context.Context, productID string) ([]Price, error) {
	const op = "list_prices"
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	params := &stripe.PriceListParams{
		Product: stripe.String(productID),
		Active:  stripe.Bool(true),
	}
	var prices []Price
	for p, err := range c.sc.V1Prices.List(ctx, params) {
		if err != nil {
			return nil, translate(ctx, op, err)
		}
		prices = append(prices, *priceFromStripe(p))
	}
	return prices, nil
}

func productFromStripe(p *stripe.Product) *Product {
	return &Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Metadata:    p.Metadata,
		Active:      p.Active,
	}
}

func priceFromStripe(p *stripe.Price) *Price {
	price := &Price{
		ID:         p.ID,
		Currency:   string(p.Currency),
		UnitAmount: p.UnitAmount,
		Active:     p.Active,
		Metadata:   p.Metadata,
	}
	if p.Product != nil {
		price.ProductID = p.Product.ID
	}
	if p.Recurring != nil {
		price.Interval = Interval(p.Recurring.Interval)
	}
	return price
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return stripe.String(s)
}

// translate maps SDK and transport failures onto *Error.
func translate(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}

	var se *stripe.Error
	if errors.As(err, &se) {
		return &Error{
			Op:         op,
			Kind:       kindForStatus(se.HTTPStatusCode, string(se.Code)),
			StatusCode: se.HTTPStatusCode,
			Code:       string(se.Code),
			Message:    se.Msg,
			Err:        err,
		}
	}

	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return &Error{Op: op, Kind: KindCanceled, Message: err.Error(), Err: err}
	}

	return &Error{Op: op, Kind: KindTransport, Message: err.Error(), Err: err}
}

func kindForStatus(status int, code string) Kind {
	switch {
	case status == http.StatusNotFound || code == string(stripe.ErrorCodeResourceMissing):
		return KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= http.StatusInternalServerError:
		return KindProvider
	case status >= http.StatusBadRequest:
		return KindInvalid
	default:
		return KindUnknown
	}
}
