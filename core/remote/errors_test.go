package remote

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Classification(t *testing.T) {
	tests := []struct {
		kind      Kind
		transient bool
		fatal     bool
	}{
		{KindTransport, true, true},
		{KindRateLimited, true, false},
		{KindProvider, true, false},
		{KindNotFound, false, false},
		{KindInvalid, false, false},
		{KindAuth, false, true},
		{KindCanceled, false, true},
		{KindUnknown, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewError("op", tt.kind, "boom"))
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.transient, IsTransient(err))
			assert.Equal(t, tt.fatal, IsFatal(err))
		})
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	err := errors.New("plain")
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.False(t, IsTransient(err))
	assert.False(t, IsNotFound(err))
}

func TestError_Message(t *testing.T) {
	err := &Error{Op: "create_price", Kind: KindInvalid, StatusCode: 400, Message: "bad currency"}
	assert.Equal(t, "create_price: invalid (status 400): bad currency", err.Error())

	err = &Error{Op: "ping", Kind: KindTransport, Message: "dial tcp: refused"}
	assert.Equal(t, "ping: transport: dial tcp: refused", err.Error())
}

func TestTranslate_Context(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := translate(ctx, "retrieve_product", context.Canceled)
	assert.Equal(t, KindCanceled, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)

	err = translate(context.Background(), "retrieve_product", errors.New("connection reset"))
	assert.Equal(t, KindTransport, KindOf(err))

	assert.NoError(t, translate(context.Background(), "noop", nil))
}

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, KindNotFound, kindForStatus(404, ""))
	assert.Equal(t, KindNotFound, kindForStatus(400, "resource_missing"))
	assert.Equal(t, KindAuth, kindForStatus(401, ""))
	assert.Equal(t, KindAuth, kindForStatus(403, ""))
	assert.Equal(t, KindRateLimited, kindForStatus(429, ""))
	assert.Equal(t, KindProvider, kindForStatus(503, ""))
	assert.Equal(t, KindInvalid, kindForStatus(400, "parameter_invalid_integer"))
	assert.Equal(t, KindUnknown, kindForStatus(0, ""))
}
