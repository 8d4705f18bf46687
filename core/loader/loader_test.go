package loader

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(app fiber.Router) error {
	if s.err != nil {
		return s.err
	}
	s.loaded = true
	app.Get("/"+s.name, func(c *fiber.Ctx) error { return c.SendString(s.name) })
	return nil
}

func TestManager_LoadAll(t *testing.T) {
	app := fiber.New()
	on := &stubFeature{name: "sync", enabled: true}
	off := &stubFeature{name: "validate", enabled: false}

	m := NewManager(nil)
	m.Register(on)
	m.Register(off)
	require.NoError(t, m.LoadAll(app))

	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
	assert.Len(t, m.Features(), 2)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/validate", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestManager_LoadAllError(t *testing.T) {
	m := NewManager(nil)
	m.Register(&stubFeature{name: "broken", enabled: true, err: errors.New("boom")})

	err := m.LoadAll(fiber.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
