package loader

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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
	on := &stubFeature{name: "games", enabled: true}
	off := &stubFeature{name: "csv", enabled: false}

	m := NewManager(zap.NewNop())
	m.Register(on)
	m.Register(off)
	assert.Len(t, m.Features(), 2)

	app := fiber.New()
	require.NoError(t, m.LoadAll(app))
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)

	resp, err := app.Test(httptest.NewRequest("GET", "/games", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/csv", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestManager_LoadAllStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	first := &stubFeature{name: "sync", enabled: true, err: boom}
	second := &stubFeature{name: "games", enabled: true}

	m := NewManager(zap.NewNop())
	m.Register(first)
	m.Register(second)

	err := m.LoadAll(fiber.New())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sync")
	assert.False(t, second.loaded)
}
