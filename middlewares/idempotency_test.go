package middlewares

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstbilling-backend/models"
)

type memoryIdemStore struct {
	mu   sync.Mutex
	recs map[string]models.IdempotencyKey
}

func newMemoryIdemStore() *memoryIdemStore {
	return &memoryIdemStore{recs: map[string]models.IdempotencyKey{}}
}

func (s *memoryIdemStore) BeginRequest(_ string, rec models.IdempotencyKey) (models.IdempotencyKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.recs[rec.Key]; ok {
		return existing, false, nil
	}
	s.recs[rec.Key] = rec
	return rec, true, nil
}

func (s *memoryIdemStore) StoreResponse(_ string, key string, status int, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.recs[key]
	rec.ResponseStatus = status
	rec.ResponseBody = body
	s.recs[key] = rec
	return nil
}

func (s *memoryIdemStore) Discard(_ string, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, key)
}

func newIdemApp(store idempotencyStore, handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("schema", "tenant_a")
		c.Locals("userID", "user-1")
		return c.Next()
	})
	app.Use(idempotencyWith(store))
	app.Post("/api/document", handler)
	return app
}

func newDocRequest(key, body string) *http.Request {
	req := httptest.NewRequest(fiber.MethodPost, "/api/document", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", key)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestIdempotencyReplaysStoredResponseWithoutRerunningHandler(t *testing.T) {
	store := newMemoryIdemStore()
	calls := 0
	app := newIdemApp(store, func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"sequence_number": calls})
	})

	res, err := app.Test(newDocRequest("k-1", `{"kind":"invoice"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)
	first, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	res, err = app.Test(newDocRequest("k-1", `{"kind":"invoice"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)
	second, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, string(first), string(second))
}

func TestIdempotencyConcurrentDuplicateRunsHandlerOnce(t *testing.T) {
	store := newMemoryIdemStore()
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	app := newIdemApp(store, func(c *fiber.Ctx) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(entered)
		}
		<-release
		return c.Status(fiber.StatusCreated).SendString(`{"ok":true}`)
	})

	done := make(chan *http.Response, 1)
	go func() {
		res, _ := app.Test(newDocRequest("k-2", `{"kind":"invoice"}`), -1)
		done <- res
	}()
	<-entered

	res, err := app.Test(newDocRequest("k-2", `{"kind":"invoice"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)

	close(release)
	first := <-done
	require.NotNil(t, first)
	assert.Equal(t, fiber.StatusCreated, first.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIdempotencyKeyReuseWithDifferentBodyConflicts(t *testing.T) {
	store := newMemoryIdemStore()
	calls := 0
	app := newIdemApp(store, func(c *fiber.Ctx) error {
		calls++
		return c.SendStatus(fiber.StatusCreated)
	})

	res, err := app.Test(newDocRequest("k-3", `{"kind":"invoice"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)

	res, err = app.Test(newDocRequest("k-3", `{"kind":"challan"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyFailedHandlerAllowsRetry(t *testing.T) {
	store := newMemoryIdemStore()
	calls := 0
	app := newIdemApp(store, func(c *fiber.Ctx) error {
		calls++
		if calls == 1 {
			return fiber.NewError(fiber.StatusInternalServerError, "storage down")
		}
		return c.Status(fiber.StatusCreated).SendString(`{"ok":true}`)
	})

	res, err := app.Test(newDocRequest("k-4", `{"kind":"invoice"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)

	res, err = app.Test(newDocRequest("k-4", `{"kind":"invoice"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)
	assert.Equal(t, 2, calls)
}
