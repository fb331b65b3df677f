package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"gstbilling-backend/database"
	"gstbilling-backend/models"
)

// idempotencyStore persists one record per Idempotency-Key.
type idempotencyStore interface {
	// BeginRequest returns the record for rec.Key, creating it in pending
	// state when none exists. The second result is true when this call
	// created the record, i.e. this request owns the key.
	BeginRequest(schema string, rec models.IdempotencyKey) (models.IdempotencyKey, bool, error)
	// StoreResponse marks the record completed with the handler's response.
	StoreResponse(schema, key string, status int, body []byte) error
	// Discard removes a pending record whose handler failed, so the client
	// can retry with the same key.
	Discard(schema, key string)
}

// Idempotency processes Idempotency-Key for mutating HTTP methods in a schema-safe way.
// Document creation is retry-prone on flaky mobile connections; replaying a create
// must not burn a second sequence number. Storage runs in its own short transactions
// with SET LOCAL search_path to avoid leaking search_path on pooled connections.
func Idempotency() fiber.Handler {
	return idempotencyWith(gormIdempotencyStore{})
}

func idempotencyWith(store idempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}

		schema, _ := c.Locals("schema").(string)
		userID, _ := c.Locals("userID").(string)
		if schema == "" || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "auth context missing"})
		}

		path := c.OriginalURL() // includes query string
		body := c.Body()

		// Build deterministic request hash: method|path|body|schema|user
		h := sha256.New()
		h.Write([]byte(method))
		h.Write([]byte{'\n'})
		h.Write([]byte(path))
		h.Write([]byte{'\n'})
		h.Write(body)
		h.Write([]byte{'\n'})
		h.Write([]byte(schema))
		h.Write([]byte{'\n'})
		h.Write([]byte(userID))
		reqHash := hex.EncodeToString(h.Sum(nil))

		existing, created, err := store.BeginRequest(schema, models.IdempotencyKey{
			Key:          key,
			RequestHash:  reqHash,
			Method:       method,
			Path:         path,
			TenantSchema: schema,
			UserID:       userID,
		})
		if err != nil {
			return err
		}

		if existing.RequestHash != reqHash {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if existing.ResponseStatus != 0 && existing.ResponseBody != nil {
			// Completed earlier: replay the stored response, the handler
			// must not run again.
			c.Status(existing.ResponseStatus)
			return c.Send(existing.ResponseBody)
		}
		if !created {
			// Another request holding the same key is still in flight.
			return fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key is still in progress")
		}

		if err := c.Next(); err != nil {
			// Release the key so the client can retry the failed request.
			store.Discard(schema, key)
			return err
		}

		status := c.Response().StatusCode()
		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)
		_ = store.StoreResponse(schema, key, status, blob) // best-effort
		return nil
	}
}

// gormIdempotencyStore keeps records in the tenant schema's idempotency_keys
// table, pinning search_path per short transaction.
type gormIdempotencyStore struct{}

func (gormIdempotencyStore) BeginRequest(schema string, rec models.IdempotencyKey) (models.IdempotencyKey, bool, error) {
	var existing models.IdempotencyKey
	created := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`SET LOCAL search_path = "` + schema + `", public`).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency schema pin failed")
		}

		if err := tx.Where("key = ?", rec.Key).First(&existing).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
			}
			if e2 := tx.Create(&rec).Error; e2 != nil {
				// Unique race: someone else inserted between First and Create.
				if e3 := tx.Where("key = ?", rec.Key).First(&existing).Error; e3 != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "idempotency create failed")
				}
				return nil
			}
			existing = rec
			created = true
		}
		return nil
	})
	return existing, created, err
}

func (gormIdempotencyStore) StoreResponse(schema, key string, status int, body []byte) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`SET LOCAL search_path = "` + schema + `", public`).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.Model(&models.IdempotencyKey{}).
			Where("key = ?", key).
			Updates(map[string]any{
				"response_status": status,
				"response_body":   body,
				"completed_at":    &now,
			}).Error
	})
}

func (gormIdempotencyStore) Discard(schema, key string) {
	_ = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`SET LOCAL search_path = "` + schema + `", public`).Error; err != nil {
			return err
		}
		return tx.Where("key = ? AND response_status = 0", key).
			Delete(&models.IdempotencyKey{}).Error
	})
}
