package routes

import (
	"github.com/gofiber/fiber/v2"

	"gstbilling-backend/controllers"
	"gstbilling-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request tenant transaction (pins search_path and commits/rolls back)
	protected.Use(middlewares.TenantTx())

	// Party directory
	protected.Post("/party", controllers.CreateParty)
	protected.Get("/parties", controllers.GetParties)
	protected.Get("/party/:id", controllers.GetParty)
	protected.Put("/party/:id", controllers.UpdateParty)
	protected.Delete("/party/:id", controllers.DeleteParty)

	// Documents (invoices and delivery challans)
	protected.Post("/document", controllers.CreateDocument)
	protected.Get("/documents", controllers.GetDocuments)
	protected.Get("/document/:id", controllers.GetDocument)
	protected.Put("/document/:id", controllers.UpdateDocument)
	protected.Delete("/document/:id", controllers.DeleteDocument)
	protected.Get("/document/:id/render", controllers.RenderDocument)
}
