package routes

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"velora_back_end/internal/cart"
	"velora_back_end/internal/checkout"
	"velora_back_end/internal/config"
	"velora_back_end/internal/database"
	"velora_back_end/internal/handlers/admin"
	"velora_back_end/internal/handlers/contact"
	"velora_back_end/internal/handlers/payement"
	"velora_back_end/internal/handlers/product"
	"velora_back_end/internal/handlers/user"
	"velora_back_end/internal/middleware"
	"velora_back_end/internal/payment"
	"velora_back_end/internal/pricing"
	"velora_back_end/internal/store"
	"velora_back_end/internal/utils"
)

// RegisterRoutes câble stores, services et handlers puis déclare les routes.
func RegisterRoutes(r *gin.Engine) error {
	productsSession, err := database.GetProductsSession()
	if err != nil {
		return fmt.Errorf("session products: %w", err)
	}
	cartsSession, err := database.GetCartsSession()
	if err != nil {
		return fmt.Errorf("session carts: %w", err)
	}
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		return fmt.Errorf("session orders: %w", err)
	}

	products := store.NewScyllaProducts(productsSession)
	cartLines := store.NewScyllaCart(cartsSession)
	orders := store.NewScyllaOrders(ordersSession)
	fulfillments := store.NewScyllaFulfillments(ordersSession)

	cartAdapter := cart.NewAdapter(products, cartLines)
	engine := pricing.NewEngine(products, pricing.Config{
		FreeShippingThresholdCents: config.FreeShippingThresholdCents(),
		ShippingFlatRateCents:      config.ShippingFlatRateCents(),
		TaxRatePercent:             config.TaxRatePercent(),
	})
	provider := payment.NewStripeProvider()
	assembler := checkout.NewAssembler(orders)
	orchestrator := checkout.NewOrchestrator(provider, orders, config.AppBaseURL())
	reconciler := checkout.NewReconciler(orders, fulfillments, cartAdapter, utils.NewMailNotifier(), provider)

	productHandler := product.NewHandler(products)
	cartHandler := user.NewCartHandler(cartAdapter)
	ordersHandler := user.NewOrdersHandler(orders)
	payementHandler := payement.NewHandler(engine, assembler, orchestrator, reconciler)
	adminHandler := admin.NewHandler(orders, fulfillments)
	contactHandler := contact.NewHandler()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppBaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Catalogue public
	api.GET("/products", productHandler.ListProducts)
	api.GET("/products/search", middleware.SearchRateLimit(), productHandler.SearchProducts)
	api.GET("/products/:slug", productHandler.GetProductBySlug)

	// Webhook Stripe : pas d'auth, la signature fait foi
	api.POST("/webhook/stripe", payementHandler.StripeWebhook)

	// Formulaire de contact public
	api.POST("/contact", contactHandler.SubmitContactForm)

	// Espace client
	auth := api.Group("")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/cart", cartHandler.GetCart)
		auth.POST("/cart", middleware.CartRateLimit(), cartHandler.AddToCart)
		auth.PATCH("/cart/:itemId", cartHandler.UpdateCartItem)
		auth.DELETE("/cart/:itemId", cartHandler.RemoveCartItem)

		auth.POST("/checkout", payementHandler.Checkout)
		auth.GET("/checkout/success", payementHandler.Success)

		auth.GET("/orders", ordersHandler.ListOrders)
		auth.GET("/orders/:id", ordersHandler.GetOrder)
	}

	// Back-office
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adminGroup.POST("/products", productHandler.CreateProduct)
		adminGroup.PUT("/products/:id", productHandler.UpdateProduct)
		adminGroup.DELETE("/products/:id", productHandler.DeleteProduct)

		adminGroup.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
		adminGroup.PATCH("/orders/:id/fulfillment", adminHandler.UpdateFulfillment)
	}

	return nil
}
