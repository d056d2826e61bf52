package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// User endpoints
		v1.POST("/users", handler.RegisterUser)
		v1.GET("/users/:id", handler.GetUser)

		// Collection endpoints
		v1.POST("/collections", handler.CreateCollection)
		v1.GET("/collections", handler.ListCollections)
		v1.GET("/collections/:id", handler.GetCollection)

		// NFT endpoints
		v1.POST("/nfts", handler.RegisterNFT)
		v1.POST("/nfts/mint", handler.MintNFT)
		v1.GET("/nfts", handler.ListNFTs)
		v1.GET("/nfts/:id", handler.GetNFT)

		// Listing endpoints
		v1.POST("/listings", handler.CreateListing)
		v1.GET("/listings", handler.ListListings)
		v1.GET("/listings/:id", handler.GetListing)
		v1.POST("/listings/:id/cancel", handler.CancelListing)

		// Order endpoints
		v1.POST("/orders", handler.PlaceOrder)
		v1.GET("/orders/:id", handler.GetOrder)
		v1.POST("/orders/:id/confirm", handler.ConfirmOrder)
		v1.POST("/orders/:id/fail", handler.FailOrder)

		// Changes endpoint (sequential audit log)
		v1.GET("/changes", handler.GetChanges)
	}
}
