package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stego-backend/handlers"
	"stego-backend/transcode"
)

func main() {
	transcoder := transcode.New()
	if err := transcoder.CheckAvailability(); err != nil {
		log.Printf("⚠ %v - video endpoints will not work", err)
	} else {
		log.Printf("✓ ffmpeg found and ready for video processing")
	}

	router := gin.Default()

	allowedOrigin := os.Getenv("CORS_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	config := cors.DefaultConfig()
	if allowedOrigin == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = []string{allowedOrigin}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	config.ExposeHeaders = []string{"X-Stego-PSNR", "X-Stego-Method", "Content-Disposition"}
	router.Use(cors.New(config))

	stegoHandler := handlers.NewStegoHandler(transcoder)
	chatHandler := handlers.NewChatHandler(handlers.NewChatHub())

	// API Routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", stegoHandler.HealthCheck)

		audio := api.Group("/audio")
		{
			audio.POST("/embed", stegoHandler.AudioEmbed)
			audio.POST("/extract", stegoHandler.AudioExtract)
		}
		video := api.Group("/video")
		{
			video.POST("/embed", stegoHandler.VideoEmbed)
			video.POST("/extract", stegoHandler.VideoExtract)
		}
		image := api.Group("/image")
		{
			image.POST("/embed", stegoHandler.ImageEmbed)
			image.POST("/extract", stegoHandler.ImageExtract)
		}
		text := api.Group("/text")
		{
			text.POST("/embed", stegoHandler.TextEmbed)
			text.POST("/extract", stegoHandler.TextExtract)
		}
	}
	router.GET("/ws/chat", chatHandler.Serve)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Printf("API endpoints:")
	log.Printf("  POST /api/v1/audio/embed    - Hide a secret in a WAV/MP3 carrier (returns stego WAV)")
	log.Printf("  POST /api/v1/audio/extract  - Recover a secret from a stego WAV")
	log.Printf("  POST /api/v1/video/embed    - Hide a secret in a video carrier")
	log.Printf("  POST /api/v1/video/extract  - Recover a secret from a stego video")
	log.Printf("  POST /api/v1/image/embed    - Hide a secret in an image carrier (returns stego BMP)")
	log.Printf("  POST /api/v1/image/extract  - Recover a secret from a stego image")
	log.Printf("  POST /api/v1/text/embed     - Watermark host text with an invisible message")
	log.Printf("  POST /api/v1/text/extract   - Recover a watermarked message")
	log.Printf("  GET  /ws/chat               - Encrypted chat relay")
	log.Printf("  GET  /api/v1/health         - Health check")

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
