package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lifelessons-backend-go/internal/config"
)

const defaultClientURL = "http://localhost:5173"

// CORSMiddleware allows requests from the origins listed in CLIENT_URL.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	origins := appConfig.AllowedOrigins()
	if len(origins) == 0 {
		origins = []string{defaultClientURL}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
