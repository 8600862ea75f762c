// Package app wires the fair game service to HTTP for both the local server
// and Lambda execution.
package app

import (
	"time"

	"example/fair-chess-api/app/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// NewRouter builds the shared HTTP router for both local and Lambda execution.
func NewRouter(cfg config.HTTPConfig, games GameGenerator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log.Logger))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/", Root)
	router.GET("/health", Health)

	v1 := router.Group("/v1")
	v1.GET("/game/new", GetFairGame(games))
	v1.GET("/game/recent", GetRecentFairGames)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
