package app

import (
	"errors"
	"net/http"
	"strconv"

	"example/fair-chess-api/app/search"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

type fairGameQuery struct {
	MinPly   *int `form:"min_ply"`
	MaxPly   *int `form:"max_ply"`
	MaxDepth *int `form:"max_depth"`
	MaxCP    *int `form:"max_cp"`
	MaxPV    *int `form:"max_pv"`
}

func (q fairGameQuery) parameters() (search.Parameters, error) {
	pick := func(v *int, fallback int) int {
		if v == nil {
			return fallback
		}
		return *v
	}
	return search.NewParameters(
		pick(q.MinPly, search.DefaultMinPly),
		pick(q.MaxPly, search.DefaultMaxPly),
		pick(q.MaxDepth, search.DefaultMaxDepth),
		pick(q.MaxCP, search.DefaultMaxCP),
		pick(q.MaxPV, search.DefaultMaxPV),
	)
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"Hello": "World"})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetFairGame handles GET /v1/game/new.
func GetFairGame(games GameGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q fairGameQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params, err := q.parameters()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		game, err := games.GenerateFairGame(c.Request.Context(), params)
		if err != nil {
			status, msg := statusForSearchError(err)
			log.Error().Err(err).Int("status", status).Msg(msg)
			c.JSON(status, gin.H{"error": msg})
			return
		}

		c.JSON(http.StatusOK, game)
	}
}

// GetRecentFairGames handles GET /v1/game/recent.
func GetRecentFairGames(c *gin.Context) {
	limit := defaultRecentLimit
	if q := c.Query("limit"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = v
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	games, err := RecentFairGames(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(games),
		"games": games,
	})
}

func statusForSearchError(err error) (int, string) {
	var (
		validation *search.ValidationError
		noFair     *search.NoFairPositionError
		fault      *search.EngineFaultError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.As(err, &noFair):
		return http.StatusNotFound, "Could not find a fair game"
	case errors.As(err, &fault):
		return http.StatusBadGateway, fault.Error()
	default:
		return http.StatusInternalServerError, "failed to generate a game"
	}
}
