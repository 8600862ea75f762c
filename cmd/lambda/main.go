package main

import (
	"context"

	"example/fair-chess-api/app"
	"example/fair-chess-api/app/config"
	"example/fair-chess-api/app/engine"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/rs/zerolog/log"
)

var ginLambda *ginadapter.GinLambda

// init runs once per Lambda container (cold start); the engine pool lives as
// long as the container.
func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := app.ConfigureLogger(cfg.Logs)

	ctx := context.Background()
	if err := app.InitDB(ctx, cfg.DB); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize db")
	}

	pool, err := engine.NewPool(ctx, engine.PoolConfig{
		Path:    cfg.Engine.Path,
		Size:    cfg.Engine.PoolSize,
		Threads: cfg.Engine.Threads,
		HashMB:  cfg.Engine.HashMB,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start engines")
	}

	games := app.NewFairGameService(pool, cfg.Engine.SearchTimeout, logger)
	ginLambda = ginadapter.New(app.NewRouter(cfg.HTTP, games))
}

// Handler is the Lambda entrypoint for API Gateway REST/HTTP API (proxy integration)
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
