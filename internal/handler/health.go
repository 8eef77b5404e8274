package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type pingFunc func(ctx context.Context) error

// Health pings the credential store, the document database and Redis. Each
// dependency reports "connected" or "error"; details stay in the logs.
func Health(db *gorm.DB, mongoClient *mongo.Client, rdb *redis.Client) gin.HandlerFunc {
	checks := map[string]pingFunc{
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	return healthHandler(checks)
}

func healthHandler(checks map[string]pingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		body := gin.H{}
		healthy := true
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				healthy = false
				body[name] = "error"
				_ = c.Error(err)
				continue
			}
			body[name] = "connected"
		}
		body["ok"] = healthy

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}
