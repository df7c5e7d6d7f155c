package domain

import (
	"context"
	"time"
)

type HealthStatus struct {
	Healthy    bool
	Database   string
	Cache      string
	TotalUsers int64
	CheckedAt  time.Time
}

// CachePinger is the liveness probe for the cache collaborator.
type CachePinger interface {
	Ping(ctx context.Context) error
}
