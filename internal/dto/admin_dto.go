package dto

import (
	"time"

	"github.com/daniswara/kumpul-api/internal/repository"
)

// DashboardResponse bundles the analytics shown on the admin dashboard.
type DashboardResponse struct {
	Counts         repository.DashboardCounts `json:"counts"`
	MessagesPerDay []repository.DailyCount    `json:"messages_per_day"`
	GeneratedAt    time.Time                  `json:"generated_at"`
	Cached         bool                       `json:"cached"`
}

// UploadResponse carries the public URL of an uploaded asset.
type UploadResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}
