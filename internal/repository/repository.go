package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

var ErrNotFound = errors.New("record not found")

type Filter struct {
	Limit    int
	Offset   int
	Since    *time.Time
	Priority *models.Priority
	DonorID  string
}

type RequestRepository interface {
	Add(ctx context.Context, r *models.RescueRequest) error
	GetByID(ctx context.Context, id string) (*models.RescueRequest, error)
	ListRequests(ctx context.Context, opts Filter) ([]models.RescueRequest, error)
}
