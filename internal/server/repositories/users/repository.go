// Package users declares the repository contract for user accounts.
package users

import (
	"context"

	"github.com/avelmore/deckvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
