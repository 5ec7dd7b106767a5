package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/model"
)

// CatalogRepo is the read-only surface of the catalog collaborator:
// movies, cinemas, halls and concession items. The booking core never
// mutates any of these.
type CatalogRepo interface {
	WithTx(tx *gorm.DB) CatalogRepo
	GetMovie(id string) (*model.Movie, error)
	GetCinema(id string) (*model.Cinema, error)
	GetHall(id string) (*model.Hall, error)
	GetConcessions(ids []string) ([]model.Concession, error)
}

type catalogRepoGorm struct {
	db *gorm.DB
}

var _ CatalogRepo = (*catalogRepoGorm)(nil)

func NewCatalogRepoGorm(db *gorm.DB) *catalogRepoGorm {
	return &catalogRepoGorm{db: db}
}

func (r *catalogRepoGorm) WithTx(tx *gorm.DB) CatalogRepo {
	return &catalogRepoGorm{db: tx}
}

func (r *catalogRepoGorm) GetMovie(id string) (*model.Movie, error) {
	ctx := context.Background()
	movie, err := gorm.G[model.Movie](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *catalogRepoGorm) GetCinema(id string) (*model.Cinema, error) {
	ctx := context.Background()
	cinema, err := gorm.G[model.Cinema](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &cinema, nil
}

func (r *catalogRepoGorm) GetHall(id string) (*model.Hall, error) {
	ctx := context.Background()
	hall, err := gorm.G[model.Hall](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &hall, nil
}

func (r *catalogRepoGorm) GetConcessions(ids []string) ([]model.Concession, error) {
	ctx := context.Background()
	return gorm.G[model.Concession](r.db).Where("id IN ?", ids).Find(ctx)
}
