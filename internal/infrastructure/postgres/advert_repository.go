package postgres

import (
	domain "adboard/backend/internal/domain/advert"
)

var advertKind = Kind[domain.Advert, int64]{
	Name:    "advert",
	Table:   "adverts",
	Key:     "id",
	Columns: []string{"title", "description", "creation_time", "owner_id"},
	AutoKey: true,
	KeyOf:   func(a *domain.Advert) int64 { return a.ID },
	IsNew:   func(a *domain.Advert) bool { return a.ID == 0 },
	Values: func(a *domain.Advert) []any {
		return []any{a.Title, a.Description, a.CreationTime, a.OwnerID}
	},
	Fields: func(a *domain.Advert) []any {
		return []any{&a.ID, &a.Title, &a.Description, &a.CreationTime, &a.OwnerID}
	},
	NotFound: domain.ErrNotFound,
	Conflict: domain.ErrDuplicateTitle,
}

// AdvertRepository persists adverts in PostgreSQL.
type AdvertRepository struct {
	*Repository[domain.Advert, int64]
}

var _ domain.Repository = (*AdvertRepository)(nil)

// NewAdvertRepository constructs a repository.
func NewAdvertRepository(pool DBTX) *AdvertRepository {
	return &AdvertRepository{Repository: NewRepository(pool, advertKind)}
}
