package advert

import "adboard/backend/internal/domain"

// Repository defines persistence behaviours for adverts.
type Repository interface {
	domain.Repository[Advert, int64]
}
