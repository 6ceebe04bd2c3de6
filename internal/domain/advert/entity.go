// Package advert defines the classified-ad entity.
package advert

import (
	"time"

	"adboard/backend/internal/domain"
)

var (
	// ErrNotFound indicates an advert could not be located.
	ErrNotFound = domain.NewError(domain.ErrNotFound, "advert not found")
	// ErrDuplicateTitle signals title uniqueness constraint breaches.
	ErrDuplicateTitle = domain.NewError(domain.ErrConflict, "advert already exists")
)

// Advert captures a single listing owned by a user.
type Advert struct {
	ID           int64
	Title        string
	Description  string
	CreationTime time.Time
	OwnerID      int64
}

// Patch carries the optional fields of an advert update.
type Patch struct {
	Title       *string
	Description *string
}

// Apply copies every present field onto a.
func (p Patch) Apply(a *Advert) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
}
