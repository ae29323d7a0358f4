// Package repositories defines the repository interfaces for content entities.
// These repositories abstract the data persistence details, ensuring the core
// application is clean and decoupled from the database.
package repositories

import (
	"github.com/havenwellness/haven-go/internal/domain/entities/content"
)

type TreatmentRepository interface {
	FindByID(id string) (*content.Treatment, error)
	FindBySlug(slug string) (*content.Treatment, error)
	FindByCategory(categorySlug string) ([]*content.Treatment, error)
	FindAll() ([]*content.Treatment, error)
	Store(treatment *content.Treatment) error
	Update(treatment *content.Treatment) error
	Delete(id string) error
}

type CategoryRepository interface {
	FindBySlug(slug string) (*content.Category, error)
	FindAll() ([]*content.Category, error)
	Store(category *content.Category) error
	Update(category *content.Category) error
	Delete(id string) error
}

type OfferRepository interface {
	FindByID(id string) (*content.PromotionalOffer, error)
	FindAll() ([]*content.PromotionalOffer, error)
	Store(offer *content.PromotionalOffer) error
	Update(offer *content.PromotionalOffer) error
	Delete(id string) error
}
