package catalog

import (
	"fmt"
	"sort"

	"storefront-service/internal/models"
)

// Flatten expands each product into one display record per variation so that
// listing grids can show every color as its own card. A product with no
// variations yields exactly one record. Input order is preserved; the result
// is rebuilt on every fetch and never persisted.
func Flatten(products []models.Product) []models.DisplayProduct {
	out := make([]models.DisplayProduct, 0, len(products))
	for i := range products {
		out = append(out, flattenOne(&products[i])...)
	}
	return out
}

func flattenOne(p *models.Product) []models.DisplayProduct {
	if len(p.Variations) == 0 {
		d := displayFrom(p)
		d.ID = p.ID
		d.Images = p.Images
		return []models.DisplayProduct{d}
	}

	out := make([]models.DisplayProduct, 0, len(p.Variations))
	for _, v := range p.Variations {
		d := displayFrom(p)
		d.ID = fmt.Sprintf("%s-%s", p.ID, v.Color)
		d.Color = v.Color
		d.Images = v.Images
		d.Sizes = v.Sizes
		d.AllVariations = p.Variations
		out = append(out, d)
	}
	return out
}

func displayFrom(p *models.Product) models.DisplayProduct {
	return models.DisplayProduct{
		OriginalProductID: p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		OriginalPrice:     p.OriginalPrice,
		SalePrice:         p.SalePrice,
		SalePercentage:    p.SalePercentage,
		Rating:            p.Rating,
		NumReviews:        p.NumReviews,
		CreatedAt:         p.CreatedAt,
	}
}

// OnSale keeps only records carrying a sale price, for the offers view.
func OnSale(products []models.DisplayProduct) []models.DisplayProduct {
	out := make([]models.DisplayProduct, 0, len(products))
	for _, p := range products {
		if p.SalePrice > 0 {
			out = append(out, p)
		}
	}
	return out
}

// SortNewestFirst orders records by creation date, newest first. Stable so
// variations of the same product keep their relative order.
func SortNewestFirst(products []models.DisplayProduct) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}
