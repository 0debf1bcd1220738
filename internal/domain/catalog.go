package domain

import (
	"maps"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// Product is a catalog product as served by the data source.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	SizesStock  map[string]int  `json:"sizes_stock"`
	CategoryID  *string         `json:"category_id,omitempty"`
	Description *string         `json:"description,omitempty"`
}

// StockFor returns the stock count for size, or 0 when the size is unknown.
func (p *Product) StockFor(size string) int {
	return p.SizesStock[size]
}

// Sizes returns the product's sizes in lexical order.
func (p *Product) Sizes() []string {
	sizes := make([]string, 0, len(p.SizesStock))
	for s := range p.SizesStock {
		sizes = append(sizes, s)
	}
	sort.Strings(sizes)
	return sizes
}

// PrimaryImage returns the first image URL, or nil when the product has none.
func (p *Product) PrimaryImage() *string {
	if len(p.Images) == 0 {
		return nil
	}
	img := p.Images[0]
	return &img
}

// UnitPrice returns the price in minor units.
func (p *Product) UnitPrice() int64 {
	return ToMinorUnits(p.Price)
}

// Candidate builds a basket candidate for size, taking the ceiling from the
// product's stock for that size.
func (p *Product) Candidate(size string, quantity int) Candidate {
	return Candidate{
		ProductID: p.ID,
		Size:      size,
		Name:      p.Name,
		Price:     p.UnitPrice(),
		ImageURL:  p.PrimaryImage(),
		MaxStock:  p.StockFor(size),
		Quantity:  quantity,
	}
}

// Normalize fills nil collections so the product encodes with empty lists.
func (p *Product) Normalize() {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.SizesStock == nil {
		p.SizesStock = map[string]int{}
	}
}

// Clone returns a copy of p that shares no slices, maps or pointers with it.
func (p Product) Clone() Product {
	p.Images = slices.Clone(p.Images)
	p.SizesStock = maps.Clone(p.SizesStock)
	if p.CategoryID != nil {
		v := *p.CategoryID
		p.CategoryID = &v
	}
	if p.Description != nil {
		v := *p.Description
		p.Description = &v
	}
	return p
}

// Category groups products.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder *int   `json:"sort_order,omitempty"`
}

// SortCategories orders categories by sort order then name. Categories
// without a sort order come last.
func SortCategories(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		a, b := cats[i].SortOrder, cats[j].SortOrder
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return cats[i].Name < cats[j].Name
	})
}

// SiteSettings is the storefront's singleton settings record. The zero value
// is the default used when the record cannot be fetched.
type SiteSettings struct {
	StoreName       string  `json:"store_name"`
	BannerImageURL  *string `json:"banner_image_url,omitempty"`
	LogoImageURL    *string `json:"logo_image_url,omitempty"`
	CollectionTitle string  `json:"collection_title"`
	PhoneNumber     *string `json:"phone_number,omitempty"`
	Address         string  `json:"address"`
	WorkingHours    string  `json:"working_hours"`
	DeliveryMessage string  `json:"delivery_message"`
	InstagramURL    *string `json:"instagram_url,omitempty"`
	SnapchatURL     *string `json:"snapchat_url,omitempty"`
}
