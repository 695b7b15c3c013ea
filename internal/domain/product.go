package domain

import "time"

// Product represents a catalog product as scraped from the storefront.
// Price, RegularPrice, VolumeML and AlcoholPercentage are nil when the
// source did not report them.
type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Brand             string    `json:"brand,omitempty"`
	Category          string    `json:"category"`
	Subcategory       string    `json:"subcategory,omitempty"`
	Price             *float64  `json:"price,omitempty"`
	RegularPrice      *float64  `json:"regularPrice,omitempty"`
	VolumeML          *float64  `json:"volumeMl,omitempty"`
	AlcoholPercentage *float64  `json:"alcoholPercentage,omitempty"`
	Country           string    `json:"country,omitempty"`
	Region            string    `json:"region,omitempty"`
	Description       string    `json:"description,omitempty"`
	ProductURL        string    `json:"productUrl,omitempty"`
	IsActive          bool      `json:"isActive"`
	LastUpdated       time.Time `json:"lastUpdated,omitempty"`

	// Inventory is only populated by feed imports
	Inventory []StoreAvailability `json:"inventory,omitempty"`
}

// HasPricing reports whether the product carries a positive price and volume.
func (p Product) HasPricing() bool {
	return p.Price != nil && *p.Price > 0 && p.VolumeML != nil && *p.VolumeML > 0
}

// PricePerML returns price divided by volume. ok is false when either is missing.
func (p Product) PricePerML() (float64, bool) {
	if !p.HasPricing() {
		return 0, false
	}
	return *p.Price / *p.VolumeML, true
}

// ProductFilter narrows a catalog read. An empty Categories slice means no
// category restriction. NameContains and CategoryContains match
// case-insensitive substrings. Limit 0 means no limit. Only active products
// are ever returned.
type ProductFilter struct {
	Categories       []string
	NameContains     string
	CategoryContains string
	Limit            int
}

// StoreAvailability is one store's stock line for a product
type StoreAvailability struct {
	StoreID     string    `json:"storeId"`
	StoreName   string    `json:"storeName"`
	City        string    `json:"city,omitempty"`
	InStock     bool      `json:"inStock"`
	Quantity    int       `json:"quantity"`
	LowStock    bool      `json:"lowStock"`
	LastChecked time.Time `json:"lastChecked,omitempty"`
}

// GeneralStoreID marks an inventory line that covers every store combined.
const GeneralStoreID = "general"

// GeneralStoreName is reported for GeneralStoreID lines
const GeneralStoreName = "All Stores (Combined)"

// Store is a physical retail location.
type Store struct {
	StoreID  string `json:"storeId"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Province string `json:"province,omitempty"`
	IsActive bool   `json:"isActive"`
}

// Float returns a pointer to v. Handy for building products in code.
func Float(v float64) *float64 {
	return &v
}

// PricePoint is one recorded catalog price
type PricePoint struct {
	Price        float64   `json:"price"`
	RegularPrice *float64  `json:"regularPrice,omitempty"`
	RecordedAt   time.Time `json:"recordedAt"`
}

// OnSale reports whether the recorded price was below the regular price.
func (p PricePoint) OnSale() bool {
	return p.RegularPrice != nil && p.Price < *p.RegularPrice
}

// PriceHistoryReport summarises a product's recorded prices over a window
type PriceHistoryReport struct {
	ProductID string       `json:"productId"`
	Days      int          `json:"days"`
	Points    []PricePoint `json:"points"`
	Current   *float64     `json:"current,omitempty"`
	Lowest    *float64     `json:"lowest,omitempty"`
	Highest   *float64     `json:"highest,omitempty"`
	OnSale    bool         `json:"onSale"`
}

// AvailabilityReport lists a product's stock lines for one city
type AvailabilityReport struct {
	ProductID string              `json:"productId"`
	City      string              `json:"city,omitempty"`
	InStock   bool                `json:"inStock"`
	Stores    []StoreAvailability `json:"stores"`
}
