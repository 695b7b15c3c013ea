package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pourcost/backend/internal/domain"
)

var (
	numberRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)
	volumeRegex = regexp.MustCompile(`(?i)(?:(\d+)\s*x\s*)?(\d+(?:\.\d+)?)\s*(ml|cl|l)\b`)
)

// FeedResponse is the envelope returned by GET /products
type FeedResponse struct {
	Products []FeedProduct `json:"products"`
}

// FeedProduct is one product row as published by the scraper. Numeric
// fields may arrive as JSON numbers or as display strings.
type FeedProduct struct {
	ID                     string           `json:"id"`
	Name                   string           `json:"name"`
	Brand                  string           `json:"brand"`
	Category               string           `json:"category"`
	Subcategory            string           `json:"subcategory"`
	Price                  FeedValue        `json:"price"`
	RegularPrice           FeedValue        `json:"regularPrice"`
	Volume                 FeedValue        `json:"volume"`
	AlcoholPercentage      FeedValue        `json:"alcoholPercentage"`
	Country                string           `json:"country"`
	Region                 string           `json:"region"`
	Description            string           `json:"description"`
	ProductURL             string           `json:"productUrl"`
	Active                 *bool            `json:"active"`
	StoresStockCombined    *bool            `json:"storesStockCombined"`
	StoresLowStockCombined *bool            `json:"storesLowStockCombined"`
	Stores                 []FeedStoreStock `json:"stores"`
}

// FeedStoreStock is a per-store stock line in the feed
type FeedStoreStock struct {
	StoreID   string `json:"storeId"`
	StoreName string `json:"storeName"`
	City      string `json:"city"`
	Quantity  int    `json:"quantity"`
	InStock   bool   `json:"inStock"`
	LowStock  bool   `json:"lowStock"`
}

// FeedValue holds the raw text of a JSON string or number
type FeedValue string

// UnmarshalJSON accepts strings, numbers and null
func (v *FeedValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FeedValue(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("feed value %s is neither string nor number", data)
	}
	*v = FeedValue(n.String())
	return nil
}

// MapFeedProduct converts a feed row to a catalog product. Unparseable
// optional fields become nil; a row without id or name is rejected.
func MapFeedProduct(row FeedProduct) (domain.Product, error) {
	id := strings.TrimSpace(row.ID)
	name := strings.TrimSpace(row.Name)
	if id == "" || name == "" {
		return domain.Product{}, errors.New("feed row needs id and name")
	}

	active := true
	if row.Active != nil {
		active = *row.Active
	}

	product := domain.Product{
		ID:                id,
		Name:              name,
		Brand:             strings.TrimSpace(row.Brand),
		Category:          strings.TrimSpace(row.Category),
		Subcategory:       strings.TrimSpace(row.Subcategory),
		Price:             ParsePrice(string(row.Price)),
		RegularPrice:      ParsePrice(string(row.RegularPrice)),
		VolumeML:          ParseVolumeML(string(row.Volume)),
		AlcoholPercentage: ParsePercentage(string(row.AlcoholPercentage)),
		Country:           row.Country,
		Region:            row.Region,
		Description:       row.Description,
		ProductURL:        row.ProductURL,
		IsActive:          active,
		LastUpdated:       time.Now().UTC(),
	}

	for _, store := range row.Stores {
		if strings.TrimSpace(store.StoreID) == "" {
			continue
		}
		product.Inventory = append(product.Inventory, domain.StoreAvailability{
			StoreID:   store.StoreID,
			StoreName: store.StoreName,
			City:      store.City,
			InStock:   store.InStock,
			Quantity:  store.Quantity,
			LowStock:  store.LowStock,
		})
	}
	if row.StoresStockCombined != nil {
		line := domain.StoreAvailability{
			StoreID:   domain.GeneralStoreID,
			StoreName: domain.GeneralStoreName,
			InStock:   *row.StoresStockCombined,
		}
		if row.StoresLowStockCombined != nil {
			line.LowStock = *row.StoresLowStockCombined
		}
		product.Inventory = append(product.Inventory, line)
	}

	return product, nil
}

// ParsePrice reads amounts such as 35.99, "$35.99" or "$1,299.00".
// Non-positive or unreadable prices yield nil.
func ParsePrice(raw string) *float64 {
	match := numberRegex.FindString(strings.ReplaceAll(raw, ",", ""))
	if match == "" {
		return nil
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}

// ParseVolumeML reads sizes such as "750 mL", "1.14 L", "6 x 355 mL" or a
// bare number of millilitres.
func ParseVolumeML(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if value, err := strconv.ParseFloat(raw, 64); err == nil {
		if value <= 0 {
			return nil
		}
		return &value
	}

	match := volumeRegex.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}

	value, err := strconv.ParseFloat(match[2], 64)
	if err != nil || value <= 0 {
		return nil
	}
	switch strings.ToLower(match[3]) {
	case "l":
		value *= 1000
	case "cl":
		value *= 10
	}
	if match[1] != "" {
		count, err := strconv.Atoi(match[1])
		if err == nil && count > 0 {
			value *= float64(count)
		}
	}
	return &value
}

// ParsePercentage reads ABV values such as 40, "40%" or "40.0 %".
func ParsePercentage(raw string) *float64 {
	match := numberRegex.FindString(raw)
	if match == "" {
		return nil
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil || value < 0 || value > 100 {
		return nil
	}
	return &value
}
