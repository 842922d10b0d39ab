package domain

import "github.com/shopspring/decimal"

// Product is the catalog entity. Image holds a store-relative path to the
// product's uploaded image file; it is never empty for a persisted product.
type Product struct {
	ID             int             `json:"id"`
	Title          string          `json:"title"`
	Image          string          `json:"image"`
	SellerFullName string          `json:"seller_full_name"`
	Price          decimal.Decimal `json:"price"`  // NUMERIC(6,2), 0.00 to 9999.99
	Rating         float64         `json:"rating"` // 0 to 5
}
