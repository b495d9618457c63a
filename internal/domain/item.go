package domain

// SellableItem is a read-only snapshot of a catalog item taken for the
// duration of one sale. The catalog service owns the live record; the
// terminal never writes it back.
type SellableItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	SellerID string  `json:"seller_id"`
	Barcode  string  `json:"barcode"`
}
