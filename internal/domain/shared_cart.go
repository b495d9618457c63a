package domain

// RemoteLine is one item another device appended to the shared cart mirror.
type RemoteLine struct {
	ItemID   string  `json:"item_id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	AddedBy  string  `json:"added_by"`
}

// SharedCartSession is the terminal's handle on a backend-held cart mirror.
// Other devices join with the access code and may only append items; the
// terminal alone settles.
type SharedCartSession struct {
	CartID     string       `json:"cart_id"`
	AccessCode string       `json:"access_code"`
	IsExisting bool         `json:"is_existing"`
	Items      []RemoteLine `json:"items"`
}
