package domain

// CustomerInfo is attached to the cart before settlement. Name is the only
// field settlement requires.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CustomerMatch is one row of a customer search result.
type CustomerMatch struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}
