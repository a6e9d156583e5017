package domain

// ReceiptItem is a single line item extracted from a receipt image.
type ReceiptItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Receipt is the structured result of AI receipt recognition.
type Receipt struct {
	Date      string        `json:"date"` // YYYY-MM-DD as returned by the model
	Merchant  string        `json:"merchant"`
	Items     []ReceiptItem `json:"items"`
	Total     float64       `json:"total"`
	TaxAmount float64       `json:"taxAmount"`
	Currency  string        `json:"currency"`
}
