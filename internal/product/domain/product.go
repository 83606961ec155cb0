package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ID identifies a product. The backend may send it as a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Product struct {
	ID          ID              `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Amount      int             `json:"amount"`
	Description string          `json:"description"`
}

// Purchasable reports whether the product has stock. The backend owns the count.
func (p Product) Purchasable() bool {
	return p.Amount > 0
}

// Input is a product without id, as sent on create and update.
type Input struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Amount      int             `json:"amount"`
	Description string          `json:"description"`
}

// Input returns the editable fields of p.
func (p Product) Input() Input {
	return Input{Name: p.Name, Price: p.Price, Amount: p.Amount, Description: p.Description}
}

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}
