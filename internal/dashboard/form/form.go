// Package form holds the product modals of the dashboard: the create/edit
// form and the delete confirmation.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ridloal/storefront-dashboard/internal/money"
	"github.com/ridloal/storefront-dashboard/internal/product/domain"
)

var (
	ErrNameRequired        = errors.New("name is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrNegativeAmount      = errors.New("amount must not be negative")
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// ProductForm is the create/edit modal, initialised from an optional product.
type ProductForm struct {
	Mode        Mode
	Title       string
	Submit      string
	Action      string
	ProductID   domain.ID
	Name        string
	Description string
	Price       *money.Input
	Amount      int
}

// NewProductForm opens the modal for p, or an empty create form when p is nil.
func NewProductForm(p *domain.Product) ProductForm {
	if p == nil {
		return ProductForm{
			Mode:   ModeCreate,
			Title:  "Novo produto",
			Submit: "Criar",
			Action: "/dashboard/products",
			Price:  money.New(decimal.Zero, nil),
		}
	}
	return ProductForm{
		Mode:        ModeEdit,
		Title:       "Editar produto",
		Submit:      "Salvar",
		Action:      ProductPath(p.ID),
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money.New(p.Price, nil),
		Amount:      p.Amount,
	}
}

// PriceDisplay is the initial content of the price field.
func (f ProductForm) PriceDisplay() string {
	if f.Price == nil {
		return ""
	}
	return f.Price.Display()
}

// Submission is the raw form post of the product modal.
type Submission struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Price       string `form:"price"`
	Amount      string `form:"amount"`
}

// Input validates s and converts it to the payload sent to the commerce API.
// The price goes through the same keystroke rule as the field mask; an amount
// that is not a number counts as zero.
func (s Submission) Input() (domain.Input, error) {
	in := domain.Input{
		Name:        strings.TrimSpace(s.Name),
		Description: strings.TrimSpace(s.Description),
		Price:       money.New(decimal.Zero, nil).Keystroke(s.Price),
		Amount:      parseAmount(s.Amount),
	}
	switch {
	case in.Name == "":
		return domain.Input{}, ErrNameRequired
	case in.Description == "":
		return domain.Input{}, ErrDescriptionRequired
	case in.Amount < 0:
		return domain.Input{}, fmt.Errorf("%w: %d", ErrNegativeAmount, in.Amount)
	}
	return in, nil
}

func parseAmount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// DeleteConfirmation is the modal asking before a product is removed.
type DeleteConfirmation struct {
	ProductID domain.ID
	Name      string
	Action    string
	Back      string
}

func NewDeleteConfirmation(p domain.Product) DeleteConfirmation {
	return DeleteConfirmation{
		ProductID: p.ID,
		Name:      p.Name,
		Action:    ProductPath(p.ID) + "/delete",
		Back:      "/dashboard",
	}
}

// Reopen rebuilds the modal from a rejected submission so the user keeps what
// was typed.
func (f ProductForm) Reopen(s Submission) ProductForm {
	f.Name = s.Name
	f.Description = s.Description
	f.Price = money.New(decimal.Zero, nil)
	f.Price.Keystroke(s.Price)
	f.Amount = parseAmount(s.Amount)
	return f
}

// ProductPath is the dashboard route of one product, with the id escaped as a
// single path segment.
func ProductPath(id domain.ID) string {
	return "/dashboard/products/" + url.PathEscape(id.String())
}
