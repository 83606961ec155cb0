package form

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridloal/storefront-dashboard/internal/product/domain"
)

func TestNewProductForm(t *testing.T) {
	t.Run("Create starts empty", func(t *testing.T) {
		f := NewProductForm(nil)
		assert.Equal(t, ModeCreate, f.Mode)
		assert.Equal(t, "/dashboard/products", f.Action)
		assert.Equal(t, "", f.PriceDisplay())
		assert.Equal(t, 0, f.Amount)
	})

	t.Run("Edit is initialised from the product", func(t *testing.T) {
		p := domain.Product{ID: "7", Name: "Café", Description: "torrado", Price: decimal.RequireFromString("1234.5"), Amount: 3}
		f := NewProductForm(&p)
		assert.Equal(t, ModeEdit, f.Mode)
		assert.Equal(t, "/dashboard/products/7", f.Action)
		assert.Equal(t, "Café", f.Name)
		assert.Equal(t, "torrado", f.Description)
		assert.Equal(t, "R$ 1.234,50", f.PriceDisplay())
		assert.Equal(t, 3, f.Amount)
	})

	t.Run("Ids are escaped as one path segment", func(t *testing.T) {
		p := domain.Product{ID: "a/b?c", Name: "x", Description: "y"}
		f := NewProductForm(&p)
		assert.Equal(t, "/dashboard/products/a%2Fb%3Fc", f.Action)
		assert.Equal(t, "/dashboard/products/a%2Fb%3Fc/delete", NewDeleteConfirmation(p).Action)
	})
}

func TestSubmission_Input(t *testing.T) {
	t.Run("Valid submission", func(t *testing.T) {
		in, err := Submission{Name: " Café ", Description: "torrado", Price: "R$ 1.234,56", Amount: "4"}.Input()
		require.NoError(t, err)
		assert.Equal(t, "Café", in.Name)
		assert.True(t, decimal.RequireFromString("1234.56").Equal(in.Price))
		assert.Equal(t, 4, in.Amount)
	})

	t.Run("Empty price and non-numeric amount are zero", func(t *testing.T) {
		in, err := Submission{Name: "a", Description: "b", Price: "", Amount: "abc"}.Input()
		require.NoError(t, err)
		assert.True(t, in.Price.IsZero())
		assert.Equal(t, 0, in.Amount)
	})

	t.Run("Required fields", func(t *testing.T) {
		_, err := Submission{Description: "b"}.Input()
		assert.ErrorIs(t, err, ErrNameRequired)
		_, err = Submission{Name: "a", Description: "  "}.Input()
		assert.ErrorIs(t, err, ErrDescriptionRequired)
	})

	t.Run("Negative amount", func(t *testing.T) {
		_, err := Submission{Name: "a", Description: "b", Amount: "-2"}.Input()
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}

func TestNewDeleteConfirmation(t *testing.T) {
	d := NewDeleteConfirmation(domain.Product{ID: "9", Name: "Chá"})
	assert.Equal(t, "Chá", d.Name)
	assert.Equal(t, "/dashboard/products/9/delete", d.Action)
	assert.Equal(t, "/dashboard", d.Back)
}

func TestProductForm_Reopen(t *testing.T) {
	f := NewProductForm(nil).Reopen(Submission{Name: "", Description: "x", Price: "1999", Amount: "2"})
	assert.Equal(t, ModeCreate, f.Mode)
	assert.Equal(t, "x", f.Description)
	assert.Equal(t, "R$ 19,99", f.PriceDisplay())
	assert.Equal(t, 2, f.Amount)
}
