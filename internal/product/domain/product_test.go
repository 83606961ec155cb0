package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_DecodeIDForms(t *testing.T) {
	var products []Product
	body := `[{"id":7,"name":"Pão","price":9.9,"amount":3,"description":"d"},
	          {"id":"a1b2","name":"Bolo","price":12,"amount":0,"description":""}]`

	require.NoError(t, json.Unmarshal([]byte(body), &products))
	require.Len(t, products, 2)

	assert.Equal(t, ID("7"), products[0].ID)
	assert.True(t, decimal.RequireFromString("9.9").Equal(products[0].Price))
	assert.True(t, products[0].Purchasable())

	assert.Equal(t, ID("a1b2"), products[1].ID)
	assert.False(t, products[1].Purchasable())
}

func TestProduct_DecodeInvalidID(t *testing.T) {
	var p Product
	err := json.Unmarshal([]byte(`{"id":{"nested":true}}`), &p)
	assert.Error(t, err)
}

func TestInput_EncodesPriceAsNumber(t *testing.T) {
	in := Input{Name: "X", Price: decimal.RequireFromString("9.9"), Amount: 3, Description: "d"}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"X","price":9.9,"amount":3,"description":"d"}`, string(data))
}

func TestProduct_Input(t *testing.T) {
	p := Product{ID: "1", Name: "X", Price: decimal.NewFromInt(2), Amount: 1, Description: "d"}
	assert.Equal(t, Input{Name: "X", Price: decimal.NewFromInt(2), Amount: 1, Description: "d"}, p.Input())
}
