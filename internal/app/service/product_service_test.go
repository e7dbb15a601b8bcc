package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func stock(n int) *int {
	return &n
}

func validProductInput() ProductInput {
	return ProductInput{
		Name:          "Noise Cancelling Earbuds",
		Price:         price("129.00"),
		Description:   "Compact earbuds with ANC",
		ImageURL:      "https://images.example.com/earbuds.jpg",
		StockQuantity: stock(12),
		Location:      "Chicago Main",
	}
}

func TestProductService_ListAndGet(t *testing.T) {
	env := newTestEnv(t)

	products, err := env.products.ListProducts()
	require.NoError(t, err)
	assert.Len(t, products, 8)

	product, err := env.products.GetProduct("6")
	require.NoError(t, err)
	assert.Equal(t, "Smartphone with 5G", product.Name)

	_, err = env.products.GetProduct("99")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_AddProduct(t *testing.T) {
	env := newTestEnv(t)

	product, err := env.products.AddProduct(validProductInput())
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)

	products, err := env.products.ListProducts()
	require.NoError(t, err)
	require.Len(t, products, 9)
	assert.Equal(t, product.ID, products[8].ID)
}

func TestProductService_AddProductValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		modify func(*ProductInput)
		field  string
	}{
		{"missing name", func(in *ProductInput) { in.Name = "  " }, "name"},
		{"missing price", func(in *ProductInput) { in.Price = nil }, "price"},
		{"zero price", func(in *ProductInput) { in.Price = price("0") }, "price"},
		{"negative price", func(in *ProductInput) { in.Price = price("-5") }, "price"},
		{"missing description", func(in *ProductInput) { in.Description = "" }, "description"},
		{"missing image", func(in *ProductInput) { in.ImageURL = "" }, "image_url"},
		{"invalid image url", func(in *ProductInput) { in.ImageURL = "not a url" }, "image_url"},
		{"negative stock", func(in *ProductInput) { in.StockQuantity = stock(-1) }, "stock_quantity"},
		{"missing stock", func(in *ProductInput) { in.StockQuantity = nil }, "stock_quantity"},
		{"missing location", func(in *ProductInput) { in.Location = "" }, "location"},
		{"unknown location", func(in *ProductInput) { in.Location = "Atlantis" }, "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validProductInput()
			tt.modify(&input)

			product, err := env.products.AddProduct(input)

			require.Error(t, err)
			assert.Nil(t, product)
			var fields FieldErrors
			require.True(t, errors.As(err, &fields))
			assert.Contains(t, fields, tt.field)
		})
	}

	count, err := env.productRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(8), count)
}

func TestProductService_ZeroStockAllowed(t *testing.T) {
	env := newTestEnv(t)
	input := validProductInput()
	input.StockQuantity = stock(0)

	_, err := env.products.AddProduct(input)
	assert.NoError(t, err)
}

func TestFieldErrors_Error(t *testing.T) {
	err := FieldErrors{"price": "bad", "name": "missing"}
	assert.Equal(t, "validation failed: name: missing; price: bad", err.Error())
}
