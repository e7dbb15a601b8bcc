package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductController_GetAllProducts(t *testing.T) {
	s := newTestServer(t)

	w, response := s.do(t, http.MethodGet, "/products", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(8), response["count"])
	products := response["products"].([]interface{})
	first := products[0].(map[string]interface{})
	assert.Equal(t, "1", first["id"])
	assert.Equal(t, "Wireless Bluetooth Headphones", first["name"])
	assert.Equal(t, "89.99", first["price"])

	third := products[2].(map[string]interface{})
	assert.Equal(t, "450.00", third["price"])
}

func TestProductController_GetProductByID(t *testing.T) {
	s := newTestServer(t)

	w, response := s.do(t, http.MethodGet, "/products/4", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "125.50", response["product"].(map[string]interface{})["price"])

	w, response = s.do(t, http.MethodGet, "/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", response["error"])
}

func TestProductController_CreateProduct(t *testing.T) {
	s := newTestServer(t)
	token := s.admin(t)

	w, response := s.do(t, http.MethodPost, "/admin/products", token, gin.H{
		"name":           "USB-C Hub",
		"description":    "Seven ports in one",
		"price":          "59.5",
		"image_url":      "https://images.example.com/hub.jpg",
		"stock_quantity": 40,
		"location":       "LA Distribution",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := response["product"].(map[string]interface{})
	assert.Equal(t, "59.50", product["price"])
	assert.NotEmpty(t, product["id"])

	_, response = s.do(t, http.MethodGet, "/products", "", nil)
	assert.Equal(t, float64(9), response["count"])
}

func TestProductController_CreateProductValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.admin(t)

	w, response := s.do(t, http.MethodPost, "/admin/products", token, gin.H{
		"name":           "",
		"price":          0,
		"image_url":      "ftp:/broken",
		"stock_quantity": -2,
		"location":       "Moon Base",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_INVALID_INPUT", response["error"])
	fields := response["fields"].(map[string]interface{})
	for _, key := range []string{"name", "price", "description", "image_url", "stock_quantity", "location"} {
		assert.Contains(t, fields, key)
	}
}

func TestProductController_CreateProductRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "shopper@example.com")

	w, response := s.do(t, http.MethodPost, "/admin/products", token, gin.H{"name": "x"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTHZ_ADMIN_ONLY", response["error"])
}
