package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor int
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{500, "$5.00"},
		{123456, "$1,234.56"},
		{100000000, "$1,000,000.00"},
		{-2500, "-$25.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(tt.minor))
	}
}

func TestBuildOrderConfirmationBody(t *testing.T) {
	body := BuildOrderConfirmationBody("Ada", "order-12345678", 700, []OrderLine{
		{ProductID: "A", Name: "Smartphone X", Quantity: 1, Price: 500},
		{ProductID: "B", Name: "", Quantity: 2, Price: 100},
	})

	assert.Contains(t, body, "Thank you for your order, Ada")
	assert.Contains(t, body, "order-12345678")
	assert.Contains(t, body, "Smartphone X")
	// Lines without a name snapshot fall back to the product ID.
	assert.Contains(t, body, ">B<")
	assert.Contains(t, body, "$7.00")
}
