package model

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestProduct_BeforeSave(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount *string
		status   StockStatus
		wantErr  error
	}{
		{name: "no discount", price: "29.99"},
		{name: "valid discount", price: "29.99", discount: strPtr("24.99")},
		{name: "discount equal to price", price: "29.99", discount: strPtr("29.99"), wantErr: ErrInvalidDiscountPrice},
		{name: "discount above price", price: "29.99", discount: strPtr("35"), wantErr: ErrInvalidDiscountPrice},
		{name: "negative discount", price: "29.99", discount: strPtr("-1"), wantErr: ErrInvalidDiscountPrice},
		{name: "negative price", price: "-1", wantErr: ErrInvalidPrice},
		{name: "unknown stock status", price: "10", status: "BACKORDER", wantErr: ErrInvalidStockStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Price: decimal.RequireFromString(tt.price), StockStatus: tt.status}
			if tt.discount != nil {
				p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(*tt.discount))
			}

			err := p.BeforeSave(nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, p.StockStatus)
		})
	}
}

func TestProduct_DisplayPrice(t *testing.T) {
	sale := &Product{
		Price:         decimal.RequireFromString("29.99"),
		DiscountPrice: decimal.NewNullDecimal(decimal.RequireFromString("24.99")),
	}
	display := sale.DisplayPrice()
	assert.True(t, display.HasDiscount)
	assert.Equal(t, "24.99", display.CurrentPrice.String())
	require.NotNil(t, display.OriginalPrice)
	assert.Equal(t, "29.99", display.OriginalPrice.String())
	require.NotNil(t, sale.DiscountPercentage())
	assert.Equal(t, 17, *sale.DiscountPercentage())

	full := &Product{Price: decimal.RequireFromString("45")}
	display = full.DisplayPrice()
	assert.False(t, display.HasDiscount)
	assert.Nil(t, display.OriginalPrice)
	assert.Nil(t, full.DiscountPercentage())
	assert.Equal(t, "45", full.EffectivePrice().String())
}

func TestOrderStatus_Label(t *testing.T) {
	assert.Equal(t, "Order Placed", OrderStatusPending.Label())
	assert.Equal(t, "Order Confirmed", OrderStatusAccepted.Label())
	assert.Equal(t, "Out for Delivery", OrderStatusPicked.Label())
	assert.Equal(t, "Delivered", OrderStatusDelivered.Label())
	assert.Equal(t, "LOST", OrderStatus("LOST").Label())
}

func strPtr(s string) *string {
	return &s
}

func TestImageList_ValueAndScan(t *testing.T) {
	images := ImageList{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"}

	v, err := images.Value()
	require.NoError(t, err)

	var scanned ImageList
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, images, scanned)

	var empty ImageList
	require.NoError(t, empty.Scan([]byte("{}")))
	assert.Empty(t, empty)
}

func TestModelsParseAsGormSchemas(t *testing.T) {
	models := []interface{}{&Category{}, &Product{}, &User{}, &Order{}, &OrderItem{}, &OrderTracking{}}
	for _, m := range models {
		parsed, err := schema.Parse(m, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		assert.NotEmpty(t, parsed.Table)
	}

	parsed, err := schema.Parse(&Product{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	images := parsed.LookUpField("Images")
	require.NotNil(t, images)
	assert.Equal(t, schema.DataType("text"), images.DataType)
}
