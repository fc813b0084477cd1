package delivery

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDrivers(n int) []DriverInfo {
	drivers := make([]DriverInfo, 0, n)
	for i := 0; i < n; i++ {
		drivers = append(drivers, DriverInfo{
			Name:        "Driver " + string(rune('A'+i)),
			Phone:       "+551188880000",
			VehicleType: "MOTORCYCLE",
			PlateNumber: "ABC-000" + string(rune('1'+i)),
		})
	}
	return drivers
}

func sampleDeliveryRequest() *DeliveryRequest {
	return &DeliveryRequest{
		QuoteRequest: QuoteRequest{
			PickupAddress:   "Av. Paulista 1000",
			DeliveryAddress: "Rua Augusta 500",
			OrderValue:      50.0,
			ItemCount:       2,
		},
		OrderNumber:   "ORD-TEST-1",
		CustomerName:  "Ana",
		CustomerPhone: "+5511911112222",
	}
}

func TestLocalPoolQuoteUsesConfiguredFees(t *testing.T) {
	pool := NewLocalPool(5.0, 1.5, testDrivers(1), zerolog.Nop())

	quote, err := pool.GetQuote(context.Background(), &sampleDeliveryRequest().QuoteRequest)
	require.NoError(t, err)
	assert.Equal(t, "local", quote.Provider)
	assert.InDelta(t, 5.0+1.5*assumedDistanceKm, quote.Price, 0.001)
	assert.Equal(t, "BRL", quote.Currency)
	assert.Positive(t, quote.EstimatedMinutes)
}

func TestLocalPoolAssignsDriversInOrder(t *testing.T) {
	pool := NewLocalPool(5.0, 1.5, testDrivers(2), zerolog.Nop())

	first, err := pool.RequestDelivery(context.Background(), sampleDeliveryRequest())
	require.NoError(t, err)
	require.True(t, first.OK)
	assert.True(t, strings.HasPrefix(first.DeliveryID, "local-"))
	require.NotNil(t, first.Driver)
	assert.Equal(t, "Driver A", first.Driver.Name)

	second, err := pool.RequestDelivery(context.Background(), sampleDeliveryRequest())
	require.NoError(t, err)
	require.True(t, second.OK)
	assert.Equal(t, "Driver B", second.Driver.Name)
	assert.NotEqual(t, first.DeliveryID, second.DeliveryID)
	assert.Equal(t, 0, pool.AvailableDrivers())
}

func TestLocalPoolExhaustionIsStructuredFailure(t *testing.T) {
	pool := NewLocalPool(5.0, 1.5, testDrivers(1), zerolog.Nop())

	_, err := pool.RequestDelivery(context.Background(), sampleDeliveryRequest())
	require.NoError(t, err)

	resp, err := pool.RequestDelivery(context.Background(), sampleDeliveryRequest())
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.FailureReason, "no drivers available")
	assert.Empty(t, resp.DeliveryID)
}

func TestLocalPoolTrackKnownDelivery(t *testing.T) {
	pool := NewLocalPool(5.0, 1.5, testDrivers(1), zerolog.Nop())

	resp, err := pool.RequestDelivery(context.Background(), sampleDeliveryRequest())
	require.NoError(t, err)

	info, err := pool.TrackDelivery(context.Background(), resp.DeliveryID)
	require.NoError(t, err)
	assert.Equal(t, "ASSIGNED", info.Status)
	require.NotNil(t, info.Driver)
	assert.Equal(t, resp.Driver.Name, info.Driver.Name)
}

func TestLocalPoolTrackUnknownDelivery(t *testing.T) {
	pool := NewLocalPool(5.0, 1.5, testDrivers(1), zerolog.Nop())

	_, err := pool.TrackDelivery(context.Background(), "local-missing")
	var pErr *ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "local", pErr.Provider)
}

func TestLocalPoolCancelReturnsDriver(t *testing.T) {
	pool := NewLocalPool(5.0, 1.5, testDrivers(1), zerolog.Nop())

	resp, err := pool.RequestDelivery(context.Background(), sampleDeliveryRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, pool.AvailableDrivers())

	ok, err := pool.CancelDelivery(context.Background(), resp.DeliveryID, "customer cancelled")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, pool.AvailableDrivers())

	// The released driver serves the next request.
	again, err := pool.RequestDelivery(context.Background(), sampleDeliveryRequest())
	require.NoError(t, err)
	assert.True(t, again.OK)

	_, err = pool.TrackDelivery(context.Background(), resp.DeliveryID)
	require.Error(t, err)
}

func TestLocalPoolCancelUnknownDelivery(t *testing.T) {
	pool := NewLocalPool(5.0, 1.5, testDrivers(1), zerolog.Nop())

	ok, err := pool.CancelDelivery(context.Background(), "local-missing", "typo")
	assert.False(t, ok)
	var pErr *ProviderError
	require.ErrorAs(t, err, &pErr)
}
