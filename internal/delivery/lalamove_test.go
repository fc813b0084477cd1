package delivery

import (
	"context"
	"errors"
	"testing"

	"restaurant_manager/pkg/geocoder"
	"restaurant_manager/pkg/lalamove"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCourier scripts the Lalamove API surface.
type fakeCourier struct {
	quotation    *lalamove.Quotation
	quotationErr error
	order        *lalamove.Order
	orderErr     error
	driver       *lalamove.Driver

	lastQuotationReq *lalamove.QuotationRequest
	lastOrderReq     *lalamove.OrderRequest
	cancelled        []string
}

func (f *fakeCourier) GetQuotation(ctx context.Context, req *lalamove.QuotationRequest) (*lalamove.Quotation, error) {
	f.lastQuotationReq = req
	if f.quotationErr != nil {
		return nil, f.quotationErr
	}
	return f.quotation, nil
}

func (f *fakeCourier) PlaceOrder(ctx context.Context, req *lalamove.OrderRequest) (*lalamove.Order, error) {
	f.lastOrderReq = req
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.order, nil
}

func (f *fakeCourier) GetOrder(ctx context.Context, orderID string) (*lalamove.Order, error) {
	if f.order == nil {
		return nil, &lalamove.APIError{StatusCode: 404, Message: "order not found"}
	}
	return f.order, nil
}

func (f *fakeCourier) GetDriver(ctx context.Context, orderID, driverID string) (*lalamove.Driver, error) {
	if f.driver == nil {
		return nil, &lalamove.APIError{StatusCode: 404, Message: "driver not found"}
	}
	return f.driver, nil
}

func (f *fakeCourier) CancelOrder(ctx context.Context, orderID string) error {
	f.cancelled = append(f.cancelled, orderID)
	return nil
}

type fakeGeocoder struct {
	coords map[string]geocoder.Coordinates
	err    error
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (*geocoder.Coordinates, error) {
	if g.err != nil {
		return nil, g.err
	}
	c, ok := g.coords[address]
	if !ok {
		return nil, errors.New("address not found")
	}
	return &c, nil
}

func sampleQuotation() *lalamove.Quotation {
	q := &lalamove.Quotation{QuotationID: "quote-1"}
	q.PriceBreakdown.Total = "23.50"
	q.PriceBreakdown.Currency = "BRL"
	q.Distance.Value = "4200"
	q.Distance.Unit = "m"
	return q
}

func newLalamoveFixture(courier *fakeCourier, geo *fakeGeocoder) *LalamoveProvider {
	if geo == nil {
		geo = &fakeGeocoder{coords: map[string]geocoder.Coordinates{
			"Av. Paulista 1000": {Latitude: -23.5614, Longitude: -46.6559},
			"Rua Augusta 500":   {Latitude: -23.5530, Longitude: -46.6496},
		}}
	}
	policy := VehiclePolicy{MotorcycleMax: 200, CarMax: 1000}
	fallback := geocoder.Coordinates{Latitude: -23.5505, Longitude: -46.6333}
	return NewLalamoveProvider(courier, geo, policy, fallback, zerolog.Nop())
}

func TestVehiclePolicyServiceTypeFor(t *testing.T) {
	policy := VehiclePolicy{MotorcycleMax: 200, CarMax: 1000}

	tests := []struct {
		orderValue float64
		want       string
	}{
		{0, ServiceMotorcycle},
		{199.99, ServiceMotorcycle},
		{200, ServiceCar},
		{999.99, ServiceCar},
		{1000, ServiceVan},
		{5000, ServiceVan},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, policy.ServiceTypeFor(tc.orderValue))
	}
}

func TestLalamoveQuoteParsesProviderResponse(t *testing.T) {
	courier := &fakeCourier{quotation: sampleQuotation()}
	provider := newLalamoveFixture(courier, nil)

	quote, err := provider.GetQuote(context.Background(), &QuoteRequest{
		PickupAddress:   "Av. Paulista 1000",
		DeliveryAddress: "Rua Augusta 500",
		OrderValue:      80.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "lalamove", quote.Provider)
	assert.InDelta(t, 23.50, quote.Price, 0.001)
	assert.Equal(t, "BRL", quote.Currency)
	assert.InDelta(t, 4.2, quote.DistanceKm, 0.001)
	assert.Equal(t, "quote-1", quote.QuotationID)
	assert.Equal(t, estimateMinutes(4.2), quote.EstimatedMinutes)

	require.NotNil(t, courier.lastQuotationReq)
	assert.Equal(t, ServiceMotorcycle, courier.lastQuotationReq.ServiceType)
	require.Len(t, courier.lastQuotationReq.Stops, 2)
	assert.Equal(t, "-23.561400", courier.lastQuotationReq.Stops[0].Coordinates.Lat)
}

func TestLalamoveQuoteHighValueOrderUpgradesVehicle(t *testing.T) {
	courier := &fakeCourier{quotation: sampleQuotation()}
	provider := newLalamoveFixture(courier, nil)

	_, err := provider.GetQuote(context.Background(), &QuoteRequest{
		PickupAddress:   "Av. Paulista 1000",
		DeliveryAddress: "Rua Augusta 500",
		OrderValue:      450.0,
	})
	require.NoError(t, err)
	assert.Equal(t, ServiceCar, courier.lastQuotationReq.ServiceType)
}

func TestLalamoveQuoteFailureWrapsProviderError(t *testing.T) {
	courier := &fakeCourier{quotationErr: &lalamove.APIError{StatusCode: 429, Message: "rate limited"}}
	provider := newLalamoveFixture(courier, nil)

	_, err := provider.GetQuote(context.Background(), &QuoteRequest{
		PickupAddress:   "Av. Paulista 1000",
		DeliveryAddress: "Rua Augusta 500",
	})
	var pErr *ProviderError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "lalamove", pErr.Provider)

	var apiErr *lalamove.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestLalamoveGeocodeFailureFallsBackToDefaultCoordinates(t *testing.T) {
	courier := &fakeCourier{quotation: sampleQuotation()}
	provider := newLalamoveFixture(courier, &fakeGeocoder{err: errors.New("geocoder down")})

	_, err := provider.GetQuote(context.Background(), &QuoteRequest{
		PickupAddress:   "Av. Paulista 1000",
		DeliveryAddress: "Rua Augusta 500",
	})
	require.NoError(t, err)

	require.Len(t, courier.lastQuotationReq.Stops, 2)
	assert.Equal(t, "-23.550500", courier.lastQuotationReq.Stops[0].Coordinates.Lat)
	assert.Equal(t, "-46.633300", courier.lastQuotationReq.Stops[0].Coordinates.Lng)
}

func TestLalamoveRequestDeliverySuccess(t *testing.T) {
	courier := &fakeCourier{
		quotation: sampleQuotation(),
		order: &lalamove.Order{
			OrderID:   "lala-123",
			Status:    "ASSIGNING_DRIVER",
			ShareLink: "https://share.lalamove.com/lala-123",
		},
	}
	provider := newLalamoveFixture(courier, nil)

	resp, err := provider.RequestDelivery(context.Background(), &DeliveryRequest{
		QuoteRequest: QuoteRequest{
			PickupAddress:   "Av. Paulista 1000",
			DeliveryAddress: "Rua Augusta 500",
			OrderValue:      80.0,
		},
		OrderNumber:     "ORD-TEST-9",
		CustomerName:    "Bia",
		CustomerPhone:   "+5511933334444",
		RestaurantName:  "Casa da Coxinha",
		RestaurantPhone: "+5511999990000",
	})
	require.NoError(t, err)

	assert.True(t, resp.OK)
	assert.Equal(t, "lala-123", resp.DeliveryID)
	assert.Equal(t, "https://share.lalamove.com/lala-123", resp.TrackingURL)
	assert.InDelta(t, 23.50, resp.Fee, 0.001)
	assert.Nil(t, resp.Driver)

	require.NotNil(t, courier.lastOrderReq)
	assert.Equal(t, "quote-1", courier.lastOrderReq.QuotationID)
	assert.Equal(t, "Casa da Coxinha", courier.lastOrderReq.Sender.Name)
	require.Len(t, courier.lastOrderReq.Recipients, 1)
	assert.Equal(t, "Bia", courier.lastOrderReq.Recipients[0].Name)
	assert.Equal(t, "ORD-TEST-9", courier.lastOrderReq.Metadata["orderNumber"])
}

func TestLalamoveRequestDeliveryAttachesKnownDriver(t *testing.T) {
	courier := &fakeCourier{
		quotation: sampleQuotation(),
		order:     &lalamove.Order{OrderID: "lala-124", DriverID: "drv-7"},
		driver: &lalamove.Driver{
			DriverID:    "drv-7",
			Name:        "Paulo",
			Phone:       "+5511955556666",
			PlateNumber: "XYZ-1234",
			VehicleType: "MOTORCYCLE",
		},
	}
	provider := newLalamoveFixture(courier, nil)

	resp, err := provider.RequestDelivery(context.Background(), sampleDeliveryRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Driver)
	assert.Equal(t, "Paulo", resp.Driver.Name)
	assert.Equal(t, "XYZ-1234", resp.Driver.PlateNumber)
}

func TestLalamoveDeclinedDispatchIsStructuredFailure(t *testing.T) {
	courier := &fakeCourier{
		quotation: sampleQuotation(),
		orderErr:  &lalamove.APIError{StatusCode: 422, Message: "no couriers in area"},
	}
	provider := newLalamoveFixture(courier, nil)

	resp, err := provider.RequestDelivery(context.Background(), sampleDeliveryRequest())
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.FailureReason, "no couriers in area")
}

func TestLalamoveTrackDelivery(t *testing.T) {
	courier := &fakeCourier{
		order: &lalamove.Order{
			OrderID:   "lala-125",
			Status:    "ON_GOING",
			ShareLink: "https://share.lalamove.com/lala-125",
			DriverID:  "drv-8",
		},
		driver: &lalamove.Driver{DriverID: "drv-8", Name: "Rita"},
	}
	provider := newLalamoveFixture(courier, nil)

	info, err := provider.TrackDelivery(context.Background(), "lala-125")
	require.NoError(t, err)
	assert.Equal(t, "ON_GOING", info.Status)
	assert.Equal(t, "https://share.lalamove.com/lala-125", info.TrackingURL)
	require.NotNil(t, info.Driver)
	assert.Equal(t, "Rita", info.Driver.Name)
}

func TestLalamoveCancelDelivery(t *testing.T) {
	courier := &fakeCourier{}
	provider := newLalamoveFixture(courier, nil)

	ok, err := provider.CancelDelivery(context.Background(), "lala-126", "customer changed mind")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"lala-126"}, courier.cancelled)
}

func TestRegistryGetDefaultsAndUnknown(t *testing.T) {
	pool := NewLocalPool(5.0, 1.5, testDrivers(1), zerolog.Nop())
	registry := NewRegistry("local", zerolog.Nop())
	registry.Register(pool)

	p, err := registry.Get("")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())

	_, err = registry.Get("carrier-pigeon")
	require.ErrorContains(t, err, "unknown delivery provider")
}

func TestRegistryCompareQuotesSortsAndOmitsFailures(t *testing.T) {
	cheap := NewLocalPool(1.0, 0.5, testDrivers(1), zerolog.Nop())
	courier := &fakeCourier{quotation: sampleQuotation()}
	lala := newLalamoveFixture(courier, nil)

	registry := NewRegistry("local", zerolog.Nop())
	registry.Register(cheap)
	registry.Register(lala)

	quotes := registry.CompareQuotes(context.Background(), &QuoteRequest{
		PickupAddress:   "Av. Paulista 1000",
		DeliveryAddress: "Rua Augusta 500",
		OrderValue:      80.0,
	})
	require.Len(t, quotes, 2)
	assert.Equal(t, "local", quotes[0].Provider)
	assert.Equal(t, "lalamove", quotes[1].Provider)
	assert.LessOrEqual(t, quotes[0].Price, quotes[1].Price)

	// A failing provider disappears from the comparison instead of
	// breaking it.
	failing := NewRegistry("local", zerolog.Nop())
	failing.Register(cheap)
	failing.Register(newLalamoveFixture(&fakeCourier{quotationErr: errors.New("down")}, nil))

	quotes = failing.CompareQuotes(context.Background(), &QuoteRequest{
		PickupAddress:   "Av. Paulista 1000",
		DeliveryAddress: "Rua Augusta 500",
	})
	require.Len(t, quotes, 1)
	assert.Equal(t, "local", quotes[0].Provider)
}
