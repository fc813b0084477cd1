package lalamove

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client talks to the Lalamove REST API. Every request is signed with the
// API secret per the provider's HMAC scheme.
type Client struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Market     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey, apiSecret, market string) *Client {
	return &Client{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		APISecret: apiSecret,
		Market:    market,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx reply from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lalamove API error (HTTP %d): %s", e.StatusCode, e.Message)
}

type Stop struct {
	Coordinates Coordinates `json:"coordinates"`
	Address     string      `json:"address"`
}

type Coordinates struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type QuotationRequest struct {
	ServiceType string `json:"serviceType"`
	Language    string `json:"language"`
	Stops       []Stop `json:"stops"`
}

type Quotation struct {
	QuotationID string `json:"quotationId"`
	PriceBreakdown struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"priceBreakdown"`
	Distance struct {
		Value string `json:"value"`
		Unit  string `json:"unit"`
	} `json:"distance"`
	ExpiresAt string `json:"expiresAt"`
}

type OrderRequest struct {
	QuotationID string            `json:"quotationId"`
	Sender      Contact           `json:"sender"`
	Recipients  []Contact         `json:"recipients"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type Contact struct {
	StopID string `json:"stopId,omitempty"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
}

type Order struct {
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
	ShareLink string `json:"shareLink"`
	DriverID  string `json:"driverId"`
	PriceBreakdown struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"priceBreakdown"`
}

type Driver struct {
	DriverID    string `json:"driverId"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	PlateNumber string `json:"plateNumber"`
	VehicleType string `json:"vehicleType"`
}

func (c *Client) GetQuotation(ctx context.Context, req *QuotationRequest) (*Quotation, error) {
	var out struct {
		Data Quotation `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/v3/quotations", map[string]interface{}{"data": req}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	var out struct {
		Data Order `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/v3/orders", map[string]interface{}{"data": req}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var out struct {
		Data Order `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v3/orders/"+orderID, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) GetDriver(ctx context.Context, orderID, driverID string) (*Driver, error) {
	var out struct {
		Data Driver `json:"data"`
	}
	path := fmt.Sprintf("/v3/orders/%s/drivers/%s", orderID, driverID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodDelete, "/v3/orders/"+orderID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, dest interface{}) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	signature := c.sign(timestamp, method, path, string(body))
	token := fmt.Sprintf("%s:%s:%s", c.APIKey, timestamp, signature)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "hmac "+token)
	req.Header.Set("Market", c.Market)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if dest != nil {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// sign produces the provider's HMAC-SHA256 request signature over
// timestamp, method, path and body.
func (c *Client) sign(timestamp, method, path, body string) string {
	raw := fmt.Sprintf("%s\r\n%s\r\n%s\r\n\r\n%s", timestamp, method, path, body)
	mac := hmac.New(sha256.New, []byte(c.APISecret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
