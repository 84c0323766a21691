package fieldsync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const dateLayout = "2006-01-02"

// Client клиент внешнего провайдера бронирования площадок
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// ListReservations получает брони площадки за период [from, to]
func (c *Client) ListReservations(ctx context.Context, fieldRef string, from, to time.Time) ([]Reservation, error) {
	query := url.Values{}
	query.Set("from", from.Format(dateLayout))
	query.Set("to", to.Format(dateLayout))

	endpoint := fmt.Sprintf("%s/fields/%s/reservations?%s", c.baseURL, url.PathEscape(fieldRef), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: ref=%s", ErrFieldNotFound, fieldRef)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var reservations []Reservation
	if err := json.NewDecoder(resp.Body).Decode(&reservations); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	c.log.Info("Fetched %d reservations for field=%s, period=%s..%s",
		len(reservations), fieldRef, from.Format(dateLayout), to.Format(dateLayout))

	return reservations, nil
}
