// Package notify posts completed-transfer events to an external webhook.
// Delivery is best effort and fully decoupled from the ledger: a failed or
// slow webhook never affects a committed transfer.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Event is the webhook payload for one completed transfer.
type Event struct {
	Reference          string    `json:"reference"`
	SenderAccountID    int64     `json:"sender_account_id"`
	RecipientAccountID int64     `json:"recipient_account_id"`
	Amount             string    `json:"amount"`
	Currency           string    `json:"currency"`
	CreatedAt          time.Time `json:"created_at"`
}

type Service struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger

	events chan Event
	stopCh chan struct{}
}

func (s *Service) LoggerComponent() string {
	return "Notify.Service"
}

// NewService constructor. An empty url yields a disabled service: Enqueue
// becomes a no-op and no workers are started.
func NewService(url string, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     log.Logger,
		events:     make(chan Event, 256),
		stopCh:     make(chan struct{}),
	}

	for _, o := range opts {
		o(s)
	}

	s.logger = s.logger.With().Str("component", s.LoggerComponent()).Logger()

	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "transfer-webhook",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	return s, nil
}

type ServiceOption func(*Service)

func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

func WithHTTPClient(c *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = c
	}
}

// Start launches the delivery workers.
func (s *Service) Start(numWorkers int) {
	if s.url == "" {
		return
	}

	for i := 0; i < numWorkers; i++ {
		go func(workerID int) {
			l := s.logger.With().Int("worker_id", workerID).Logger()
			for {
				select {
				case <-s.stopCh:
					return
				case e := <-s.events:
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					if err := s.send(ctx, e); err != nil {
						// dropped on failure; the transaction log remains the
						// source of truth, the webhook is a courtesy signal
						l.Error().Err(err).Str("reference", e.Reference).Msg("Webhook delivery failed")
					} else {
						l.Debug().Str("reference", e.Reference).Msg("Webhook delivered")
					}
					cancel()
				}
			}
		}(i)
	}
}

// Stop shuts the workers down. Queued events are discarded.
func (s *Service) Stop() {
	if s == nil || s.url == "" {
		return
	}
	s.logger.Debug().Msg("Service shutdown")
	close(s.stopCh)
}

// Enqueue hands an event to the workers without blocking the caller. When
// the queue is full the event is dropped and logged.
func (s *Service) Enqueue(e Event) {
	if s == nil || s.url == "" {
		return
	}

	select {
	case s.events <- e:
	default:
		s.logger.Warn().Str("reference", e.Reference).Msg("Event queue full, dropping")
	}
}

func (s *Service) send(ctx context.Context, e Event) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.post(ctx, e)
	})
	return err
}

func (s *Service) post(ctx context.Context, e Event) error {
	rawJSON, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(rawJSON))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req = req.WithContext(ctx)
	req.Header.Add("Content-Type", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("webhook responded %d", res.StatusCode)
	}

	return nil
}
