package hec

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-resty/resty/v2"

	"github-workflow-splunk-logger/src/contracts"
	"github-workflow-splunk-logger/src/logger"
	"github-workflow-splunk-logger/src/metrics"
)

// Sender posts events to the collector, retrying failed attempts with
// exponential backoff.
type Sender struct {
	cfg     Config
	client  *resty.Client
	preview io.Writer
	log     logger.Logger
	metrics metrics.Recorder
	sleep   SleepFunc
}

// Option configures a Sender
type Option func(*Sender)

// WithPreviewWriter sets where debug previews are written. Defaults to stdout.
func WithPreviewWriter(w io.Writer) Option {
	return func(s *Sender) { s.preview = w }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Sender) { s.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Sender) { s.metrics = r }
}

// WithSleep replaces the wait between attempts.
func WithSleep(fn SleepFunc) Option {
	return func(s *Sender) { s.sleep = fn }
}

// NewSender creates a Sender for cfg. The config is expected to be valid.
func NewSender(cfg Config, opts ...Option) *Sender {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: !cfg.VerifyTLS})

	s := &Sender{
		cfg:     cfg,
		client:  client,
		preview: os.Stdout,
		log:     logger.NewSilentLogger(),
		metrics: metrics.Nop{},
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// attemptResult is the outcome of a single POST.
type attemptResult struct {
	statusCode int
	body       string
	err        error
}

func (r attemptResult) ok() bool {
	return r.err == nil && r.statusCode == http.StatusOK
}

func (r attemptResult) outcome() string {
	switch {
	case r.err != nil:
		return metrics.OutcomeTransportError
	case r.ok():
		return metrics.OutcomeSuccess
	default:
		return metrics.OutcomeRejected
	}
}

func (r attemptResult) String() string {
	if r.err != nil {
		return r.err.Error()
	}
	return fmt.Sprintf("Splunk HEC responded with status code %d: %s", r.statusCode, r.body)
}

// Deliver sends one event. In debug mode the event is only previewed.
func (s *Sender) Deliver(ctx context.Context, event contracts.Event) error {
	endpoint := s.cfg.EndpointURL()

	if s.cfg.Debug {
		return s.writePreview(endpoint, event)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	schedule := NewBackoff()
	var last attemptResult
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		last = s.attempt(ctx, endpoint, payload)
		s.metrics.DeliveryAttempt(last.outcome())
		if last.ok() {
			s.metrics.EventDelivered(true)
			return nil
		}

		if attempt == s.cfg.MaxRetries {
			break
		}

		delay := schedule.NextBackOff()
		s.log.Debug("Attempt %d against %s: %s", attempt, endpoint, last)
		s.log.Info("Attempt %d failed. Retrying in %d seconds...", attempt, int(delay.Seconds()))

		if err := s.sleep(ctx, delay); err != nil {
			s.metrics.EventDelivered(false)
			return &DeliveryError{
				Endpoint:   endpoint,
				Attempts:   attempt,
				StatusCode: last.statusCode,
				Body:       last.body,
				Err:        err,
			}
		}
	}

	s.metrics.EventDelivered(false)
	return &DeliveryError{
		Endpoint:   endpoint,
		Attempts:   s.cfg.MaxRetries,
		StatusCode: last.statusCode,
		Body:       last.body,
		Err:        last.err,
	}
}

func (s *Sender) attempt(ctx context.Context, endpoint string, payload []byte) attemptResult {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Splunk "+s.cfg.Token).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(endpoint)
	if err != nil {
		return attemptResult{err: err}
	}

	return attemptResult{statusCode: resp.StatusCode(), body: resp.String()}
}

func (s *Sender) writePreview(endpoint string, event contracts.Event) error {
	pretty, err := json.MarshalIndent(event, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if _, err := fmt.Fprintf(s.preview, "Attempting to send data to Splunk HEC to %s\n%s\n", endpoint, pretty); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}
