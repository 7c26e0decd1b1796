// Package github receives GitHub webhook deliveries via HTTP, validates and
// converts them to hooky events and passes them to an EventProcessor.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/hooky"
	"github.com/simplesurance/hooky/internal/hookyerr"
	"github.com/simplesurance/hooky/internal/logfields"
	"github.com/simplesurance/hooky/internal/routines"
)

const loggerName = "github-event-provider"

// maxPayloadSize is the maximum size of a webhook payload that GitHub
// delivers.
const maxPayloadSize = 25 * 1024 * 1024

// DefQueueTimeout is the default duration a delivery waits for a free worker
// before it is rejected.
const DefQueueTimeout = 30 * time.Second

// EventProcessor processes a webhook event.
type EventProcessor interface {
	Process(ctx context.Context, event hooky.Event) (*hooky.Result, error)
}

// Provider is a http handler for GitHub webhook deliveries.
// Events are processed by the EventProcessor in a worker of the pool, the
// handler waits for the result and reports it in the http response.
type Provider struct {
	logger        *zap.Logger
	webhookSecret []byte
	filter        *EventFilter
	queueTimeout  time.Duration
	processor     EventProcessor
	pool          *routines.Pool
}

type Opt func(*Provider)

func WithPayloadSecret(secret string) Opt {
	return func(p *Provider) {
		p.webhookSecret = []byte(secret)
	}
}

// WithEventFilter configures a filter, events for that it does not match are
// ignored.
func WithEventFilter(filter *EventFilter) Opt {
	return func(p *Provider) {
		p.filter = filter
	}
}

func WithQueueTimeout(timeout time.Duration) Opt {
	return func(p *Provider) {
		p.queueTimeout = timeout
	}
}

func New(processor EventProcessor, pool *routines.Pool, opts ...Opt) *Provider {
	p := Provider{
		processor:    processor,
		pool:         pool,
		queueTimeout: DefQueueTimeout,
	}

	for _, o := range opts {
		o(&p)
	}

	if p.logger == nil {
		p.logger = zap.L().Named(loggerName)
	}

	return &p
}

func respond(resp http.ResponseWriter, statusCode int, msg string) {
	resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
	resp.Header().Set("X-Content-Type-Options", "nosniff")
	resp.WriteHeader(statusCode)
	_, _ = io.WriteString(resp, msg)

	metrics.ResponseInc(statusCode)
}

func ignore(resp http.ResponseWriter, format string, a ...any) {
	respond(resp, http.StatusAccepted, (&hooky.Result{Message: fmt.Sprintf(format, a...)}).String())
}

func (p *Provider) HTTPHandler(resp http.ResponseWriter, req *http.Request) {
	deliveryID := github.DeliveryID(req)
	hookType := github.WebHookType(req)

	logger := p.logger.With(
		logfields.EventProvider("github"),
		logfields.DeliveryID(deliveryID),
		logfields.WebhookType(hookType),
	)

	payload, err := io.ReadAll(http.MaxBytesReader(resp, req.Body, maxPayloadSize))
	if err != nil {
		logger.Info(
			"reading http request body failed",
			logfields.Event("github_http_request_reading_failed"),
			zap.Error(err),
		)
		respond(resp, http.StatusBadRequest, "Error reading request body")
		return
	}

	err = github.ValidateSignature(req.Header.Get(github.SHA256SignatureHeader), payload, p.webhookSecret)
	if err != nil {
		logger.Info(
			"received invalid http request, signature validation failed",
			logfields.Event("github_http_request_validation_failed"),
			zap.Error(err),
		)
		respond(resp, http.StatusForbidden, "Invalid signature")
		return
	}

	logger.Debug(
		"received http request",
		logfields.Event("github_event_received"),
		zap.ByteString("http_body", payload),
	)

	parsed, err := github.ParseWebHook(hookType, payload)
	if err != nil {
		logger.Info(
			"received invalid http request, parsing failed",
			logfields.Event("github_event_parsing_failed"),
			zap.Error(err),
		)
		ignore(resp, "Error parsing request body")
		return
	}

	event, err := ToEvent(parsed)
	if errors.Is(err, ErrUnsupportedEvent) {
		logger.Debug(
			"ignoring event",
			logfields.Event("github_unsupported_event_received"),
			zap.Error(err),
		)
		ignore(resp, "%s event is not processed", hookType)
		return
	}
	if err != nil {
		logger.Info(
			"received invalid http request, event is incomplete",
			logfields.Event("github_event_parsing_failed"),
			zap.Error(err),
		)
		ignore(resp, "Error parsing request body")
		return
	}

	if p.filter != nil {
		match, err := p.filter.Match(req.Context(), payload)
		if err != nil {
			logger.Warn(
				"evaluating event filter failed, ignoring event",
				logfields.Event("github_event_filter_failed"),
				zap.Stringer("filter", p.filter),
				zap.Error(err),
			)
			ignore(resp, "evaluating event filter failed")
			return
		}

		if !match {
			logger.Debug("event does not match filter", logfields.Event("github_event_filtered"))
			ignore(resp, "event does not match event filter")
			return
		}
	}

	result, err := p.process(req.Context(), event)
	if err != nil {
		p.respondError(resp, logger, err)
		return
	}

	if result.Acted {
		respond(resp, http.StatusOK, result.String())
		return
	}

	respond(resp, http.StatusAccepted, result.String())
}

type processResult struct {
	result *hooky.Result
	err    error
}

var errQueueTimeout = errors.New("no worker available to process the event")

// process runs the EventProcessor in a worker of the pool and waits for its
// result.
func (p *Provider) process(ctx context.Context, event hooky.Event) (*hooky.Result, error) {
	ch := make(chan processResult, 1)

	queueCtx, cancel := context.WithTimeoutCause(ctx, p.queueTimeout, errQueueTimeout)
	defer cancel()

	err := p.pool.QueueCtx(queueCtx, func() {
		res, err := p.processor.Process(ctx, event)
		ch <- processResult{result: res, err: err}
	})
	if err != nil {
		if cause := context.Cause(queueCtx); errors.Is(cause, errQueueTimeout) {
			return nil, hookyerr.NewRetryableAnytimeError(cause)
		}
		return nil, err
	}

	res := <-ch
	return res.result, res.err
}

func (p *Provider) respondError(resp http.ResponseWriter, logger *zap.Logger, err error) {
	var retryableErr *hookyerr.RetryableError
	if errors.As(err, &retryableErr) {
		logger.Warn(
			"processing event failed with a temporary error",
			logfields.Event("github_event_processing_failed"),
			zap.Error(err),
		)

		if d := retryableErr.RetryAfter(); d > 0 {
			resp.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.Seconds()))))
		}

		respond(resp, http.StatusServiceUnavailable, "Error processing webhook, retry later")
		return
	}

	logger.Error(
		"processing event failed",
		logfields.Event("github_event_processing_failed"),
		zap.Error(err),
	)
	respond(resp, http.StatusInternalServerError, "Error processing webhook")
}
