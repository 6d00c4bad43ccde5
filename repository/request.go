package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"notesweb/config"
	"notesweb/middleware"
	"notesweb/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// errDeadline is the cause attached to the executor's own timer, so a timeout
// can be told apart from the caller cancelling.
var errDeadline = errors.New("notes api deadline exceeded")

type RequestOptions struct {
	Method    string // defaults to GET
	Body      any    // JSON-encoded when non-nil
	Operation string // metrics and log label
}

// Requester performs one call against the notes service.
type Requester interface {
	Do(ctx context.Context, path string, opts RequestOptions) (*Payload, error)
}

// Executor issues single, time-bounded requests to the notes service and
// normalizes the outcome into a Payload or an error.
type Executor struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	log     *logrus.Logger
}

func NewExecutor(cfg config.ClientConfig, client *http.Client) *Executor {
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &Executor{
		baseURL: config.ResolveBaseURL(cfg.BaseURL),
		timeout: timeout,
		client:  client,
		log:     utils.Logger,
	}
}

func (e *Executor) BaseURL() string { return e.baseURL }

// Do sends one request. ctx is the caller's cancellation signal; it races
// the executor's timeout and whichever fires first decides the error kind.
func (e *Executor) Do(ctx context.Context, path string, opts RequestOptions) (*Payload, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	operation := opts.Operation
	if operation == "" {
		operation = "request"
	}

	reqCtx, cancel := context.WithTimeoutCause(ctx, e.timeout, errDeadline)
	defer cancel()

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, e.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID, ok := middleware.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.New().String()
	}
	req.Header.Set(middleware.RequestIDHeader, requestID)

	entry := e.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"operation":  operation,
		"method":     method,
		"path":       path,
	})

	start := time.Now()
	payload, status, err := e.roundTrip(req)
	elapsed := time.Since(start)
	entry = entry.WithField("duration_ms", elapsed.Milliseconds())

	if err != nil {
		err = classifyAbort(reqCtx, err)
		outcome := "transport"
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			outcome = reqErr.Kind.String()
		}
		middleware.TrackAPIRequest(operation, method, outcome, elapsed)
		entry.WithError(err).Warn("notes api request failed")
		return nil, err
	}

	entry = entry.WithField("status", status)
	if status < 200 || status > 299 {
		reqErr := statusError(status, payload)
		middleware.TrackAPIRequest(operation, method, reqErr.Kind.String(), elapsed)
		entry.WithError(reqErr).Warn("notes api returned an error status")
		return nil, reqErr
	}

	middleware.TrackAPIRequest(operation, method, "ok", elapsed)
	entry.Debug("notes api request completed")
	return payload, nil
}

// roundTrip sends req and reads the whole body, so the timeout also bounds
// slow bodies.
func (e *Executor) roundTrip(req *http.Request) (*Payload, int, error) {
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return JSONPayload(data), resp.StatusCode, nil
	}
	return TextPayload(string(data)), resp.StatusCode, nil
}

// classifyAbort maps a failure on an ended request context to a timeout or a
// cancellation. Other failures are returned untouched.
func classifyAbort(reqCtx context.Context, err error) error {
	if reqCtx.Err() == nil {
		return err
	}
	cause := context.Cause(reqCtx)
	if errors.Is(cause, errDeadline) {
		return &RequestError{Kind: KindTimeout, Message: TimeoutMessage, Err: err}
	}
	return &RequestError{Kind: KindCanceled, Message: CanceledMessage, Err: cause}
}
