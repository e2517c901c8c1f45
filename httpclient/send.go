package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/httpwrap/logger"
	"github.com/kbukum/httpwrap/observability"
)

// Send sends req and returns after the response body has been buffered.
func (c *Client) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.SendWithOption(ctx, req, ResponseContentRead)
}

// SendWithOption sends req and returns according to opt. ctx replaces the
// request's own context. Any status code is returned without error.
//
// With ResponseHeadersRead the caller owns the response body and must close it;
// the request stays linked to ctx and CancelPendingRequests until then.
func (c *Client) SendWithOption(ctx context.Context, req *http.Request, opt CompletionOption) (*http.Response, error) {
	if req == nil {
		return nil, NewValidationError("request must not be nil")
	}
	if !opt.valid() {
		return nil, NewValidationError("unknown completion option " + strconv.Itoa(int(opt)))
	}

	s := c.snapshot()
	scope := link(ctx, s.pending, s.timeout)

	spanCtx, span := c.tracer.Start(scope.ctx, observability.SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(observability.AttrHTTPMethod, req.Method)),
	)

	out, err := c.prepare(spanCtx, req, s)
	if err != nil {
		c.finish(spanCtx, span, req, nil, err, time.Time{})
		scope.end()
		return nil, err
	}

	start := time.Now()
	c.metrics.RecordStart(spanCtx)
	resp, err := c.httpClient.Do(out)
	if err != nil {
		err = scope.classify(err)
		c.finish(spanCtx, span, out, nil, err, start)
		scope.end()
		return nil, err
	}

	if opt == ResponseHeadersRead {
		scope.headersReceived()
		resp.Body = &scopedBody{ReadCloser: resp.Body, scope: scope}
		c.finish(spanCtx, span, out, resp, nil, start)
		return resp, nil
	}

	body, err := readBuffered(resp, s.maxBufferSize)
	_ = resp.Body.Close()
	if err != nil {
		if !IsBufferOverflow(err) {
			err = scope.classify(err)
		}
		c.finish(spanCtx, span, out, resp, err, start)
		scope.end()
		return nil, err
	}
	scope.end()

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	c.finish(spanCtx, span, out, resp, nil, start)
	return resp, nil
}

// prepare clones req onto ctx, resolves its URL against the base address and
// applies default headers.
func (c *Client) prepare(ctx context.Context, req *http.Request, s settings) (*http.Request, error) {
	if req.URL == nil {
		return nil, NewValidationError("request URL must not be nil")
	}
	out := req.Clone(ctx)

	if !out.URL.IsAbs() {
		if s.base == nil {
			return nil, NewValidationError("request URI " + strconv.Quote(out.URL.String()) +
				" is relative and no base address is set")
		}
		out.URL = s.base.ResolveReference(out.URL)
	}
	if out.Host == "" {
		out.Host = out.URL.Host
	}

	if out.Header == nil {
		out.Header = make(http.Header)
	}
	for k, vs := range s.headers {
		if _, ok := out.Header[k]; !ok {
			out.Header[k] = vs
		}
	}
	if c.requestIDHeader != "" && out.Header.Get(c.requestIDHeader) == "" {
		out.Header.Set(c.requestIDHeader, uuid.NewString())
	}
	return out, nil
}

// finish closes the span, records metrics and logs the outcome of one request.
func (c *Client) finish(ctx context.Context, span trace.Span, req *http.Request, resp *http.Response, err error, start time.Time) {
	defer span.End()

	fields := logger.Fields(logger.FieldMethod, req.Method)
	if req.URL != nil {
		fields[logger.FieldURL] = req.URL.String()
		span.SetAttributes(attribute.String(observability.AttrHTTPURL, req.URL.String()))
	}
	if c.requestIDHeader != "" {
		if id := req.Header.Get(c.requestIDHeader); id != "" {
			fields[logger.FieldRequestID] = id
			span.SetAttributes(attribute.String(observability.AttrRequestID, id))
		}
	}

	outcome := ""
	if resp != nil {
		fields[logger.FieldStatus] = resp.StatusCode
		span.SetAttributes(attribute.Int(observability.AttrHTTPStatusCode, resp.StatusCode))
		outcome = strconv.Itoa(resp.StatusCode)
		if resp.StatusCode >= 400 {
			span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var e *Error
		if errors.As(err, &e) {
			outcome = e.Code.String()
		}
	}

	if start.IsZero() {
		c.log.Debug("request rejected", logger.MergeWithDuration(fields, 0))
		return
	}

	elapsed := time.Since(start)
	c.metrics.RecordEnd(ctx, req.Method, outcome, elapsed)
	fields = logger.MergeWithDuration(fields, elapsed)
	if err != nil {
		fields[logger.FieldError] = err.Error()
		c.log.Debug("request failed", fields)
		return
	}
	c.log.Debug("request completed", fields)
}

// readBuffered reads the whole body, failing once it exceeds limit bytes.
func readBuffered(resp *http.Response, limit int64) ([]byte, error) {
	if resp.ContentLength > limit {
		return nil, NewBufferOverflowError(limit)
	}
	var r io.Reader = resp.Body
	if limit < math.MaxInt64 {
		r = io.LimitReader(resp.Body, limit+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, NewBufferOverflowError(limit)
	}
	return body, nil
}

// opScope is the context one operation runs on: the caller's context, linked
// to the client's pending context and bounded by the client timeout.
type opScope struct {
	ctx         context.Context
	cancel      context.CancelCauseFunc
	timer       *time.Timer
	stopPending func() bool
	once        sync.Once
}

func link(parent, pending context.Context, timeout time.Duration) *opScope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancelCause(parent)
	s := &opScope{ctx: ctx, cancel: cancel}
	s.stopPending = context.AfterFunc(pending, func() {
		cancel(context.Cause(pending))
	})
	if timeout != InfiniteTimeout {
		s.timer = time.AfterFunc(timeout, func() {
			cancel(errClientTimeout)
		})
	}
	return s
}

// headersReceived stops the client timeout; a streamed body is bounded only by
// the caller's context and CancelPendingRequests.
func (s *opScope) headersReceived() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

// end releases the scope. It is safe to call more than once.
func (s *opScope) end() {
	s.once.Do(func() {
		s.headersReceived()
		s.stopPending()
		s.cancel(nil)
	})
}

// classify maps a transport failure onto the reason the scope ended, if any.
func (s *opScope) classify(err error) error {
	if s.ctx.Err() == nil {
		return NewConnectionError(err)
	}
	cause := context.Cause(s.ctx)
	if errors.Is(cause, context.DeadlineExceeded) {
		return NewTimeoutError(cause)
	}
	return NewCanceledError(cause)
}

// scopedBody keeps the operation scope alive until the body is closed.
type scopedBody struct {
	io.ReadCloser
	scope *opScope
}

func (b *scopedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && err != io.EOF && b.scope.ctx.Err() != nil {
		err = b.scope.classify(err)
	}
	return n, err
}

func (b *scopedBody) Close() error {
	err := b.ReadCloser.Close()
	b.scope.end()
	return err
}
