// Package request performs batches of form-encoded HTTP requests against one
// upstream API under a concurrency cap and a per-second rate limit.
package request

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/inconshreveable/log15"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nishad/ffqf/internal/errors"
)

// DefaultUserAgent is sent with every request unless Options overrides it.
const DefaultUserAgent = "ffqf"

// Request is one call to make against a Runner's base URL. It carries no
// state after construction and is safe to share.
type Request struct {
	Method string
	Path   string // relative to the runner's base URL
	Form   url.Values
}

// NewPost creates a form-encoded POST request.
func NewPost(path string, form url.Values) *Request {
	return &Request{Method: http.MethodPost, Path: path, Form: form}
}

// Response is the raw result of a successful Request.
type Response struct {
	Status  int
	Header  http.Header
	Body    []byte
	Request *Request
}

// StatusError reports a non-2xx reply to the index-th request of a batch.
type StatusError struct {
	Index  int
	Status int
	URL    string
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("request %d to %s returned %d %s", e.Index, e.URL, e.Status,
		http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Options configures a Runner.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	Concurrency       int
	RequestsPerSecond float64
	// DefaultForm is added to every request form unless the request sets the key.
	DefaultForm url.Values
	UserAgent   string
	Transport   http.RoundTripper
}

// Runner executes requests against a single data source.
type Runner struct {
	name        string
	base        *url.URL
	client      *http.Client
	limiter     *rate.Limiter
	concurrency int
	defaults    url.Values
	userAgent   string
	logger      log15.Logger
}

// NewRunner creates a Runner named after its data source, used in logs.
func NewRunner(name string, opts Options, logger log15.Logger) (*Runner, error) {
	const op errors.Op = "request.NewRunner"

	base, err := url.Parse(opts.BaseURL)
	if err != nil || !base.IsAbs() {
		return nil, errors.Errorf(op, errors.KindConfig, "%s: invalid base url %q", name, opts.BaseURL)
	}
	// paths resolve below the base, never next to it
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = float64(opts.Concurrency)
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	burst := int(math.Ceil(opts.RequestsPerSecond))
	if burst < 1 {
		burst = 1
	}

	return &Runner{
		name: name,
		base: base,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		limiter:     rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		concurrency: opts.Concurrency,
		defaults:    opts.DefaultForm,
		userAgent:   opts.UserAgent,
		logger:      logger.New("source", name),
	}, nil
}

// Name returns the data source name.
func (r *Runner) Name() string {
	return r.name
}

// PerformRequests executes all requests concurrently. The i-th response
// belongs to the i-th request. The first failure cancels the requests still
// in flight and fails the whole batch; no partial results are returned.
func (r *Runner) PerformRequests(ctx context.Context, requests []*Request) ([]*Response, error) {
	responses := make([]*Response, len(requests))
	if len(requests) == 0 {
		return responses, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			resp, err := r.do(ctx, i, req)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return responses, nil
}

// Do executes a single request under the same limits as PerformRequests.
func (r *Runner) Do(ctx context.Context, req *Request) (*Response, error) {
	responses, err := r.PerformRequests(ctx, []*Request{req})
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

func (r *Runner) do(ctx context.Context, index int, req *Request) (*Response, error) {
	const op errors.Op = "request.Runner.do"

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, errors.E(op, errors.KindUpstream, err, fmt.Sprintf("%s: rate limiter", r.name))
	}

	u := r.base.ResolveReference(&url.URL{Path: req.Path})
	form := r.form(req)

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if method == http.MethodGet {
		u.RawQuery = form.Encode()
	} else {
		body = strings.NewReader(form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.E(op, errors.KindUpstream, err, "create request")
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	httpReq.Header.Set("User-Agent", r.userAgent)

	r.logger.Debug("sending request", "index", index, "method", method, "url", u.String())

	start := time.Now()
	httpResp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, errors.E(op, errors.KindUpstream, err,
			fmt.Sprintf("%s: request %d failed", r.name, index))
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.E(op, errors.KindUpstream, err,
			fmt.Sprintf("%s: reading response %d", r.name, index))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, errors.E(op, errors.KindUpstream, &StatusError{
			Index:  index,
			Status: httpResp.StatusCode,
			URL:    u.String(),
			Body:   snippet(data),
		}, r.name)
	}

	r.logger.Debug("received response", "index", index, "status", httpResp.StatusCode,
		"size", humanize.Bytes(uint64(len(data))), "took", time.Since(start))

	return &Response{
		Status:  httpResp.StatusCode,
		Header:  httpResp.Header,
		Body:    data,
		Request: req,
	}, nil
}

// form merges the runner defaults into a copy of the request form.
func (r *Runner) form(req *Request) url.Values {
	form := make(url.Values, len(req.Form)+len(r.defaults))
	for k, v := range req.Form {
		form[k] = v
	}
	for k, v := range r.defaults {
		if _, ok := form[k]; !ok {
			form[k] = v
		}
	}
	return form
}

const maxSnippet = 200

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "..."
	}
	return s
}
