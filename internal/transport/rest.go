package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/ledgerbook/ledgerbook-go/internal/types"
	"github.com/pkg/errors"
)

const (
	authHeaderKey      = "Authorization"
	deviceHeaderKey    = "X-Device-ID"
	requestIDHeaderKey = "X-Request-ID"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Request describes a single REST call
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is marshalled as JSON when set
	Body interface{}

	// Form is sent url-encoded when set; takes precedence over Body
	Form url.Values

	// Public requests are sent without a bearer token
	Public bool
}

// RESTTransport handles HTTP/JSON communication with the ledgerbook API
type RESTTransport struct {
	baseURL     string
	httpClient  *http.Client
	retryClient *retryablehttp.Client
	headers     map[string]string
	session     *types.Session
	logger      types.Logger
	hooks       *types.Hooks
}

// Options for REST transport
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Headers     map[string]string
	RetryConfig *types.RetryConfig
	Logger      types.Logger
	Hooks       *types.Hooks
}

// NewRESTTransport creates a new REST transport
func NewRESTTransport(opts *Options) *RESTTransport {
	if opts == nil {
		opts = &Options{}
	}

	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: types.DefaultTimeout,
		}
	}

	var retryClient *retryablehttp.Client
	if opts.RetryConfig != nil {
		retryClient = retryablehttp.NewClient()
		retryClient.HTTPClient = opts.HTTPClient
		retryClient.RetryMax = opts.RetryConfig.MaxRetries
		retryClient.RetryWaitMin = opts.RetryConfig.RetryWait
		retryClient.RetryWaitMax = opts.RetryConfig.MaxWait
		retryClient.Logger = nil

		if opts.Logger != nil {
			retryClient.Logger = &retryLogger{logger: opts.Logger}
		}
	}

	headers := map[string]string{
		"Accept":     contentTypeJSON,
		"User-Agent": types.UserAgent,
	}

	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &RESTTransport{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  opts.HTTPClient,
		retryClient: retryClient,
		headers:     headers,
		logger:      opts.Logger,
		hooks:       opts.Hooks,
	}
}

// Do executes a REST request and decodes the JSON response into result
func (t *RESTTransport) Do(ctx context.Context, req *Request, result interface{}) error {
	var (
		body        io.Reader
		contentType string
	)

	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = contentTypeForm
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(data)
		contentType = contentTypeJSON
	}

	httpReq, err := t.newRequest(ctx, req, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	respBody, err := t.execute(ctx, httpReq)
	if err != nil {
		return err
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return errors.Wrap(err, "failed to parse response")
		}
	}

	return nil
}

// Upload sends data as a multipart file field and decodes the JSON response
func (t *RESTTransport) Upload(ctx context.Context, path, fieldName, fileName string, data []byte, result interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return errors.Wrap(err, "failed to create form file")
	}
	if _, err := part.Write(data); err != nil {
		return errors.Wrap(err, "failed to write form file")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "failed to close multipart writer")
	}

	httpReq, err := t.newRequest(ctx, &Request{Method: http.MethodPost, Path: path}, &buf)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, err := t.execute(ctx, httpReq)
	if err != nil {
		return err
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return errors.Wrap(err, "failed to parse upload response")
		}
	}
	return nil
}

// Download streams a binary response body to w and returns the file name
// announced by the server, if any
func (t *RESTTransport) Download(ctx context.Context, path string, w io.Writer) (string, error) {
	httpReq, err := t.newRequest(ctx, &Request{Method: http.MethodGet, Path: path}, nil)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Accept", "application/octet-stream")

	resp, err := t.doRequest(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", t.handleHTTPError(resp.StatusCode, respBody)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", errors.Wrap(err, "failed to read download")
	}

	return fileNameFromDisposition(resp.Header.Get("Content-Disposition")), nil
}

// SetAuth sets the authentication token
func (t *RESTTransport) SetAuth(token string) {
	if t.session == nil {
		t.session = &types.Session{}
	}
	t.session.Token = token
}

// SetSession sets the session
func (t *RESTTransport) SetSession(session *types.Session) {
	t.session = session
}

// newRequest builds an http.Request with default, auth and tracing headers
func (t *RESTTransport) newRequest(ctx context.Context, req *Request, body io.Reader) (*http.Request, error) {
	if !req.Public {
		if t.session == nil || t.session.Token == "" {
			return nil, types.ErrNotAuthenticated
		}
		if t.session.Expired() {
			return nil, types.ErrSessionExpired
		}
	}

	target := t.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set(requestIDHeaderKey, uuid.NewString())

	if t.session != nil {
		if !req.Public && t.session.Token != "" {
			httpReq.Header.Set(authHeaderKey, "Bearer "+t.session.Token)
		}
		if t.session.DeviceUUID != "" {
			httpReq.Header.Set(deviceHeaderKey, t.session.DeviceUUID)
		}
	}

	return httpReq, nil
}

// execute runs the request, fires hooks, logs and maps HTTP errors
func (t *RESTTransport) execute(ctx context.Context, httpReq *http.Request) ([]byte, error) {
	if t.hooks != nil && t.hooks.OnRequest != nil {
		t.hooks.OnRequest(ctx, httpReq)
	}

	if t.logger != nil {
		t.logger.Debug("API request", "method", httpReq.Method, "path", httpReq.URL.Path,
			"request_id", httpReq.Header.Get(requestIDHeaderKey))
	}

	start := time.Now()
	resp, err := t.doRequest(httpReq)
	duration := time.Since(start)

	if err != nil {
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if t.hooks != nil && t.hooks.OnResponse != nil {
		t.hooks.OnResponse(ctx, resp, duration)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	if t.logger != nil {
		t.logger.Debug("API response", "status", resp.StatusCode, "duration", duration, "size", len(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := t.handleHTTPError(resp.StatusCode, respBody)
		if e, ok := apiErr.(*types.Error); ok {
			e.RequestID = httpReq.Header.Get(requestIDHeaderKey)
		}
		return nil, apiErr
	}

	return respBody, nil
}

// doRequest executes the HTTP request with retry if configured
func (t *RESTTransport) doRequest(req *http.Request) (*http.Response, error) {
	if t.retryClient != nil {
		retryReq, err := retryablehttp.FromRequest(req)
		if err != nil {
			return nil, err
		}
		return t.retryClient.Do(retryReq)
	}
	return t.httpClient.Do(req)
}

// errorBody covers the error shapes the API produces
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// parseErrorMessage extracts a readable message and any field errors
func parseErrorMessage(body []byte) (string, []*types.FieldError) {
	var errResp errorBody
	if err := json.Unmarshal(body, &errResp); err != nil {
		return "", nil
	}

	if len(errResp.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(errResp.Detail, &detail); err == nil {
			return detail, nil
		}

		var fields []*types.FieldError
		if err := json.Unmarshal(errResp.Detail, &fields); err == nil && len(fields) > 0 {
			parts := make([]string, 0, len(fields))
			for _, f := range fields {
				if name := f.Field(); name != "" {
					parts = append(parts, fmt.Sprintf("%s: %s", name, f.Msg))
				} else {
					parts = append(parts, f.Msg)
				}
			}
			return strings.Join(parts, "; "), fields
		}
	}

	if errResp.Message != "" {
		return errResp.Message, nil
	}
	return errResp.Error, nil
}

// handleHTTPError handles HTTP errors
func (t *RESTTransport) handleHTTPError(statusCode int, body []byte) error {
	msg, fields := parseErrorMessage(body)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg != "" {
			return &types.Error{
				Code:       "NOT_AUTHENTICATED",
				Message:    msg,
				StatusCode: statusCode,
				Err:        types.ErrNotAuthenticated,
			}
		}
		return types.ErrNotAuthenticated
	case http.StatusNotFound:
		if msg != "" {
			return &types.Error{
				Code:       "NOT_FOUND",
				Message:    msg,
				StatusCode: statusCode,
				Err:        types.ErrNotFound,
			}
		}
		return types.ErrNotFound
	case http.StatusConflict:
		if msg == "" {
			msg = "conflict"
		}
		return &types.Error{
			Code:       "CONFLICT",
			Message:    msg,
			StatusCode: statusCode,
			Err:        types.ErrConflict,
		}
	case http.StatusTooManyRequests:
		return types.ErrRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return types.ErrTimeout
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		apiErr := &types.Error{
			Code:       "BAD_REQUEST",
			Message:    msg,
			StatusCode: statusCode,
		}
		if len(fields) > 0 {
			apiErr.Details = make(map[string]interface{}, len(fields))
			for _, f := range fields {
				apiErr.Details[f.Field()] = f.Msg
			}
		}
		return apiErr
	default:
		if statusCode >= 500 {
			baseMsg := fmt.Sprintf("server error: %d", statusCode)
			if desc := httpStatusDescription(statusCode); desc != "" {
				baseMsg = fmt.Sprintf("server error: %d (%s)", statusCode, desc)
			}
			if msg != "" {
				baseMsg = fmt.Sprintf("%s: %s", baseMsg, msg)
			}

			return &types.Error{
				Code:       "SERVER_ERROR",
				Message:    baseMsg,
				StatusCode: statusCode,
				Err:        types.ErrServerError,
			}
		}
		return &types.Error{
			Code:       "HTTP_ERROR",
			Message:    fmt.Sprintf("HTTP error: %d", statusCode),
			StatusCode: statusCode,
		}
	}
}

// httpStatusDescription returns a human-readable description for common 5xx codes.
// Proxies in front of the API emit the 52x family.
func httpStatusDescription(statusCode int) string {
	descriptions := map[int]string{
		500: "Internal Server Error",
		501: "Not Implemented",
		502: "Bad Gateway",
		503: "Service Unavailable",
		504: "Gateway Timeout",
		520: "Web Server Error",
		521: "Web Server Is Down",
		522: "Connection Timed Out",
		523: "Origin Is Unreachable",
		524: "A Timeout Occurred",
		525: "SSL Handshake Failed",
		526: "Invalid SSL Certificate",
	}
	return descriptions[statusCode]
}

// fileNameFromDisposition pulls the filename parameter out of a
// Content-Disposition header
func fileNameFromDisposition(header string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
