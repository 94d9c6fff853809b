package fred

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrConfiguration is returned by NewClient when the client cannot be
	// built, e.g. the API key is missing.
	ErrConfiguration = errors.New("configuration error")
	// ErrHTTP marks a non-2xx response.
	ErrHTTP = errors.New("http error")
	// ErrTransport marks connection, DNS, timeout and cancellation failures.
	ErrTransport = errors.New("transport error")
	// ErrDecode marks a body that is not a JSON object of the expected shape.
	ErrDecode = errors.New("decode error")
	// ErrReservedParam marks caller params that set api_key or file_type.
	ErrReservedParam = errors.New("reserved parameter")
)

// RequestError describes a failed request. Kind is one of the sentinels above.
type RequestError struct {
	Kind       error
	Endpoint   string
	StatusCode int
	Msg        string
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Endpoint != "" {
		msg += ": " + e.Endpoint
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// redactErr scrubs the credential out of *url.Error values, which embed the
// full request URL.
func redactErr(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactURL(urlErr.URL)
	}
	return err
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparsable url>"
	}
	q := u.Query()
	if q.Has(paramAPIKey) {
		q.Set(paramAPIKey, "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
