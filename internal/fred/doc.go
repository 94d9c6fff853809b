// Package fred provides an HTTP client for the FRED economic data API.
//
// # Overview
//
// The client fetches series observations from the St. Louis Fed REST API and
// decodes them into a date-indexed table.Table. It owns one HTTP session at a
// time, injects the API key and file_type=json into every request, and turns
// every request failure into a logged, classified error plus a degraded
// result.
//
// # Architecture
//
//   - session.go: Session and SessionManager (lazy create, recreate after close)
//   - client.go: Client, FetchRaw, FetchSeries, WithClient
//   - decode.go: DecodeObservations, record to table conversion
//   - types.go: payload structs mirroring the FRED schema, DateRange
//   - errors.go: error taxonomy and credential redaction
//
// # Client Usage
//
//	client, err := fred.NewClient(fred.Options{APIKey: cfg.APIKey, Logger: logger})
//	if err != nil {
//		return err // wraps fred.ErrConfiguration
//	}
//	defer client.Close()
//
//	rng := fred.DateRange{Start: start, End: end}
//	tbl, err := client.FetchSeries(ctx, "GDPC1", rng.Params())
//	if err != nil {
//		// request failed; tbl is empty but usable
//	}
//
// # Error Handling
//
// NewClient is the only call that fails hard; it returns ErrConfiguration
// when the API key is missing or the base URL is unusable. Request failures
// are logged and classified:
//
//   - ErrHTTP: non-2xx status (status and reason in the message)
//   - ErrTransport: connection refused, DNS failure, timeout, cancellation
//   - ErrDecode: body is not a JSON object, or observations are malformed
//   - ErrReservedParam: caller params tried to set api_key or file_type
//
// FetchRaw returns a nil map alongside the error. FetchSeries always returns
// a non-nil table: empty with an error when the request failed, empty with a
// nil error when the payload had no observations.
//
// The API key never appears in log lines or error strings; *url.Error values
// have their URL redacted before they are wrapped.
//
// # Concurrency
//
// Requests on one Client are serialized with a mutex, so a poller and an
// interactive refresh can share a client. Separate clients share nothing.
// Every request is bounded by Options.Timeout (default 10s).
//
// # Retries
//
// None. The client fails fast; the app poller decides when to try again.
package fred
