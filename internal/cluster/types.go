// Package cluster provides the plain HTTP/JSON client the bootstrap
// handshake between a locality and the directory service is built on.
// It predates and is narrower in scope than internal/rpc, which handles
// the steady-state opcode traffic once a fleet's Directory is
// finalized: cluster exists only because bootstrap has no GlobalID or
// opcode to route on yet.
//
// Bootstrap's one real reliability concern is that a locality's own
// process can win the race against the directory service's listener
// coming up, so PostJSONRetry — not a bare PostJSON — is what
// cmd/locality actually calls to register.
package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// PostJSON marshals body, POSTs it to url, and decodes the response into
// out (ignored if nil).
func PostJSON(ctx context.Context, url string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// PostJSONRetry calls PostJSON up to attempts times, sleeping backoff
// between failures, and returns the last error if none of them
// succeed. onRetry, if non-nil, is called with the 1-based attempt
// number and the error that attempt hit, before the sleep — the
// registration-retry loop cmd/locality used to hand-roll around a bare
// PostJSON call, folded into the client because reaching a directory
// service that may not have started listening yet is dishmap's actual
// bootstrap requirement, not a one-off caller's concern.
func PostJSONRetry(ctx context.Context, url string, body, out any, attempts int, backoff time.Duration, onRetry func(attempt int, err error)) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = PostJSON(ctx, url, body, out)
		if lastErr == nil {
			return nil
		}
		if onRetry != nil {
			onRetry(i+1, lastErr)
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}
