package fetcher

/*
Fetch Responsibilities
- Issue a single GET against a target URL with the configured user
  agent and per-request timeout.
- Only a transport failure (the request never completed with a
  response) is retried — up to 3 attempts, with a 500ms initial
  backoff that doubles between attempts. A completed response, of any
  status code or content type, is final: non-200 and non-HTML
  responses are reported as a successful Outcome carrying the real
  status and an empty body, never retried.
- Bodies are read up to maxContentSizeBytes+1; a response that fills
  that extra byte is reported as Oversized with an empty body rather
  than buffering the full payload.
*/

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nullmapper/distcrawler/pkg/failure"
	"github.com/nullmapper/distcrawler/pkg/retry"
	"github.com/nullmapper/distcrawler/pkg/timeutil"
)

// DefaultRetryParam is the 3-attempt, 500ms-doubling backoff applied to
// transport failures only.
func DefaultRetryParam() retry.RetryParam {
	return retry.NewRetryParam(
		500*time.Millisecond,
		0,
		1,
		3,
		timeutil.NewBackoffParam(500*time.Millisecond, 2.0, 0),
	)
}

// Fetch retrieves targetURL, applying requestTimeout per attempt and
// retrying only on transport failure per DefaultRetryParam.
func Fetch(ctx context.Context, httpClient *http.Client, targetURL, userAgent string, requestTimeout time.Duration, maxContentSizeBytes int64) (Outcome, failure.ClassifiedError) {
	return FetchWithRetry(ctx, httpClient, targetURL, userAgent, requestTimeout, maxContentSizeBytes, DefaultRetryParam())
}

// FetchWithRetry is Fetch with an explicit retry policy, exposed for
// callers that need to tune attempt count or backoff in tests.
func FetchWithRetry(ctx context.Context, httpClient *http.Client, targetURL, userAgent string, requestTimeout time.Duration, maxContentSizeBytes int64, retryParam retry.RetryParam) (Outcome, failure.ClassifiedError) {
	result := retry.Retry(retryParam, func() (Outcome, failure.ClassifiedError) {
		return fetchOnce(ctx, httpClient, targetURL, userAgent, requestTimeout, maxContentSizeBytes)
	})
	return result.Value(), result.Err()
}

// fetchOnce performs a single GET. A non-nil error here always means a
// transport failure and is always retryable; every other case — any
// status code, any content type, an oversized body — is reported as a
// successful Outcome.
func fetchOnce(ctx context.Context, httpClient *http.Client, targetURL, userAgent string, requestTimeout time.Duration, maxContentSizeBytes int64) (Outcome, failure.ClassifiedError) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, targetURL, nil)
	if err != nil {
		return Outcome{}, &FetchError{Message: err.Error(), Cause: ErrCauseRequestBuild, Retryable: true}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Outcome{}, &FetchError{Message: err.Error(), Cause: ErrCauseNetworkFailure, Retryable: true}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode != http.StatusOK || !isHTMLContentType(contentType) {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			return Outcome{}, &FetchError{Message: err.Error(), Cause: ErrCauseReadBody, Retryable: true}
		}
		return Outcome{StatusCode: resp.StatusCode, ContentType: contentType}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSizeBytes+1))
	if err != nil {
		return Outcome{}, &FetchError{Message: err.Error(), Cause: ErrCauseReadBody, Retryable: true}
	}
	if int64(len(body)) > maxContentSizeBytes {
		return Outcome{StatusCode: http.StatusOK, ContentType: contentType, Oversized: true}, nil
	}

	return Outcome{StatusCode: http.StatusOK, ContentType: contentType, Body: string(body)}, nil
}

func isHTMLContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}
