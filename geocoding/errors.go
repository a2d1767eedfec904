// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jcodagnone/geomap/utils/htmlutils"
)

// GeocodingError is returned by geocoders and by Normalize. Type drives how
// callers react: the importer stops on ErrorTypeQuotaExceeded and the server
// picks the HTTP status from it.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType tells callers how to react to a GeocodingError.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded also covers rejected API keys (HTTP 403).
	ErrorTypeQuotaExceeded
	ErrorTypeTimeout
	ErrorTypeNotFound
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError is an unreachable or failing upstream (502, 503, 504).
	ErrorTypeNetworkError
	ErrorTypeMalformedResponse
	// ErrorTypeInvalidCoordinate means latitude and longitude were present
	// but did not parse as numbers.
	ErrorTypeInvalidCoordinate
)

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func isType(err error, t ErrorType) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == t
	}

	return false
}

// mentions reports whether the lower-cased message of err contains any of words.
func mentions(err error, words ...string) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}

	return false
}

// IsRateLimitError matches ErrorTypeRateLimit and untyped errors that look
// like an HTTP 429. A nil err is never a rate limit.
func IsRateLimitError(err error) bool {
	return isType(err, ErrorTypeRateLimit) ||
		mentions(err, "rate limit", "too many requests", "429")
}

// IsQuotaExceededError also recognises Google's OVER_QUERY_LIMIT status.
func IsQuotaExceededError(err error) bool {
	return isType(err, ErrorTypeQuotaExceeded) ||
		mentions(err, "over_query_limit", "quota exceeded")
}

func IsTimeoutError(err error) bool {
	return isType(err, ErrorTypeTimeout) ||
		mentions(err, "timeout", "deadline exceeded")
}

// IsNotFoundError reports whether the provider had no result.
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsMalformedResponse reports whether err comes from an unparseable response.
func IsMalformedResponse(err error) bool {
	return isType(err, ErrorTypeMalformedResponse)
}

// IsInvalidCoordinate reports whether err comes from a non numeric latitude or longitude.
func IsInvalidCoordinate(err error) bool {
	return isType(err, ErrorTypeInvalidCoordinate)
}

// ClassifyHTTPError maps an HTTP status code to a geocoding error.
func ClassifyHTTPError(statusCode int) *GeocodingError {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &GeocodingError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden:
		return &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest:
		return &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusNotFound:
		return &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: "location not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &GeocodingError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}

// statusError classifies a non-200 response, keeping the summary of an HTML
// error page when the provider sent one.
func statusError(resp *http.Response) *GeocodingError {
	geoErr := ClassifyHTTPError(resp.StatusCode)
	if summary := htmlutils.ResponseSummary(resp); summary != "" {
		geoErr.Err = errors.New(summary)
	}

	return geoErr
}
