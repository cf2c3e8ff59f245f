package testutil

import (
	"net/http"
	"time"

	"formation/pkg/requestcontext"
)

// WithAdminSubject simulates an admin request that passed RequireAdmin.
func WithAdminSubject(req *http.Request, subject string) *http.Request {
	return req.WithContext(requestcontext.WithAdminSubject(req.Context(), subject))
}

// WithRequestTime pins the request clock the way the requesttime middleware would.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithRequestID sets the correlation id the RequestID middleware would mint.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
