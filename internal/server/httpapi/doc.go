// Package httpapi serves the Resource API over HTTP: JSON handlers on a chi
// router, bearer-token authentication, per-IP rate limiting on writes and
// Prometheus request metrics.
package httpapi
