// internal/service/context.go
package service

import (
    "net"
    "net/http"
    "net/url"

    "github.com/google/uuid"

    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// RequestContext carries everything request-scoped through the pipeline:
// request metadata, the raw field map (anti-abuse validators read their
// working fields from here, since the normalizer strips them from the
// data map), and resolver source data for the {{tag.param}} grammar.
type RequestContext struct {
    ID string

    IPAddress  string
    UserAgent  string
    RefererURL string
    Query      url.Values

    // Raw is the unnormalized request field map.
    Raw model.FieldMap

    // Authenticated user, zero values when anonymous.
    UserID    int
    UserName  string
    UserEmail string

    // Page the form was rendered on, when known.
    PostID    int
    PostTitle string
    PostURL   string

    // MathAnswer is the expected math-captcha result carried over from
    // the session token.
    MathAnswer    int
    HasMathAnswer bool
}

// NewRequestContext builds a context from an incoming request.
func NewRequestContext(r *http.Request) *RequestContext {
    ip := r.Header.Get("X-Forwarded-For")
    if ip == "" {
        ip = r.RemoteAddr
    }
    if host, _, err := net.SplitHostPort(ip); err == nil {
        ip = host
    }
    return &RequestContext{
        ID:         uuid.NewString(),
        IPAddress:  ip,
        UserAgent:  r.UserAgent(),
        RefererURL: r.Referer(),
        Query:      r.URL.Query(),
    }
}
