// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key header on order submission and
// flags requests that would replay an already stored order, so the rate
// limiter lets retries through and handlers can tell them apart.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to make order
// submission safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// AnonymousUser is the identity used when a request carries no X-User-ID.
const AnonymousUser = "anonymous"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the lookup found a live record for this key.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Scope names the operation family the keys belong to (e.g. "orders").
	Scope string
	// Routes limits the validator to "METHOD /route" pairs such as
	// "POST /api/orders". Other requests pass through untouched, header or
	// not. Empty means every route.
	Routes []string
}

// IdempotencyLookup reports whether a still-valid record exists for
// (userID, scope, key) at now. TTL enforcement belongs to the implementation.
// Errors are treated as "no record" and never block the request.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present and
// stashes it for handlers. A malformed key is rejected with 400. When lookup
// finds a live record the request is marked as a replay and exempted from
// rate limiting. Requests without the header pass through untouched.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}
	routes := make(map[string]struct{}, len(opts.Routes))
	for _, r := range opts.Routes {
		routes[r] = struct{}{}
	}

	return func(c *gin.Context) {
		if len(routes) > 0 {
			if _, ok := routes[c.Request.Method+" "+c.FullPath()]; !ok {
				c.Next()
				return
			}
		}
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			exists, err := lookup(c.Request.Context(), IdempotencyOwner(c), opts.Scope, key, time.Now().UTC())
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			}
			if exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// IdempotencyOwner is the identity keys are recorded and looked up under:
// the X-User-ID header, or AnonymousUser. Handlers must store keys under the
// same identity for the replay flag to match what they will replay.
func IdempotencyOwner(c *gin.Context) string {
	if uid := UserIDFrom(c); uid != "" {
		return uid
	}
	return AnonymousUser
}
