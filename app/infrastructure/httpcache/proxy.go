package httpcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"resty.dev/v3"
	"square.ai/skill-gateway/app/domain/common"
	"square.ai/skill-gateway/app/infrastructure/cache"
	"square.ai/skill-gateway/app/utils/httpclients"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

var ErrUpstream = common.NewError(fmt.Errorf("upstream call failed: %w", common.ErrUnavailable), "75710bbb-ee46-4d31-89f6-a0baafb67e1f")

type Request struct {
	Method string
	URL    string
	// Body is JSON encoded before sending; nil sends no body.
	Body   any
	Header map[string]string
	// SideEffectFree marks a POST (search, query) as safe to serve from cache.
	SideEffectFree bool
}

func (r Request) cacheable() bool {
	switch strings.ToUpper(r.Method) {
	case http.MethodGet:
		return true
	case http.MethodPost:
		return r.SideEffectFree
	}
	return false
}

type Response struct {
	StatusCode  int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	StoredAt    time.Time `json:"stored_at"`
	FromCache   bool      `json:"-"`
}

// CachingProxy performs outbound HTTP calls and serves repeated cacheable
// calls from the cache until their entry expires. Concurrent misses for the
// same key each perform the call.
type CachingProxy struct {
	cache   cache.CacheService
	client  *resty.Client
	ttl     time.Duration
	allowed map[int]bool
	now     func() time.Time
}

func NewCachingProxy(cacheService cache.CacheService) *CachingProxy {
	env := environment_variables.EnvironmentVariables
	statuses := make([]int, 0, len(env.CACHE_ALLOWED_STATUS))
	for _, s := range env.CACHE_ALLOWED_STATUS {
		code, err := strconv.Atoi(s)
		if err != nil {
			logger.GetLogger().Warnf("ignoring invalid CACHE_ALLOWED_STATUS entry %q", s)
			continue
		}
		statuses = append(statuses, code)
	}
	return NewCachingProxyWithOptions(cacheService, httpclients.NewClient("proxy"), env.CACHE_TTL, statuses)
}

func NewCachingProxyWithOptions(cacheService cache.CacheService, client *resty.Client, ttl time.Duration, allowedStatus []int) *CachingProxy {
	allowed := make(map[int]bool, len(allowedStatus))
	for _, code := range allowedStatus {
		allowed[code] = true
	}
	return &CachingProxy{
		cache:   cacheService,
		client:  client,
		ttl:     ttl,
		allowed: allowed,
		now:     time.Now,
	}
}

// Call returns the cached response for req when a live entry exists, and
// otherwise performs the call. volatileKeys are dropped from the body, at
// any depth, when computing the cache key; the outbound body is unchanged.
func (p *CachingProxy) Call(ctx context.Context, req Request, volatileKeys ...string) (*Response, error) {
	var payload []byte
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = raw
	}

	if !req.cacheable() {
		return p.do(ctx, req, payload)
	}

	key, err := cacheKey(req.Method, req.URL, payload, volatileKeys)
	if err != nil {
		return nil, err
	}
	if cached, ok := p.lookup(ctx, key); ok {
		return cached, nil
	}

	resp, err := p.do(ctx, req, payload)
	if err != nil {
		return nil, err
	}
	if p.allowed[resp.StatusCode] {
		p.store(ctx, key, resp)
	}
	return resp, nil
}

func (p *CachingProxy) lookup(ctx context.Context, key string) (*Response, bool) {
	raw, err := p.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.GetLogger().Warnf("proxy cache read failed, calling upstream: %v", err)
		}
		return nil, false
	}
	var entry Response
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.GetLogger().Warnf("dropping undecodable proxy cache entry %s: %v", key, err)
		_ = p.cache.Unlink(ctx, key)
		return nil, false
	}
	if p.ttl > 0 && p.now().Sub(entry.StoredAt) >= p.ttl {
		_ = p.cache.Unlink(ctx, key)
		return nil, false
	}
	entry.FromCache = true
	return &entry, true
}

func (p *CachingProxy) store(ctx context.Context, key string, resp *Response) {
	resp.StoredAt = p.now()
	raw, err := json.Marshal(resp)
	if err != nil {
		logger.GetLogger().Warnf("failed to encode proxy cache entry: %v", err)
		return
	}
	if err := p.cache.Set(ctx, key, string(raw), p.ttl); err != nil {
		logger.GetLogger().Warnf("failed to store proxy cache entry: %v", err)
	}
}

func (p *CachingProxy) do(ctx context.Context, req Request, payload []byte) (*Response, error) {
	r := p.client.R().SetContext(ctx)
	for k, v := range req.Header {
		r.SetHeader(k, v)
	}
	if payload != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(payload)
	}
	resp, err := r.Execute(strings.ToUpper(req.Method), req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUpstream, req.Method, req.URL, err)
	}
	logger.GetLogger().WithFields(logrus.Fields{
		"method":  req.Method,
		"url":     req.URL,
		"status":  resp.StatusCode(),
		"latency": resp.Duration().String(),
	}).Debug("proxy call")
	return &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Bytes(),
	}, nil
}

// cacheKey hashes the canonical JSON of (method, url, body minus volatile keys).
func cacheKey(method, url string, payload []byte, volatileKeys []string) (string, error) {
	var body any
	if payload != nil {
		dec := json.NewDecoder(bytes.NewReader(payload))
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return "", fmt.Errorf("decode request body: %w", err)
		}
		volatile := make(map[string]bool, len(volatileKeys))
		for _, k := range volatileKeys {
			volatile[k] = true
		}
		body = stripVolatile(body, volatile)
	}
	canonical, err := json.Marshal([]any{strings.ToUpper(method), url, body})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return fmt.Sprintf(cache.ProxyResponseKeyPattern, hex.EncodeToString(sum[:])), nil
}

func stripVolatile(v any, volatile map[string]bool) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if volatile[k] {
				continue
			}
			out[k] = stripVolatile(child, volatile)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = stripVolatile(child, volatile)
		}
		return out
	default:
		return v
	}
}
