package helpers

import (
	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/app/infrastructure/httpcache"
)

// WriteUpstream relays a proxied response unchanged. X-Cache tells whether
// it came from the response cache.
func WriteUpstream(reqCtx *gin.Context, resp *httpcache.Response) {
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	if resp.FromCache {
		reqCtx.Header("X-Cache", "HIT")
	} else {
		reqCtx.Header("X-Cache", "MISS")
	}
	reqCtx.Data(resp.StatusCode, contentType, resp.Body)
}
