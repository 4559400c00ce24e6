package httpclients

import (
	"time"

	"github.com/sirupsen/logrus"
	"resty.dev/v3"
	"square.ai/skill-gateway/app/utils/logger"
)

const defaultTimeout = 60 * time.Second

// NewClient returns a resty client that logs failures and non-2xx responses
// under the given client name.
func NewClient(name string) *resty.Client {
	client := resty.New().
		SetTimeout(defaultTimeout).
		SetHeader("User-Agent", "skill-gateway/"+name)

	client.OnError(func(req *resty.Request, err error) {
		logger.GetLogger().WithFields(logrus.Fields{
			"client": name,
			"method": req.Method,
			"url":    req.URL,
		}).Errorf("outbound request failed: %v", err)
	})
	client.OnSuccess(func(c *resty.Client, resp *resty.Response) {
		if resp.IsSuccess() {
			return
		}
		logger.GetLogger().WithFields(logrus.Fields{
			"client":  name,
			"method":  resp.Request.Method,
			"url":     resp.Request.URL,
			"status":  resp.StatusCode(),
			"latency": resp.Duration().String(),
		}).Warn("outbound request returned non-2xx status")
	})
	return client
}
