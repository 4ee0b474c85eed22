// Sends run outcomes to a lambda-alertmanager instance as alerts
package alertmanagerclient

import (
	"context"
	"time"

	"github.com/function61/gokit/ezhttp"
	"github.com/function61/lambda-queuealarms/pkg/qaexec"
)

// the ingest API's alert format
type Alert struct {
	Key       string    `json:"alert_key"`
	Subject   string    `json:"subject"` // same type of error should always have same subject
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

type Client struct {
	baseUrl string
	now     func() time.Time
}

var _ qaexec.Notifier = (*Client)(nil)

func New(baseUrl string) *Client {
	return &Client{baseUrl, time.Now}
}

func (c *Client) Alert(ctx context.Context, alert Alert) error {
	_, err := ezhttp.Post(ctx, c.baseUrl+"/alerts/ingest", ezhttp.SendJson(&alert))
	return err
}

// every ingested alert fires, so wrap in qaexec.FailuresOnly unless you want clean runs paged
func (c *Client) Notify(ctx context.Context, report qaexec.Report) error {
	return c.Alert(ctx, Alert{
		Subject:   report.Subject,
		Details:   report.Body,
		Timestamp: c.now(),
	})
}
