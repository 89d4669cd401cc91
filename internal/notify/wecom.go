// Package notify delivers report text to a WeCom group robot webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-notify/internal/common"
	"github.com/i474232898/weather-notify/internal/retry"
)

type textMessage struct {
	MsgType string `json:"msgtype"`
	Text    struct {
		Content string `json:"content"`
	} `json:"text"`
}

// webhookResult carries the robot's verdict. ErrCode is nil when the body
// has no errcode field, which counts as a rejection.
type webhookResult struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// errRejected marks a webhook answer whose errcode is missing or non-zero.
// It is final and is not retried.
var errRejected = errors.New("webhook rejected message")

// WeCom posts text messages to a WeCom webhook.
type WeCom struct {
	url     string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	policy  retry.Policy
}

// NewWeCom creates a WeCom notifier. Transport faults are retried with policy.
func NewWeCom(client *http.Client, url string, policy retry.Policy) *WeCom {
	return &WeCom{
		url:     url,
		client:  client,
		circuit: common.NewCircuitBreaker("wecom"),
		policy:  policy,
	}
}

// Send posts message and reports whether the webhook accepted it.
func (w *WeCom) Send(ctx context.Context, message string) bool {
	var rejected bool
	attempt := func(ctx context.Context) (bool, error) {
		ok, err := w.post(ctx, message)
		if errors.Is(err, errRejected) {
			rejected = true
			return false, nil
		}
		return ok, err
	}

	ok, err := retry.Wrap("send_wechat_message", w.policy, attempt)(ctx)
	if err != nil {
		log.Printf("ERROR: message not sent: %v", err)
		return false
	}
	if ok {
		log.Printf("INFO: message sent")
	} else if !rejected {
		log.Printf("ERROR: message not sent, webhook unreachable")
	}
	return ok
}

func (w *WeCom) post(ctx context.Context, message string) (bool, error) {
	var payload textMessage
	payload.MsgType = "text"
	payload.Text.Content = message

	body, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := common.DoRequest(ctx, w.client, w.circuit, buildRequest)
	if err != nil {
		return false, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	var result webhookResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode webhook response: %w", err)
	}
	if result.ErrCode == nil {
		log.Printf("ERROR: message rejected: no errcode in response, errmsg=%s", result.ErrMsg)
		return false, errRejected
	}
	if *result.ErrCode != 0 {
		log.Printf("ERROR: message rejected: errcode=%d errmsg=%s", *result.ErrCode, result.ErrMsg)
		return false, errRejected
	}
	return true, nil
}
