package smssvc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/trezcool/sayansi/core"
)

// gatewayService dispatches text messages through a bulk-SMS HTTP gateway.
type gatewayService struct {
	url      string
	apiKey   string
	senderID string
	client   *http.Client
	logger   core.Logger
}

var _ core.SMSService = (*gatewayService)(nil)

func NewGatewayService(conf *core.Config, logger core.Logger) core.SMSService {
	return &gatewayService{
		url:      conf.SMS.GatewayURL,
		apiKey:   conf.SMS.APIKey,
		senderID: conf.SMS.SenderID,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

func (svc gatewayService) SendMessages(messages ...*core.SMSMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if msg.HasRecipients() && msg.Body != "" {
				svc.send(*msg)
			}
		}()
	}
}

type gatewayPayload struct {
	SenderID string   `json:"sender_id"`
	To       []string `json:"to"`
	Body     string   `json:"body"`
}

func (svc gatewayService) send(msg core.SMSMessage) {
	body, err := json.Marshal(gatewayPayload{
		SenderID: svc.senderID,
		To:       msg.To,
		Body:     msg.Body,
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("encoding SMS payload: %v", err), err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, svc.url, bytes.NewReader(body))
	if err != nil {
		svc.logger.Error(fmt.Sprintf("preparing SMS request: %v", err), err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+svc.apiKey)

	res, err := svc.client.Do(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending SMS: %v", err), err)
		return
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("sending SMS - status: %d", res.StatusCode))
	}
}
