package smssvc

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/trezcool/sayansi/core"
)

var (
	SentMessages = make([]core.SMSMessage, 0)
	mu           sync.Mutex
)

// consoleService writes text messages to the log instead of sending them.
// Used in development and tests.
type consoleService struct {
	senderID      string
	disableOutput bool
}

var _ core.SMSService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.SMSService {
	return &consoleService{senderID: conf.SMS.SenderID}
}

func (svc consoleService) SendMessages(messages ...*core.SMSMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.SMSMessage) {
	if !msg.HasRecipients() || msg.Body == "" {
		return
	}
	if !svc.disableOutput {
		log.Println(fmt.Sprintf(
			"SMS from %s\r\nTo: %s\r\n\r\n%s\r\n",
			svc.senderID, strings.Join(msg.To, ", "), msg.Body,
		))
	}
	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()
}

type consoleServiceMock struct {
	consoleService
}

// NewConsoleServiceMock sends synchronously and keeps quiet; sent messages are
// captured in SentMessages.
func NewConsoleServiceMock(conf *core.Config) core.SMSService {
	return &consoleServiceMock{
		consoleService: consoleService{senderID: conf.SMS.SenderID, disableOutput: true},
	}
}

func (svc *consoleServiceMock) SendMessages(messages ...*core.SMSMessage) {
	for _, msg := range messages {
		svc.sendMessage(msg)
	}
}

// ClearSentMessages resets the captured messages between tests.
func ClearSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}
