package core

type (
	SMSMessage struct {
		To   []string // 10-digit numbers
		Body string
	}

	// SMSService is any service that can dispatch text messages.
	// Delivery is best-effort; failures are logged, never surfaced to the sender.
	SMSService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*SMSMessage)
	}
)

func (m *SMSMessage) HasRecipients() bool { return len(m.To) > 0 }
