package paymentprovider

import (
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
)

// SignatureHeader содержит подпись вебхука.
const SignatureHeader = "Stripe-Signature"

// ParseEvent проверяет подпись и разбирает событие вебхука. Подпись старше
// tolerance отклоняется; tolerance <= 0 отключает проверку времени.
func ParseEvent(payload []byte, header, secret string, tolerance time.Duration) (*Event, error) {
	const op = "paymentprovider.ParseEvent"

	ev, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreTolerance:          tolerance <= 0,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	event := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data != nil {
		event.Data.Object = ev.Data.Raw
	}
	return event, nil
}
