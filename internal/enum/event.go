package enum

type EmailEventType string

const (
	EmailEventSent         EmailEventType = "sent"
	EmailEventDelivered    EmailEventType = "delivered"
	EmailEventBounced      EmailEventType = "bounced"
	EmailEventOpened       EmailEventType = "opened"
	EmailEventClicked      EmailEventType = "clicked"
	EmailEventComplained   EmailEventType = "complained"
	EmailEventUnsubscribed EmailEventType = "unsubscribed"
)

func (t EmailEventType) String() string {
	return string(t)
}
