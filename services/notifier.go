package services

const (
	EventFollow  = "follow"
	EventLike    = "like"
	EventComment = "comment"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Notifier delivers activity events to a single user. Delivery is best effort.
type Notifier interface {
	NotifyUser(userID string, event Event)
}

type nopNotifier struct{}

func (nopNotifier) NotifyUser(string, Event) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
