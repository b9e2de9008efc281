package events

const (
	ContactMessageSubmitted = "ContactMessageSubmitted"
	ContactMessageRead      = "ContactMessageRead"
	ContactMessageResolved  = "ContactMessageResolved"
)

type ContactMessageSubmittedPayload struct {
	Name    string `msgpack:"name"`
	Email   string `msgpack:"email"`
	Subject string `msgpack:"subject"`
	Body    string `msgpack:"body"`
}

type ContactMessageReadPayload struct{}
type ContactMessageResolvedPayload struct{}
