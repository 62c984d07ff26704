package busproto

import "encoding/json"

// Kind identifies the shape of a Message on the wire, standing in for
// the method-call / method-return / error / signal message types of a
// real D-Bus-style peer bus (spec.md §1, §6).
type Kind string

const (
	KindCall   Kind = "call"
	KindReply  Kind = "reply"
	KindError  Kind = "error"
	KindSignal Kind = "signal"
)

// Message is the single framed unit exchanged over a Peer connection.
// Encoded one per line as JSON (see codec.go).
type Message struct {
	Kind Kind `json:"kind"`

	// Serial uniquely identifies a Call within a connection; a Reply
	// or Error echoes it back via ReplyTo so the caller can match its
	// pending request.
	Serial uint64 `json:"serial"`
	// ReplyTo is set on Reply/Error messages to the Serial of the Call
	// being answered.
	ReplyTo uint64 `json:"reply_to,omitempty"`

	// Path is the object path the call/signal targets, e.g.
	// "/org/orchfleet/Orchestrator".
	Path string `json:"path,omitempty"`
	// Iface is the interface name, e.g. "org.orchfleet.Orchestrator".
	Iface string `json:"iface,omitempty"`
	// Member is the method or signal name, e.g. "IsolateAll".
	Member string `json:"member,omitempty"`

	// Body carries the call arguments, the reply value, or the signal
	// payload. Left as json.RawMessage so handlers decode it into
	// their own argument types.
	Body json.RawMessage `json:"body,omitempty"`

	// ErrorName is set on Kind == KindError; Peer always sends
	// "org.orchfleet.Error".
	ErrorName string `json:"error_name,omitempty"`
	// ErrorMessage is a human-readable error description.
	ErrorMessage string `json:"error_message,omitempty"`
}

func encodeBody(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// Decode unmarshals the message body into v.
func (m Message) Decode(v any) error {
	if len(m.Body) == 0 {
		return nil
	}
	return json.Unmarshal(m.Body, v)
}
