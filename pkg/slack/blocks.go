// Package slack composes and delivers Block Kit messages via chat.postMessage.
package slack

// Block is one element of a structured message. The concrete variants are
// Header, Divider, Section, and Context; translation to the Block Kit wire
// format happens in one place, the client's payload serializer.
type Block interface {
	wire() map[string]any
}

// Header is a plain-text header block.
type Header struct {
	Text string
}

func (h Header) wire() map[string]any {
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type":  "plain_text",
			"text":  h.Text,
			"emoji": true,
		},
	}
}

// Divider is a horizontal rule between blocks.
type Divider struct{}

func (Divider) wire() map[string]any {
	return map[string]any{"type": "divider"}
}

// Section is a markdown section block.
type Section struct {
	Text string
}

func (s Section) wire() map[string]any {
	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": s.Text,
		},
	}
}

// Context is a muted markdown context block, used for footers.
type Context struct {
	Text string
}

func (c Context) wire() map[string]any {
	return map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{
				"type": "mrkdwn",
				"text": c.Text,
			},
		},
	}
}

// Message is a composed notification: either a structured block sequence or a
// plain text fallback.
type Message struct {
	Text   string
	Blocks []Block
}

// Plain returns a plain text message.
func Plain(text string) Message {
	return Message{Text: text}
}

// Structured returns a block message.
func Structured(blocks ...Block) Message {
	return Message{Blocks: blocks}
}

// IsPlain reports whether the message is a plain text fallback.
func (m Message) IsPlain() bool {
	return len(m.Blocks) == 0
}

// payload serializes a message addressed to a channel into the
// chat.postMessage wire format.
func payload(channel string, m Message) map[string]any {
	if m.IsPlain() {
		return map[string]any{
			"channel": channel,
			"text":    m.Text,
		}
	}

	blocks := make([]map[string]any, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		blocks = append(blocks, b.wire())
	}
	return map[string]any{
		"channel": channel,
		"blocks":  blocks,
	}
}
