package chat

import "strings"

// FrameKind discriminates the stream frame variants.
type FrameKind int

const (
	FrameToken FrameKind = iota
	FrameDone
	FrameError
)

const (
	doneSentinel  = "[DONE]"
	errorSentinel = "[ERROR]"
)

// Frame is one unit of a streamed response. The wire format keeps the string
// sentinels for client compatibility; everything past the transport boundary
// works with the decoded variant.
type Frame struct {
	Kind FrameKind
	Text string
}

// TokenFrame wraps a text fragment.
func TokenFrame(text string) Frame {
	return Frame{Kind: FrameToken, Text: text}
}

// DoneFrame signals normal completion.
func DoneFrame() Frame {
	return Frame{Kind: FrameDone}
}

// ErrorFrame signals an upstream failure with a human-readable message.
func ErrorFrame(message string) Frame {
	return Frame{Kind: FrameError, Text: message}
}

// Payload renders the frame as its wire payload string.
func (f Frame) Payload() string {
	switch f.Kind {
	case FrameDone:
		return doneSentinel
	case FrameError:
		return errorSentinel + " " + f.Text
	default:
		return f.Text
	}
}

// ParseFrame decodes a wire payload into a Frame. A fragment that merely
// starts with "[" but is not a sentinel stays a token.
func ParseFrame(payload string) Frame {
	if payload == doneSentinel {
		return DoneFrame()
	}
	if strings.HasPrefix(payload, errorSentinel) {
		msg := strings.TrimPrefix(payload, errorSentinel)
		return ErrorFrame(strings.TrimPrefix(msg, " "))
	}
	return TokenFrame(payload)
}
