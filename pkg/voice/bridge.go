// Package voice bridges speech recognition and synthesis to the chat flow:
// it listens, auto-submits after a pause, and voices finished replies.
package voice

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"
)

// DefaultSilenceWindow is how long the bridge waits after the last speech
// before submitting the captured transcript.
const DefaultSilenceWindow = 1500 * time.Millisecond

// ErrAlreadyListening means Start was called while a capture is active.
var ErrAlreadyListening = errors.New("already listening")

// State is the bridge's current mode.
type State int

const (
	StateIdle State = iota
	StateListening
	StateSpeaking
)

// EventKind discriminates recognizer events.
type EventKind int

const (
	// EventPartial carries an interim hypothesis that replaces the
	// previous one.
	EventPartial EventKind = iota
	// EventFinal carries a settled segment that appends to the transcript.
	EventFinal
	// EventEnd means the recognizer stopped on its own; the bridge
	// restarts it while a capture is active.
	EventEnd
	// EventError carries a recognizer failure.
	EventError
)

// Event is one recognizer notification.
type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// Recognizer produces speech events. Start may be called again after the
// event channel closes or an EventEnd arrives.
type Recognizer interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop()
}

// Synthesizer voices text. Speak blocks until the utterance finishes or the
// context is cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// Config holds the bridge's collaborators.
type Config struct {
	Recognizer  Recognizer
	Synthesizer Synthesizer

	// SilenceWindow overrides DefaultSilenceWindow when positive.
	SilenceWindow time.Duration

	// OnSubmit receives the captured transcript exactly once per capture.
	OnSubmit func(text string)

	// OnStatus receives human-readable state notes, e.g. failure reasons.
	OnStatus func(message string)
}

// Bridge drives the capture lifecycle. All exported methods are safe for
// concurrent use.
type Bridge struct {
	cfg     Config
	silence time.Duration

	mu          sync.Mutex
	state       State
	cancel      context.CancelFunc
	done        chan struct{}
	speakCancel context.CancelFunc
	speakGen    uint64

	// transcript state, owned by the listen loop but reset under mu.
	final   string
	pending string
}

// NewBridge builds a bridge in the idle state.
func NewBridge(cfg Config) *Bridge {
	silence := cfg.SilenceWindow
	if silence <= 0 {
		silence = DefaultSilenceWindow
	}
	return &Bridge{cfg: cfg, silence: silence}
}

// State reports the current mode.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Transcript returns the text captured so far, interim hypothesis included.
func (b *Bridge) Transcript() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

func (b *Bridge) currentLocked() string {
	return strings.TrimSpace(strings.TrimSpace(b.final) + " " + b.pending)
}

// Start begins a capture. The transcript resets and the recognizer runs
// until silence submits, Stop is called, or an error occurs.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.state == StateListening {
		b.mu.Unlock()
		return ErrAlreadyListening
	}

	ctx, cancel := context.WithCancel(ctx)
	events, err := b.cfg.Recognizer.Start(ctx)
	if err != nil {
		cancel()
		b.mu.Unlock()
		return err
	}

	b.state = StateListening
	b.cancel = cancel
	b.done = make(chan struct{})
	b.final = ""
	b.pending = ""
	done := b.done
	b.mu.Unlock()

	go b.listen(ctx, events, done)
	return nil
}

// Stop abandons the capture without submitting.
func (b *Bridge) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	done := b.done
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.cfg.Recognizer.Stop()
	if done != nil {
		<-done
	}
}

func (b *Bridge) listen(ctx context.Context, events <-chan Event, done chan struct{}) {
	defer close(done)
	defer b.toIdle()

	// The silence timer arms on the first speech event.
	timer := time.NewTimer(b.silence)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	resetTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(b.silence)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-timer.C:
			if ctx.Err() != nil {
				return
			}
			b.submit()
			return

		case ev, ok := <-events:
			if !ok {
				// Channel closed behaves like an end event.
				ev = Event{Kind: EventEnd}
			}

			switch ev.Kind {
			case EventPartial:
				b.mu.Lock()
				b.pending = ev.Text
				b.mu.Unlock()
				resetTimer()

			case EventFinal:
				b.mu.Lock()
				if ev.Text != "" {
					b.final = strings.TrimSpace(b.final + " " + ev.Text)
				}
				b.pending = ""
				b.mu.Unlock()
				resetTimer()

			case EventEnd:
				// Recognizers stop on their own mid-capture; restart
				// and keep the transcript.
				next, err := b.cfg.Recognizer.Start(ctx)
				if err != nil {
					if ctx.Err() == nil {
						// Hand over whatever was captured rather
						// than dropping it.
						b.status("voice capture ended: " + err.Error())
						b.submit()
					}
					return
				}
				events = next

			case EventError:
				if ev.Err != nil {
					log.Printf("[voice] recognizer error: %v", ev.Err)
					b.status("voice capture failed: " + ev.Err.Error())
				}
				return
			}
		}
	}
}

// submit hands the transcript off exactly once; an empty capture submits
// nothing.
func (b *Bridge) submit() {
	b.mu.Lock()
	text := b.currentLocked()
	b.final = ""
	b.pending = ""
	b.mu.Unlock()

	b.cfg.Recognizer.Stop()

	if text == "" || b.cfg.OnSubmit == nil {
		return
	}
	b.cfg.OnSubmit(text)
}

func (b *Bridge) toIdle() {
	b.mu.Lock()
	b.state = StateIdle
	b.cancel = nil
	b.mu.Unlock()
}

func (b *Bridge) status(message string) {
	if b.cfg.OnStatus != nil {
		b.cfg.OnStatus(message)
	}
}

// Speak voices text, cancelling any utterance already in progress. Listening
// stops first so the microphone never hears the reply.
func (b *Bridge) Speak(ctx context.Context, text string) error {
	if b.cfg.Synthesizer == nil {
		return nil
	}

	b.mu.Lock()
	listening := b.state == StateListening
	if b.speakCancel != nil {
		b.speakCancel()
	}
	b.mu.Unlock()

	if listening {
		b.Stop()
	}

	ctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	b.speakGen++
	gen := b.speakGen
	b.speakCancel = cancel
	b.state = StateSpeaking
	b.mu.Unlock()

	err := b.cfg.Synthesizer.Speak(ctx, text)
	cancel()

	b.mu.Lock()
	if b.speakGen == gen {
		b.speakCancel = nil
		if b.state == StateSpeaking {
			b.state = StateIdle
		}
	}
	b.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.status("speech synthesis failed: " + err.Error())
		return err
	}
	return nil
}
