// Package repl runs the line-oriented chat loop: read a line, exchange it
// with the model, print the reply, repeat.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/gemchat"
	"go.uber.org/zap"
)

const (
	welcome  = "Welcome to the Gemini Chatbot!"
	prompt   = "You: "
	goodbye  = "Goodbye!"
	botLabel = "Bot: "
	apology  = "Sorry, I couldn't get a response."
)

// Renderer formats a reply for display. goldmark.Renderer satisfies it.
type Renderer interface {
	Render(source string, width int) string
}

// REPL is a chat loop bound to one session and one pair of streams.
type REPL struct {
	session   *gemchat.Session
	in        io.Reader
	out       io.Writer
	log       *zap.Logger
	renderer  Renderer
	width     int
	timeout   time.Duration
	sessionID string
}

// Option configures a REPL.
type Option func(*REPL)

// WithLogger sets the logger for exchange failures. Default is a no-op.
func WithLogger(log *zap.Logger) Option {
	return func(r *REPL) { r.log = log }
}

// WithRenderer renders each reply (typically as markdown) at width.
func WithRenderer(renderer Renderer, width int) Option {
	return func(r *REPL) {
		r.renderer = renderer
		r.width = width
	}
}

// WithTimeout bounds each exchange. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(r *REPL) { r.timeout = d }
}

// WithSessionID tags every log entry with id.
func WithSessionID(id string) Option {
	return func(r *REPL) { r.sessionID = id }
}

// New creates a REPL reading lines from in and writing the conversation to out.
func New(session *gemchat.Session, in io.Reader, out io.Writer, opts ...Option) *REPL {
	r := &REPL{
		session: session,
		in:      in,
		out:     out,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.sessionID != "" {
		r.log = r.log.With(zap.String("session", r.sessionID))
	}
	return r
}

// Run loops until an exit command, end of input, or ctx is cancelled, and
// returns the transcript accumulated from the starting one. A cancelled
// context is reported as ctx.Err(); the other two endings return nil.
func (r *REPL) Run(ctx context.Context, transcript gemchat.Transcript) (gemchat.Transcript, error) {
	// Cancelled on return so the reader, which may hold a line read ahead,
	// stops once Run is done with it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, readErr := r.readLines(ctx)

	r.println(welcome)
	for {
		r.print(prompt)

		var line string
		select {
		case <-ctx.Done():
			r.println("")
			return transcript, ctx.Err()
		case l, ok := <-lines:
			if !ok {
				r.println("")
				if err := <-readErr; err != nil {
					return transcript, fmt.Errorf("read input: %w", err)
				}
				return transcript, nil
			}
			line = l
		}

		if gemchat.IsExitCommand(line) {
			r.println(goodbye)
			return transcript, nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		next, reply, err := r.exchange(ctx, transcript, line)
		if err != nil {
			if ctx.Err() != nil {
				r.println("")
				return transcript, ctx.Err()
			}
			r.logFailure(err, len(transcript))
			r.println(botLabel + apology)
			continue
		}
		transcript = next
		r.log.Debug("exchange complete", zap.Int("turns", len(transcript)))
		r.println(botLabel + r.format(reply))
	}
}

func (r *REPL) exchange(ctx context.Context, transcript gemchat.Transcript, line string) (gemchat.Transcript, string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.session.Advance(ctx, transcript, line)
}

// readLines scans r.in on its own goroutine so that a blocked read does
// not prevent Run from observing cancellation. The lines channel is
// unbuffered; the scanner reads at most one line ahead.
func (r *REPL) readLines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func (r *REPL) format(reply string) string {
	reply = gemchat.SanitizeReply(reply)
	if r.renderer == nil {
		return reply
	}
	return strings.TrimRight(r.renderer.Render(reply, r.width), "\n")
}

func (r *REPL) logFailure(err error, turns int) {
	r.log.Error("exchange failed",
		zap.String("kind", failureKind(err)),
		zap.Int("turns", turns),
		zap.String("error", gemchat.SanitizeReply(err.Error())),
	)
}

// failureKind classifies an exchange error for logging.
func failureKind(err error) string {
	switch {
	case errors.Is(err, gemchat.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, gemchat.ErrTransport):
		return "transport"
	case errors.Is(err, gemchat.ErrValidation):
		return "validation"
	default:
		return "unknown"
	}
}

func (r *REPL) print(s string) {
	fmt.Fprint(r.out, s)
}

func (r *REPL) println(s string) {
	fmt.Fprintln(r.out, s)
}
