package plan

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/claude/weeklyplan/internal/models"
	"github.com/claude/weeklyplan/internal/planapi"
)

// Fixed assistant texts.
const (
	Greeting = "I have your current plan loaded. How would you like to adapt it? " +
		"For example, you can say 'I don't have a barbell today' or 'make tomorrow's workout shorter'."
	AdaptFailedText = "The AI could not modify the plan. Please try a different request."
	ClarifyFallback = "I'm not sure how to handle that. Can you be more specific?"
	ErrorFallback   = "Sorry, something went wrong."
	UnreachableText = "Could not reach the plan service. Please try again."
)

var (
	// ErrBlankInput is returned when Send is called with nothing to send.
	ErrBlankInput = errors.New("plan: blank chat input")
	// ErrChatClosed is returned by Submit once the modal has been closed.
	ErrChatClosed = errors.New("plan: chat closed")
)

// PlanAdapter sends an adaptation request to the plan service.
type PlanAdapter interface {
	AdaptPlan(ctx context.Context, plan *models.Program, request string) (*models.AdaptResponse, error)
}

// ChatState is the adaptation chat's request state.
type ChatState int

const (
	ChatIdle ChatState = iota
	ChatSending
)

func (s ChatState) String() string {
	if s == ChatSending {
		return "sending"
	}
	return "idle"
}

// Outcome is how a Send exchange ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeReplaced: the service returned a plan and the replacement
	// callback was invoked.
	OutcomeReplaced
	// OutcomeClarified: the service replied with a message instead of a plan.
	OutcomeClarified
	// OutcomeFailed: non-OK status, transport or decode failure.
	OutcomeFailed
	// OutcomeIgnored: the chat was closed while the request was in flight.
	OutcomeIgnored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReplaced:
		return "replaced"
	case OutcomeClarified:
		return "clarified"
	case OutcomeFailed:
		return "failed"
	case OutcomeIgnored:
		return "ignored"
	default:
		return "none"
	}
}

// Chat is one adaptation modal session: an append-only transcript and at
// most one request in flight.
type Chat struct {
	adapter       PlanAdapter
	onPlanUpdated func(*models.Program)

	mu       sync.Mutex
	messages []models.Message
	state    ChatState
	closed   bool
}

// NewChat opens a chat seeded with the greeting. onPlanUpdated receives a
// replacement plan; the caller is expected to close the chat and adopt it.
func NewChat(adapter PlanAdapter, onPlanUpdated func(*models.Program)) *Chat {
	return &Chat{
		adapter:       adapter,
		onPlanUpdated: onPlanUpdated,
		messages:      []models.Message{{Role: models.RoleAssistant, Text: Greeting}},
	}
}

// Send appends the user's message, posts it with the current plan, and
// applies the reply. Blank input or a request already in flight is a no-op.
func (c *Chat) Send(ctx context.Context, current *models.Program, input string) (Outcome, error) {
	if err := c.begin(input); err != nil {
		if errors.Is(err, ErrChatClosed) {
			return OutcomeIgnored, nil
		}
		return OutcomeNone, err
	}
	outcome, _ := c.exchange(ctx, current, input)
	return outcome, nil
}

// Submit is Send without waiting for the reply. The user's message is in the
// transcript and the chat is busy when Submit returns; the exchange then runs
// on its own goroutine and done receives the outcome along with the service
// error of a failed exchange. done is not called when Submit returns an error.
func (c *Chat) Submit(ctx context.Context, current *models.Program, input string, done func(Outcome, error)) error {
	if err := c.begin(input); err != nil {
		return err
	}
	go func() {
		outcome, err := c.exchange(ctx, current, input)
		if done != nil {
			done(outcome, err)
		}
	}()
	return nil
}

// begin validates input and moves the chat to the sending state.
func (c *Chat) begin(input string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return ErrChatClosed
	case strings.TrimSpace(input) == "":
		return ErrBlankInput
	case c.state == ChatSending:
		return ErrBusy
	}
	c.messages = append(c.messages, models.Message{Role: models.RoleUser, Text: input})
	c.state = ChatSending
	return nil
}

func (c *Chat) exchange(ctx context.Context, current *models.Program, input string) (Outcome, error) {
	resp, err := c.adapter.AdaptPlan(ctx, current, input)

	c.mu.Lock()
	c.state = ChatIdle
	if c.closed {
		c.mu.Unlock()
		return OutcomeIgnored, nil
	}

	switch {
	case err != nil:
		c.appendAssistant(failureText(err))
		c.mu.Unlock()
		return OutcomeFailed, err
	case resp != nil && resp.UpdatedPlan != nil:
		c.mu.Unlock()
		// The callback may close this chat, so it runs unlocked.
		if c.onPlanUpdated != nil {
			c.onPlanUpdated(resp.UpdatedPlan)
		}
		return OutcomeReplaced, nil
	default:
		var text string
		if resp != nil {
			text = resp.Message
		}
		if strings.TrimSpace(text) == "" {
			text = ClarifyFallback
		}
		c.appendAssistant(text)
		c.mu.Unlock()
		return OutcomeClarified, nil
	}
}

// Close ends the modal session. The transcript is discarded and the result
// of any request still in flight is ignored.
func (c *Chat) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.messages = nil
}

// Messages returns a copy of the transcript in append order.
func (c *Chat) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// State returns the current request state.
func (c *Chat) State() ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a request is in flight.
func (c *Chat) Busy() bool {
	return c.State() == ChatSending
}

// Closed reports whether Close has been called.
func (c *Chat) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Chat) appendAssistant(text string) {
	c.messages = append(c.messages, models.Message{Role: models.RoleAssistant, Text: text})
}

// failureText maps a failed exchange to the assistant bubble text. The
// underlying error can name internal hosts, so it stays in the logs.
func failureText(err error) string {
	if planapi.IsStatus(err) {
		return AdaptFailedText
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return UnreachableText
	}
	return ErrorFallback
}
