package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const dedupWindow = 5 * time.Minute

// Controller throttles the event stream: critical events pass through
// immediately (deduplicated within a short window), everything else is
// batched into hourly and daily digests.
type Controller struct {
	mu   sync.Mutex
	sink Notifier

	important []Event
	info      []Event
	recent    map[string]time.Time // message -> last sent, for dedup

	lastHourly time.Time
	lastDaily  time.Time
	now        func() time.Time
}

func NewController(sink Notifier) *Controller {
	return &Controller{
		sink:   sink,
		recent: make(map[string]time.Time),
		now:    time.Now,
	}
}

// SetClock overrides the digest clock. Used by tests.
func (c *Controller) SetClock(now func() time.Time) { c.now = now }

// Notify routes one event by level.
func (c *Controller) Notify(e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.Time.IsZero() {
		e.Time = c.now()
	}

	switch e.Level {
	case Critical:
		key := string(e.Kind) + "|" + e.Symbol + "|" + e.Message
		if sent, ok := c.recent[key]; ok && e.Time.Sub(sent) < dedupWindow {
			return nil
		}
		c.recent[key] = e.Time
		return c.sink.Notify(e)
	case Important:
		c.important = append(c.important, e)
	default:
		c.info = append(c.info, e)
	}
	return nil
}

// FlushDigests emits the hourly and daily digests when their interval has
// elapsed. Call once per tick.
func (c *Controller) FlushDigests() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()

	if now.Sub(c.lastHourly) >= time.Hour && len(c.important) > 0 {
		if err := c.flushLocked("hourly digest", c.important, now); err != nil {
			return err
		}
		c.important = nil
		c.lastHourly = now
	}

	if now.Sub(c.lastDaily) >= 24*time.Hour && len(c.info) > 0 {
		if err := c.flushLocked("daily digest", c.info, now); err != nil {
			return err
		}
		c.info = nil
		c.lastDaily = now
	}
	return nil
}

// FlushAll force-emits everything queued, used on shutdown.
func (c *Controller) FlushAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := append(append([]Event{}, c.important...), c.info...)
	if len(pending) == 0 {
		return nil
	}
	c.important, c.info = nil, nil
	return c.flushLocked("final digest", pending, c.now())
}

func (c *Controller) flushLocked(title string, events []Event, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d events)\n", title, len(events))
	for _, e := range events {
		fmt.Fprintf(&b, "  [%s] %s %s\n", e.Time.Format("15:04:05"), e.Kind, e.Message)
	}

	return c.sink.Notify(Event{
		Kind:    Digest,
		Level:   Critical, // digests always deliver
		Time:    now,
		Message: b.String(),
	})
}
