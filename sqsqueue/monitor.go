package sqsqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"

	"github.com/joeycumines/go-smartpoll"
)

// batchMax is AWS SQS's hard cap on ReceiveMessage's MaxNumberOfMessages.
// Requesting more is a validation error at the API, not a soft limit.
const batchMax = 10

// maxVisibilityTimeout is SQS's ceiling on VisibilityTimeout. Note this is
// 12 hours, not the 7-day message retention period it's sometimes confused
// with.
const maxVisibilityTimeout = 12 * time.Hour

// Config configures a Monitor.
type Config struct {
	// QueueURL identifies the SQS queue to poll. Required.
	QueueURL string

	// VisibilityTimeout is applied to every ReceiveMessage call. Required:
	// must be a whole number of seconds in [1s, 12h].
	VisibilityTimeout time.Duration

	// MaxIdleDelay upper-bounds the sleep between empty receives. Required:
	// must be > 0. Passed straight through to smartpoll.Config.
	MaxIdleDelay time.Duration

	// BatchSize caps how many messages a single ReceiveMessage call may
	// return. Defaults to batchMax (10) if zero; must not exceed it.
	BatchSize int32

	// Backoff overrides the default back-off curve. Defaults to
	// smartpoll.DefaultBackoff, if nil.
	Backoff smartpoll.BackoffPolicy

	// Invoker overrides how ReceiveMessage is invoked. Defaults to
	// DefaultInvoker, if nil.
	Invoker Invoker

	// Logger receives structured events for each receive attempt. Defaults
	// to a no-op logger, if nil.
	Logger *zerolog.Logger

	// CancelOnExit, if true, registers the Monitor for cancellation when
	// the process receives SIGINT or SIGTERM.
	CancelOnExit bool
}

// Monitor adapts an SQS queue to smartpoll's PollFunc contract, serializing
// concurrent callers onto a single in-flight ReceiveMessage.
type Monitor struct {
	client QueueClient
	cfg    Config
	logger *zerolog.Logger

	pollMu sync.Mutex
	driver *smartpoll.Driver[[]types.Message]
}

// NewMonitor constructs a Monitor over client, configured by cfg. It panics
// on invalid configuration, the same way smartpoll.New panics on an invalid
// smartpoll.Config: these are construction-time errors, not conditions a
// caller should need to check for at runtime.
func NewMonitor(client QueueClient, cfg Config) *Monitor {
	if client == nil {
		panic("sqsqueue: nil QueueClient")
	}
	if cfg.QueueURL == "" {
		panic("sqsqueue: empty QueueURL")
	}
	if cfg.VisibilityTimeout < time.Second || cfg.VisibilityTimeout%time.Second != 0 || cfg.VisibilityTimeout > maxVisibilityTimeout {
		panic(fmt.Sprintf("sqsqueue: VisibilityTimeout must be a whole number of seconds in [1s, %s]", maxVisibilityTimeout))
	}
	if cfg.MaxIdleDelay <= 0 {
		panic("sqsqueue: MaxIdleDelay must be > 0")
	}
	if cfg.BatchSize < 0 || cfg.BatchSize > batchMax {
		panic(fmt.Sprintf("sqsqueue: BatchSize must be in [0, %d]", batchMax))
	}

	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = batchMax
	}
	cfg.BatchSize = batchSize

	if cfg.Invoker == nil {
		cfg.Invoker = DefaultInvoker
	}

	logger := cfg.Logger
	if logger == nil {
		logger = &noopLogger
	}

	m := &Monitor{
		client: client,
		cfg:    cfg,
		logger: logger,
	}

	m.driver = smartpoll.New(m.poll, smartpoll.Config{
		MaxIdleDelay: cfg.MaxIdleDelay,
		Backoff:      cfg.Backoff,
		CancelOnExit: cfg.CancelOnExit,
	})

	return m
}

// poll issues a single ReceiveMessage call, serialized against any
// concurrent poll on the same Monitor. It satisfies smartpoll.PollFunc.
func (m *Monitor) poll(ctx context.Context) (smartpoll.PollResult[[]types.Message], error) {
	m.pollMu.Lock()
	defer m.pollMu.Unlock()

	out, err := m.cfg.Invoker.Invoke(ctx, m.client, &sqs.ReceiveMessageInput{
		QueueUrl:            &m.cfg.QueueURL,
		MaxNumberOfMessages: m.cfg.BatchSize,
		VisibilityTimeout:   int32(m.cfg.VisibilityTimeout / time.Second),
	})
	if err != nil {
		m.logger.Error().Err(err).Str("queue_url", m.cfg.QueueURL).Msg("sqsqueue: receive failed")
		return smartpoll.PollResult[[]types.Message]{}, err
	}

	if len(out.Messages) == 0 {
		m.logger.Debug().Str("queue_url", m.cfg.QueueURL).Msg("sqsqueue: empty receive")
		return smartpoll.Empty[[]types.Message](), nil
	}

	m.logger.Debug().Str("queue_url", m.cfg.QueueURL).Int("count", len(out.Messages)).Msg("sqsqueue: received messages")
	return smartpoll.Present(out.Messages), nil
}

// WaitForPayload blocks until at least one message is available, or the
// Monitor is canceled. See smartpoll.Driver.WaitForPayload.
func (m *Monitor) WaitForPayload(ctx context.Context) ([]types.Message, bool, error) {
	return m.driver.WaitForPayload(ctx)
}

// StartNotificationLoop dispatches every received batch to handler, in
// arrival order, until Stop is called. See smartpoll.Driver.StartNotificationLoop.
func (m *Monitor) StartNotificationLoop(ctx context.Context, handler func([]types.Message) error) error {
	return m.driver.StartNotificationLoop(ctx, handler)
}

// Stop signals cancellation, waits for any background worker to exit, and
// returns the first captured failure, if any.
func (m *Monitor) Stop() error {
	return m.driver.Stop()
}

// Mode reports the Monitor's current lifecycle state.
func (m *Monitor) Mode() smartpoll.Mode {
	return m.driver.Mode()
}

// EmptyPollCount is the lifetime count of empty receives.
func (m *Monitor) EmptyPollCount() int64 {
	return m.driver.EmptyPollCount()
}

// PayloadPollCount is the lifetime count of receives that returned at
// least one message.
func (m *Monitor) PayloadPollCount() int64 {
	return m.driver.PayloadPollCount()
}

// WaitForMessages is a convenience wrapper: it constructs a Monitor over
// client and blocks until a batch of messages is available or ctx is
// canceled.
func WaitForMessages(ctx context.Context, client QueueClient, cfg Config) ([]types.Message, bool, error) {
	return NewMonitor(client, cfg).WaitForPayload(ctx)
}

// RegisterMessageHandler is a convenience wrapper: it constructs a Monitor
// over client and starts a notification loop dispatching every batch to
// handler. The returned Monitor is already running; callers own calling
// Stop.
func RegisterMessageHandler(ctx context.Context, client QueueClient, cfg Config, handler func([]types.Message) error) (*Monitor, error) {
	m := NewMonitor(client, cfg)
	if err := m.StartNotificationLoop(ctx, handler); err != nil {
		return nil, err
	}
	return m, nil
}
