package sqsqueue

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// QueueClient is the subset of *sqs.Client that Monitor depends on. It is
// satisfied by *sqs.Client itself; tests substitute a fake.
type QueueClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
}

// NewDefaultQueueClient loads the standard AWS config chain (environment,
// shared config/credentials files, EC2/ECS role, ...) and returns an
// *sqs.Client built from it, ready to pass to NewMonitor, WaitForMessages,
// or RegisterMessageHandler. Callers needing non-default credentials or
// region resolution should construct their own *sqs.Client instead.
func NewDefaultQueueClient(ctx context.Context) (*sqs.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqsqueue: loading default AWS config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

// Invoker is a proxy boundary between Monitor and the underlying QueueClient:
// it performs the ReceiveMessage call, free to add retry, tracing, or rate
// limiting around it. DefaultInvoker calls straight through.
type Invoker interface {
	Invoke(ctx context.Context, client QueueClient, params *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
}

// InvokerFunc adapts a plain function to Invoker.
type InvokerFunc func(ctx context.Context, client QueueClient, params *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)

func (f InvokerFunc) Invoke(ctx context.Context, client QueueClient, params *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return f(ctx, client, params)
}

// DefaultInvoker calls client.ReceiveMessage directly, with no added behavior.
var DefaultInvoker Invoker = InvokerFunc(func(ctx context.Context, client QueueClient, params *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return client.ReceiveMessage(ctx, params)
})
