// Package sqsqueue adapts an AWS SQS queue to smartpoll's PollFunc
// contract: Monitor requests up to batchMax messages, applying the
// configured VisibilityTimeout, and reports Empty when the queue has
// nothing to offer. Concurrent calls into a single Monitor's poll are
// serialized, so the underlying queue only ever sees one in-flight
// ReceiveMessage per Monitor.
//
// Monitor neither acknowledges nor deletes messages; that remains the
// handler's responsibility, same as the cloud queue interface smartpoll
// itself is agnostic to.
package sqsqueue
