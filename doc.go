// Package smartpoll turns a non-blocking, maybe-empty poll function into a
// blocking wait for the next payload, or a pub/sub-style notification loop
// that dispatches every payload to a handler. Between empty polls it sleeps
// for an adaptively growing, capped duration, so CPU and per-call cost stay
// bounded while latency to the first payload remains small.
//
// A Driver is single-use: it performs exactly one transition out of Idle,
// into either WaitForPayload's blocking wait or StartNotificationLoop's
// background loop, and finishes in Stopped. See Driver for details.
//
// See also [github.com/joeycumines/go-smartpoll/sqsqueue], which adapts an
// AWS SQS queue to the PollFunc contract used here.
package smartpoll
