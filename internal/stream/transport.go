package stream

import (
	"context"
	"errors"
)

// Transport delivers one frame's records as a single message. Delivery is
// best effort: implementations do not retry and do not wait for the
// consumer.
type Transport interface {
	Send(ctx context.Context, records []Record) error
	Close() error
}

// Multi fans each frame out to several transports. Every transport is
// tried; the joined errors are returned.
type Multi []Transport

// Send forwards records to every transport.
func (m Multi) Send(ctx context.Context, records []Record) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport.
func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
