package notifications

import (
	"errors"
	"fmt"
)

var (
	ErrNotificationDelivery = errors.New("notification delivery failed")
	ErrServiceUnavailable   = errors.New("notification service unavailable")
	ErrServiceTimeout       = errors.New("notification service timed out")
	ErrServiceRejected      = errors.New("notification service rejected the request")
)

type DeliveryKind int

const (
	KindUnavailable DeliveryKind = iota
	KindTimeout
	KindRejected
)

// DeliveryError describes why a notification was not delivered. Status is
// set for rejected deliveries when the remote end reported one.
type DeliveryError struct {
	Kind   DeliveryKind
	Status int
	Err    error
}

func (e *DeliveryError) Error() string {
	var msg string
	switch e.Kind {
	case KindTimeout:
		msg = ErrServiceTimeout.Error()
	case KindRejected:
		msg = ErrServiceRejected.Error()
		if e.Status != 0 {
			msg = fmt.Sprintf("%s with status %d", msg, e.Status)
		}
	default:
		msg = ErrServiceUnavailable.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool {
	switch target {
	case ErrNotificationDelivery:
		return true
	case ErrServiceUnavailable:
		return e.Kind == KindUnavailable
	case ErrServiceTimeout:
		return e.Kind == KindTimeout
	case ErrServiceRejected:
		return e.Kind == KindRejected
	}
	return false
}

func unavailable(err error) error { return &DeliveryError{Kind: KindUnavailable, Err: err} }
func timedOut(err error) error    { return &DeliveryError{Kind: KindTimeout, Err: err} }
func rejected(status int, err error) error {
	return &DeliveryError{Kind: KindRejected, Status: status, Err: err}
}
