// Package geo abstracts device position acquisition.
package geo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPermissionDenied means the user refused location access.
	ErrPermissionDenied = errors.New("geo: permission denied")
	// ErrUnavailable means the device cannot produce a position at all,
	// or did not produce one in time.
	ErrUnavailable = errors.New("geo: position unavailable")
)

type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters, 0 when unknown
}

func (p Position) String() string {
	return fmt.Sprintf("%.4f, %.4f", p.Latitude, p.Longitude)
}

type Provider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Position, error)

func (f ProviderFunc) CurrentPosition(ctx context.Context) (Position, error) {
	return f(ctx)
}

// Static always reports the same position.
func Static(p Position) Provider {
	return ProviderFunc(func(context.Context) (Position, error) { return p, nil })
}

// Denied always fails with ErrPermissionDenied.
func Denied() Provider {
	return ProviderFunc(func(context.Context) (Position, error) { return Position{}, ErrPermissionDenied })
}

// Locate asks p for a position, giving up after timeout. Any failure that
// is not already a geo error is reported as ErrUnavailable.
func Locate(ctx context.Context, p Provider, timeout time.Duration) (Position, error) {
	if p == nil {
		return Position{}, ErrUnavailable
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pos, err := p.CurrentPosition(ctx)
	switch {
	case err == nil:
		return pos, nil
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrUnavailable):
		return Position{}, err
	default:
		return Position{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// Message is the user-facing text for a geo failure.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Unable to get your location. Please enable location services."
	case errors.Is(err, ErrUnavailable):
		return "Geolocation is not available on this device."
	default:
		return "Unable to get your location"
	}
}
