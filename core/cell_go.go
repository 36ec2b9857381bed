//go:build !tinygo

package core

import "context"

// signal wakes a waiting consumer (regular Go implementation)
func (c *MeasurementCell) signal() {
	if c.notify == nil {
		return
	}
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// await blocks until signalled or ctx is done
func (c *MeasurementCell) await(ctx context.Context) error {
	select {
	case <-c.notify:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
