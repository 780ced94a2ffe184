package closer

import (
	"context"
	"fmt"
	"io"

	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

// Named is a connection we must close on shutdown, the name shows up in log and error.
type Named interface {
	io.Closer

	Name() string
}

type named struct {
	name   string
	closer io.Closer
}

var _ Named = (*named)(nil)

func New(name string, c io.Closer) Named {
	return &named{
		name:   name,
		closer: c,
	}
}

func (n *named) Name() string {
	return n.name
}

func (n *named) Close() error {
	err := n.closer.Close()
	if err != nil {
		err = fmt.Errorf("(%s) %w", n.name, err)
	}

	return err
}

// CloseAll closes in reverse order of registration and keeps going on error.
func CloseAll(ctx context.Context, closers []Named) error {
	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if c == nil {
			continue
		}

		if _err := c.Close(); _err != nil {
			err = multierr.Append(err, _err)
			continue
		}

		ylog.Debug(ctx, fmt.Sprintf("%s success to close", c.Name()))
	}

	return err
}
