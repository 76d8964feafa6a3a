package retention

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Confirmer asks the operator to approve a purge.
type Confirmer interface {
	Confirm(ctx context.Context, preview Preview) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, preview Preview) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, preview Preview) (bool, error) {
	return f(ctx, preview)
}

// Decline refuses every purge. It is the default so nothing is deleted
// without an explicit approval path.
var Decline = ConfirmFunc(func(context.Context, Preview) (bool, error) { return false, nil })

// Prompt asks on out and reads one answer line from in. Only "y" and "yes"
// approve; an empty answer or end of input declines. A read abandoned by a
// cancelled Confirm is handed to the next call, so in never has two readers.
// Confirm must not be called concurrently.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer

	mu      sync.Mutex
	pending chan answer
}

type answer struct {
	line string
	err  error
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

func (p *Prompt) Confirm(ctx context.Context, preview Preview) (bool, error) {
	if _, err := fmt.Fprintf(p.out, "Delete %d audit log entries? [y/N] ", preview.Count); err != nil {
		return false, err
	}

	ch := p.read()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		p.mu.Lock()
		p.pending = nil
		p.mu.Unlock()
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, a.err
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// read returns the channel of the outstanding line read, starting one if
// none is in flight.
func (p *Prompt) read() chan answer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		ch := make(chan answer, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- answer{line, err}
		}()
		p.pending = ch
	}
	return p.pending
}
