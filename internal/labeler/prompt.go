package labeler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// Prompt asks for each label on a terminal. Concurrent calls are serialized.
type Prompt struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt reads answers from in and writes questions to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Label prints "Label for <path>: " and reads one line.
func (p *Prompt) Label(ctx context.Context, req Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return finish(req, "", err)
	}
	if _, err := fmt.Fprintf(p.out, "Label for %s: ", req.Path); err != nil {
		return finish(req, "", err)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return finish(req, "", fmt.Errorf("read answer: %w", err))
	}
	return finish(req, line, nil)
}
