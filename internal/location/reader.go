package location

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"time"

	"golang.org/x/time/rate"
)

// ReaderSource reads newline-delimited JSON samples, for example from stdin.
type ReaderSource struct {
	r       io.Reader
	limiter *rate.Limiter
}

func NewReaderSource(r io.Reader, minInterval time.Duration) *ReaderSource {
	return &ReaderSource{r: r, limiter: newLimiter(minInterval)}
}

// Run returns nil at end of input or when ctx is done.
func (s *ReaderSource) Run(ctx context.Context, h Handler) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.r)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- append([]byte(nil), line...):
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := deliver(ctx, s.limiter, line, h); err != nil {
				return nil
			}
		}
	}
}
