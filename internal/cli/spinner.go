package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerTick = 80 * time.Millisecond

// Spinner animates one status line on w, followed by the elapsed time once
// a second has passed. It stops on Stop or when its context ends.
type Spinner struct {
	w     io.Writer
	ctx   context.Context
	start time.Time

	mu      sync.Mutex
	message string
	width   int // of the last line drawn

	stop     chan struct{}
	finished chan struct{}
	once     sync.Once
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		ctx:      ctx,
		message:  message,
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start draws frames until the spinner is stopped.
func (s *Spinner) Start() {
	s.start = time.Now()
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.finished)
	t := time.NewTicker(spinnerTick)
	defer t.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-s.stop:
			return
		case <-s.ctx.Done():
			s.clear()
			return
		case <-t.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

// Update replaces the message shown next to the spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) draw(frame rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := s.message
	if d := time.Since(s.start); d >= time.Second {
		line += fmt.Sprintf(" %ds", int(d.Seconds()))
	}
	pad := max(s.width-len(line), 0)
	fmt.Fprintf(s.w, "\r%s %s%*s", styleIconSpinner.Render(string(frame)), StyleDim.Render(line), pad, "")
	s.width = len(line)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%*s\r", s.width+2, "")
}

// Stop ends the animation and erases the line. Extra calls do nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		if !s.start.IsZero() {
			<-s.finished
		}
		s.clear()
	})
}

// StopWithError stops the spinner and prints message as an error.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the context ended before Stop was called.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.stop:
		return false
	default:
		return s.ctx.Err() != nil
	}
}
