package recognition

import (
	"context"
	"sync"
	"time"

	"github.com/VanitasCaesar1/intake/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrAlreadyRunning = errors.New("recognition is already running")
	ErrNotRunning     = errors.New("recognition is not running")
)

// Recognizer is satisfied by *Client.
type Recognizer interface {
	Recognize(ctx context.Context, image string) (Result, error)
}

// Sink receives recognized labels; *history.Service implements it.
type Sink interface {
	Append(ctx context.Context, text string, confidence *float64) (models.DiagnosisRecord, error)
}

// Status is what the diagnosis page polls while recognition runs.
type Status struct {
	Running     bool                    `json:"running"`
	IntervalMS  int64                   `json:"intervalMs"`
	Calls       int                     `json:"calls"`
	Recognized  int                     `json:"recognized"`
	LastRecord  *models.DiagnosisRecord `json:"lastRecord,omitempty"`
	LastMessage string                  `json:"lastMessage,omitempty"`
	LastError   string                  `json:"lastError,omitempty"`
	LastAt      *time.Time              `json:"lastAt,omitempty"`
}

// Poller recognizes the latest pushed frame once per interval. A frame is
// used at most once; ticks with no new frame are skipped.
type Poller struct {
	recognizer Recognizer
	sink       Sink
	interval   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	frame   string
	status  Status

	inflight sync.WaitGroup
}

func NewPoller(r Recognizer, sink Sink, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		recognizer: r,
		sink:       sink,
		interval:   interval,
		logger:     logger,
	}
}

// PushFrame replaces the buffered frame.
func (p *Poller) PushFrame(image string) {
	p.mu.Lock()
	p.frame = image
	p.mu.Unlock()
}

func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	p.status.LastError = ""
	p.status.LastMessage = ""

	go p.loop(ctx, p.done)
	p.logger.Info("recognition started", zap.Duration("interval", p.interval))
	return nil
}

// Stop halts the ticker. No recognition is issued after Stop returns; a call
// already in flight completes and may still append its result.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.running = false
	p.cancel()
	done := p.done
	p.mu.Unlock()

	<-done
	p.logger.Info("recognition stopped")
	return nil
}

// Wait blocks until in-flight recognitions finish.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.status
	s.Running = p.running
	s.IntervalMS = p.interval.Milliseconds()
	return s
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, ok := p.claimFrame()
			if !ok {
				continue
			}
			p.inflight.Add(1)
			go func() {
				defer p.inflight.Done()
				p.recognize(context.WithoutCancel(ctx), frame)
			}()
		}
	}
}

// claimFrame takes the buffered frame if the poller is still running.
func (p *Poller) claimFrame() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || p.frame == "" {
		return "", false
	}
	frame := p.frame
	p.frame = ""
	p.status.Calls++
	return frame, true
}

func (p *Poller) recognize(ctx context.Context, frame string) {
	result, err := p.recognizer.Recognize(ctx, frame)
	now := time.Now()

	var rec *models.DiagnosisRecord
	if err == nil && result.Recognized() {
		r, appendErr := p.sink.Append(ctx, result.Result, result.StoredConfidence())
		if appendErr != nil {
			p.logger.Error("failed to store recognition result", zap.Error(appendErr))
			err = appendErr
		} else {
			rec = &r
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.LastAt = &now
	switch {
	case err != nil:
		p.status.LastError = result.Error
		if p.status.LastError == "" {
			p.status.LastError = err.Error()
		}
		p.status.LastMessage = ""
	case rec != nil:
		p.status.Recognized++
		p.status.LastRecord = rec
		p.status.LastMessage = "识别成功: " + rec.Text
		p.status.LastError = ""
	default:
		p.status.LastMessage = result.Error
		p.status.LastError = ""
	}
}
