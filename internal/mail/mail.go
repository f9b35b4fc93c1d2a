package mail

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	// Text is an optional plain-text alternative.
	Text string
}

type Result struct {
	Recipients int
	Delivered  int
	Failed     int
}

type Mailer interface {
	SendBatch(ctx context.Context, msgs []Message) (Result, error)
}

// Simulated waits a fixed delay and reports every message delivered. Nothing leaves the process.
type Simulated struct {
	Delay time.Duration
	Log   zerolog.Logger
}

func (s *Simulated) SendBatch(ctx context.Context, msgs []Message) (Result, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}
	s.Log.Info().Int("recipients", len(msgs)).Msg("simulated newsletter delivery")
	return Result{Recipients: len(msgs), Delivered: len(msgs)}, nil
}
