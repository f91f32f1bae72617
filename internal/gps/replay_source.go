package gps

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gpsnav/internal/replay"
)

type ctxSleeper struct {
	ctx context.Context
}

func (c ctxSleeper) Sleep(d time.Duration) {
	sleepCtx(c.ctx, d)
}

func (s *Service) runReplay(ctx context.Context) {
	recs, err := replay.ReadFile(s.cfg.ReplayPath)
	if err != nil {
		s.setConnState("error", fmt.Sprintf("replay load failed path=%s: %v", s.cfg.ReplayPath, err))
		return
	}

	log.Printf("gps replay path=%s records=%d speed=%.2f loop=%t", s.cfg.ReplayPath, len(recs), s.cfg.ReplaySpeed, s.cfg.ReplayLoop)
	s.setConnState("replaying", "")
	err = replay.Play(recs, s.cfg.ReplaySpeed, s.cfg.ReplayLoop, ctxSleeper{ctx: ctx}, func(sentence string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = s.Ingest(sentence)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.setConnState("error", fmt.Sprintf("replay failed: %v", err))
		return
	}
	if ctx.Err() == nil {
		s.setConnState("finished", "")
	}
}
