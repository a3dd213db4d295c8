// This file is part of go-mc/server project.
// Copyright (C) 2023.  Tnze
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Йоу, чат! Як проходить один тік:
// 1. Кожна сутність паралельно пропонує куди хоче (Behavior.Propose)
// 2. Рушій шукає зіткнення, а таблиця ролей вирішує долю кожної пари.
//    Якщо когось зупинили, рушій перевіряє його ще раз на старому місці,
//    і нові пари йдуть в кінець черги
// 3. Хто йде - рухається, хто стоїть - лишається, кого видалили - зникає

package world

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"FlowyCollide/world/internal/collide"
)

// Run крутить тіки, поки не скінчиться maxTicks (0 - без кінця) або контекст.
// Контекст перевіряється лише між тіками. onTick може бути nil.
func (w *World) Run(ctx context.Context, limiter *rate.Limiter, maxTicks uint, onTick func(*TickReport) error) error {
	for n := uint(0); maxTicks == 0 || n < maxTicks; n++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		report := w.Tick()
		if onTick != nil {
			if err := onTick(report); err != nil {
				return err
			}
		}
	}
	return nil
}

// Tick виконує один повний тік
func (w *World) Tick() *TickReport {
	w.tickLock.Lock()
	defer w.tickLock.Unlock()

	w.joinSpawned()
	w.subtickPropose()
	report := w.subtickCollide()
	w.subtickCommit(report)
	w.ticks++
	w.notifyViewers(report)
	return report
}

// subtickPropose - перша фаза. Кожна горутина чіпає лише свою сутність.
func (w *World) subtickPropose() {
	env := Env{Tick: w.ticks, Bounds: w.config.Bounds}
	var g errgroup.Group
	if w.config.Workers > 0 {
		g.SetLimit(w.config.Workers)
	}
	for _, e := range w.entities {
		if e.Behavior == nil {
			continue
		}
		e := e
		g.Go(func() error {
			e.Behavior.Propose(e, env)
			return nil
		})
	}
	_ = g.Wait()
}

// subtickCollide - друга фаза, послідовна
func (w *World) subtickCollide() *TickReport {
	n := len(w.entities)
	report := &TickReport{
		Tick:     w.ticks,
		Entities: make([]int32, n),
		Intents:  make([]collide.Intent, n),
	}
	for i, e := range w.entities {
		report.Entities[i] = e.EntityID
		report.Intents[i] = e.Shapes.Intent
	}

	refs := collectRefs(w, func(i int) uint8 { return uint8(w.entities[i].Role) })
	engine := collide.New(w.log.Named("collide"), refs, w.collisionCouldMatter, report.Intents, w.config.Collide)

	sink := engineSink{engine: engine, pairs: engine.FindCollisions()}
	found := len(sink.pairs)
	for k := 0; k < len(sink.pairs); k++ {
		p := sink.pairs[k]
		resolve(&sink, p.Idx1, p.Idx2, w.entities[p.Idx1].Role, w.entities[p.Idx2].Role)
	}
	report.Pairs = sink.pairs
	report.Stats = engine.Stats()

	for i, intent := range report.Intents {
		if intent == collide.NotSet {
			report.Intents[i] = collide.StayAtCurrentPos
		}
		w.entities[i].Shapes.Intent = report.Intents[i]
	}

	w.log.Debug("Tick collisions resolved",
		zap.Uint("tick", w.ticks),
		zap.Int("entities", n),
		zap.Int("pairs", found),
		zap.Int("pairs after resolve", len(sink.pairs)),
	)
	return report
}

// collisionCouldMatter - чи варто перевіряти пару сутностей взагалі
func (w *World) collisionCouldMatter(a, b int) bool {
	ea, eb := w.entities[a], w.entities[b]
	if ea.related(eb) {
		return false
	}
	return couldMatter(ea.Role, eb.Role)
}

// subtickCommit застосовує рішення і прибирає видалені сутності
func (w *World) subtickCommit(report *TickReport) {
	kept := w.entities[:0]
	for _, e := range w.entities {
		switch e.Shapes.Intent {
		case collide.GoToDesiredPos:
			e.Shapes.Commit()
		case collide.StayAtCurrentPos:
			e.Shapes.ResetDesired()
		case collide.Delete:
			report.Removed = append(report.Removed, e.EntityID)
			e.Shapes.Release()
			continue
		default:
			w.log.Panic("Entity left the tick without intent", zap.Int32("id", e.EntityID))
		}
		e.Shapes.Intent = collide.NotSet
		e.Age++
		kept = append(kept, e)
	}
	clear(w.entities[len(kept):])
	w.entities = kept
}

// engineSink передає рішення резолверів у рушій
type engineSink struct {
	engine *collide.Engine
	pairs  []collide.Pair
}

func (s *engineSink) block(i int) {
	switch s.engine.Intent(i) {
	case collide.NotSet, collide.GoToDesiredPos:
		s.engine.UpdateIntent(i, collide.StayAtCurrentPos, &s.pairs)
	}
}

func (s *engineSink) destroy(i int) {
	if s.engine.Intent(i) != collide.Delete {
		s.engine.UpdateIntent(i, collide.Delete, &s.pairs)
	}
}
