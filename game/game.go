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

// Йоу, чат! Game - це все, що навколо світу: звідки взяти сценарій,
// як часто крутити тіки і куди писати звіти.

package game

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"FlowyCollide/world"
)

type Game struct {
	log *zap.Logger

	config   Config
	scenario string
	world    *world.World
	reports  *world.ReportWriter

	summary summary
}

// summary - підсумок всього запуску, збирається як спостерігач світу
type summary struct {
	ticks, pairs, moved, stayed, removed int
}

func (s *summary) ViewTick(r *world.TickReport) {
	s.ticks++
	s.pairs += len(r.Pairs)
	s.moved += r.Count(world.GoToDesiredPos)
	s.stayed += r.Count(world.StayAtCurrentPos)
	s.removed += len(r.Removed)
}

// NewGame завантажує сценарій і створює світ
func NewGame(log *zap.Logger, config Config) (*Game, error) {
	opts, err := config.CollideOptions()
	if err != nil {
		return nil, fmt.Errorf("collide options: %w", err)
	}

	provider := world.NewProvider(filepath.Dir(config.Scenario))
	name := strings.TrimSuffix(filepath.Base(config.Scenario), filepath.Ext(config.Scenario))
	sc, err := provider.GetScenario(name)
	if err != nil {
		return nil, err
	}
	entities, err := sc.Spawn()
	if err != nil {
		return nil, fmt.Errorf("spawn scenario %s: %w", sc.Name, err)
	}

	w := world.New(log.Named("world"), world.Config{
		Workers: config.Workers,
		Bounds:  sc.WorldBounds(),
		Collide: opts,
	})
	for _, e := range entities {
		w.Spawn(e)
	}

	g := &Game{
		log:      log.Named("game"),
		config:   config,
		scenario: sc.Name,
		world:    w,
	}
	w.AddViewer(&g.summary)
	if config.ReportDir != "" {
		g.reports, err = world.NewReportWriter(config.ReportDir, sc.Name, config.ReportLimiter.Limiter())
		if err != nil {
			return nil, err
		}
		g.log.Info("Writing tick reports", zap.String("path", g.reports.Path()))
	}
	g.log.Info("Scenario loaded",
		zap.String("scenario", sc.Name),
		zap.Int("entities", len(entities)),
		zap.Stringer("broad-phase", opts.BroadPhase),
		zap.Stringer("policy", opts.Policy),
	)
	return g, nil
}

// Run крутить тіки до max-ticks або до скасування контексту
func (g *Game) Run(ctx context.Context) error {
	err := g.world.Run(ctx, g.config.TickLimiter.Limiter(), g.config.MaxTicks, g.onTick)
	g.log.Info("Simulation finished",
		zap.Int("ticks", g.summary.ticks),
		zap.Int("pairs", g.summary.pairs),
		zap.Int("moved", g.summary.moved),
		zap.Int("stayed", g.summary.stayed),
		zap.Int("removed", g.summary.removed),
		zap.Int("alive", g.world.Len()),
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (g *Game) onTick(r *world.TickReport) error {
	g.log.Debug("Tick",
		zap.Uint("tick", r.Tick),
		zap.Int("entities", len(r.Entities)),
		zap.Int("pairs", len(r.Pairs)),
		zap.Int("removed", len(r.Removed)),
		zap.Int("narrow", r.Stats.NarrowTests),
	)
	if g.reports == nil {
		return nil
	}
	if err := g.reports.Write(r); err != nil && !errors.Is(err, world.ErrReachRateLimit) {
		return err
	}
	return nil
}

// World - світ, яким керує гра
func (g *Game) World() *world.World { return g.world }

// Close закриває файл звітів
func (g *Game) Close() error {
	if g.reports == nil {
		return nil
	}
	g.log.Info("Tick reports closed",
		zap.Int("written", g.reports.Written),
		zap.Int("skipped", g.reports.Skipped),
	)
	return g.reports.Close()
}
