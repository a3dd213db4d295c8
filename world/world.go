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

// Йоу, чат! Світ - це просто масив сутностей, які щотіку
// пропонують рух, перевіряються на зіткнення і або рухаються,
// або лишаються на місці, або зникають. Вся магія - в tick.go.

package world

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"FlowyCollide/world/internal/collide"
	"FlowyCollide/world/internal/geom"
)

// World - головна структура симуляції
type World struct {
	log    *zap.Logger
	config Config

	entities []*Entity
	tickLock sync.Mutex // один тік за раз
	ticks    uint

	spawnLock sync.Mutex
	spawned   []*Entity // з'являться на початку наступного тіку

	viewersLock sync.Mutex
	viewers     []Viewer
}

// Config - налаштування світу
type Config struct {
	Workers int       // паралельність першої фази, <=0 - без обмежень
	Bounds  geom.AABB // межі світу, порожні або нульові - без меж
	Collide collide.Options
}

// ShapeStore - звідки рушій бере форми власників
type ShapeStore interface {
	Len() int
	CurrentShapes(i int) *ShapeList
	DesiredShapes(i int) *ShapeList
}

// New створює порожній світ
func New(logger *zap.Logger, config Config) *World {
	if config.Collide.Resolution <= 0 {
		config.Collide.Resolution = collide.DefaultOptions().Resolution
	}
	if config.Bounds == (geom.AABB{}) {
		config.Bounds = geom.EmptyAABB()
	}
	return &World{log: logger, config: config}
}

// Spawn додає сутність. Вона бере участь у зіткненнях з наступного тіку.
func (w *World) Spawn(e *Entity) {
	if e.Shapes.Len() == 0 {
		w.log.Panic("Spawn entity without shapes", zap.Int32("id", e.EntityID))
	}
	w.spawnLock.Lock()
	defer w.spawnLock.Unlock()
	w.spawned = append(w.spawned, e)
}

// joinSpawned переносить нові сутності у світ, викликається під tickLock
func (w *World) joinSpawned() {
	w.spawnLock.Lock()
	defer w.spawnLock.Unlock()
	for _, e := range w.spawned {
		e.Shapes.Intent = collide.NotSet
		w.entities = append(w.entities, e)
	}
	if len(w.spawned) > 0 {
		w.log.Debug("Entities joined", zap.Int("count", len(w.spawned)), zap.Int("total", len(w.entities)))
	}
	w.spawned = w.spawned[:0]
}

// Len - кількість сутностей у світі
func (w *World) Len() int { return len(w.entities) }

// Entity повертає сутність за індексом на цей тік
func (w *World) Entity(i int) *Entity { return w.entities[i] }

// Find шукає сутність за EntityID
func (w *World) Find(id int32) (*Entity, bool) {
	for _, e := range w.entities {
		if e.EntityID == id {
			return e, true
		}
	}
	return nil, false
}

// Ticks - скільки тіків вже пройшло
func (w *World) Ticks() uint { return w.ticks }

func (w *World) CurrentShapes(i int) *ShapeList { return &w.entities[i].Shapes.Current }
func (w *World) DesiredShapes(i int) *ShapeList { return &w.entities[i].Shapes.Desired }

// collectRefs збирає форми всіх власників у вхідний масив рушія.
// Порядок: власник за власником, спочатку поточні, потім бажані.
func collectRefs(store ShapeStore, tag func(i int) uint8) []collide.ShapeRef {
	var refs []collide.ShapeRef
	for i := 0; i < store.Len(); i++ {
		t := tag(i)
		store.CurrentShapes(i).Each(func(_ int, p *geom.Polygon) {
			refs = append(refs, collide.ShapeRef{Poly: p, Owner: i, Tag: t})
		})
		store.DesiredShapes(i).Each(func(_ int, p *geom.Polygon) {
			refs = append(refs, collide.ShapeRef{Poly: p, Owner: i, Tag: t, Desired: true})
		})
	}
	return refs
}

// CollideOptions - налаштування рушія колізій
type CollideOptions = collide.Options

// DefaultResolution - розмір сітки за замовчуванням
var DefaultResolution = collide.DefaultOptions().Resolution

// ParseCollideOptions збирає налаштування рушія з текстових значень конфігу
func ParseCollideOptions(broadPhase string, policy []string, resolution int) (opts CollideOptions, err error) {
	if resolution <= 0 {
		return opts, fmt.Errorf("grid resolution must be positive, got %d", resolution)
	}
	opts.Resolution = resolution
	if opts.BroadPhase, err = collide.ParseBroadPhase(broadPhase); err != nil {
		return
	}
	opts.Policy, err = collide.ParsePolicy(policy)
	return
}

// KernelName - яка реалізація перевірки ребер зараз активна
func KernelName() string { return geom.KernelName() }
