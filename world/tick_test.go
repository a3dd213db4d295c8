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

package world

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"FlowyCollide/world/internal/collide"
	"FlowyCollide/world/internal/geom"
)

func newTestWorld(t *testing.T, entities ...*Entity) *World {
	w := New(zaptest.NewLogger(t), Config{Workers: 2})
	for _, e := range entities {
		w.Spawn(e)
	}
	return w
}

func mobile(x1, y1, x2, y2, vx, vy float32) *Entity {
	return NewEntity(RoleMobile, Drift{Velocity: geom.Pt(vx, vy)}, geom.Rect(x1, y1, x2, y2))
}

func obstacle(x1, y1, x2, y2 float32) *Entity {
	return NewEntity(RoleObstacle, Static{}, geom.Rect(x1, y1, x2, y2))
}

func TestTick_MoverBlockedByObstacle(t *testing.T) {
	a := mobile(0, 0, 1, 1, 1.5, 0)
	b := obstacle(2, 0, 3, 1)
	c := NewEntity(RoleCosmetic, Drift{Velocity: geom.Pt(0, 0.1)}, geom.Rect(1.8, 0.2, 2.2, 0.4))
	w := newTestWorld(t, a, b, c)

	report := w.Tick()
	assert.Equal(t, []collide.Pair{collide.MakePair(0, 1)}, report.Pairs)
	assert.Equal(t, [2]int32{a.EntityID, b.EntityID}, report.PairOf(report.Pairs[0]))
	assert.Equal(t, []collide.Intent{
		collide.StayAtCurrentPos,
		collide.StayAtCurrentPos,
		collide.GoToDesiredPos,
	}, report.Intents)
	assert.Empty(t, report.Removed)

	// A лишився на місці, B не змінився, C (декор) проїхав крізь B
	assert.Equal(t, geom.Box(0, 0, 1, 1), a.AABB())
	assert.Equal(t, a.Shapes.Current.AABB(), a.Shapes.Desired.AABB())
	assert.Equal(t, geom.Box(2, 0, 3, 1), b.AABB())
	assert.InDelta(t, 0.3, c.AABB().Y1, 1e-6)

	for _, e := range []*Entity{a, b, c} {
		assert.Equal(t, collide.NotSet, e.Shapes.Intent)
		assert.Equal(t, uint(1), e.Age)
	}
	assert.Equal(t, uint(1), w.Ticks())
}

func TestTick_StayedMoverBlocksFollower(t *testing.T) {
	a := mobile(0, 0, 1, 1, 1.5, 0)
	b := obstacle(2, 0, 3, 1)
	c := mobile(-1.5, 0, -0.5, 1, 1.7, 0)
	w := newTestWorld(t, a, b, c)

	report := w.Tick()
	// друга пара знайдена вже після того, як A зупинили
	assert.Equal(t, []collide.Pair{collide.MakePair(0, 1), collide.MakePair(0, 2)}, report.Pairs)
	assert.Equal(t, 3, report.Count(collide.StayAtCurrentPos))
	assert.Equal(t, geom.Box(-1.5, 0, -0.5, 1), c.AABB())
}

func TestTick_MobilesMoveWhenFree(t *testing.T) {
	a := mobile(0, 0, 1, 1, 1, 0)
	b := mobile(8, 0, 9, 1, -1, 0)
	w := newTestWorld(t, a, b)

	for i := 0; i < 3; i++ {
		report := w.Tick()
		assert.Empty(t, report.Pairs)
		assert.Equal(t, 2, report.Count(collide.GoToDesiredPos))
	}
	assert.Equal(t, geom.Box(3, 0, 4, 1), a.AABB())
	assert.Equal(t, geom.Box(5, 0, 6, 1), b.AABB())

	// обидва хочуть в [4,5]
	report := w.Tick()
	require.Len(t, report.Pairs, 1)
	assert.Equal(t, 2, report.Count(collide.StayAtCurrentPos))
}

func TestTick_ProjectileRemoved(t *testing.T) {
	shooter := mobile(0, 0, 1, 1, 0, 0)
	bullet := NewEntity(RoleProjectile, Drift{Velocity: geom.Pt(1, 0)}, geom.Rect(0.8, 0.4, 1.2, 0.6))
	bullet.Parent = shooter.EntityID
	wall := obstacle(3, 0, 4, 1)
	w := newTestWorld(t, shooter, bullet, wall)

	// перший тік: куля вилітає зі стрільця
	report := w.Tick()
	assert.Empty(t, report.Pairs)
	assert.Equal(t, collide.GoToDesiredPos, report.Intents[1])

	// другий тік: куля влітає в стіну
	report = w.Tick()
	require.Equal(t, []collide.Pair{collide.MakePair(1, 2)}, report.Pairs)
	assert.Equal(t, collide.Delete, report.Intents[1])
	assert.Equal(t, []int32{bullet.EntityID}, report.Removed)
	assert.Equal(t, 2, w.Len())
	_, ok := w.Find(bullet.EntityID)
	assert.False(t, ok)

	report = w.Tick()
	assert.Equal(t, []int32{shooter.EntityID, wall.EntityID}, report.Entities)
}

func TestTick_ExpiringAndBounds(t *testing.T) {
	w := New(zaptest.NewLogger(t), Config{Bounds: geom.Box(0, 0, 10, 10)})
	short := NewEntity(RoleMobile, Expiring{Behavior: Static{}, Lifetime: 2}, geom.Rect(0, 0, 1, 1))
	runner := mobile(8, 8, 9, 9, 1.5, 0)
	w.Spawn(short)
	w.Spawn(runner)

	r := w.Tick()
	assert.Empty(t, r.Removed)
	r = w.Tick()
	assert.Equal(t, []int32{runner.EntityID}, r.Removed)
	r = w.Tick()
	assert.Equal(t, []int32{short.EntityID}, r.Removed)
	assert.Equal(t, 0, w.Len())
}

func TestWorld_Run(t *testing.T) {
	w := newTestWorld(t, mobile(0, 0, 1, 1, 1, 0))
	var ticks []uint
	err := w.Run(context.Background(), nil, 5, func(r *TickReport) error {
		ticks = append(ticks, r.Tick)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{0, 1, 2, 3, 4}, ticks)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx, nil, 0, nil), context.Canceled)
	assert.Equal(t, uint(5), w.Ticks())
}

func TestCollectRefs(t *testing.T) {
	e := NewEntity(RoleMobile, nil, geom.Rect(0, 0, 1, 1), geom.Rect(2, 0, 3, 1))
	w := newTestWorld(t, obstacle(5, 5, 6, 6), e)
	w.joinSpawned()

	refs := collectRefs(w, func(i int) uint8 { return uint8(w.Entity(i).Role) })
	require.Len(t, refs, 6)
	assert.Equal(t, 0, refs[0].Owner)
	assert.False(t, refs[0].Desired)
	assert.True(t, refs[1].Desired)
	for _, r := range refs[2:] {
		assert.Equal(t, 1, r.Owner)
		assert.Equal(t, uint8(RoleMobile), r.Tag)
	}
	assert.Same(t, w.CurrentShapes(1).At(1), refs[3].Poly)
	assert.Same(t, w.DesiredShapes(1).At(0), refs[4].Poly)
}

type countingViewer struct{ ticks []uint }

func (v *countingViewer) ViewTick(r *TickReport) { v.ticks = append(v.ticks, r.Tick) }

func TestWorld_Viewers(t *testing.T) {
	w := newTestWorld(t, obstacle(0, 0, 1, 1))
	a, b := &countingViewer{}, &countingViewer{}
	w.AddViewer(a)
	w.AddViewer(b)
	assert.Panics(t, func() { w.AddViewer(a) })

	w.Tick()
	assert.True(t, w.RemoveViewer(a))
	assert.False(t, w.RemoveViewer(a))
	w.Tick()

	assert.Equal(t, []uint{0}, a.ticks)
	assert.Equal(t, []uint{0, 1}, b.ticks)
}
