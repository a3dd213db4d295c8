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

package collide

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"FlowyCollide/world/internal/geom"
)

// scene - зручний будівельник вхідних даних для рушія
type scene struct {
	refs    []ShapeRef
	intents []Intent
}

// add додає власника з поточною формою і (опційно) бажаною
func (s *scene) add(intent Intent, current, desired *geom.Polygon) int {
	owner := len(s.intents)
	s.intents = append(s.intents, intent)
	s.refs = append(s.refs, ShapeRef{Poly: current, Owner: owner})
	if desired != nil {
		s.refs = append(s.refs, ShapeRef{Poly: desired, Owner: owner, Desired: true})
	}
	return owner
}

func (s *scene) engine(t *testing.T, matter func(a, b int) bool, opts Options) *Engine {
	return New(zaptest.NewLogger(t), s.refs, matter, s.intents, opts)
}

func TestEngine_UnitSquares(t *testing.T) {
	var s scene
	a := s.add(NotSet, geom.Rect(0, 0, 1, 1), nil)
	b := s.add(NotSet, geom.Rect(0.5, 0.5, 1.5, 1.5), nil)
	s.add(NotSet, geom.Rect(2, 2, 3, 3), nil)

	pairs := s.engine(t, nil, DefaultOptions()).FindCollisions()
	assert.Equal(t, []Pair{{Idx1: a, Idx2: b}}, pairs)
}

func TestEngine_SecondFindPanics(t *testing.T) {
	var s scene
	s.add(NotSet, geom.Rect(0, 0, 1, 1), nil)
	e := New(zap.NewNop(), s.refs, nil, s.intents, DefaultOptions())
	e.FindCollisions()
	assert.Panics(t, func() { e.FindCollisions() })
}

func TestEngine_PairEmittedOnce(t *testing.T) {
	var s scene
	s.add(NotSet, geom.Rect(0, 0, 2, 2), geom.Rect(0.1, 0, 2.1, 2))
	s.add(NotSet, geom.Rect(1, 1, 3, 3), geom.Rect(1.1, 1, 3.1, 3))
	// друга поточна форма у першого власника теж перетинається з другим
	s.refs = append(s.refs, ShapeRef{Poly: geom.Rect(1.5, 1.5, 2.5, 2.5), Owner: 0})

	opts := DefaultOptions()
	opts.Policy = CompareCurrent | CompareDesired | CompareCross
	pairs := s.engine(t, nil, opts).FindCollisions()
	assert.Equal(t, []Pair{{0, 1}}, pairs)
}

func TestEngine_MatterPredicate(t *testing.T) {
	var s scene
	s.add(NotSet, geom.Rect(0, 0, 1, 1), nil)
	s.add(NotSet, geom.Rect(0.5, 0, 1.5, 1), nil)
	s.add(NotSet, geom.Rect(0.7, 0.5, 1.7, 1.5), nil)

	var calls []Pair
	matter := func(a, b int) bool {
		calls = append(calls, Pair{a, b})
		return a != 0 || b != 1 // пара (0,1) неважлива
	}
	pairs := s.engine(t, matter, DefaultOptions()).FindCollisions()
	assert.Equal(t, []Pair{{0, 2}, {1, 2}}, pairs)
	for _, c := range calls {
		assert.Less(t, c.Idx1, c.Idx2, "predicate gets owners in ascending order")
	}
}

func TestEngine_PolicyCombinations(t *testing.T) {
	// поточні позиції перетинаються, бажані - ні
	build := func() scene {
		var s scene
		s.add(GoToDesiredPos, geom.Rect(0, 0, 1, 1), geom.Rect(-5, 0, -4, 1))
		s.add(GoToDesiredPos, geom.Rect(0.5, 0, 1.5, 1), geom.Rect(5, 0, 6, 1))
		return s
	}
	tests := []struct {
		policy Policy
		want   int
	}{
		{CompareCurrent, 1},
		{CompareDesired, 0},
		{CompareCross, 0},
		{DefaultPolicy, 0}, // рухомі звільняють поточні позиції
	}
	for _, tt := range tests {
		s := build()
		pairs := s.engine(t, nil, Options{Policy: tt.policy, Resolution: 8}).FindCollisions()
		assert.Len(t, pairs, tt.want, "policy %v", tt.policy)
	}
}

func TestEngine_StayBlocksMoverIntoCurrent(t *testing.T) {
	var s scene
	// A рухається вправо в стіну B
	a := s.add(GoToDesiredPos, geom.Rect(0, 0, 1, 1), geom.Rect(1.5, 0, 2.5, 1))
	b := s.add(StayAtCurrentPos, geom.Rect(2, 0, 3, 1), nil)
	// C рухається вправо в поточну позицію A
	c := s.add(GoToDesiredPos, geom.Rect(-1.5, 0, -0.5, 1), geom.Rect(0.2, 0, 1.2, 1))

	e := s.engine(t, nil, DefaultOptions())
	require.Equal(t, []Pair{{a, b}}, e.FindCollisions())

	// A зупиняється - тепер його поточна позиція заважає C
	var found []Pair
	e.UpdateIntent(a, StayAtCurrentPos, &found)
	assert.Equal(t, []Pair{MakePair(a, c)}, found)
	assert.Equal(t, StayAtCurrentPos, e.Intent(a))

	// повторний Stay нічого нового не дає
	found = found[:0]
	e.UpdateIntent(a, StayAtCurrentPos, &found)
	assert.Empty(t, found)

	e.UpdateIntent(c, StayAtCurrentPos, &found)
	assert.Empty(t, found)
	assert.Equal(t, []Intent{StayAtCurrentPos, StayAtCurrentPos, StayAtCurrentPos}, e.Intents())
}

func TestEngine_DeleteRemovesShapes(t *testing.T) {
	var s scene
	a := s.add(NotSet, geom.Rect(0, 0, 1, 1), nil)
	b := s.add(NotSet, geom.Rect(5, 5, 6, 6), geom.Rect(0.5, 0.5, 1.5, 1.5))

	e := s.engine(t, nil, DefaultOptions())
	e.UpdateIntent(a, Delete, nil)
	assert.Empty(t, e.FindCollisions())

	var found []Pair
	e.UpdateIntent(b, StayAtCurrentPos, &found)
	assert.Empty(t, found)
}

func TestEngine_IllegalTransitionsPanic(t *testing.T) {
	var s scene
	s.add(StayAtCurrentPos, geom.Rect(0, 0, 1, 1), nil)
	s.add(Delete, geom.Rect(2, 0, 3, 1), nil)
	s.add(NotSet, geom.Rect(4, 0, 5, 1), nil)
	e := New(zap.NewNop(), s.refs, nil, s.intents, DefaultOptions())

	assert.Panics(t, func() { e.UpdateIntent(0, GoToDesiredPos, nil) }, "revert Stay")
	assert.Panics(t, func() { e.UpdateIntent(1, Delete, nil) }, "duplicate Delete")
	assert.Panics(t, func() { e.UpdateIntent(2, NotSet, nil) }, "back to NotSet")
	assert.Panics(t, func() { e.UpdateIntent(3, Delete, nil) }, "out of range")
	assert.NotPanics(t, func() { e.UpdateIntent(2, GoToDesiredPos, nil) })
	assert.NotPanics(t, func() { e.UpdateIntent(2, Delete, nil) })
}

func TestEngine_BadOwnerPanics(t *testing.T) {
	refs := []ShapeRef{{Poly: geom.Rect(0, 0, 1, 1), Owner: 2}}
	assert.Panics(t, func() { New(zap.NewNop(), refs, nil, make([]Intent, 2), DefaultOptions()) })
}

// TestEngine_GridAndBVHAgree - обидва broad-phase дають однаковий список пар
func TestEngine_GridAndBVHAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	var s scene
	for i := 0; i < 200; i++ {
		x, y := rng.Float32()*300, rng.Float32()*300
		size := 2 + rng.Float32()*15
		cur := geom.Rect(x, y, x+size, y+size)
		des := cur.Clone()
		des.Translate(rng.Float32()*10-5, rng.Float32()*10-5)
		des.RotateAbout(des.Centroid(), rng.Float32())
		s.add(GoToDesiredPos, cur, des)
	}

	intents := func() []Intent { return append([]Intent(nil), s.intents...) }
	gridPairs := New(zap.NewNop(), s.refs, nil, intents(), Options{Resolution: 16}).FindCollisions()
	treePairs := New(zap.NewNop(), s.refs, nil, intents(), Options{BroadPhase: BroadBVH}).FindCollisions()
	require.NotEmpty(t, gridPairs)
	assert.Equal(t, gridPairs, treePairs)

	// і з перебором усіх пар
	want := map[Pair]bool{}
	for i, a := range s.refs {
		for _, b := range s.refs[i+1:] {
			if a.Owner != b.Owner && a.Desired && b.Desired && a.Poly.HasCollision(b.Poly) &&
				a.Poly.AABB().Overlaps(b.Poly.AABB()) {
				want[MakePair(a.Owner, b.Owner)] = true
			}
		}
	}
	got := map[Pair]bool{}
	for _, p := range gridPairs {
		require.False(t, got[p], "duplicate pair %v", p)
		got[p] = true
	}
	assert.Equal(t, want, got)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy, p)

	p, err = ParsePolicy([]string{"desired", "Cross"})
	require.NoError(t, err)
	assert.Equal(t, CompareDesired|CompareCross, p)
	assert.Equal(t, "desired|cross", p.String())

	_, err = ParsePolicy([]string{"sideways"})
	assert.Error(t, err)
}

func TestPair(t *testing.T) {
	p := MakePair(7, 3)
	assert.Equal(t, Pair{3, 7}, p)
	assert.Equal(t, Pair{7, 3}, p.Swap())
	assert.Equal(t, 7, p.Other(3))
	assert.True(t, p.Has(7))
	assert.False(t, p.Has(5))
}
