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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowyCollide/world/internal/geom"
)

func TestShapeList_InlineThenOverflow(t *testing.T) {
	var l ShapeList
	assert.Equal(t, 0, l.Len())
	assert.True(t, l.AABB().IsEmpty())

	a, b, c := geom.Rect(0, 0, 1, 1), geom.Rect(2, 2, 3, 3), geom.Rect(-1, -1, 0, 0)
	l.Append(a)
	assert.Equal(t, 1, l.Len())
	assert.Nil(t, l.rest)
	l.Append(b)
	l.Append(c)
	require.Equal(t, 3, l.Len())
	assert.Same(t, a, l.At(0))
	assert.Same(t, b, l.At(1))
	assert.Same(t, c, l.At(2))
	assert.Equal(t, geom.Box(-1, -1, 3, 3), l.AABB())

	var order []*geom.Polygon
	l.Each(func(i int, p *geom.Polygon) {
		assert.Same(t, l.At(i), p)
		order = append(order, p)
	})
	assert.Equal(t, []*geom.Polygon{a, b, c}, order)
	assert.Panics(t, func() { l.At(3) })
}

func TestShapeSet_CommitAndReset(t *testing.T) {
	var s ShapeSet
	s.Add(geom.Rect(0, 0, 1, 1))
	s.Add(geom.Rect(0, 2, 1, 3))
	require.Equal(t, 2, s.Current.Len())
	require.Equal(t, 2, s.Desired.Len())
	assert.NotSame(t, s.Current.At(0), s.Desired.At(0))

	s.TranslateDesired(5, 0)
	assert.Equal(t, geom.Box(5, 0, 6, 3), s.Desired.AABB())
	assert.Equal(t, geom.Box(0, 0, 1, 3), s.Current.AABB())

	s.ResetDesired()
	assert.Equal(t, s.Current.AABB(), s.Desired.AABB())

	s.TranslateDesired(0, -1)
	s.Commit()
	assert.Equal(t, geom.Box(0, -1, 1, 2), s.Current.AABB())
	assert.Equal(t, s.Current.At(1).Vertices(nil), s.Desired.At(1).Vertices(nil))

	// після Commit форми все ще незалежні
	s.TranslateDesired(1, 1)
	assert.Equal(t, geom.Box(0, -1, 1, 2), s.Current.AABB())

	s.Release()
	assert.Equal(t, 0, s.Len())
}
