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

package grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FlowyCollide/world/internal/geom"
)

func TestGrid_ResolutionPowerOfTwo(t *testing.T) {
	for in, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128} {
		assert.Equal(t, want, New(in).Resolution(), "resolution %d", in)
	}
}

func TestGrid_InsertAndQuery(t *testing.T) {
	g := New(8)
	g.Reset(geom.Box(0, 0, 100, 100))

	h := g.Insert(Entry{Index: 3, Box: geom.Box(10, 10, 20, 20)})
	assert.Equal(t, []Handle{h}, g.Query(geom.Box(15, 15, 16, 16), nil))
	assert.Empty(t, g.Query(geom.Box(50, 50, 60, 60), nil))
	// лише дотик краєм - не перетин
	assert.Empty(t, g.Query(geom.Box(20, 10, 30, 20), nil))
	assert.Equal(t, 3, g.Entry(h).Index)
}

func TestGrid_SpanningEntryReportedOnce(t *testing.T) {
	g := New(16)
	g.Reset(geom.Box(0, 0, 16, 16))

	big := g.Insert(Entry{Index: 0, Box: geom.Box(1, 1, 15, 15)})
	got := g.Query(geom.Box(0, 0, 16, 16), nil)
	assert.Equal(t, []Handle{big}, got)
	assert.Equal(t, 1, g.MaxCellLoad())
}

func TestGrid_OutOfBoundsClamped(t *testing.T) {
	g := New(4)
	g.Reset(geom.Box(0, 0, 10, 10))

	far := g.Insert(Entry{Index: 1, Box: geom.Box(50, 50, 60, 60)})
	neg := g.Insert(Entry{Index: 2, Box: geom.Box(-30, -30, -20, -20)})
	assert.Equal(t, []Handle{far}, g.Query(geom.Box(55, 55, 56, 56), nil))
	assert.Equal(t, []Handle{neg}, g.Query(geom.Box(-25, -25, -24, -24), nil))
}

func TestGrid_RemoveAndUpdate(t *testing.T) {
	g := New(8)
	g.Reset(geom.Box(0, 0, 80, 80))

	a := g.Insert(Entry{Index: 0, Box: geom.Box(0, 0, 30, 30)})
	b := g.Insert(Entry{Index: 1, Box: geom.Box(5, 5, 10, 10)})
	require.Equal(t, 2, g.Len())

	g.Remove(a)
	assert.Equal(t, []Handle{b}, g.Query(geom.Box(0, 0, 80, 80), nil))
	assert.Panics(t, func() { g.Remove(a) })

	g.Update(b, geom.Box(70, 70, 75, 75))
	assert.Empty(t, g.Query(geom.Box(5, 5, 10, 10), nil))
	assert.Equal(t, []Handle{b}, g.Query(geom.Box(71, 71, 72, 72), nil))
	assert.Equal(t, 1, g.Len())

	c := g.Insert(Entry{Index: 2, Box: geom.Box(1, 1, 2, 2)})
	assert.Equal(t, a, c, "freed handle is reused")
}

// TestGrid_NoFalseNegatives - порівнюємо з перебором усіх пар
func TestGrid_NoFalseNegatives(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 20; round++ {
		boxes := make([]geom.AABB, 300)
		bounds := geom.EmptyAABB()
		for i := range boxes {
			x, y := rng.Float32()*1000, rng.Float32()*1000
			w, h := rng.Float32()*rng.Float32()*200, rng.Float32()*rng.Float32()*200
			if rng.Intn(10) == 0 {
				w = 0 // вироджені теж мають знаходитись
			}
			boxes[i] = geom.Box(x, y, x+w, y+h)
			bounds = bounds.Combine(boxes[i])
		}

		g := New(1 << (rng.Intn(6) + 1))
		g.Reset(bounds)
		handles := make([]Handle, len(boxes))
		for i, b := range boxes {
			handles[i] = g.Insert(Entry{Index: i, Box: b})
		}

		var buf []Handle
		for i, a := range boxes {
			buf = g.Query(a, buf[:0])
			found := make(map[int]bool, len(buf))
			for _, h := range buf {
				found[g.Entry(h).Index] = true
			}
			for j, b := range boxes {
				if a.Overlaps(b) {
					require.True(t, found[j], "round %d: %d (%v) misses %d (%v)", round, i, a, j, b)
				}
			}
		}
	}
}

func BenchmarkGrid_Query(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	g := New(64)
	g.Reset(geom.Box(0, 0, 1e4, 1e4))
	boxes := make([]geom.AABB, 4096)
	for i := range boxes {
		x, y := rng.Float32()*1e4, rng.Float32()*1e4
		boxes[i] = geom.Box(x, y, x+50, y+50)
		g.Insert(Entry{Index: i, Box: boxes[i]})
	}
	var buf []Handle
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = g.Query(boxes[i%len(boxes)], buf[:0])
	}
}
