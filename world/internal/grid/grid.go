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

// Йоу, чат! Сьогодні будуємо broad-phase на рівномірній сітці!
// Світ ділиться на N x N клітинок (N - степінь двійки), кожен об'єкт
// потрапляє в усі клітинки, які накриває його AABB. Запит дивиться лише
// клітинки під шуканим прямокутником, тому пропустити перетин неможливо,
// а зайві кандидати потім відсіє narrow-phase.

package grid

import (
	"fmt"
	"math/bits"

	"FlowyCollide/world/internal/geom"
)

// Handle - ідентифікатор запису в сітці, стабільний до Remove
type Handle int32

// Entry - те, що лежить в клітинці
type Entry struct {
	Index   int       // індекс об'єкта у вхідному масиві того, хто викликає
	Box     geom.AABB // AABB об'єкта
	Desired bool      // true - бажана позиція, false - поточна
}

// slot - запис разом з діапазоном клітинок, куди він потрапив
type slot struct {
	Entry
	cx1, cy1, cx2, cy2 int
	live               bool
}

// Grid - рівномірна сітка N x N над глобальним AABB.
// Перебудовується кожен тік через Reset.
type Grid struct {
	shift  uint // log2(N)
	bounds geom.AABB
	scaleX float32 // N / ширина світу
	scaleY float32 // N / висота світу

	cells [][]Handle
	slots []slot
	free  []Handle
	live  int

	// позначки для дедуплікації результатів Query
	marks []uint32
	stamp uint32
}

// New створює сітку. resolution округлюється вгору до степеня двійки.
func New(resolution int) *Grid {
	if resolution < 1 {
		resolution = 1
	}
	shift := uint(bits.Len(uint(resolution - 1)))
	n := 1 << shift
	return &Grid{
		shift:  shift,
		bounds: geom.EmptyAABB(),
		cells:  make([][]Handle, n*n),
	}
}

// Resolution - кількість клітинок по одній осі
func (g *Grid) Resolution() int { return 1 << g.shift }

// Bounds - глобальний AABB, на який натягнута сітка
func (g *Grid) Bounds() geom.AABB { return g.bounds }

// Reset очищає сітку (пам'ять клітинок зберігається) і задає нові межі
func (g *Grid) Reset(bounds geom.AABB) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.slots = g.slots[:0]
	g.free = g.free[:0]
	g.live = 0

	g.bounds = bounds
	n := float32(g.Resolution())
	g.scaleX, g.scaleY = 0, 0
	if !bounds.IsEmpty() {
		if w := bounds.Width(); w > 0 {
			g.scaleX = n / w
		}
		if h := bounds.Height(); h > 0 {
			g.scaleY = n / h
		}
	}
}

// cellOf - лінійне масштабування з округленням вниз, обрізане до [0, N-1].
// Функція монотонна, тому об'єкти поза межами теж знаходяться.
func (g *Grid) cellOf(v, origin, scale float32) int {
	f := (v - origin) * scale
	last := g.Resolution() - 1
	switch {
	case !(f >= 0): // також NaN
		return 0
	case f >= float32(last):
		return last
	default:
		return int(f)
	}
}

func (g *Grid) cellRange(box geom.AABB) (cx1, cy1, cx2, cy2 int) {
	cx1 = g.cellOf(box.X1, g.bounds.X1, g.scaleX)
	cx2 = g.cellOf(box.X2, g.bounds.X1, g.scaleX)
	cy1 = g.cellOf(box.Y1, g.bounds.Y1, g.scaleY)
	cy2 = g.cellOf(box.Y2, g.bounds.Y1, g.scaleY)
	return
}

// Insert додає запис в усі клітинки, які накриває його AABB
func (g *Grid) Insert(e Entry) Handle {
	var h Handle
	if n := len(g.free); n > 0 {
		h = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		h = Handle(len(g.slots))
		g.slots = append(g.slots, slot{})
		g.marks = append(g.marks, 0)
	}
	s := &g.slots[h]
	s.Entry = e
	s.live = true
	s.cx1, s.cy1, s.cx2, s.cy2 = g.cellRange(e.Box)
	for cy := s.cy1; cy <= s.cy2; cy++ {
		row := cy << g.shift
		for cx := s.cx1; cx <= s.cx2; cx++ {
			g.cells[row|cx] = append(g.cells[row|cx], h)
		}
	}
	g.live++
	return h
}

// Remove видаляє запис з усіх його клітинок (swap-remove)
func (g *Grid) Remove(h Handle) {
	s := g.slot(h)
	for cy := s.cy1; cy <= s.cy2; cy++ {
		row := cy << g.shift
		for cx := s.cx1; cx <= s.cx2; cx++ {
			cell := g.cells[row|cx]
			for i, v := range cell {
				if v == h {
					last := len(cell) - 1
					cell[i] = cell[last]
					g.cells[row|cx] = cell[:last]
					break
				}
			}
		}
	}
	s.live = false
	g.free = append(g.free, h)
	g.live--
}

// Update переносить запис на новий AABB. Handle не змінюється.
func (g *Grid) Update(h Handle, box geom.AABB) {
	e := g.slot(h).Entry
	e.Box = box
	g.Remove(h)
	// Remove щойно поклав h на вершину free, тому Insert поверне його ж
	if got := g.Insert(e); got != h {
		panic("unreachable: reinsert must reuse the freed handle")
	}
}

// Entry повертає запис за handle
func (g *Grid) Entry(h Handle) Entry { return g.slot(h).Entry }

func (g *Grid) slot(h Handle) *slot {
	if h < 0 || int(h) >= len(g.slots) || !g.slots[h].live {
		panic(fmt.Sprintf("grid: invalid handle %d", h))
	}
	return &g.slots[h]
}

// Query дописує в buf усі handle, чий AABB перетинається з box.
// Кожен handle потрапляє в результат один раз.
func (g *Grid) Query(box geom.AABB, buf []Handle) []Handle {
	g.stamp++
	if g.stamp == 0 { // переповнення лічильника - скидаємо позначки
		clear(g.marks)
		g.stamp = 1
	}
	cx1, cy1, cx2, cy2 := g.cellRange(box)
	for cy := cy1; cy <= cy2; cy++ {
		row := cy << g.shift
		for cx := cx1; cx <= cx2; cx++ {
			for _, h := range g.cells[row|cx] {
				if g.marks[h] == g.stamp {
					continue
				}
				g.marks[h] = g.stamp
				if g.slots[h].Box.Overlaps(box) {
					buf = append(buf, h)
				}
			}
		}
	}
	return buf
}

// Len - кількість живих записів
func (g *Grid) Len() int { return g.live }

// MaxCellLoad - найбільша кількість записів в одній клітинці (для діагностики)
func (g *Grid) MaxCellLoad() (n int) {
	for _, c := range g.cells {
		n = max(n, len(c))
	}
	return
}
