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

// Йоу, чат! Broad-phase може бути сіткою або BVH деревом -
// для рушія це одне й те саме: вставити, видалити, знайти сусідів.

package collide

import (
	"fmt"

	"FlowyCollide/world/internal/bvh"
	"FlowyCollide/world/internal/geom"
	"FlowyCollide/world/internal/grid"
)

// BroadPhaseKind - яку структуру використовувати для broad-phase
type BroadPhaseKind uint8

const (
	BroadGrid BroadPhaseKind = iota
	BroadBVH
)

// ParseBroadPhase - "grid" або "bvh", порожній рядок - сітка
func ParseBroadPhase(s string) (BroadPhaseKind, error) {
	switch s {
	case "", "grid":
		return BroadGrid, nil
	case "bvh":
		return BroadBVH, nil
	}
	return 0, fmt.Errorf("unknown broad-phase %q", s)
}

func (k BroadPhaseKind) String() string {
	if k == BroadBVH {
		return "bvh"
	}
	return "grid"
}

// broadPhase - спільний контракт: без хибно-негативних результатів
type broadPhase interface {
	insert(ref int, box geom.AABB, desired bool) int
	remove(h int)
	// query дописує в buf індекси форм, чий AABB перетинається з box
	query(box geom.AABB, buf []int) []int
	len() int
}

func newBroadPhase(kind BroadPhaseKind, resolution int, bounds geom.AABB) broadPhase {
	if kind == BroadBVH {
		return &treePhase{}
	}
	g := grid.New(resolution)
	g.Reset(bounds)
	return &gridPhase{g: g}
}

// gridPhase - адаптер для grid.Grid
type gridPhase struct {
	g   *grid.Grid
	buf []grid.Handle
}

func (p *gridPhase) insert(ref int, box geom.AABB, desired bool) int {
	return int(p.g.Insert(grid.Entry{Index: ref, Box: box, Desired: desired}))
}

func (p *gridPhase) remove(h int) { p.g.Remove(grid.Handle(h)) }

func (p *gridPhase) query(box geom.AABB, buf []int) []int {
	p.buf = p.g.Query(box, p.buf[:0])
	for _, h := range p.buf {
		buf = append(buf, p.g.Entry(h).Index)
	}
	return buf
}

func (p *gridPhase) len() int { return p.g.Len() }

// treePhase - адаптер для bvh.Tree
type treePhase struct {
	tree  bvh.Tree[int]
	nodes []*bvh.Node[int]
	free  []int
}

func (p *treePhase) insert(ref int, box geom.AABB, _ bool) int {
	n := p.tree.Insert(box, ref)
	if k := len(p.free); k > 0 {
		h := p.free[k-1]
		p.free = p.free[:k-1]
		p.nodes[h] = n
		return h
	}
	p.nodes = append(p.nodes, n)
	return len(p.nodes) - 1
}

func (p *treePhase) remove(h int) {
	p.tree.Delete(p.nodes[h])
	p.nodes[h] = nil
	p.free = append(p.free, h)
}

func (p *treePhase) query(box geom.AABB, buf []int) []int {
	p.tree.Find(bvh.TouchBound(box), func(n *bvh.Node[int]) bool {
		if n.Box.Overlaps(box) {
			buf = append(buf, n.Value)
		}
		return true
	})
	return buf
}

func (p *treePhase) len() int { return p.tree.Len() }
