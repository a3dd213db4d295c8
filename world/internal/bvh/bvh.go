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

// Йоу, чат! Сьогодні розберемо BVH дерево для нашої 2D геометрії!
// BVH (Bounding Volume Hierarchy) - кожен вузол тримає AABB, який
// накриває всі AABB своїх дітей. Листя - це об'єкти. Альтернатива сітці:
// не треба знати межі світу заздалегідь, і великі об'єкти не
// розмножуються по клітинках.

package bvh

import (
	"container/heap"
	"fmt"

	"FlowyCollide/world/internal/geom"
)

// Node - вузол дерева. Value має сенс лише в листі.
type Node[V any] struct {
	Box      geom.AABB
	Value    V
	parent   *Node[V]
	children [2]*Node[V] // nil для листя
	isLeaf   bool
}

// sibling повертає другу дитину батька
func (n *Node[V]) sibling() *Node[V] {
	p := n.parent
	switch n {
	case p.children[0]:
		return p.children[1]
	case p.children[1]:
		return p.children[0]
	}
	panic("unreachable: node is not a child of its parent")
}

// slotIn повертає вказівник на поле батька, де лежить n
func (n *Node[V]) slotIn(p *Node[V]) **Node[V] {
	switch n {
	case p.children[0]:
		return &p.children[0]
	case p.children[1]:
		return &p.children[1]
	}
	panic("unreachable: node is not a child of its parent")
}

// refit перераховує AABB вузла з дітей
func (n *Node[V]) refit() {
	n.Box = n.children[0].Box.Combine(n.children[1].Box)
}

// walk обходить піддерево, заходячи лише у вузли, що проходять test.
// Повертає false якщо foreach попросив зупинитись.
func (n *Node[V]) walk(test func(geom.AABB) bool, foreach func(*Node[V]) bool) bool {
	if n == nil || !test(n.Box) {
		return true
	}
	if n.isLeaf {
		return foreach(n)
	}
	return n.children[0].walk(test, foreach) && n.children[1].walk(test, foreach)
}

// cost - периметр AABB, евристика площі поверхні для 2D
func cost(b geom.AABB) float32 { return 2 * (b.Width() + b.Height()) }

// Tree - BVH дерево. Нульове значення - порожнє дерево.
type Tree[V any] struct {
	root *Node[V]
	size int
}

// Len - кількість листя
func (t *Tree[V]) Len() int { return t.size }

// Insert додає новий лист в дерево.
// 1. Шукаємо сусіда, з яким об'єднання найдешевше (branch and bound)
// 2. Створюємо новий батьківський вузол для сусіда і листа
// 3. Оновлюємо AABB вгору по дереву з ротаціями
func (t *Tree[V]) Insert(box geom.AABB, value V) *Node[V] {
	leaf := &Node[V]{Box: box, Value: value, isLeaf: true}
	t.size++
	if t.root == nil {
		t.root = leaf
		return leaf
	}

	best := t.root
	bestCost := cost(t.root.Box.Combine(box))
	bestSlot := &t.root

	leafCost := cost(box)
	queue := searchHeap[V]{{node: t.root, slot: &t.root}}
	for queue.Len() > 0 {
		it := heap.Pop(&queue).(searchItem[V])
		merged := cost(it.node.Box.Combine(box))
		if c := it.inherited + merged; c <= bestCost {
			best, bestCost, bestSlot = it.node, c, it.slot
		}
		// чи є сенс спускатись до дітей
		inherited := it.inherited + merged - cost(it.node.Box)
		if !it.node.isLeaf && inherited+leafCost < bestCost {
			for i := range it.node.children {
				heap.Push(&queue, searchItem[V]{
					node:      it.node.children[i],
					slot:      &it.node.children[i],
					inherited: inherited,
				})
			}
		}
	}

	branch := &Node[V]{
		Box:      best.Box.Combine(box),
		parent:   best.parent,
		children: [2]*Node[V]{best, leaf},
	}
	*bestSlot = branch
	best.parent = branch
	leaf.parent = branch

	for p := branch; p != nil; p = p.parent {
		p.refit()
		t.rotate(p)
	}
	return leaf
}

// Delete видаляє лист. Його брат займає місце батька.
func (t *Tree[V]) Delete(n *Node[V]) V {
	if !n.isLeaf {
		panic("bvh: Delete of an internal node")
	}
	t.size--
	if n.parent == nil {
		t.root = nil
		return n.Value
	}
	sib := n.sibling()
	grand := n.parent.parent
	if grand == nil {
		t.root = sib
		sib.parent = nil
	} else {
		*n.parent.slotIn(grand) = sib
		sib.parent = grand
		for p := grand; p != nil; p = p.parent {
			p.refit()
			t.rotate(p)
		}
	}
	n.parent = nil
	return n.Value
}

// Update переміщує лист на новий AABB, повертає новий вузол
func (t *Tree[V]) Update(n *Node[V], box geom.AABB) *Node[V] {
	return t.Insert(box, t.Delete(n))
}

// rotate пробує поміняти дитину вузла n з його братом,
// якщо від цього AABB вузла n стане меншим
func (t *Tree[V]) rotate(n *Node[V]) {
	if n.isLeaf || n.parent == nil {
		return
	}
	sib := n.sibling()
	current := cost(n.Box)
	for keep := range n.children {
		// дитина, яка піде наверх замість брата
		up := n.children[1-keep]
		if cost(n.children[keep].Box.Combine(sib.Box)) >= current {
			continue
		}
		*sib.slotIn(sib.parent) = up
		up.parent = n.parent
		n.children[1-keep] = sib
		sib.parent = n
		n.refit()
		return
	}
}

// Find викликає foreach для кожного листа, чий шлях проходить test.
// foreach повертає false щоб зупинити пошук.
func (t *Tree[V]) Find(test func(geom.AABB) bool, foreach func(*Node[V]) bool) {
	t.root.walk(test, foreach)
}

// Bounds - AABB кореня (EmptyAABB для порожнього дерева)
func (t *Tree[V]) Bounds() geom.AABB {
	if t.root == nil {
		return geom.EmptyAABB()
	}
	return t.root.Box
}

// String повертає текстове представлення дерева
func (t *Tree[V]) String() string {
	if t.root == nil {
		return "{}"
	}
	return t.root.String()
}

// String повертає текстове представлення вузла
func (n *Node[V]) String() string {
	if n.isLeaf {
		return fmt.Sprint(n.Value)
	}
	return fmt.Sprintf("{%v, %v}", n.children[0], n.children[1])
}

// TouchBound - тест для Find: AABB вузла перетинається з other.
// Внутрішні вузли перевіряються по замкнених межах, бо їхній AABB
// може лише торкатись other, а лист всередині - перетинатись.
func TouchBound(other geom.AABB) func(geom.AABB) bool {
	return func(b geom.AABB) bool {
		return b.X1 <= other.X2 && other.X1 <= b.X2 &&
			b.Y1 <= other.Y2 && other.Y1 <= b.Y2
	}
}

// searchHeap - черга з пріоритетом для пошуку найкращого сусіда
type (
	searchHeap[V any] []searchItem[V]
	searchItem[V any] struct {
		node      *Node[V]
		slot      **Node[V] // де лежить node у батька
		inherited float32   // накопичене збільшення периметрів предків
	}
)

func (h searchHeap[V]) Len() int           { return len(h) }
func (h searchHeap[V]) Less(i, j int) bool { return h[i].inherited < h[j].inherited }
func (h searchHeap[V]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *searchHeap[V]) Push(x any)        { *h = append(*h, x.(searchItem[V])) }
func (h *searchHeap[V]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
