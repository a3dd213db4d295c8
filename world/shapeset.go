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

// Йоу, чат! ShapeSet - це форми однієї сутності на цей тік:
// де вона зараз (Current), куди хоче (Desired) і що вирішили (Intent).
// Майже завжди форма одна, тому перша лежить прямо в структурі,
// а решта - у звичайному слайсі.

package world

import (
	"fmt"

	"FlowyCollide/world/internal/collide"
	"FlowyCollide/world/internal/geom"
)

// ShapeList - список полігонів з місцем під один полігон без алокацій
type ShapeList struct {
	first *geom.Polygon
	rest  []*geom.Polygon
}

// Len - кількість полігонів
func (l *ShapeList) Len() int {
	if l.first == nil {
		return 0
	}
	return 1 + len(l.rest)
}

// At повертає i-й полігон
func (l *ShapeList) At(i int) *geom.Polygon {
	if i < 0 || i >= l.Len() {
		panic(fmt.Sprintf("world: shape index %d out of range [0,%d)", i, l.Len()))
	}
	if i == 0 {
		return l.first
	}
	return l.rest[i-1]
}

// Append додає полігон в кінець
func (l *ShapeList) Append(p *geom.Polygon) {
	if l.first == nil {
		l.first = p
		return
	}
	l.rest = append(l.rest, p)
}

// Each викликає fn для кожного полігону по порядку
func (l *ShapeList) Each(fn func(i int, p *geom.Polygon)) {
	if l.first == nil {
		return
	}
	fn(0, l.first)
	for i, p := range l.rest {
		fn(i+1, p)
	}
}

// AABB - спільний AABB усіх полігонів
func (l *ShapeList) AABB() geom.AABB {
	box := geom.EmptyAABB()
	l.Each(func(_ int, p *geom.Polygon) { box = box.Combine(p.AABB()) })
	return box
}

// release повертає буфери полігонів у пул і очищає список
func (l *ShapeList) release() {
	l.Each(func(_ int, p *geom.Polygon) { p.Release() })
	l.first, l.rest = nil, nil
}

// ShapeSet - поточні та бажані форми сутності плюс намір руху.
// Current.Len() завжди дорівнює Desired.Len().
type ShapeSet struct {
	Current ShapeList
	Desired ShapeList
	Intent  collide.Intent
}

// Add додає форму: сам полігон стає поточним, його копія - бажаним
func (s *ShapeSet) Add(p *geom.Polygon) {
	s.Current.Append(p)
	s.Desired.Append(p.Clone())
}

// Len - кількість форм
func (s *ShapeSet) Len() int { return s.Current.Len() }

// ResetDesired повертає бажані форми в поточну позицію
func (s *ShapeSet) ResetDesired() {
	s.Current.Each(func(i int, p *geom.Polygon) { p.CopyInto(s.Desired.At(i)) })
}

// Commit переносить бажані форми в поточні
func (s *ShapeSet) Commit() {
	s.Desired.Each(func(i int, p *geom.Polygon) { p.CopyInto(s.Current.At(i)) })
}

// TranslateDesired зсуває всі бажані форми
func (s *ShapeSet) TranslateDesired(dx, dy float32) {
	s.Desired.Each(func(_ int, p *geom.Polygon) { p.Translate(dx, dy) })
}

// RotateDesired повертає бажані форми навколо точки c
func (s *ShapeSet) RotateDesired(c geom.Point, theta float32) {
	s.Desired.Each(func(_ int, p *geom.Polygon) { p.RotateAbout(c, theta) })
}

// Release звільняє всі полігони. Викликається при видаленні сутності.
func (s *ShapeSet) Release() {
	s.Current.release()
	s.Desired.release()
}
