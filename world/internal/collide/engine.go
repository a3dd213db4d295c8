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

// Йоу, чат! Це серце всієї системи - рушій колізій на один тік.
// 1. Будуємо broad-phase з AABB усіх поточних та бажаних форм
// 2. Для кожного власника по зростанню індексу шукаємо кандидатів,
//    питаємо "а чи взагалі це важливо?" і робимо точний тест полігонів
// 3. Кожну пару видаємо рівно один раз
// Рушій одноразовий: другий виклик FindCollisions - помилка програміста.

package collide

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"FlowyCollide/world/internal/geom"
)

// ShapeRef - одна форма, яку бачить рушій
type ShapeRef struct {
	Poly    *geom.Polygon
	Owner   int   // індекс власника в масиві намірів
	Tag     uint8 // тип форми, рушій його не інтерпретує
	Desired bool  // true - бажана позиція, false - поточна
}

// Options - налаштування рушія
type Options struct {
	Policy     Policy
	BroadPhase BroadPhaseKind
	Resolution int // клітинок по осі для сітки
}

// DefaultOptions - сітка 64x64 та DefaultPolicy
func DefaultOptions() Options {
	return Options{Policy: DefaultPolicy, BroadPhase: BroadGrid, Resolution: 64}
}

// Stats - лічильники для діагностики
type Stats struct {
	Shapes      int // форм у broad-phase після побудови
	Candidates  int // пар, що пройшли broad-phase і політику
	NarrowTests int // точних тестів полігонів
	Pairs       int // знайдених пар
}

const noHandle = -1

// Engine - рушій колізій на один тік
type Engine struct {
	log     *zap.Logger
	refs    []ShapeRef
	matter  func(a, b int) bool
	intents []Intent
	opts    Options

	phase      broadPhase
	handles    []int   // handle кожної форми в broad-phase або noHandle
	owned      [][]int // форми кожного власника у вхідному порядку
	hasDesired []bool

	emitted  map[Pair]struct{}
	consumed bool
	cand     []int
	stats    Stats
}

// New будує рушій. intents - масив намірів, по одному на власника;
// рушій пише в нього напряму. matter може бути nil - тоді важлива кожна пара.
func New(log *zap.Logger, refs []ShapeRef, matter func(a, b int) bool, intents []Intent, opts Options) *Engine {
	if opts.Policy == 0 {
		opts.Policy = DefaultPolicy
	}
	e := &Engine{
		log:        log,
		refs:       refs,
		matter:     matter,
		intents:    intents,
		opts:       opts,
		handles:    make([]int, len(refs)),
		owned:      make([][]int, len(intents)),
		hasDesired: make([]bool, len(intents)),
		emitted:    make(map[Pair]struct{}),
	}

	bounds := geom.EmptyAABB()
	for i, r := range refs {
		if r.Poly == nil {
			log.Panic("Nil polygon in shape ref", zap.Int("ref", i))
		}
		if r.Owner < 0 || r.Owner >= len(intents) {
			log.Panic("Shape owner out of range",
				zap.Int("ref", i),
				zap.Int("owner", r.Owner),
				zap.Int("owners", len(intents)))
		}
		e.owned[r.Owner] = append(e.owned[r.Owner], i)
		e.hasDesired[r.Owner] = e.hasDesired[r.Owner] || r.Desired
		bounds = bounds.Combine(r.Poly.AABB())
	}

	// вставляємо у вхідному порядку - від цього залежить детермінізм
	e.phase = newBroadPhase(opts.BroadPhase, opts.Resolution, bounds)
	for i, r := range refs {
		e.handles[i] = noHandle
		if e.active(i) {
			e.handles[i] = e.phase.insert(i, r.Poly.AABB(), r.Desired)
		}
	}
	e.stats.Shapes = e.phase.len()
	return e
}

// active - чи бере форма участь у пошуку при поточному намірі власника.
// NotSet поводиться як GoToDesiredPos: рух ще ніхто не заблокував.
func (e *Engine) active(ri int) bool {
	r := e.refs[ri]
	switch e.intents[r.Owner] {
	case Delete:
		return false
	case StayAtCurrentPos:
		return !r.Desired
	}
	if r.Desired || e.opts.Policy&MoversLeaveCurrent == 0 {
		return true
	}
	return !e.hasDesired[r.Owner]
}

// FindCollisions знаходить усі пари, що перетинаються.
// Можна викликати лише один раз.
func (e *Engine) FindCollisions() []Pair {
	if e.consumed {
		e.log.Panic("FindCollisions called twice on the same engine")
	}
	e.consumed = true

	var out []Pair
	for _, refs := range e.owned {
		for _, ri := range refs {
			if e.handles[ri] != noHandle {
				e.probe(ri, true, &out)
			}
		}
	}
	e.stats.Pairs = len(out)
	e.log.Debug("Collisions found",
		zap.Int("shapes", e.stats.Shapes),
		zap.Int("candidates", e.stats.Candidates),
		zap.Int("narrow", e.stats.NarrowTests),
		zap.Int("pairs", len(out)),
		zap.Stringer("broad-phase", e.opts.BroadPhase),
	)
	return out
}

// UpdateIntent змінює намір власника idx посеред тіку, оновлює його форми
// в broad-phase і перевіряє лише їх. Нові пари дописуються в out.
func (e *Engine) UpdateIntent(idx int, intent Intent, out *[]Pair) {
	if idx < 0 || idx >= len(e.intents) {
		e.log.Panic("Intent index out of range", zap.Int("idx", idx), zap.Int("owners", len(e.intents)))
	}
	from := e.intents[idx]
	if !canTransition(from, intent) {
		e.log.Panic("Illegal move intent transition",
			zap.Int("idx", idx),
			zap.Stringer("from", from),
			zap.Stringer("to", intent))
	}
	e.intents[idx] = intent
	if out == nil {
		out = new([]Pair)
	}

	before := len(*out)
	for _, ri := range e.sync(idx) {
		e.probe(ri, false, out)
	}
	e.stats.Pairs += len(*out) - before
}

// sync приводить broad-phase у відповідність до наміру власника.
// Повертає щойно вставлені форми.
func (e *Engine) sync(owner int) (fresh []int) {
	for _, ri := range e.owned[owner] {
		want, have := e.active(ri), e.handles[ri] != noHandle
		switch {
		case want && !have:
			r := e.refs[ri]
			e.handles[ri] = e.phase.insert(ri, r.Poly.AABB(), r.Desired)
			fresh = append(fresh, ri)
		case !want && have:
			e.phase.remove(e.handles[ri])
			e.handles[ri] = noHandle
		}
	}
	return
}

// probe шукає пари для однієї форми. onlyHigher - брати лише власників
// з більшим індексом, так кожна пара перевіряється один раз.
func (e *Engine) probe(ri int, onlyHigher bool, out *[]Pair) {
	r := e.refs[ri]
	e.cand = e.phase.query(r.Poly.AABB(), e.cand[:0])
	slices.Sort(e.cand)
	for _, ci := range e.cand {
		c := e.refs[ci]
		if c.Owner == r.Owner || (onlyHigher && c.Owner < r.Owner) {
			continue
		}
		if !e.opts.Policy.allows(r.Desired, c.Desired) {
			continue
		}
		p := MakePair(r.Owner, c.Owner)
		if _, ok := e.emitted[p]; ok {
			continue
		}
		e.stats.Candidates++
		if e.matter != nil && !e.matter(p.Idx1, p.Idx2) {
			continue
		}
		e.stats.NarrowTests++
		if !r.Poly.HasCollision(c.Poly) {
			continue
		}
		e.emitted[p] = struct{}{}
		*out = append(*out, p)
	}
}

// Intent повертає поточний намір власника
func (e *Engine) Intent(idx int) Intent { return e.intents[idx] }

// Intents - масив намірів (той самий, що передали в New)
func (e *Engine) Intents() []Intent { return e.intents }

// Stats - лічильники за тік
func (e *Engine) Stats() Stats { return e.stats }

// Options - налаштування, з якими створено рушій
func (e *Engine) Options() Options { return e.opts }
