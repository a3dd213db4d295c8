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

// Йоу, чат! Головний герой narrow-phase - полігон.
// Вершини зберігаються як structure-of-arrays (окремо всі x, окремо всі y),
// а буфер добивається до кратного LaneWidth повторенням першої вершини.
// Так пакетне ядро завжди обробляє повні смуги і не читає сміття,
// а зайві ребра мають нульову довжину і ніколи не дають перетину.

package geom

import (
	"fmt"

	"github.com/chewxy/math32"
)

// noCopy змушує `go vet` (copylocks) лаятись на копіювання Polygon за значенням.
// Копія структури ділила б буфер з оригіналом - використовуйте CopyInto.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Polygon - замкнений полігон з кешованим AABB.
// Належить рівно одному власнику; ніколи не ділиться між власниками.
type Polygon struct {
	noCopy noCopy

	n      int        // кількість справжніх вершин
	stride int        // довжина кожного з чотирьох масивів, кратна LaneWidth
	buf    *[]float32 // xs | ys | rx | ry
	box    AABB
}

// NewPolygon створює полігон з вершин. Вершин має бути хоча б 3.
func NewPolygon(vertices []Point) *Polygon {
	if len(vertices) < 3 {
		panic(fmt.Sprintf("geom: polygon needs at least 3 vertices, got %d", len(vertices)))
	}
	p := new(Polygon)
	p.alloc(len(vertices))
	p.fill(vertices)
	return p
}

// Rect - зручний конструктор для прямокутника (x1,y1)-(x2,y2)
func Rect(x1, y1, x2, y2 float32) *Polygon {
	return NewPolygon([]Point{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}})
}

// alloc бере буфер з пулу. Хоча б одна вершина (замикаюча) завжди дублюється.
func (p *Polygon) alloc(n int) {
	p.n = n
	p.stride = laneCeil(n + 1)
	p.buf = getBuffer(p.stride)
}

// Release повертає буфер в пул. Після цього полігон використовувати не можна.
func (p *Polygon) Release() {
	if p.buf == nil {
		return
	}
	putBuffer(p.stride, p.buf)
	p.buf, p.n, p.stride = nil, 0, 0
}

func (p *Polygon) xs() []float32 { return (*p.buf)[0:p.stride] }
func (p *Polygon) ys() []float32 { return (*p.buf)[p.stride : 2*p.stride] }
func (p *Polygon) rx() []float32 { return (*p.buf)[2*p.stride : 3*p.stride] }
func (p *Polygon) ry() []float32 { return (*p.buf)[3*p.stride : 4*p.stride] }

func (p *Polygon) edges() edgeSet {
	return edgeSet{xs: p.xs(), ys: p.ys(), rx: p.rx(), ry: p.ry()}
}

// fill записує вершини, паддінг і ребра, потім перераховує AABB
func (p *Polygon) fill(vertices []Point) {
	xs, ys := p.xs(), p.ys()
	for i, v := range vertices {
		xs[i], ys[i] = v[0], v[1]
	}
	for i := p.n; i < p.stride; i++ {
		xs[i], ys[i] = xs[0], ys[0]
	}
	p.refresh()
}

// refresh перераховує вектори ребер та AABB після зміни вершин
func (p *Polygon) refresh() {
	xs, ys, rx, ry := p.xs(), p.ys(), p.rx(), p.ry()
	last := p.stride - 1
	for i := 0; i < last; i++ {
		rx[i] = xs[i+1] - xs[i]
		ry[i] = ys[i+1] - ys[i]
	}
	rx[last], ry[last] = 0, 0

	box := EmptyAABB()
	for i := 0; i < p.n; i++ {
		box = box.CombinePoint(Point{xs[i], ys[i]})
	}
	p.box = box
}

// Len - кількість вершин (без паддінгу)
func (p *Polygon) Len() int { return p.n }

// Vertex повертає i-ту вершину
func (p *Polygon) Vertex(i int) Point {
	if i < 0 || i >= p.n {
		panic(fmt.Sprintf("geom: vertex index %d out of range [0,%d)", i, p.n))
	}
	return Point{p.xs()[i], p.ys()[i]}
}

// Vertices копіює вершини в dst і повертає його
func (p *Polygon) Vertices(dst []Point) []Point {
	xs, ys := p.xs(), p.ys()
	for i := 0; i < p.n; i++ {
		dst = append(dst, Point{xs[i], ys[i]})
	}
	return dst
}

// AABB - кешований обмежувальний прямокутник
func (p *Polygon) AABB() AABB { return p.box }

// CopyInto копіює вміст полігону в dst.
// Буфери залишаються різними, тому зміни dst не впливають на p.
func (p *Polygon) CopyInto(dst *Polygon) {
	if dst == p {
		return
	}
	if dst.stride != p.stride {
		dst.Release()
		dst.stride = p.stride
		dst.buf = getBuffer(p.stride)
	}
	dst.n = p.n
	copy(*dst.buf, *p.buf)
	dst.box = p.box
}

// Clone - новий полігон з тими ж вершинами
func (p *Polygon) Clone() *Polygon {
	c := new(Polygon)
	p.CopyInto(c)
	return c
}

// SetVertices замінює координати на місці.
// Кількість вершин має збігатися - інакше це помилка того, хто викликає.
func (p *Polygon) SetVertices(vertices []Point) {
	if len(vertices) != p.n {
		panic(fmt.Sprintf("geom: SetVertices with %d vertices on a %d-vertex polygon", len(vertices), p.n))
	}
	p.fill(vertices)
}

// Reshape замінює полігон на новий з іншою кількістю вершин
func (p *Polygon) Reshape(vertices []Point) {
	if len(vertices) < 3 {
		panic(fmt.Sprintf("geom: polygon needs at least 3 vertices, got %d", len(vertices)))
	}
	if laneCeil(len(vertices)+1) != p.stride {
		p.Release()
		p.alloc(len(vertices))
	}
	p.n = len(vertices)
	p.fill(vertices)
}

// Translate зсуває всі вершини (разом з паддінгом) і AABB
func (p *Polygon) Translate(dx, dy float32) {
	xs, ys := p.xs(), p.ys()
	for i := range xs {
		xs[i] += dx
		ys[i] += dy
	}
	// вектори ребер від зсуву не змінюються
	p.box = p.box.Translate(dx, dy)
}

// RotateAboutOrigin повертає полігон на theta радіан навколо (0, 0)
func (p *Polygon) RotateAboutOrigin(theta float32) {
	sin, cos := math32.Sincos(theta)
	xs, ys := p.xs(), p.ys()
	for i := range xs {
		x, y := xs[i], ys[i]
		xs[i] = x*cos - y*sin
		ys[i] = x*sin + y*cos
	}
	p.refresh()
}

// RotateAbout повертає полігон навколо точки c
func (p *Polygon) RotateAbout(c Point, theta float32) {
	p.Translate(-c[0], -c[1])
	p.RotateAboutOrigin(theta)
	p.Translate(c[0], c[1])
}

// Centroid - середнє арифметичне вершин
func (p *Polygon) Centroid() Point {
	var c Point
	xs, ys := p.xs(), p.ys()
	for i := 0; i < p.n; i++ {
		c[0] += xs[i]
		c[1] += ys[i]
	}
	return c.Mul(1 / float32(p.n))
}

// HasCollision - true якщо хоч одне ребро p перетинає хоч одне ребро other.
// Спільні кінці ребер теж рахуються.
//
// Обмеження: точно співпадаючі колінеарні ребра не рахуються (RxS == 0),
// а полігон повністю всередині іншого без перетину ребер не знаходиться.
func (p *Polygon) HasCollision(other *Polygon) bool {
	if !p.box.touchClosed(other.box) {
		return false
	}
	// зовнішній цикл йде по справжніх ребрах, внутрішній - по смугах.
	// Обираємо порядок з меншою кількістю роботи.
	outer, inner := p, other
	if other.n*p.stride < p.n*other.stride {
		outer, inner = other, p
	}
	es := inner.edges()
	xs, ys, rx, ry := outer.xs(), outer.ys(), outer.rx(), outer.ry()
	for i := 0; i < outer.n; i++ {
		if activeKernel.anyCross(xs[i], ys[i], rx[i], ry[i], &es) {
			return true
		}
	}
	return false
}

// String - для логів і тестів
func (p *Polygon) String() string {
	return fmt.Sprint(p.Vertices(nil))
}
