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

// Йоу, чат! Тут вся "залізна" частина геометрії:
// - ширина смуги (lane) визначається по можливостях процесора
// - буфери координат беруться з пулу і мають розмір кратний ширині смуги
// - два ядра перевірки перетину ребер: скалярне та пакетне по 4 смуги

package geom

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// LaneWidth - на скільки елементів вирівнюється буфер вершин.
// Визначається один раз при старті: 8 для AVX2/AVX-512, інакше 4.
var LaneWidth = detectLaneWidth()

// batch - розмір блоку, який обробляє пакетне ядро за один крок.
// LaneWidth завжди кратна batch.
const batch = 4

func detectLaneWidth() int {
	if cpu.X86.HasAVX2 || cpu.X86.HasAVX512F {
		return 8
	}
	return batch
}

// laneCeil округлює n вгору до кратного LaneWidth
func laneCeil(n int) int {
	return (n + LaneWidth - 1) / LaneWidth * LaneWidth
}

// bufferPools - пули буферів, окремий пул на кожен розмір.
// Ключ - stride (кількість вершин з паддінгом).
var bufferPools sync.Map // map[int]*sync.Pool

func bufferPool(stride int) *sync.Pool {
	if p, ok := bufferPools.Load(stride); ok {
		return p.(*sync.Pool)
	}
	p, _ := bufferPools.LoadOrStore(stride, &sync.Pool{
		New: func() any {
			// xs | ys | rx | ry - чотири масиви в одному шматку пам'яті
			buf := make([]float32, 4*stride)
			return &buf
		},
	})
	return p.(*sync.Pool)
}

func getBuffer(stride int) *[]float32 { return bufferPool(stride).Get().(*[]float32) }

func putBuffer(stride int, buf *[]float32) { bufferPool(stride).Put(buf) }

// edgeSet - ребра полігону у вигляді structure-of-arrays.
// Ребро i: точка (xs[i], ys[i]) плюс вектор (rx[i], ry[i]).
// Довжина кожного масиву кратна batch.
type edgeSet struct {
	xs, ys, rx, ry []float32
}

// kernel перевіряє чи перетинає відрізок Q+uS хоч одне ребро з набору
type kernel interface {
	anyCross(qx, qy, sx, sy float32, edges *edgeSet) bool
	name() string
}

// crosses - параметричний тест перетину відрізків P+tR та Q+uS.
// t = (Q-P)xS / RxS, u = (Q-P)xR / RxS, перетин якщо 0<=t<=1 та 0<=u<=1.
// Ділення немає: після нормалізації знаку порівнюємо чисельники з
// знаменником напряму, тому результат точний в межах округлення добутків.
// Паралельні відрізки (RxS == 0) не рахуються - в тому числі вироджені
// ребра нульової довжини з паддінгу.
func crosses(px, py, rx, ry, qx, qy, sx, sy float32) bool {
	// явні float32(...) забороняють компілятору зливати множення в FMA,
	// інакше a.HasCollision(b) та b.HasCollision(a) могли б розійтись
	denom := float32(rx*sy) - float32(ry*sx)
	if denom == 0 {
		return false
	}
	qpx, qpy := qx-px, qy-py
	t := float32(qpx*sy) - float32(qpy*sx)
	u := float32(qpx*ry) - float32(qpy*rx)
	if denom < 0 {
		denom, t, u = -denom, -t, -u
	}
	return t >= 0 && t <= denom && u >= 0 && u <= denom
}

// scalarKernel - еталонна реалізація, ребро за ребром
type scalarKernel struct{}

func (scalarKernel) name() string { return "scalar" }

func (scalarKernel) anyCross(qx, qy, sx, sy float32, e *edgeSet) bool {
	for i := range e.xs {
		if crosses(e.xs[i], e.ys[i], e.rx[i], e.ry[i], qx, qy, sx, sy) {
			return true
		}
	}
	return false
}

// laneKernel рахує по batch ребер за раз без розгалужень всередині блоку.
// Результати смуг зводяться через OR, вихід - лише між блоками.
type laneKernel struct{}

func (laneKernel) name() string { return "lanes" }

func (laneKernel) anyCross(qx, qy, sx, sy float32, e *edgeSet) bool {
	for i := 0; i < len(e.xs); i += batch {
		px := (*[batch]float32)(e.xs[i : i+batch])
		py := (*[batch]float32)(e.ys[i : i+batch])
		rx := (*[batch]float32)(e.rx[i : i+batch])
		ry := (*[batch]float32)(e.ry[i : i+batch])

		var denom, t, u [batch]float32
		for k := 0; k < batch; k++ {
			denom[k] = float32(rx[k]*sy) - float32(ry[k]*sx)
			qpx, qpy := qx-px[k], qy-py[k]
			t[k] = float32(qpx*sy) - float32(qpy*sx)
			u[k] = float32(qpx*ry[k]) - float32(qpy*rx[k])
		}
		hit := false
		for k := 0; k < batch; k++ {
			d, tk, uk := denom[k], t[k], u[k]
			if d < 0 {
				d, tk, uk = -d, -tk, -uk
			}
			hit = hit || (d != 0 && tk >= 0 && tk <= d && uk >= 0 && uk <= d)
		}
		if hit {
			return true
		}
	}
	return false
}

// activeKernel обирається при старті: пакетне ядро там, де є SIMD
var activeKernel = pickKernel()

func pickKernel() kernel {
	if cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD {
		return laneKernel{}
	}
	return scalarKernel{}
}

// KernelName - яке ядро зараз працює (для логів)
func KernelName() string { return activeKernel.name() }

// UseScalarKernel примусово вмикає (або вимикає) скалярне ядро.
// Не потокобезпечно: викликати до початку тіків або в тестах.
func UseScalarKernel(scalar bool) {
	if scalar {
		activeKernel = scalarKernel{}
	} else {
		activeKernel = pickKernel()
	}
}
