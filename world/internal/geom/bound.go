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

// Йоу, чат! Сьогодні розбираємо AABB - прямокутник, вирівняний по осях.
// Саме по ним broad-phase відсіює пари, які точно не перетинаються.
// Важливо: AABB покриває напіввідкриту область [X1,X2) x [Y1,Y2),
// тобто прямокутники, які лише торкаються краєм, НЕ перетинаються.

package geom

import (
	"github.com/chewxy/math32"
)

// AABB - прямокутник з X1 <= X2 та Y1 <= Y2
type AABB struct {
	X1, Y1 float32 // нижній лівий кут (включно)
	X2, Y2 float32 // верхній правий кут (не включно)
}

// EmptyAABB повертає "максимально поганий" прямокутник: min=+Inf, max=-Inf.
// Перший же Combine перетворює його на нормальний, тому з нього зручно
// починати накопичення меж.
func EmptyAABB() AABB {
	return AABB{
		X1: math32.Inf(1), Y1: math32.Inf(1),
		X2: math32.Inf(-1), Y2: math32.Inf(-1),
	}
}

// Box будує AABB з двох кутів у будь-якому порядку
func Box(x1, y1, x2, y2 float32) AABB {
	return AABB{X1: min(x1, x2), Y1: min(y1, y2), X2: max(x1, x2), Y2: max(y1, y2)}
}

// IsEmpty - true для EmptyAABB та будь-якого вивернутого прямокутника
func (b AABB) IsEmpty() bool { return b.X1 > b.X2 || b.Y1 > b.Y2 }

// Width та Height - розміри по осях
func (b AABB) Width() float32  { return b.X2 - b.X1 }
func (b AABB) Height() float32 { return b.Y2 - b.Y1 }

// Min та Max - кути прямокутника як точки
func (b AABB) Min() Point { return Point{b.X1, b.Y1} }
func (b AABB) Max() Point { return Point{b.X2, b.Y2} }

// Combine повертає найменший AABB, що містить обидва
func (b AABB) Combine(other AABB) AABB {
	return AABB{
		X1: min(b.X1, other.X1), Y1: min(b.Y1, other.Y1),
		X2: max(b.X2, other.X2), Y2: max(b.Y2, other.Y2),
	}
}

// CombinePoint розширює AABB так, щоб він покривав точку
func (b AABB) CombinePoint(p Point) AABB {
	return AABB{
		X1: min(b.X1, p[0]), Y1: min(b.Y1, p[1]),
		X2: max(b.X2, p[0]), Y2: max(b.Y2, p[1]),
	}
}

// Overlaps перевіряє чи перетинаються два AABB.
// Перевірка симетрична: a.Overlaps(b) == b.Overlaps(a).
func (b AABB) Overlaps(other AABB) bool {
	return overlap1(b.X1, b.X2, other.X1, other.X2) &&
		overlap1(b.Y1, b.Y2, other.Y1, other.Y2)
}

// overlap1 - перетин двох інтервалів на одній осі.
// Інтервал [a1,a2) з a1 == a2 вироджується в точку {a1}:
// дві точки перетинаються лише коли збігаються,
// точка та інтервал - коли точка всередині [b1,b2).
func overlap1(a1, a2, b1, b2 float32) bool {
	if a1 > a2 || b1 > b2 {
		return false
	}
	switch aPoint, bPoint := a1 == a2, b1 == b2; {
	case aPoint && bPoint:
		return a1 == b1
	case aPoint:
		return b1 <= a1 && a1 < b2
	case bPoint:
		return a1 <= b1 && b1 < a2
	default:
		return a1 < b2 && b1 < a2
	}
}

// Contains - true якщо other повністю всередині b по обох осях
func (b AABB) Contains(other AABB) bool {
	return b.X1 <= other.X1 && other.X2 <= b.X2 &&
		b.Y1 <= other.Y1 && other.Y2 <= b.Y2
}

// Translate зсуває AABB на (dx, dy)
func (b AABB) Translate(dx, dy float32) AABB {
	return AABB{X1: b.X1 + dx, Y1: b.Y1 + dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// touchClosed - перевірка по замкнених інтервалах.
// Narrow-phase рахує спільні кінці ребер як перетин, тому
// перед ним не можна відкидати пари, які лише торкаються.
func (b AABB) touchClosed(other AABB) bool {
	return b.X1 <= other.X2 && other.X1 <= b.X2 &&
		b.Y1 <= other.Y2 && other.Y1 <= b.Y2
}
