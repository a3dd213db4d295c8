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
	"FlowyCollide/world/internal/collide"
	"FlowyCollide/world/internal/geom"
)

// Env - що бачить поведінка під час першої фази тіку
type Env struct {
	Tick   uint
	Bounds geom.AABB // межі світу, порожні - без меж
}

// Behavior пропонує рух сутності на цей тік: змінює бажані форми
// і ставить Intent. Викликається паралельно для різних сутностей,
// тому чіпати можна лише саму сутність.
type Behavior interface {
	Propose(e *Entity, env Env)
}

// Static - нікуди не рухається
type Static struct{}

func (Static) Propose(e *Entity, _ Env) {
	e.Shapes.Intent = collide.StayAtCurrentPos
}

// Drift - рівномірний рух зі сталою швидкістю та обертанням
type Drift struct {
	Velocity geom.Point
	Spin     float32 // радіан за тік, навколо центроїда першої форми
}

func (d Drift) Propose(e *Entity, env Env) {
	if d.Velocity == (geom.Point{}) && d.Spin == 0 {
		e.Shapes.Intent = collide.StayAtCurrentPos
		return
	}
	if d.Spin != 0 && e.Shapes.Len() > 0 {
		e.Shapes.RotateDesired(e.Shapes.Desired.At(0).Centroid(), d.Spin)
	}
	e.Shapes.TranslateDesired(d.Velocity.X(), d.Velocity.Y())

	// вилетів за межі світу - прибираємо
	if !env.Bounds.IsEmpty() && !env.Bounds.Overlaps(e.Shapes.Desired.AABB()) {
		e.Shapes.Intent = collide.Delete
		return
	}
	e.Shapes.Intent = collide.GoToDesiredPos
}

// Expiring обгортає іншу поведінку і видаляє сутність через Lifetime тіків
type Expiring struct {
	Behavior
	Lifetime uint
}

func (x Expiring) Propose(e *Entity, env Env) {
	if e.Age >= x.Lifetime {
		e.Shapes.Intent = collide.Delete
		return
	}
	if x.Behavior != nil {
		x.Behavior.Propose(e, env)
	}
}
