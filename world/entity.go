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

// Йоу, чат! Сутність - це будь-що на мапі, що має форму:
// стіна, юніт, снаряд, декор. У кожної є ID, роль у зіткненнях,
// набір форм і поведінка, яка щотіку каже куди вона хоче.

package world

import (
	"sync/atomic"

	"github.com/google/uuid"

	"FlowyCollide/world/internal/geom"
)

// entityCounter - атомарний лічильник для генерації унікальних ID сутностей
var entityCounter atomic.Int32

// NewEntityID генерує новий унікальний ID для сутності
func NewEntityID() int32 {
	return entityCounter.Add(1)
}

// Entity - сутність світу
type Entity struct {
	EntityID int32
	UUID     uuid.UUID
	Role     Role
	Parent   int32 // EntityID того, хто породив (0 - ніхто), з ним не зіштовхуємось
	Shapes   ShapeSet
	Behavior Behavior
	Age      uint // скільки тіків прожила
}

// NewEntity створює сутність і забирає полігони у власність
func NewEntity(role Role, behavior Behavior, shapes ...*geom.Polygon) *Entity {
	e := &Entity{
		EntityID: NewEntityID(),
		UUID:     uuid.New(),
		Role:     role,
		Behavior: behavior,
	}
	for _, p := range shapes {
		e.Shapes.Add(p)
	}
	return e
}

// AABB - рамка поточних форм
func (e *Entity) AABB() geom.AABB { return e.Shapes.Current.AABB() }

// related - чи пов'язані сутності як батько й нащадок
func (e *Entity) related(other *Entity) bool {
	return (e.Parent != 0 && e.Parent == other.EntityID) ||
		(other.Parent != 0 && other.Parent == e.EntityID)
}
