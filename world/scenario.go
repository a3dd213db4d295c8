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
	"fmt"

	"FlowyCollide/world/internal/geom"
)

// Scenario - стартовий стан світу з YAML файлу
type Scenario struct {
	Name     string       `yaml:"name"`
	Bounds   [4]float32   `yaml:"bounds,flow"` // x1, y1, x2, y2; нулі - без меж
	Entities []EntitySpec `yaml:"entities"`
}

// EntitySpec - одна сутність сценарію
type EntitySpec struct {
	Role     string     `yaml:"role"`
	Shapes   [][]Vertex `yaml:"shapes"`
	Velocity Vertex     `yaml:"velocity,omitempty,flow"`
	Spin     float32    `yaml:"spin,omitempty"`
	Lifetime uint       `yaml:"lifetime,omitempty"`
	Parent   int        `yaml:"parent,omitempty"` // номер сутності-батька в списку, з одиниці
}

// Vertex - точка у вигляді [x, y]
type Vertex [2]float32

// WorldBounds - межі світу як AABB
func (s *Scenario) WorldBounds() geom.AABB {
	if s.Bounds == ([4]float32{}) {
		return geom.EmptyAABB()
	}
	return geom.Box(s.Bounds[0], s.Bounds[1], s.Bounds[2], s.Bounds[3])
}

// Spawn створює сутності сценарію в тому ж порядку
func (s *Scenario) Spawn() (entities []*Entity, err error) {
	defer func() {
		if err != nil {
			for _, e := range entities {
				e.Shapes.Release()
			}
			entities = nil
		}
	}()
	for i, spec := range s.Entities {
		if spec.Parent < 0 || spec.Parent > i {
			return entities, fmt.Errorf("entity #%d: parent #%d must be listed before it", i+1, spec.Parent)
		}
		e, err := spec.build()
		if err != nil {
			return entities, fmt.Errorf("entity #%d: %w", i+1, err)
		}
		if spec.Parent != 0 {
			e.Parent = entities[spec.Parent-1].EntityID
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (spec *EntitySpec) build() (*Entity, error) {
	role, err := ParseRole(spec.Role)
	if err != nil {
		return nil, err
	}
	if len(spec.Shapes) == 0 {
		return nil, fmt.Errorf("no shapes")
	}
	for j, shape := range spec.Shapes {
		if len(shape) < 3 {
			return nil, fmt.Errorf("shape #%d has %d vertices, need at least 3", j+1, len(shape))
		}
	}

	var behavior Behavior = Static{}
	if role != RoleObstacle {
		behavior = Drift{Velocity: geom.Point(spec.Velocity), Spin: spec.Spin}
	}
	if spec.Lifetime > 0 {
		behavior = Expiring{Behavior: behavior, Lifetime: spec.Lifetime}
	}

	e := NewEntity(role, behavior)
	for _, shape := range spec.Shapes {
		vertices := make([]geom.Point, len(shape))
		for k, v := range shape {
			vertices[k] = geom.Point(v)
		}
		e.Shapes.Add(geom.NewPolygon(vertices))
	}
	return e, nil
}
