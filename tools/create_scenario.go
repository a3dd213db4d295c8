package main

import (
	"flag"
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"

	"FlowyCollide/world"
)

// Генерує випадковий сценарій: рамка зі стін, всередині юніти,
// снаряди та трохи декору. Приклад:
//
//	go run ./tools -n 200 -seed 7 -out scenarios -name arena
var (
	count = flag.Int("n", 100, "Number of moving entities")
	size  = flag.Float64("size", 200, "World side length")
	seed  = flag.Int64("seed", 1, "Random seed")
	out   = flag.String("out", "scenarios", "Output directory")
	name  = flag.String("name", "random", "Scenario name")
)

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))
	side := float32(*size)

	s := &world.Scenario{
		Name:   *name,
		Bounds: [4]float32{0, 0, side, side},
	}

	// стіни по периметру
	const wall = 2
	for _, r := range [][4]float32{
		{0, 0, side, wall},
		{0, side - wall, side, side},
		{0, 0, wall, side},
		{side - wall, 0, side, side},
	} {
		s.Entities = append(s.Entities, world.EntitySpec{Role: "obstacle", Shapes: [][]world.Vertex{rect(r)}})
	}

	for i := 0; i < *count; i++ {
		x := wall + rng.Float32()*(side-4*wall)
		y := wall + rng.Float32()*(side-4*wall)
		switch k := rng.Intn(10); {
		case k < 6:
			s.Entities = append(s.Entities, world.EntitySpec{
				Role:     "mobile",
				Shapes:   [][]world.Vertex{ngon(x, y, 1+rng.Float32()*2, 3+rng.Intn(5), rng.Float32())},
				Velocity: velocity(rng, 1),
				Spin:     (rng.Float32() - 0.5) * 0.1,
			})
		case k < 9:
			// снаряд вилітає з попереднього юніта, якщо він є
			parent := 0
			if last := len(s.Entities); s.Entities[last-1].Role == "mobile" {
				parent = last
			}
			s.Entities = append(s.Entities, world.EntitySpec{
				Role:     "projectile",
				Shapes:   [][]world.Vertex{ngon(x, y, 0.3, 3, 0)},
				Velocity: velocity(rng, 4),
				Lifetime: uint(20 + rng.Intn(40)),
				Parent:   parent,
			})
		default:
			s.Entities = append(s.Entities, world.EntitySpec{
				Role:   "cosmetic",
				Shapes: [][]world.Vertex{ngon(x, y, 3, 6, 0)},
			})
		}
	}

	if err := world.NewProvider(*out).PutScenario(*name, s); err != nil {
		panic(err)
	}
	fmt.Printf("scenario %q with %d entities written to %s\n", *name, len(s.Entities), *out)
}

func rect(r [4]float32) []world.Vertex {
	return []world.Vertex{{r[0], r[1]}, {r[2], r[1]}, {r[2], r[3]}, {r[0], r[3]}}
}

// ngon - правильний n-кутник з центром (x, y)
func ngon(x, y, radius float32, n int, phase float32) []world.Vertex {
	v := make([]world.Vertex, n)
	for i := range v {
		s, c := math32.Sincos(phase + 2*math32.Pi*float32(i)/float32(n))
		v[i] = world.Vertex{x + radius*c, y + radius*s}
	}
	return v
}

func velocity(rng *rand.Rand, speed float32) world.Vertex {
	s, c := math32.Sincos(rng.Float32() * 2 * math32.Pi)
	return world.Vertex{speed * c, speed * s}
}
