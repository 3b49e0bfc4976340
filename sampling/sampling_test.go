package sampling

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
)

func TestPatternStratification(t *testing.T) {
	type spec struct {
		m, n uint32
		seed uint32
	}

	specs := []spec{
		{1, 1, 0},
		{2, 2, 7},
		{4, 4, 1},
		{3, 5, 42},
		{8, 2, 99},
	}

	for index, s := range specs {
		p := NewPattern(s.m, s.n, s.seed)
		cells := make(map[[2]int]bool)
		for sample := uint32(0); sample < p.Len(); sample++ {
			x, y := p.Square(sample)
			if x < 0 || x >= 1 || y < 0 || y >= 1 {
				t.Fatalf("[spec %d] sample %d (%f, %f) outside the unit square", index, sample, x, y)
			}

			cell := [2]int{int(x * float32(s.m)), int(y * float32(s.n))}
			if cells[cell] {
				t.Fatalf("[spec %d] more than one sample in cell %v", index, cell)
			}
			cells[cell] = true
		}

		if len(cells) != int(s.m*s.n) {
			t.Fatalf("[spec %d] expected %d occupied cells; got %d", index, s.m*s.n, len(cells))
		}
	}
}

func TestPatternIsDeterministic(t *testing.T) {
	a := NewPattern(4, 4, 1234)
	b := NewPattern(4, 4, 1234)
	c := NewPattern(4, 4, 1235)

	differs := false
	for s := uint32(0); s < a.Len(); s++ {
		ax, ay := a.Square(s)
		bx, by := b.Square(s)
		if ax != bx || ay != by {
			t.Fatalf("expected patterns with the same seed to match at sample %d", s)
		}
		cx, cy := c.Square(s)
		if ax != cx || ay != cy {
			differs = true
		}
	}

	if !differs {
		t.Fatal("expected patterns with different seeds to differ")
	}
}

func TestPatternZeroDims(t *testing.T) {
	p := NewPattern(0, 0, 3)
	if p.Len() != 1 {
		t.Fatalf("expected zero dims to be treated as a 1x1 pattern; got %d samples", p.Len())
	}
}

func TestPermute(t *testing.T) {
	for _, l := range []uint32{1, 2, 3, 7, 16, 33} {
		seen := make(map[uint32]bool)
		for i := uint32(0); i < l; i++ {
			v := permute(i, l, 0xdeadbeef)
			if v >= l {
				t.Fatalf("[l=%d] permuted value %d out of range", l, v)
			}
			seen[v] = true
		}
		if len(seen) != int(l) {
			t.Fatalf("[l=%d] expected a permutation; got %d distinct values", l, len(seen))
		}
	}
}

func TestDiskSamples(t *testing.T) {
	p := NewPattern(8, 8, 5)
	for s := uint32(0); s < p.Len(); s++ {
		x, y := p.Disk(s)
		if x*x+y*y > 1.0+1e-5 {
			t.Fatalf("disk sample %d (%f, %f) outside the unit disk", s, x, y)
		}
	}
}

func TestUniformDisk(t *testing.T) {
	const steps = 64

	inner := 0
	for i := 0; i < steps; i++ {
		for j := 0; j < steps; j++ {
			u := (float32(i) + 0.5) / steps
			v := (float32(j) + 0.5) / steps
			x, y := UniformDisk(u, v)

			r := math32.Sqrt(x*x + y*y)
			if expR := math32.Sqrt(v); math32.Abs(r-expR) > 1e-5 {
				t.Fatalf("[u %f, v %f] expected radius %f; got %f", u, v, expR, r)
			}
			if r < 0.5 {
				inner++
			}
		}
	}

	// The inner disk of radius 0.5 covers a quarter of the area
	if exp := steps * steps / 4; inner != exp {
		t.Fatalf("expected %d samples inside radius 0.5; got %d", exp, inner)
	}
}

func TestDirectionSamplers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		u, v := rng.Float32(), rng.Float32()

		dir := CosineHemisphere(u, v)
		if math32.Abs(dir.Len()-1) > 1e-4 {
			t.Fatalf("expected cosine hemisphere sample to be normalized; got length %f", dir.Len())
		}
		if dir[1] < 0 {
			t.Fatalf("expected cosine hemisphere sample to point towards +Y; got %v", dir)
		}

		dir = UniformSphere(u, v)
		if math32.Abs(dir.Len()-1) > 1e-4 {
			t.Fatalf("expected sphere sample to be normalized; got length %f", dir.Len())
		}
	}
}
