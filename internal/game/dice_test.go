package game

import "testing"

// scriptedDice replays fixed draws and fails the test on any unexpected one.
type scriptedDice struct {
	t      *testing.T
	ints   []int
	floats []float64
}

func script(t *testing.T, ints []int, floats []float64) *scriptedDice {
	t.Helper()
	d := &scriptedDice{t: t, ints: ints, floats: floats}
	t.Cleanup(func() {
		if len(d.ints) > 0 || len(d.floats) > 0 {
			t.Errorf("unused draws: ints=%v floats=%v", d.ints, d.floats)
		}
	})
	return d
}

func (d *scriptedDice) IntN(n int) int {
	d.t.Helper()
	if len(d.ints) == 0 {
		d.t.Fatalf("unexpected IntN(%d) draw", n)
	}
	v := d.ints[0]
	d.ints = d.ints[1:]
	if v < 0 || v >= n {
		d.t.Fatalf("scripted IntN value %d out of range [0,%d)", v, n)
	}
	return v
}

func (d *scriptedDice) Float64() float64 {
	d.t.Helper()
	if len(d.floats) == 0 {
		d.t.Fatalf("unexpected Float64 draw")
	}
	v := d.floats[0]
	d.floats = d.floats[1:]
	return v
}

// pick returns the sampler draw that selects the i-th of n equally weighted kinds.
func pick(i, n int) float64 {
	return (float64(i) + 0.5) / float64(n)
}
