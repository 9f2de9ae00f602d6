package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShanten(t *testing.T) {
	tests := []struct {
		name string
		hand string
		want int
	}{
		{"complete hand", "m1 m2 m3 m4 m5 m6 m7 m8 m9 z1 z1 z2 z2 z2", 0},
		{"two pair wait", "m1 m2 m3 m4 m5 m6 m7 m8 m9 z1 z1 z2 z2", 0},
		{"nothing connects", "m1 m4 m7 p2 p5 p8 s3 s6 s9 z1 z2 z3 z4", 8},
		{"pairs only", "m1 m1 p2 p2 s3 s3 z1 z1 z2 z2 z3 z3 z4", 2},
		{"one run", "m1 m2 m3 p5 p9 s1 s5 s9 z1 z2 z3 z4 z5", 6},
		{"partial groups earn nothing", "m1 m2 p4 p5 s7 s8 z1 z2 z3 z4 z5 z6 z7", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Shanten(tiles(tt.hand)))
		})
	}
}

func TestShantenMonotonicUnderImprovement(t *testing.T) {
	tests := []struct {
		before string
		out    string
		in     string
	}{
		{"m1 m2 p1 p5 p9 s1 s5 s9 z1 z2 z3 z4 z5", "z5", "m3"},
		{"m1 m2 m3 p4 p5 s1 s5 s9 z1 z2 z3 z4 z5", "z4", "p6"},
		{"m1 m1 p4 p5 p6 s2 s3 s9 z1 z1 z3 z4 z5", "z5", "s4"},
		{"m5 m5 p4 p5 p6 s2 s3 s4 z1 z1 z3 z4 z5", "z4", "m5"},
	}
	for _, tt := range tests {
		before := tiles(tt.before)
		after, ok := RemoveTiles(before, tile(tt.out))
		assert.True(t, ok)
		after = append(after, tile(tt.in))
		assert.LessOrEqual(t, Shanten(after), Shanten(before), "%s: %s -> %s", tt.before, tt.out, tt.in)
	}
}

func TestShantenMemoMatchesDirectSearch(t *testing.T) {
	hand := tiles("m1 m1 m2 m2 m3 m3 p4 p5 p6 s7 s7 s8 s9 z1")
	first := Shanten(hand)
	assert.Equal(t, first, Shanten(hand))
	assert.Equal(t, first, ShantenCounts(CountsOf(hand)))
}

func TestIsTenpai(t *testing.T) {
	assert.True(t, IsTenpai(tiles("m1 m2 m3 m4 m5 m6 m7 m8 m9 z1 z1 z2 z2")))
	assert.False(t, IsTenpai(tiles("m1 m4 m7 p2 p5 p8 s3 s6 s9 z1 z2 z3 z4")))
}

func TestTenpaiDiscards(t *testing.T) {
	got := TenpaiDiscards(tiles("m1 m2 m3 m4 m5 m6 m7 m8 m9 z1 z1 z2 z2 z3"))
	assert.Equal(t, tiles("z3"), got)
	assert.Empty(t, TenpaiDiscards(tiles("m1 m4 m7 p2 p5 p8 s3 s6 s9 z1 z2 z3 z4 z5")))
}
