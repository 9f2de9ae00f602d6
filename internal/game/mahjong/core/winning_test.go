package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWinning(t *testing.T) {
	tests := []struct {
		name string
		hand string
		want bool
	}{
		{"straight plus honors", "m1 m2 m3 m4 m5 m6 m7 m8 m9 z1 z1 z2 z2 z2", true},
		{"triplets and runs", "m1 m1 m1 m2 m3 m4 m5 m5 m5 s7 s8 s9 z5 z5", true},
		{"nine gates", "m1 m1 m1 m2 m3 m4 m5 m5 m6 m7 m8 m9 m9 m9", true},
		{"pair choice matters", "p1 p1 p1 p2 p3 s2 s3 s4 s5 s6 s7 z3 z3 z3", true},
		{"isolated honor", "m1 m2 m3 m4 m5 m6 m7 m8 m9 m1 m2 m3 m4 z1", false},
		{"runs do not wrap", "m8 m9 m1 p1 p2 p3 p4 p5 p6 p7 p8 p9 z1 z1", false},
		{"honors never run", "z1 z2 z3 m1 m2 m3 m4 m5 m6 m7 m8 m9 p1 p1", false},
		{"runs do not cross suits", "m8 m9 p1 p2 p3 p4 p5 p6 p7 p8 p9 s1 z1 z1", false},
		{"after melds: pair only", "z1 z1", true},
		{"after melds: one set", "m1 m2 m3 p5 p5", true},
		{"after melds: broken", "m1 m2 m4 p5 p5", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWinning(tiles(tt.hand)))
		})
	}
}

func TestIsWinningStructuralPrecondition(t *testing.T) {
	// 13 张与 3 的倍数张都不可能和牌
	assert.False(t, IsWinning(tiles("m1 m2 m3 m4 m5 m6 m7 m8 m9 z1 z1 z2 z2")))
	assert.False(t, IsWinning(tiles("m1 m2 m3 m4 m5 m6 m7 m8 m9 z1 z1 z1")))
	assert.False(t, IsWinning(tiles("m1 m1 m1 m2 m2 m2 m3 m3 m3 m4 m4 m4 m5 m5 m5")))
	assert.False(t, IsWinning(nil))
}

func TestWinningTiles(t *testing.T) {
	assert.Equal(t, tiles("z1 z2"), WinningTiles(tiles("m1 m2 m3 m4 m5 m6 m7 m8 m9 z1 z1 z2 z2")))
	assert.Equal(t, tiles("m1 m4"), WinningTiles(tiles("m2 m3 p1 p2 p3 p4 p5 p6 s7 s8 s9 z1 z1")))
	assert.Empty(t, WinningTiles(tiles("m1 m4 m7 p2 p5 p8 s3 s6 s9 z1 z2 z3 z4")))
	// 14 张不是听牌状态
	assert.Nil(t, WinningTiles(tiles("m1 m2 m3 m4 m5 m6 m7 m8 m9 z1 z1 z2 z2 z2")))
}
