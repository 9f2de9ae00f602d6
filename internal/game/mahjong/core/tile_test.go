package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileKindRoundTrip(t *testing.T) {
	for k := Kind(0); k < KindCount; k++ {
		tl := k.Tile()
		assert.True(t, tl.Valid(), "kind %d", k)
		assert.Equal(t, k, tl.Kind())
	}
	assert.Equal(t, Kind(0), tile("m1").Kind())
	assert.Equal(t, Kind(9), tile("p1").Kind())
	assert.Equal(t, Kind(33), tile("z7").Kind())
}

func TestParseTile(t *testing.T) {
	tests := []struct {
		in    string
		want  Tile
		valid bool
	}{
		{"m1", Tile{Suit: SuitMan, Rank: 1}, true},
		{"p9", Tile{Suit: SuitPin, Rank: 9}, true},
		{"s5", Tile{Suit: SuitSou, Rank: 5}, true},
		{"z7", Tile{Suit: SuitHonor, Rank: HonorRed}, true},
		{"z8", Tile{}, false},
		{"m0", Tile{}, false},
		{"x1", Tile{}, false},
		{"m10", Tile{}, false},
		{"", Tile{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTile(tt.in)
			if !tt.valid {
				assert.True(t, errors.Is(err, ErrInvalidTile))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestTileOffset(t *testing.T) {
	next, ok := tile("m8").Offset(1)
	assert.True(t, ok)
	assert.Equal(t, tile("m9"), next)

	_, ok = tile("m9").Offset(1)
	assert.False(t, ok)
	_, ok = tile("p1").Offset(-1)
	assert.False(t, ok)
	_, ok = tile("z1").Offset(1)
	assert.False(t, ok)
}

func TestTileJSON(t *testing.T) {
	data, err := json.Marshal([]Tile{tile("m1"), tile("z5")})
	require.NoError(t, err)
	assert.JSONEq(t, `["m1","z5"]`, string(data))

	var back []Tile
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tiles("m1 z5"), back)

	var bad Tile
	assert.Error(t, json.Unmarshal([]byte(`"q3"`), &bad))
}

func TestRemoveTilesLeavesInputOnFailure(t *testing.T) {
	hand := tiles("m1 m1 m2")
	out, ok := RemoveTiles(hand, tile("m1"), tile("m1"))
	require.True(t, ok)
	assert.Equal(t, tiles("m2"), out)

	_, ok = RemoveTiles(hand, tile("m2"), tile("m2"))
	assert.False(t, ok)
	assert.Equal(t, tiles("m1 m1 m2"), hand)
}

func TestGameErrorContextDoesNotLeak(t *testing.T) {
	err := ErrNotYourTurn.WithContext("player", "p1")
	assert.True(t, errors.Is(err, ErrNotYourTurn))
	assert.Empty(t, ErrNotYourTurn.Context)
	assert.True(t, IsIllegalMove(err))
	assert.False(t, IsIllegalMove(ErrInvariantViolated))
	assert.False(t, IsIllegalMove(errors.New("other")))
}
