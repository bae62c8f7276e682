package scorer_test

import (
	"testing"

	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/scorer"
	"github.com/stretchr/testify/require"
)

func samples(n int, d primitive.Difficulty, spacing uint32) []scorer.Sample {
	out := make([]scorer.Sample, n)
	for i := range out {
		out[i] = scorer.Sample{
			Difficulty: d,
			TimeStamp:  primitive.TimeInstant(uint32(i) * spacing),
		}
	}

	return out
}

func Test_DifficultyInitial(t *testing.T) {
	require.Equal(t, primitive.InitialDifficulty, scorer.CalculateDifficulty(nil, 10))
	require.Equal(t, primitive.InitialDifficulty, scorer.CalculateDifficulty(samples(1, 5, 60), 10))
}

func Test_DifficultyRetarget(t *testing.T) {
	const d = primitive.Difficulty(59_000_000_000_000)
	fixed := primitive.DifficultyFixHeight

	tt := []struct {
		name    string
		samples []scorer.Sample
		height  primitive.Height
		exp     primitive.Difficulty
	}{
		{"on-target-fixed", samples(60, d, 60), fixed, d},
		{"on-target-unfixed", samples(60, d, 60), fixed - 1, d / 59 * 60},
		{"too-fast-clamped", samples(60, d, 1), fixed, d * 21 / 20},
		{"too-slow-clamped", samples(60, d, 600), fixed, d * 19 / 20},
		{"same-timestamps", samples(60, d, 0), fixed, d * 21 / 20},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			got := scorer.CalculateDifficulty(tst.samples, tst.height)
			require.Equal(t, tst.exp, got)
		})
	}
}

func Test_DifficultyClampUsesNewestSample(t *testing.T) {
	s := samples(10, 1_000_000, 600)
	s[len(s)-1].Difficulty = 2_000_000

	// The mean is far below the newest sample so the result is held at 95%.
	got := scorer.CalculateDifficulty(s, primitive.DifficultyFixHeight)
	require.Equal(t, primitive.Difficulty(1_900_000), got)
}

func Test_DifficultyWindow(t *testing.T) {
	w := scorer.NewDifficultyWindow()
	require.Equal(t, primitive.InitialDifficulty, w.Next(2))

	for i := 0; i < primitive.BlocksForDifficulty+15; i++ {
		w.Push(scorer.Sample{Difficulty: 100, TimeStamp: primitive.TimeInstant(i * 60)})
	}
	require.Equal(t, primitive.BlocksForDifficulty, w.Len())

	s := w.Samples()
	require.Equal(t, primitive.TimeInstant(15*60), s[0].TimeStamp)

	cpy := w.Copy()
	cpy.Push(scorer.Sample{Difficulty: 1, TimeStamp: 1 << 20})
	require.Equal(t, s, w.Samples())
}
