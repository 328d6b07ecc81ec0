package session

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/ZacxDev/video-editor/internal/config"
	"github.com/ZacxDev/video-editor/internal/media"
	"github.com/ZacxDev/video-editor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoaded(t *testing.T) *Session {
	t.Helper()
	s := New(Options{Rand: rand.New(rand.NewPCG(1, 2))})
	s.Load(media.NewHandle("/tmp/clip.mp4", media.Metadata{
		Duration: 60,
		Width:    1280,
		Height:   720,
		Size:     1_000_000,
	}))
	return s
}

func kinds(adjs []Adjustment) []types.AdjustmentKind {
	out := make([]types.AdjustmentKind, len(adjs))
	for i, a := range adjs {
		out[i] = a.Kind
	}
	return out
}

func TestNoMediaLoaded(t *testing.T) {
	s := New(Options{})

	_, err := s.ApplyAdjustment("brightness", 1.2)
	assert.Equal(t, KindNoMediaLoaded, KindOf(err))
	assert.Equal(t, KindNoMediaLoaded, KindOf(s.SetRotation(90)))
	_, err = s.Undo()
	assert.Equal(t, KindNoMediaLoaded, KindOf(err))
	_, err = s.TogglePlay()
	assert.Equal(t, KindNoMediaLoaded, KindOf(err))
	_, err = s.BeginExport()
	assert.Equal(t, KindNoMediaLoaded, KindOf(err))
}

func TestLoad_ResetsState(t *testing.T) {
	s := newLoaded(t)
	_, err := s.ApplyAdjustment("sepia", 0.5)
	require.NoError(t, err)
	require.NoError(t, s.SetRotation(90))
	_, err = s.SetPlaybackRate(2)
	require.NoError(t, err)

	first := s.Media()
	previous := s.Load(media.NewHandle("/tmp/other.mp4", media.Metadata{Duration: 5}))

	assert.Same(t, first, previous)
	assert.Empty(t, s.Adjustments())
	assert.True(t, s.Transform().IsIdentity())
	assert.Equal(t, 1.0, s.PlaybackRate())
	assert.Equal(t, 1, s.HistoryLen())
	assert.False(t, s.CanUndo())
}

func TestApplyAdjustment(t *testing.T) {
	s := newLoaded(t)

	a, err := s.ApplyDefaultAdjustment("brightness")
	require.NoError(t, err)
	assert.Equal(t, "brightness(1.3)", a.Effect)

	_, err = s.ApplyAdjustment("blur", 2)
	require.NoError(t, err)
	_, err = s.ApplyAdjustment("hue-rotate", 90)
	require.NoError(t, err)
	assert.Equal(t, "brightness(1.3) blur(2px) hue-rotate(90deg)", s.FilterCSS())

	// Re-applying updates in place and keeps insertion order.
	_, err = s.ApplyAdjustment("brightness", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "brightness(0.5) blur(2px) hue-rotate(90deg)", s.FilterCSS())
	assert.Equal(t, 5, s.HistoryLen())
}

func TestApplyAdjustment_Errors(t *testing.T) {
	s := newLoaded(t)

	_, err := s.ApplyAdjustment("sparkle", 1)
	assert.Equal(t, KindAdjustmentUnknown, KindOf(err))

	_, err = s.ApplyAdjustment("sepia", 1.5)
	assert.Equal(t, KindOutOfRange, KindOf(err))
	assert.Equal(t, "Sepia must be between 0 and 1", MessageOf(err))

	assert.Equal(t, 1, s.HistoryLen())
}

func TestAliasesResolveToSameKind(t *testing.T) {
	a := newLoaded(t)
	b := newLoaded(t)

	_, err := a.ApplyDefaultAdjustment("brillo")
	require.NoError(t, err)
	_, err = b.ApplyDefaultAdjustment("brightness")
	require.NoError(t, err)
	assert.Equal(t, a.Adjustments(), b.Adjustments())

	for alias, want := range map[string]types.AdjustmentKind{
		"Contraste":        types.Contrast,
		"saturate":         types.Saturation,
		"escala de grises": types.Grayscale,
		"matiz":            types.HueRotate,
		"desenfoque":       types.Blur,
	} {
		got, ok := ResolveKind(alias)
		require.True(t, ok, alias)
		assert.Equal(t, want, got, alias)
	}
}

func TestKindAliases_LongestFirst(t *testing.T) {
	aliases := KindAliases()
	require.Len(t, aliases, len(kindAliases))
	assert.Equal(t, "escala de grises", aliases[0])

	for i := 1; i < len(aliases); i++ {
		prev, cur := aliases[i-1], aliases[i]
		assert.True(t, len(prev) > len(cur) || (len(prev) == len(cur) && prev < cur), "%q before %q", prev, cur)
	}
	assert.Equal(t, aliases, KindAliases())
}

func TestRemoveAdjustment(t *testing.T) {
	s := newLoaded(t)
	_, err := s.RemoveAdjustment("sepia")
	assert.Equal(t, KindAdjustmentNotApplied, KindOf(err))

	_, err = s.ApplyAdjustment("sepia", 0.4)
	require.NoError(t, err)
	_, err = s.ApplyAdjustment("invert", 1)
	require.NoError(t, err)

	removed, err := s.RemoveAdjustment("sepia")
	require.NoError(t, err)
	assert.Equal(t, types.Sepia, removed.Kind)
	assert.Equal(t, "invert(1)", s.FilterCSS())

	require.NoError(t, s.ClearAdjustments())
	assert.Equal(t, "", s.FilterCSS())
}

func TestSetRotation_IsAbsolute(t *testing.T) {
	for _, deg := range []int{90, 180, 270, 360} {
		s := newLoaded(t)
		require.NoError(t, s.SetRotation(deg))
		require.NoError(t, s.SetRotation(deg))
		assert.Equal(t, deg%360, s.Transform().Rotation, "rotation %d", deg)
	}

	s := newLoaded(t)
	for _, deg := range []int{0, 45, -90, 450} {
		assert.Equal(t, KindInvalidRotation, KindOf(s.SetRotation(deg)), "rotation %d", deg)
	}
}

func TestRotateBy(t *testing.T) {
	s := newLoaded(t)
	deg, err := s.RotateBy(-90)
	require.NoError(t, err)
	assert.Equal(t, 270, deg)
	deg, err = s.RotateBy(180)
	require.NoError(t, err)
	assert.Equal(t, 90, deg)

	_, err = s.RotateBy(30)
	assert.Equal(t, KindInvalidRotation, KindOf(err))
}

func TestToggleFlip(t *testing.T) {
	s := newLoaded(t)
	on, err := s.ToggleFlip("h")
	require.NoError(t, err)
	assert.True(t, on)
	require.NoError(t, s.SetRotation(90))
	assert.Equal(t, "rotate(90deg) scaleX(-1)", s.TransformCSS())

	on, err = s.ToggleFlip("horizontal")
	require.NoError(t, err)
	assert.False(t, on)

	_, err = s.ToggleFlip("diagonal")
	assert.Equal(t, KindInvalidAxis, KindOf(err))
}

func TestUndoRedo_RestoresExactState(t *testing.T) {
	for n := 1; n <= config.DefaultHistoryCapacity; n++ {
		s := newLoaded(t)
		var firstAdj []Adjustment
		var firstTr Transform
		for i := 0; i < n; i++ {
			switch i % 3 {
			case 0:
				_, err := s.ApplyAdjustment("brightness", float64(i%30)/10)
				require.NoError(t, err)
			case 1:
				_, err := s.ToggleFlip("v")
				require.NoError(t, err)
			default:
				_, err := s.RotateBy(90)
				require.NoError(t, err)
			}
			if i == 0 {
				firstAdj, firstTr = s.Adjustments(), s.Transform()
			}
		}
		wantAdj, wantTr := s.Adjustments(), s.Transform()

		// The clean load snapshot is evicted by the commit that fills the
		// history, so the oldest reachable state is then the first commit.
		moves := min(n, config.DefaultHistoryCapacity-1)
		for i := 0; i < n; i++ {
			ok, err := s.Undo()
			require.NoError(t, err)
			require.Equal(t, i < moves, ok, "n=%d undo %d", n, i)
		}
		if n < config.DefaultHistoryCapacity {
			assert.Empty(t, s.Adjustments())
			assert.True(t, s.Transform().IsIdentity())
		} else {
			assert.Equal(t, firstAdj, s.Adjustments())
			assert.Equal(t, firstTr, s.Transform())
		}

		for i := 0; i < n; i++ {
			ok, err := s.Redo()
			require.NoError(t, err)
			require.Equal(t, i < moves, ok, "n=%d redo %d", n, i)
		}
		assert.Equal(t, wantAdj, s.Adjustments(), "n=%d", n)
		assert.Equal(t, wantTr, s.Transform(), "n=%d", n)
	}
}

func TestUndoRedo_BoundariesAreNoOps(t *testing.T) {
	s := newLoaded(t)
	ok, err := s.Undo()
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.Redo()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommitAfterUndo_Truncates(t *testing.T) {
	s := newLoaded(t)
	require.NoError(t, s.SetRotation(90))  // A
	require.NoError(t, s.SetRotation(180)) // B
	require.NoError(t, s.SetRotation(270)) // C

	_, _ = s.Undo()
	_, _ = s.Undo()
	assert.Equal(t, 90, s.Transform().Rotation)

	_, err := s.ToggleFlip("h") // D
	require.NoError(t, err)

	ok, err := s.Redo()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Transform{Rotation: 90, FlipHorizontal: true}, s.Transform())
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(20)
	for i := 0; i < 21; i++ {
		h.Push(Entry{Transform: Transform{Rotation: i}})
	}
	assert.Equal(t, 20, h.Len())
	assert.Equal(t, 19, h.Cursor())

	var last Entry
	steps := 0
	for h.CanUndo() {
		last, _ = h.Undo()
		steps++
	}
	assert.Equal(t, 19, steps)
	assert.Equal(t, 1, last.Transform.Rotation, "entry 0 was evicted")

	e, ok := h.Redo()
	require.True(t, ok)
	assert.Equal(t, 2, e.Transform.Rotation)
}

func TestHistory_SnapshotsAreIsolated(t *testing.T) {
	h := NewHistory(5)
	adjs := []Adjustment{{Kind: types.Sepia, Value: 1, Effect: "sepia(1)"}}
	h.Push(Entry{Adjustments: adjs})
	h.Push(Entry{})
	adjs[0].Value = 0.2

	e, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, 1.0, e.Adjustments[0].Value)
}

func TestApplyRandomAdjustments(t *testing.T) {
	s := newLoaded(t)
	tuning := s.Tuning()

	for i := 0; i < 50; i++ {
		before := s.HistoryLen()
		adjs, err := s.ApplyRandomAdjustments(3)
		require.NoError(t, err)
		require.Len(t, adjs, 3)

		seen := map[types.AdjustmentKind]bool{}
		for _, a := range adjs {
			assert.False(t, seen[a.Kind], "duplicate kind %s", a.Kind)
			seen[a.Kind] = true
			spec, _ := tuning.Kind(a.Kind)
			assert.GreaterOrEqual(t, a.Value, spec.RandomMin)
			assert.LessOrEqual(t, a.Value, spec.RandomMax)
		}
		assert.Equal(t, min(before+1, config.DefaultHistoryCapacity), s.HistoryLen())
	}
}

func TestApplyRandomAdjustments_Counts(t *testing.T) {
	s := newLoaded(t)
	adjs, err := s.ApplyRandomAdjustments(0)
	require.NoError(t, err)
	assert.True(t, len(adjs) >= 1 && len(adjs) <= 3)

	adjs, err = s.ApplyRandomAdjustments(100)
	require.NoError(t, err)
	assert.Len(t, adjs, len(types.AdjustmentKinds))
}

func TestApplyPreset_Vintage(t *testing.T) {
	s := newLoaded(t)
	_, err := s.ApplyAdjustment("invert", 1)
	require.NoError(t, err)
	before := s.HistoryLen()

	p, err := s.ApplyPreset("Vintage")
	require.NoError(t, err)
	assert.Equal(t, "vintage", p.Name)

	assert.Equal(t, []types.AdjustmentKind{types.Sepia, types.Contrast, types.Brightness}, kinds(s.Adjustments()))
	assert.Equal(t, "sepia(0.8) contrast(1.2) brightness(1.1)", s.FilterCSS())
	assert.Equal(t, before+1, s.HistoryLen())
}

func TestApplyPreset_Aliases(t *testing.T) {
	s := newLoaded(t)
	p, err := s.ApplyPreset("cinematico")
	require.NoError(t, err)
	assert.Equal(t, "cinematic", p.Name)

	_, err = s.ApplyPreset("noir")
	assert.Equal(t, KindPresetNotFound, KindOf(err))
}

func TestApplyAdjustments_ValidatesFirst(t *testing.T) {
	s := newLoaded(t)
	_, err := s.ApplyAdjustments([]config.PresetStep{
		{Kind: types.Brightness, Value: 1.1},
		{Kind: types.Blur, Value: 50},
	})
	assert.Equal(t, KindOutOfRange, KindOf(err))
	assert.Empty(t, s.Adjustments())
	assert.Equal(t, 1, s.HistoryLen())
}

func TestSetPlaybackRate(t *testing.T) {
	s := newLoaded(t)
	rate, err := s.SetPlaybackRate(1.6)
	require.NoError(t, err)
	assert.Equal(t, 1.5, rate)

	_, err = s.SetPlaybackRate(5)
	assert.Equal(t, KindOutOfRange, KindOf(err))
	assert.Equal(t, 1.5, s.PlaybackRate())

	_, err = s.SetPlaybackRate(0.1)
	assert.Equal(t, KindOutOfRange, KindOf(err))
}

func TestVolume(t *testing.T) {
	s := newLoaded(t)
	require.NoError(t, s.SetVolume(40))
	assert.Equal(t, KindOutOfRange, KindOf(s.SetVolume(150)))
	assert.Equal(t, 40, s.Volume())

	v, err := s.AdjustVolume(-50)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	v, err = s.AdjustVolume(500)
	require.NoError(t, err)
	assert.Equal(t, 100, v)
}

func TestPreview(t *testing.T) {
	s := newLoaded(t)
	_, err := s.ApplyAdjustment("contrast", 1.2)
	require.NoError(t, err)
	before := s.HistoryLen()

	_, err = s.PreviewAdjustment("brightness", 1.4)
	require.NoError(t, err)
	_, err = s.PreviewAdjustment("brightness", 1.8)
	require.NoError(t, err)
	assert.Equal(t, "contrast(1.2) brightness(1.8)", s.FilterCSS())
	assert.Equal(t, before, s.HistoryLen())

	require.NoError(t, s.CancelPreview())
	assert.Equal(t, "contrast(1.2)", s.FilterCSS())

	_, err = s.PreviewAdjustment("contrast", 2)
	require.NoError(t, err)
	ok, err := s.CommitPreview()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, before+1, s.HistoryLen())

	ok, err = s.CommitPreview()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlayback(t *testing.T) {
	s := newLoaded(t)
	playing, err := s.TogglePlay()
	require.NoError(t, err)
	assert.True(t, playing)

	pos, err := s.Seek(-SeekStepSeconds)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pos)
	pos, err = s.SeekTo(55)
	require.NoError(t, err)
	assert.Equal(t, 55.0, pos)
	pos, err = s.Seek(SeekStepSeconds)
	require.NoError(t, err)
	assert.Equal(t, 60.0, pos)

	require.NoError(t, s.Stop())
	assert.Equal(t, Playback{Duration: 60}, s.Playback())
}

func TestExportLocksPlayback(t *testing.T) {
	s := newLoaded(t)
	_, err := s.ApplyAdjustment("sepia", 1)
	require.NoError(t, err)
	_, err = s.SeekTo(12)
	require.NoError(t, err)

	state, err := s.BeginExport()
	require.NoError(t, err)
	assert.Equal(t, "sepia(1)", state.FilterCSS)
	assert.Equal(t, 0.0, s.Playback().Position)

	_, err = s.TogglePlay()
	assert.Equal(t, KindExportInProgress, KindOf(err))
	_, err = s.BeginExport()
	assert.Equal(t, KindExportInProgress, KindOf(err))

	s.EndExport()
	assert.Equal(t, 12.0, s.Playback().Position)
	_, err = s.TogglePlay()
	assert.NoError(t, err)
}

func TestSplit(t *testing.T) {
	s := newLoaded(t)
	require.NoError(t, s.SplitAt(30))
	require.NoError(t, s.SplitAt(10))
	assert.Equal(t, KindDuplicateSplit, KindOf(s.SplitAt(30)))
	assert.Equal(t, KindOutOfRange, KindOf(s.SplitAt(0)))
	assert.Equal(t, KindOutOfRange, KindOf(s.SplitAt(60)))

	_, err := s.SplitAtCurrent()
	assert.Equal(t, KindOutOfRange, KindOf(err), "position 0 is the start")

	_, err = s.SeekTo(45)
	require.NoError(t, err)
	at, err := s.SplitAtCurrent()
	require.NoError(t, err)
	assert.Equal(t, 45.0, at)

	info, err := s.SplitInfo()
	require.NoError(t, err)
	assert.Equal(t, SplitInfo{Segments: 4, SplitPoints: []float64{10, 30, 45}}, info)
}

func TestAnalyze(t *testing.T) {
	s := newLoaded(t)
	a, err := s.Analyze()
	require.NoError(t, err)
	assert.Equal(t, 30, a.EffectiveFPS)
	assert.Equal(t, 1.0, a.SizeMultiplier)
	assert.Equal(t, ImpactNormal, a.Impact)

	_, err = s.ApplyAdjustment("sepia", 1)
	require.NoError(t, err)
	_, err = s.ApplyAdjustment("blur", 1)
	require.NoError(t, err)
	require.NoError(t, s.SetRotation(90))
	_, err = s.SetPlaybackRate(2)
	require.NoError(t, err)

	a, err = s.Analyze()
	require.NoError(t, err)
	assert.Equal(t, 60, a.EffectiveFPS)
	assert.InDelta(t, 1.6, a.SizeMultiplier, 1e-9)
	assert.Equal(t, int64(1_600_000), a.EstimatedSize)
	assert.Equal(t, int64(213), a.EstimatedBitrate)
	assert.Equal(t, ImpactSignificant, a.Impact)
}

func TestNewUsesClock(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := New(Options{Now: func() time.Time { return at }, HistoryCapacity: 3})
	s.Load(media.NewHandle("/tmp/a.mp4", media.Metadata{Duration: 1}))
	for i := 0; i < 5; i++ {
		_, err := s.RotateBy(90)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, s.HistoryLen())
}
