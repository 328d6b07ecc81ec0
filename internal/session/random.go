package session

import (
	"github.com/ZacxDev/video-editor/pkg/types"
)

// ApplyRandomAdjustments replaces the active set with count distinct kinds
// at random values, in one commit. A count of zero or less picks 1 to 3 kinds;
// counts above the number of kinds are capped.
func (s *Session) ApplyRandomAdjustments(count int) ([]Adjustment, error) {
	if err := s.requireMedia(); err != nil {
		return nil, err
	}

	kinds := make([]types.AdjustmentKind, 0, len(types.AdjustmentKinds))
	for _, k := range types.AdjustmentKinds {
		if _, ok := s.tuning.Kind(k); ok {
			kinds = append(kinds, k)
		}
	}
	if count <= 0 {
		count = 1 + s.rng.IntN(3)
	}
	count = clamp(count, 1, len(kinds))

	s.adjustments = nil
	for _, idx := range s.rng.Perm(len(kinds))[:count] {
		spec, _ := s.tuning.Kind(kinds[idx])
		v := spec.RandomMin + s.rng.Float64()*(spec.RandomMax-spec.RandomMin)
		v = clamp(roundToStep(v, spec.Step), spec.RandomMin, spec.RandomMax)
		s.set(spec, v)
	}
	s.commit()
	return s.Adjustments(), nil
}
