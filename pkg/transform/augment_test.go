package transform

import (
	"math/rand"
	"testing"

	"micropatch/internal/models"
)

func mustPatch(t *testing.T, data []float64, shape ...int) *models.Patch {
	t.Helper()
	p, err := models.NewPatch(data, shape...)
	if err != nil {
		t.Fatalf("Failed to create patch: %v", err)
	}
	return p
}

func equalData(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestRotateQuarterTurn pins the counter-clockwise quarter-turn
// convention on a 2x2 patch and its paired target.
func TestRotateQuarterTurn(t *testing.T) {
	patch := mustPatch(t, []float64{1, 2, 3, 4}, 2, 2)
	target := mustPatch(t, []float64{5, 6, 7, 8}, 2, 2)

	rotPatch, err := RotateAndFlip(patch, 1, 0)
	if err != nil {
		t.Fatalf("RotateAndFlip failed: %v", err)
	}
	rotTarget, err := RotateAndFlip(target, 1, 0)
	if err != nil {
		t.Fatalf("RotateAndFlip failed: %v", err)
	}

	if !equalData(rotPatch.Data, []float64{2, 4, 1, 3}) {
		t.Errorf("Expected patch rotation [2 4 1 3], got %v", rotPatch.Data)
	}
	if !equalData(rotTarget.Data, []float64{6, 8, 5, 7}) {
		t.Errorf("Expected target rotation [6 8 5 7], got %v", rotTarget.Data)
	}
}

// TestRotateAllStates verifies every rotation state on a 2x3 patch,
// including the axis swap for odd states.
func TestRotateAllStates(t *testing.T) {
	// 2x3 input:
	//   1 2 3
	//   4 5 6
	p := mustPatch(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	cases := []struct {
		rotate   int
		expected []float64
		h, w     int
	}{
		{0, []float64{1, 2, 3, 4, 5, 6}, 2, 3},
		{1, []float64{3, 6, 2, 5, 1, 4}, 3, 2},
		{2, []float64{6, 5, 4, 3, 2, 1}, 2, 3},
		{3, []float64{4, 1, 5, 2, 6, 3}, 3, 2},
	}

	for _, tc := range cases {
		out, err := RotateAndFlip(p, tc.rotate, 0)
		if err != nil {
			t.Fatalf("RotateAndFlip(rotate=%d) failed: %v", tc.rotate, err)
		}
		h, w := out.SpatialDims()
		if h != tc.h || w != tc.w {
			t.Errorf("Rotate %d: expected shape %dx%d, got %dx%d", tc.rotate, tc.h, tc.w, h, w)
		}
		if !equalData(out.Data, tc.expected) {
			t.Errorf("Rotate %d: expected %v, got %v", tc.rotate, tc.expected, out.Data)
		}
	}
}

// TestFlip verifies the left-right flip on its own.
func TestFlip(t *testing.T) {
	p := mustPatch(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	out, err := RotateAndFlip(p, 0, 1)
	if err != nil {
		t.Fatalf("RotateAndFlip failed: %v", err)
	}

	expected := []float64{3, 2, 1, 6, 5, 4}
	if !equalData(out.Data, expected) {
		t.Errorf("Expected flip %v, got %v", expected, out.Data)
	}
}

// TestFourFoldRotationIdentity verifies that four successive quarter
// turns return the original array exactly.
func TestFourFoldRotationIdentity(t *testing.T) {
	p := mustPatch(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, 3, 4)

	out := p
	var err error
	for i := 0; i < 4; i++ {
		out, err = RotateAndFlip(out, 1, 0)
		if err != nil {
			t.Fatalf("RotateAndFlip failed on turn %d: %v", i, err)
		}
	}

	h, w := out.SpatialDims()
	if h != 3 || w != 4 {
		t.Fatalf("Expected shape 3x4 after four turns, got %dx%d", h, w)
	}
	if !equalData(out.Data, p.Data) {
		t.Errorf("Four quarter turns did not return original: got %v", out.Data)
	}
}

// TestFlipInvolution verifies that flipping twice returns the
// original array exactly.
func TestFlipInvolution(t *testing.T) {
	p := mustPatch(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	once, err := RotateAndFlip(p, 0, 1)
	if err != nil {
		t.Fatalf("RotateAndFlip failed: %v", err)
	}
	twice, err := RotateAndFlip(once, 0, 1)
	if err != nil {
		t.Fatalf("RotateAndFlip failed: %v", err)
	}

	if !equalData(twice.Data, p.Data) {
		t.Errorf("Double flip did not return original: got %v", twice.Data)
	}
}

// TestIdentityCopyDoesNotAlias verifies that the (0, 0) identity state
// returns independent storage.
func TestIdentityCopyDoesNotAlias(t *testing.T) {
	p := mustPatch(t, []float64{1, 2, 3, 4}, 2, 2)

	out, err := RotateAndFlip(p, 0, 0)
	if err != nil {
		t.Fatalf("RotateAndFlip failed: %v", err)
	}

	if !equalData(out.Data, p.Data) {
		t.Fatalf("Identity state changed content: got %v", out.Data)
	}

	out.Data[0] = 999
	if p.Data[0] != 1 {
		t.Errorf("Mutating output changed input: got %f", p.Data[0])
	}
}

// TestRotateLeadingChannels verifies that leading channel axes are
// carried through and every plane receives the same rotation.
func TestRotateLeadingChannels(t *testing.T) {
	// Two 2x2 channels.
	p := mustPatch(t, []float64{
		1, 2, 3, 4,
		10, 20, 30, 40,
	}, 2, 2, 2)

	out, err := RotateAndFlip(p, 1, 0)
	if err != nil {
		t.Fatalf("RotateAndFlip failed: %v", err)
	}

	expected := []float64{
		2, 4, 1, 3,
		20, 40, 10, 30,
	}
	if !equalData(out.Data, expected) {
		t.Errorf("Expected per-channel rotation %v, got %v", expected, out.Data)
	}
	if out.Shape[0] != 2 {
		t.Errorf("Expected leading channel axis preserved, got shape %v", out.Shape)
	}
}

// TestRotateAndFlipInvalidStates verifies that out-of-range states
// are rejected.
func TestRotateAndFlipInvalidStates(t *testing.T) {
	p := mustPatch(t, []float64{1, 2, 3, 4}, 2, 2)

	for _, rotate := range []int{-1, 4, 7} {
		if _, err := RotateAndFlip(p, rotate, 0); err == nil {
			t.Errorf("Expected error for rotate state %d", rotate)
		}
	}
	for _, flip := range []int{-1, 2} {
		if _, err := RotateAndFlip(p, 0, flip); err == nil {
			t.Errorf("Expected error for flip state %d", flip)
		}
	}
}

// TestAugmentDeterminism verifies that a fixed seed yields identical
// outputs on every call.
func TestAugmentDeterminism(t *testing.T) {
	patch := mustPatch(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 3, 3)
	target := mustPatch(t, []float64{9, 8, 7, 6, 5, 4, 3, 2, 1}, 3, 3)

	for _, seed := range []int64{0, 1, 42, 12345} {
		firstPatch, firstTarget, err := Augment(patch, target, seed)
		if err != nil {
			t.Fatalf("Augment(seed=%d) failed: %v", seed, err)
		}

		for call := 0; call < 3; call++ {
			againPatch, againTarget, err := Augment(patch, target, seed)
			if err != nil {
				t.Fatalf("Augment(seed=%d) failed on repeat: %v", seed, err)
			}
			if !equalData(againPatch.Data, firstPatch.Data) {
				t.Errorf("Seed %d: patch output changed between calls", seed)
			}
			if !equalData(againTarget.Data, firstTarget.Data) {
				t.Errorf("Seed %d: target output changed between calls", seed)
			}
		}
	}
}

// TestAugmentMatchesDrawnState verifies that Augment applies exactly
// the rotation and flip drawn from a generator seeded the same way.
func TestAugmentMatchesDrawnState(t *testing.T) {
	patch := mustPatch(t, []float64{1, 2, 3, 4}, 2, 2)
	target := mustPatch(t, []float64{5, 6, 7, 8}, 2, 2)

	for seed := int64(0); seed < 16; seed++ {
		rng := rand.New(rand.NewSource(seed))
		rotateState := rng.Intn(4)
		flipState := rng.Intn(2)

		expectedPatch, err := RotateAndFlip(patch, rotateState, flipState)
		if err != nil {
			t.Fatalf("RotateAndFlip failed: %v", err)
		}
		expectedTarget, err := RotateAndFlip(target, rotateState, flipState)
		if err != nil {
			t.Fatalf("RotateAndFlip failed: %v", err)
		}

		gotPatch, gotTarget, err := Augment(patch, target, seed)
		if err != nil {
			t.Fatalf("Augment(seed=%d) failed: %v", seed, err)
		}

		if !equalData(gotPatch.Data, expectedPatch.Data) {
			t.Errorf("Seed %d: patch does not match drawn state (%d, %d)", seed, rotateState, flipState)
		}
		if !equalData(gotTarget.Data, expectedTarget.Data) {
			t.Errorf("Seed %d: target does not match drawn state (%d, %d)", seed, rotateState, flipState)
		}
	}
}

// TestAugmentJointConsistency passes the same unique-valued index map
// as both patch and target and verifies both outputs are identical,
// proving the two arrays received the same rotation and flip.
func TestAugmentJointConsistency(t *testing.T) {
	data := make([]float64, 5*7)
	for i := range data {
		data[i] = float64(i)
	}
	indexMap := mustPatch(t, data, 5, 7)

	for seed := int64(0); seed < 32; seed++ {
		a, b, err := Augment(indexMap, indexMap.Clone(), seed)
		if err != nil {
			t.Fatalf("Augment(seed=%d) failed: %v", seed, err)
		}
		if !equalData(a.Data, b.Data) {
			t.Errorf("Seed %d: patch and target transformed differently", seed)
		}
	}
}

// TestAugmentChannelMismatchAllowed verifies that patch and target may
// differ in channel count as long as the spatial plane matches.
func TestAugmentChannelMismatchAllowed(t *testing.T) {
	patch := mustPatch(t, make([]float64, 2*4*4), 2, 4, 4)
	target := mustPatch(t, make([]float64, 4*4), 4, 4)

	if _, _, err := Augment(patch, target, 7); err != nil {
		t.Errorf("Expected channel count mismatch to be allowed, got: %v", err)
	}
}

// TestAugmentShapeMismatch verifies that incompatible spatial shapes
// fail fast before any transformation.
func TestAugmentShapeMismatch(t *testing.T) {
	patch := mustPatch(t, make([]float64, 4*4), 4, 4)
	target := mustPatch(t, make([]float64, 4*5), 4, 5)

	if _, _, err := Augment(patch, target, 7); err == nil {
		t.Errorf("Expected error for mismatched spatial shapes")
	}
}
