package geometry

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestMap_FillScalePortrait(t *testing.T) {
	src := Ext(720, 1280)
	dst := Ext(1080, 1920)
	got := Map(R(100, 100, 200, 200), src, dst, false)
	want := R(150, 150, 300, 300)
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("unexpected mapping (-want +got):\n%s", diff)
	}
}

func TestMap_FillScaleMirrored(t *testing.T) {
	got := Map(R(100, 100, 200, 200), Ext(720, 1280), Ext(1080, 1920), true)
	want := R(780, 150, 930, 300)
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("unexpected mirrored mapping (-want +got):\n%s", diff)
	}
}

func TestMap_EmptyExtentReturnsSentinel(t *testing.T) {
	r := R(10, 20, 30, 40)
	cases := []struct {
		name     string
		src, dst Extent
	}{
		{"dest zero", Ext(720, 1280), Ext(0, 0)},
		{"dest zero width", Ext(720, 1280), Ext(0, 1920)},
		{"dest zero height", Ext(720, 1280), Ext(1080, 0)},
		{"src zero width", Ext(0, 1280), Ext(1080, 1920)},
		{"src zero height", Ext(720, 0), Ext(1080, 1920)},
		{"both zero", Ext(0, 0), Ext(0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, mirror := range []bool{false, true} {
				got := Map(r, tc.src, tc.dst, mirror)
				if got != (Rect{}) || !got.IsEmpty() {
					t.Fatalf("expected empty sentinel, got %v (mirror=%v)", got, mirror)
				}
			}
		})
	}
}

func TestMap_IdentityWhenExtentsEqual(t *testing.T) {
	e := Ext(640, 480)
	rects := []Rect{
		R(0, 0, 640, 480),
		R(12.5, 3, 99, 101.25),
		R(-20, -10, 10, 5),
		R(320, 240, 320, 240),
	}
	for _, r := range rects {
		if diff := cmp.Diff(r, Map(r, e, e, false), approx); diff != "" {
			t.Fatalf("identity mapping changed %v (-want +got):\n%s", r, diff)
		}
	}
}

func TestMap_MirrorIsInvolution(t *testing.T) {
	for _, e := range []Extent{Ext(640, 480), Ext(1, 1), Ext(1080, 1920)} {
		for _, r := range []Rect{R(0, 0, 1, 1), R(5, 6, 70, 80), R(-3, 2, 400, 900)} {
			once := Map(r, e, e, true)
			twice := Map(once, e, e, true)
			if diff := cmp.Diff(r, twice, approx); diff != "" {
				t.Fatalf("mirror twice not identity for %v in %v (-want +got):\n%s", r, e, diff)
			}
		}
	}
}

func TestMap_PreservesOrdering(t *testing.T) {
	extents := []Extent{Ext(1, 1), Ext(720, 1280), Ext(1280, 720), Ext(1080, 1920), Ext(333, 77), Ext(4000, 3000)}
	rects := []Rect{R(0, 0, 0, 0), R(1, 2, 3, 4), R(100, 100, 200, 200), R(-50, -50, 50, 50), R(0, 0, 4000, 3000)}
	for _, src := range extents {
		for _, dst := range extents {
			for _, r := range rects {
				for _, mirror := range []bool{false, true} {
					got := Map(r, src, dst, mirror)
					if got.Left > got.Right || got.Top > got.Bottom {
						t.Fatalf("ordering violated: map(%v, %v, %v, %v) = %v", r, src, dst, mirror, got)
					}
				}
			}
		}
	}
}

func TestMap_CropsOverflowAxis(t *testing.T) {
	// 4:3 landscape source filling a square view: height is the tight axis,
	// width overflows and is cropped evenly on both sides.
	tr := NewTransform(Ext(400, 300), Ext(300, 300), false)
	if tr.Scale() != 1 {
		t.Fatalf("expected scale 1, got %v", tr.Scale())
	}
	dx, dy := tr.Offset()
	if dx != -50 || dy != 0 {
		t.Fatalf("expected offsets (-50,0), got (%v,%v)", dx, dy)
	}
	got := tr.Apply(R(50, 0, 350, 300))
	if diff := cmp.Diff(R(0, 0, 300, 300), got, approx); diff != "" {
		t.Fatalf("visible window should cover the view (-want +got):\n%s", diff)
	}
}

func TestMapAll_AppendsInOrder(t *testing.T) {
	tr := NewTransform(Ext(100, 100), Ext(200, 200), false)
	buf := make([]Rect, 0, 4)
	out := MapAll(buf, []Rect{R(0, 0, 10, 10), R(50, 50, 60, 70)}, tr)
	want := []Rect{R(0, 0, 20, 20), R(100, 100, 120, 140)}
	if diff := cmp.Diff(want, out, approx); diff != "" {
		t.Fatalf("MapAll mismatch (-want +got):\n%s", diff)
	}
}

func TestExtentRotated(t *testing.T) {
	raw := Ext(640, 480)
	cases := []struct {
		rot  Rotation
		want Extent
	}{
		{Rotation0, Ext(640, 480)},
		{Rotation90, Ext(480, 640)},
		{Rotation180, Ext(640, 480)},
		{Rotation270, Ext(480, 640)},
	}
	for _, tc := range cases {
		if got := raw.Rotated(tc.rot); got != tc.want {
			t.Fatalf("rotation %d: expected %v, got %v", tc.rot, tc.want, got)
		}
	}
}

func TestRotationNormalize(t *testing.T) {
	cases := map[Rotation]Rotation{0: 0, 90: 90, 360: 0, 450: 90, -90: 270, -180: 180, 720: 0}
	for in, want := range cases {
		got := in.Normalize()
		if got != want || !got.Valid() {
			t.Fatalf("normalize(%d): expected %d, got %d (valid=%v)", in, want, got, got.Valid())
		}
	}
	if Rotation(45).Normalize().Valid() {
		t.Fatalf("45 degrees must not be valid")
	}
}

func TestParseLensFacing(t *testing.T) {
	if l, err := ParseLensFacing(" Front "); err != nil || l != LensFront || !l.Mirrored() {
		t.Fatalf("expected front/mirrored, got %v err=%v", l, err)
	}
	if l, err := ParseLensFacing("back"); err != nil || l != LensBack || l.Mirrored() {
		t.Fatalf("expected back/unmirrored, got %v err=%v", l, err)
	}
	if _, err := ParseLensFacing("side"); err == nil {
		t.Fatalf("expected error for unknown lens")
	}
}

func TestRectImageRectRoundsOutward(t *testing.T) {
	got := R(1.2, 2.8, 10.1, 11.9).ImageRect()
	want := image.Rect(1, 2, 11, 12)
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if back := FromImageRect(image.Rect(5, 6, 1, 2)); back != R(1, 2, 5, 6) {
		t.Fatalf("FromImageRect should canonicalize, got %v", back)
	}
}

func TestUpright_QuarterTurns(t *testing.T) {
	raw := Ext(100, 50)
	r := R(10, 5, 30, 15)
	cases := []struct {
		rot  Rotation
		want Rect
	}{
		{Rotation0, r},
		{Rotation90, R(35, 10, 45, 30)},
		{Rotation180, R(70, 35, 90, 45)},
		{Rotation270, R(5, 70, 15, 90)},
		{-90, R(5, 70, 15, 90)},
	}
	for _, tc := range cases {
		got := Upright(r, raw, tc.rot)
		if diff := cmp.Diff(tc.want, got, approx); diff != "" {
			t.Fatalf("rotation %d (-want +got):\n%s", tc.rot, diff)
		}
		up := raw.Rotated(tc.rot.Normalize())
		if got.Left < 0 || got.Top < 0 || got.Right > float64(up.Width) || got.Bottom > float64(up.Height) {
			t.Fatalf("rotation %d: %v outside upright extent %v", tc.rot, got, up)
		}
	}
	// four quarter turns return to the start
	cur, ext := r, raw
	for i := 0; i < 4; i++ {
		cur = Upright(cur, ext, Rotation90)
		ext = ext.Rotated(Rotation90)
	}
	if diff := cmp.Diff(r, cur, approx); diff != "" {
		t.Fatalf("four quarter turns (-want +got):\n%s", diff)
	}
}
