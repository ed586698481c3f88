package formats

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const downtownSubset = `# IPL generated from Max file downtown.max
inst
1860, doontoon03, 0, -445.4862671, 1280.132813, 42.78390503, 1, 1, 1, 0, 0, 0, 1
1861, doontoon04, 0, -303.8299866, 1394.506836, 6.610000134, 1, 1, 1, 0, 0, 0, 1
1862, doontoon09, 0, -798.4454346, 1039.305176, 12.29159546, 1, 1, 1, 0, 0, 0, 1
end
cull
end
pick
end
path
end
`

func TestParseIPL_DowntownSubset(t *testing.T) {
	ipl, err := ParseIPL([]byte(downtownSubset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Instance{
		{
			ModelName: "doontoon03",
			Interior:  0,
			Position:  mgl32.Vec3{-445.48627, 42.783905, -1280.1328},
			Scale:     mgl32.Vec3{1, 1, 1},
			Rotation:  mgl32.Quat{W: 1, V: mgl32.Vec3{0, 0, 0}},
		},
		{
			ModelName: "doontoon04",
			Interior:  0,
			Position:  mgl32.Vec3{-303.83, 6.61, -1394.5068},
			Scale:     mgl32.Vec3{1, 1, 1},
			Rotation:  mgl32.Quat{W: 1, V: mgl32.Vec3{0, 0, 0}},
		},
		{
			ModelName: "doontoon09",
			Interior:  0,
			Position:  mgl32.Vec3{-798.44543, 12.291595, -1039.3052},
			Scale:     mgl32.Vec3{1, 1, 1},
			Rotation:  mgl32.Quat{W: 1, V: mgl32.Vec3{0, 0, 0}},
		},
	}

	if len(ipl.Instances) != len(want) {
		t.Fatalf("got %d instances, want %d", len(ipl.Instances), len(want))
	}
	for i, w := range want {
		if ipl.Instances[i] != w {
			t.Errorf("instance %d:\n got  %+v\n want %+v", i, ipl.Instances[i], w)
		}
	}
}

func TestParseIPL_LineCountPreservation(t *testing.T) {
	ipl, err := ParseIPL([]byte(downtownSubset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dataLines := len(ipl.Sections[instSection])
	if len(ipl.Instances) != dataLines {
		t.Errorf("got %d instances for %d inst lines", len(ipl.Instances), dataLines)
	}
}

func TestParseIPL_EmptyInstSection(t *testing.T) {
	ipl, err := ParseIPL([]byte("inst\nend\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ipl.Instances) != 0 {
		t.Errorf("got %d instances, want 0", len(ipl.Instances))
	}
}

func TestParseIPL_MissingInstSection(t *testing.T) {
	_, err := ParseIPL([]byte("cull\nend\npath\nend\n"))
	if !errors.Is(err, ErrMissingInstSection) {
		t.Errorf("got %v, want ErrMissingInstSection", err)
	}
}

func TestParseIPL_MalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "1860, doontoon03, 0, -445.5, 1280.1, 42.8, 1, 1, 1"},
		{"bad record id", "abc, doontoon03, 0, -445.5, 1280.1, 42.8, 1, 1, 1, 0, 0, 0, 1"},
		{"bad interior", "1860, doontoon03, x, -445.5, 1280.1, 42.8, 1, 1, 1, 0, 0, 0, 1"},
		{"bad position component", "1860, doontoon03, 0, oops, 1280.1, 42.8, 1, 1, 1, 0, 0, 0, 1"},
		{"bad quaternion component", "1860, doontoon03, 0, -445.5, 1280.1, 42.8, 1, 1, 1, 0, 0, 0, w"},
		{"negative interior", "1860, doontoon03, -2, -445.5, 1280.1, 42.8, 1, 1, 1, 0, 0, 0, 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "inst\n" + tt.line + "\nend\n"
			_, err := ParseIPL([]byte(text))
			if !errors.Is(err, ErrMalformedInstLine) {
				t.Errorf("got %v, want ErrMalformedInstLine", err)
			}
		})
	}
}

func TestParseIPL_MalformedLineAbortsParse(t *testing.T) {
	// One bad line in the middle fails the whole file, there is no
	// partial result.
	text := strings.Join([]string{
		"inst",
		"1, good01, 0, 1, 2, 3, 1, 1, 1, 0, 0, 0, 1",
		"2, broken",
		"3, good02, 0, 4, 5, 6, 1, 1, 1, 0, 0, 0, 1",
		"end",
	}, "\n")

	ipl, err := ParseIPL([]byte(text))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if ipl != nil {
		t.Errorf("expected nil result on error, got %+v", ipl)
	}
}

func TestParseIPL_CoordinateConversion(t *testing.T) {
	// Raw (a, b, c) must become (a, c, -b) for position and (a, c, b)
	// for scale, exactly.
	text := "inst\n1, box, 3, 10, 20, 30, 2, 4, 8, 0.5, 0.5, 0.5, 0.5\nend\n"
	ipl, err := ParseIPL([]byte(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := ipl.Instances[0]
	if want := (mgl32.Vec3{10, 30, -20}); inst.Position != want {
		t.Errorf("position %v, want %v", inst.Position, want)
	}
	if want := (mgl32.Vec3{2, 8, 4}); inst.Scale != want {
		t.Errorf("scale %v, want %v", inst.Scale, want)
	}
	if want := (mgl32.Quat{W: 0.5, V: mgl32.Vec3{0.5, 0.5, 0.5}}); inst.Rotation != want {
		t.Errorf("rotation %v, want %v", inst.Rotation, want)
	}
	if inst.Interior != 3 {
		t.Errorf("interior %d, want 3", inst.Interior)
	}
}
