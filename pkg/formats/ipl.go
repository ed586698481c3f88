// Package formats provides parsers for GTA Vice City asset file formats.
// IPL (Item Placement List) parser for world object instances.
package formats

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// IPL format errors.
var (
	ErrMissingInstSection = errors.New("placement list has no inst section")
	ErrMalformedInstLine  = errors.New("malformed inst line")
)

// instSection is the tag of the instance section.
const instSection = "inst"

// instFieldCount is the fixed field count of an inst record:
// id, model name, interior, position xyz, scale xyz, rotation xyzw.
const instFieldCount = 13

// Instance is one placed object from the inst section. Position and
// scale are in the target left-handed Y-up convention; the rotation
// quaternion is carried through exactly as stored on disk and is not
// normalized here.
type Instance struct {
	ModelName string
	Interior  uint32
	Position  mgl32.Vec3
	Scale     mgl32.Vec3
	Rotation  mgl32.Quat
}

// IPL is a parsed placement list. Instances keep file line order; the
// order has no lookup meaning but makes decoding reproducible. Sections
// holds every section's raw lines, including categories this package
// does not interpret.
type IPL struct {
	Instances []Instance
	Sections  map[string][]string
}

// ParseIPL parses placement-list text from a byte slice. The inst
// section must be present even when empty; a file with no inst section
// fails with ErrMissingInstSection. Any malformed inst line aborts the
// whole parse, there is no partial-success mode.
func ParseIPL(data []byte) (*IPL, error) {
	sections, err := CategoriseLines(string(data))
	if err != nil {
		return nil, err
	}

	lines, ok := sections[instSection]
	if !ok {
		return nil, ErrMissingInstSection
	}

	ipl := &IPL{
		Instances: make([]Instance, 0, len(lines)),
		Sections:  sections,
	}

	for i, line := range lines {
		inst, err := parseInstLine(line)
		if err != nil {
			return nil, fmt.Errorf("inst line %d: %w", i+1, err)
		}
		ipl.Instances = append(ipl.Instances, inst)
	}

	return ipl, nil
}

// parseInstLine decodes one inst record. Field positions are fixed:
//
//	0    numeric record id (validated, not retained)
//	1    model name
//	2    interior id
//	3-5  position triple, source axes
//	6-8  scale triple, source axes
//	9-12 rotation quaternion as x, y, z, w
//
// The source encodes position and scale right-handed Z-up; the target is
// left-handed Y-up. A raw triple (a, b, c) becomes (a, c, -b) for
// position and (a, c, b) for scale.
func parseInstLine(line string) (Instance, error) {
	fields := SplitLine(line)
	if len(fields) < instFieldCount {
		return Instance{}, fmt.Errorf("%w: got %d fields, want %d", ErrMalformedInstLine, len(fields), instFieldCount)
	}

	if _, err := strconv.ParseInt(fields[0], 10, 64); err != nil {
		return Instance{}, fmt.Errorf("%w: record id %q", ErrMalformedInstLine, fields[0])
	}

	interior, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return Instance{}, fmt.Errorf("%w: interior id %q", ErrMalformedInstLine, fields[2])
	}

	position, err := parseVec3(fields[3:6], true)
	if err != nil {
		return Instance{}, err
	}
	scale, err := parseVec3(fields[6:9], false)
	if err != nil {
		return Instance{}, err
	}

	var quat [4]float32
	for i, f := range fields[9:13] {
		v, err := parseFloat(f)
		if err != nil {
			return Instance{}, err
		}
		quat[i] = v
	}

	return Instance{
		ModelName: fields[1],
		Interior:  uint32(interior),
		Position:  position,
		Scale:     scale,
		Rotation:  mgl32.Quat{W: quat[3], V: mgl32.Vec3{quat[0], quat[1], quat[2]}},
	}, nil
}

// parseVec3 reads a raw (a, b, c) triple and applies the axis swap.
// flip negates the new third component, which converts positions from
// the source Z-up right-handed space; scale takes the swap without the
// negation.
func parseVec3(fields []string, flip bool) (mgl32.Vec3, error) {
	a, err := parseFloat(fields[0])
	if err != nil {
		return mgl32.Vec3{}, err
	}
	b, err := parseFloat(fields[1])
	if err != nil {
		return mgl32.Vec3{}, err
	}
	c, err := parseFloat(fields[2])
	if err != nil {
		return mgl32.Vec3{}, err
	}
	if flip {
		b = -b
	}
	return mgl32.Vec3{a, c, b}, nil
}

func parseFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: numeric field %q", ErrMalformedInstLine, s)
	}
	return float32(v), nil
}
