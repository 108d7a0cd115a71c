package kernel

import "fmt"

// Tag classifies how the loop over an iname is realized on the target
// device. The zero value, TagNone, means the iname has no annotation and is
// realized as an ordinary sequential loop.
type Tag int

const (
	// TagNone marks an unannotated, sequential iname.
	TagNone Tag = iota

	// TagSequential forces an ordinary sequential loop.
	TagSequential

	// TagUnroll marks a loop that is fully unrolled by the code generator.
	TagUnroll

	// TagILP marks a loop-carried, independently unrollable iname. ILP
	// inames are parallel in principle but are realized as innermost
	// unrolled loops, so the scheduler treats them as breakable loops
	// rather than as hardware axes.
	TagILP

	// TagVectorize marks an iname whose iterations become vector lanes.
	// Vectorized loops must end up innermost.
	TagVectorize

	// TagGroupIndex maps an iname onto a hardware work-group axis.
	TagGroupIndex

	// TagLocalIndex maps an iname onto a hardware within-group axis.
	TagLocalIndex
)

var tagNames = map[Tag]string{
	TagNone:       "none",
	TagSequential: "seq",
	TagUnroll:     "unr",
	TagILP:        "ilp",
	TagVectorize:  "vec",
	TagGroupIndex: "g",
	TagLocalIndex: "l",
}

// String returns the short spelling of the tag as used in kernel
// descriptions.
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// ParseTag converts the textual spelling of a tag into its Tag value.
func ParseTag(s string) (Tag, error) {
	for tag, name := range tagNames {
		if s == name {
			return tag, nil
		}
	}
	return TagNone, fmt.Errorf("unknown iname tag %q", s)
}

// HardwareParallel reports whether the tag maps the iname onto a hardware
// parallel axis. Such inames are never explicitly entered or left by a
// schedule; they are considered always active.
func (t Tag) HardwareParallel() bool {
	return t == TagGroupIndex || t == TagLocalIndex
}

// Parallel reports whether the tag denotes any form of parallel execution,
// including ILP and vectorization. The scheduler carves ILP and vectorize
// inames back out of this set because it realizes them as real (innermost)
// loops.
func (t Tag) Parallel() bool {
	switch t {
	case TagGroupIndex, TagLocalIndex, TagILP, TagVectorize:
		return true
	default:
		return false
	}
}
