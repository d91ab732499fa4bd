package tree

import (
	"fmt"
	"strings"
)

// OpKind is the kind of storage operation a build asks for.
type OpKind string

const (
	OpEnsureDir OpKind = "ensure-dir"
	OpCopy      OpKind = "copy"
)

// FileClass classifies a source file.
type FileClass string

const (
	ClassContent FileClass = "content"
	ClassStatic  FileClass = "static"
	ClassControl FileClass = "control"
)

// Op is a single storage operation. Source is an absolute path in the source
// tree; Dest is a virtual path in the destination store.
type Op struct {
	Kind   OpKind
	Class  FileClass
	Source string
	Dest   string
}

func (o Op) String() string {
	if o.Kind == OpEnsureDir {
		return fmt.Sprintf("%s %s", o.Kind, o.Dest)
	}
	return fmt.Sprintf("%s %s -> %s", o.Kind, o.Source, o.Dest)
}

// Plan is the ordered list of storage operations a build produced.
type Plan []Op

// Copies returns the number of copy operations in the plan.
func (p Plan) Copies() int {
	n := 0
	for _, op := range p {
		if op.Kind == OpCopy {
			n++
		}
	}
	return n
}

// String renders one operation per line.
func (p Plan) String() string {
	var sb strings.Builder
	for _, op := range p {
		sb.WriteString(op.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
