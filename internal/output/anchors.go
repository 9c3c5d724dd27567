package output

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

// anchorGenerator produces heading IDs the way goldmark's auto heading ID
// option does, so generated links resolve in rendered documents. Every heading
// of the document must be registered in order, including those without links.
type anchorGenerator struct {
	ids parser.IDs
}

func newAnchorGenerator() *anchorGenerator {
	return &anchorGenerator{ids: parser.NewContext().IDs()}
}

func (generator *anchorGenerator) heading(text string) string {
	return string(generator.ids.Generate([]byte(text), ast.KindHeading))
}
