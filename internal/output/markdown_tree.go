package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/mdwalk/internal/services/stream"
)

type markdownTreeRenderer struct {
	writer io.Writer
	header ReportHeader
	lines  treeLineBuilder
}

// NewMarkdownTreeRenderer renders tree events as a directory tree report.
func NewMarkdownTreeRenderer(writer io.Writer, header ReportHeader, showSizes bool) StreamRenderer {
	return &markdownTreeRenderer{
		writer: writer,
		header: header,
		lines:  treeLineBuilder{showSizes: showSizes},
	}
}

func (renderer *markdownTreeRenderer) Handle(event stream.Event) error {
	renderer.lines.handle(event)
	return nil
}

func (renderer *markdownTreeRenderer) Flush() error {
	if renderer.writer == nil {
		return fmt.Errorf("output: tree writer is nil")
	}
	if err := writeHeader(renderer.writer, treeReportTitle, renderer.header); err != nil {
		return err
	}
	var builder strings.Builder
	writeFencedBlock(&builder, "", renderer.lines.text())
	fmt.Fprintf(&builder, "\n# %s\n", treeReportFooter)
	_, err := io.WriteString(renderer.writer, builder.String())
	return err
}
