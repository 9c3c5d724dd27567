package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/mdwalk/internal/services/stream"
	"github.com/temirov/mdwalk/internal/types"
)

// CombineRenderOptions controls the optional parts of a combined report.
type CombineRenderOptions struct {
	GenerateTOC bool
	ShowSizes   bool
}

type fileSection struct {
	relativePath string
	language     string
	text         string
	unreadable   bool
	reason       string
}

type markdownCombineRenderer struct {
	writer   io.Writer
	header   ReportHeader
	options  CombineRenderOptions
	overview treeLineBuilder
	sections []fileSection
	summary  types.ReportSummary
}

// NewMarkdownCombineRenderer renders combine events as a combined files report.
// The document is buffered until Flush because the overview tree and the table
// of contents precede the file sections.
func NewMarkdownCombineRenderer(writer io.Writer, header ReportHeader, options CombineRenderOptions) StreamRenderer {
	return &markdownCombineRenderer{
		writer:   writer,
		header:   header,
		options:  options,
		overview: treeLineBuilder{showSizes: options.ShowSizes},
		summary:  types.ReportSummary{GeneratedAt: header.GeneratedAt},
	}
}

func (renderer *markdownCombineRenderer) Handle(event stream.Event) error {
	renderer.overview.handle(event)
	switch event.Kind {
	case stream.EventKindContent:
		if event.Content == nil {
			return nil
		}
		renderer.sections = append(renderer.sections, fileSection{
			relativePath: event.Content.RelativePath,
			language:     LanguageForPath(event.Content.RelativePath),
			text:         event.Content.Text,
		})
	case stream.EventKindUnreadable:
		if event.Err == nil {
			return nil
		}
		renderer.sections = append(renderer.sections, fileSection{
			relativePath: event.Err.RelativePath,
			unreadable:   true,
			reason:       event.Err.Reason,
		})
	case stream.EventKindSummary:
		if event.Summary == nil {
			return nil
		}
		renderer.summary.IncludedFiles = event.Summary.IncludedFiles
		renderer.summary.UnreadableFiles = event.Summary.UnreadableFiles
		renderer.summary.TotalBytes = event.Summary.Bytes
		renderer.summary.TotalTokens = event.Summary.Tokens
		renderer.summary.Model = event.Summary.Model
	}
	return nil
}

func (renderer *markdownCombineRenderer) Flush() error {
	if renderer.writer == nil {
		return fmt.Errorf("output: combine writer is nil")
	}
	if err := writeHeader(renderer.writer, combineReportTitle, renderer.header); err != nil {
		return err
	}

	anchors := newAnchorGenerator()
	anchors.heading(combineReportTitle)

	var builder strings.Builder
	fmt.Fprintf(&builder, "## %s\n\n", directoryStructureHeading)
	anchors.heading(directoryStructureHeading)
	writeFencedBlock(&builder, "", renderer.overview.text())
	builder.WriteString("\n")

	if renderer.options.GenerateTOC && len(renderer.sections) > 0 {
		fmt.Fprintf(&builder, "## %s\n\n", tableOfContentsHeading)
		anchors.heading(tableOfContentsHeading)
		for index, section := range renderer.sections {
			headingText := escapeMarkdownText(section.relativePath)
			fmt.Fprintf(&builder, "%d. [%s](#%s)\n", index+1, headingText, anchors.heading(headingText))
		}
		builder.WriteString("\n")
	}

	for _, section := range renderer.sections {
		fmt.Fprintf(&builder, "%s\n\n## %s\n\n", sectionSeparator, escapeMarkdownText(section.relativePath))
		if section.unreadable {
			fmt.Fprintf(&builder, unreadablePlaceholder+"\n\n", section.reason)
			continue
		}
		writeFencedBlock(&builder, section.language, section.text)
		builder.WriteString("\n")
	}

	fmt.Fprintf(&builder, "%s\n\n## %s\n\n%s\n", sectionSeparator, summaryHeading, FormatSummaryLine(renderer.summary))
	_, err := io.WriteString(renderer.writer, builder.String())
	return err
}

// markdownTextEscaper escapes paths used as heading and link text. Escaping
// '#' keeps a trailing run from being read as a closing heading sequence,
// and escaping angle brackets keeps paths from becoming inline HTML.
var markdownTextEscaper = strings.NewReplacer(
	`\`, `\\`,
	`[`, `\[`,
	`]`, `\]`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`#`, `\#`,
	`<`, `\<`,
	`>`, `\>`,
)

// escapeMarkdownText returns text as it is written in headings and links.
// Anchors are generated from this escaped form, which is the raw heading
// line markdown renderers derive heading IDs from.
func escapeMarkdownText(text string) string {
	return markdownTextEscaper.Replace(text)
}
