// Package output renders stream events as markdown reports.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/mdwalk/internal/types"
	"github.com/temirov/mdwalk/internal/utils"
)

const (
	treeReportTitle    = "Directory Tree Report"
	treeReportFooter   = "End of Directory Tree Report"
	combineReportTitle = "Combined Files Report"

	directoryStructureHeading = "Directory Structure"
	tableOfContentsHeading    = "Table of Contents"
	summaryHeading            = "Summary"

	sectionSeparator        = "---"
	unreadablePlaceholder   = "*[File unreadable: %s]*"
	generatedOnLabel        = "Generated on: "
	sourceDirectoryLabel    = "Source directory: "
	goModuleLabel           = "Go module: "
	directorySuffix         = "/"
	fileSizeSuffixFormat    = " (%d bytes)"
	directoryErrorLabelText = "[error: %s]"
)

// ReportHeader holds the metadata lines written under a report title.
type ReportHeader struct {
	GeneratedAt     string
	SourceDirectory string
	ModulePath      string
}

func writeHeader(writer io.Writer, title string, header ReportHeader) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "# %s\n\n", title)
	if header.GeneratedAt != "" {
		fmt.Fprintf(&builder, "%s%s\n", generatedOnLabel, header.GeneratedAt)
	}
	fmt.Fprintf(&builder, "%s%s\n", sourceDirectoryLabel, inlineCode(header.SourceDirectory))
	if header.ModulePath != "" {
		fmt.Fprintf(&builder, "%s%s\n", goModuleLabel, inlineCode(header.ModulePath))
	}
	builder.WriteString("\n")
	_, err := io.WriteString(writer, builder.String())
	return err
}

func inlineCode(value string) string {
	if strings.Contains(value, "`") {
		return "`` " + value + " ``"
	}
	return "`" + value + "`"
}

// FormatSummaryLine renders the closing summary of a combined report.
func FormatSummaryLine(summary types.ReportSummary) string {
	label := "files"
	if summary.IncludedFiles == 1 {
		label = "file"
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "Summary: %d %s included, %d unreadable, %s", summary.IncludedFiles, label, summary.UnreadableFiles, utils.FormatFileSize(summary.TotalBytes))
	if summary.Model != "" {
		fmt.Fprintf(&builder, ", %d tokens (model: %s)", summary.TotalTokens, summary.Model)
	}
	if summary.GeneratedAt != "" {
		fmt.Fprintf(&builder, ", generated on %s", summary.GeneratedAt)
	}
	return builder.String()
}
