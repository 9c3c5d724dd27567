package output

import (
	"fmt"
	"strings"

	"github.com/temirov/mdwalk/internal/services/stream"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
)

// treeLineBuilder turns directory and file events into tree diagram lines.
type treeLineBuilder struct {
	showSizes     bool
	ancestorsLast []bool
	lines         []string
}

func (builder *treeLineBuilder) handle(event stream.Event) {
	switch event.Kind {
	case stream.EventKindDirectory:
		if event.Directory == nil {
			return
		}
		if event.Directory.Phase == stream.DirectoryEnter {
			builder.enterDirectory(event.Directory)
		} else {
			builder.leaveDirectory(event.Directory)
		}
	case stream.EventKindFile:
		if event.File != nil {
			builder.addFile(event.File)
		}
	case stream.EventKindDirectoryError:
		if event.Err != nil {
			builder.addLine(true, fmt.Sprintf(directoryErrorLabelText, event.Err.Reason))
		}
	}
}

func (builder *treeLineBuilder) enterDirectory(directory *stream.DirectoryEvent) {
	if directory.Depth == 0 {
		builder.lines = append(builder.lines, directory.Name+directorySuffix)
		return
	}
	builder.addLine(directory.IsLast, directory.Name+directorySuffix)
	builder.ancestorsLast = append(builder.ancestorsLast, directory.IsLast)
}

func (builder *treeLineBuilder) leaveDirectory(directory *stream.DirectoryEvent) {
	if directory.Depth == 0 || len(builder.ancestorsLast) == 0 {
		return
	}
	builder.ancestorsLast = builder.ancestorsLast[:len(builder.ancestorsLast)-1]
}

func (builder *treeLineBuilder) addFile(file *stream.FileEvent) {
	label := file.Name
	if builder.showSizes {
		label += fmt.Sprintf(fileSizeSuffixFormat, file.SizeBytes)
	}
	builder.addLine(file.IsLast, label)
}

func (builder *treeLineBuilder) addLine(isLast bool, label string) {
	var line strings.Builder
	for _, ancestorIsLast := range builder.ancestorsLast {
		if ancestorIsLast {
			line.WriteString(treeLastPadding)
		} else {
			line.WriteString(treeBranchPadding)
		}
	}
	if isLast {
		line.WriteString(treeLastConnector)
	} else {
		line.WriteString(treeBranchConnector)
	}
	line.WriteString(label)
	builder.lines = append(builder.lines, line.String())
}

func (builder *treeLineBuilder) text() string {
	if len(builder.lines) == 0 {
		return ""
	}
	return strings.Join(builder.lines, "\n") + "\n"
}
