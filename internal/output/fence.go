package output

import "strings"

const minimumFenceLength = 3

// CodeFence returns a backtick fence longer than any backtick run in content.
func CodeFence(content string) string {
	longestRun := 0
	currentRun := 0
	for _, character := range content {
		if character == '`' {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}
	length := longestRun + 1
	if length < minimumFenceLength {
		length = minimumFenceLength
	}
	return strings.Repeat("`", length)
}

func writeFencedBlock(builder *strings.Builder, language string, content string) {
	fence := CodeFence(content)
	builder.WriteString(fence)
	builder.WriteString(language)
	builder.WriteString("\n")
	builder.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		builder.WriteString("\n")
	}
	builder.WriteString(fence)
	builder.WriteString("\n")
}
