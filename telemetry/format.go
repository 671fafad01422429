package telemetry

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robinvdvleuten/gnucash/output"
)

// slowStage is the duration from which a stage is highlighted.
const slowStage = 100 * time.Millisecond

// formatTimingTree writes the tree with box drawing branches:
//
//	check club.gnucash: 125ms
//	├─ loader.load: 115ms
//	│  ├─ gncxml.decode: 80ms (12 accounts, 840 transactions)
//	│  └─ book.build: 30ms
//	└─ check.run: 10ms (11 checks)
func formatTimingTree(w io.Writer, root *span, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s%s\n", name, formatDuration(root.duration()), formatCounts(root.counts))

	writeChildren(w, root, "", styles)
}

func writeChildren(w io.Writer, parent *span, prefix string, styles *output.Styles) {
	for i, child := range parent.children {
		branch, extension := "├─ ", "│  "
		if i == len(parent.children)-1 {
			branch, extension = "└─ ", "   "
		}

		d := child.duration()
		tree, timing := prefix+branch, formatDuration(d)
		if styles != nil {
			tree = styles.Dim(tree)
			if d >= slowStage {
				timing = styles.Warning(timing)
			} else {
				timing = styles.Dim(timing)
			}
		}
		_, _ = fmt.Fprintf(w, "%s%s: %s%s\n", tree, child.name, timing, formatCounts(child.counts))

		writeChildren(w, child, prefix+extension, styles)
	}
}

func formatCounts(counts []count) string {
	if len(counts) == 0 {
		return ""
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%d %s", c.n, c.unit)
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
