package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/idelchi/mrdu/internal/diskusage"
	"github.com/idelchi/mrdu/internal/tree"
)

// TreeFormat configures the tree output.
type TreeFormat struct {
	// Tree selects the displayed entries.
	Tree tree.Config
	// Precision is the number of decimal places of percentages.
	Precision int
	// Color enables ANSI colors.
	Color bool
	// Binary selects IEC units for sizes.
	Binary bool
}

// rgb is a 24-bit color.
type rgb struct {
	r, g, b uint8
}

func (c rgb) darken() rgb {
	return rgb{r: half(c.r), g: half(c.g), b: c.b}
}

func (c rgb) color() lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b))
}

// half halves a color channel, rounding up.
func half(v uint8) uint8 {
	return uint8((uint16(v) + 1) / 2) //nolint:gosec // Result is at most 128
}

//nolint:gochecknoglobals // Color palette
var (
	colorIndent = rgb{147, 147, 147}
	colorRoot   = rgb{250, 250, 250}
	colorLarge  = rgb{255, 100, 100}
	colorMedium = rgb{255, 222, 72}
	colorSmall  = rgb{100, 255, 90}
)

// bandColor picks the color of a line by its share of the parent.
// The size column uses a darker shade of the percentage color.
func bandColor(info tree.DisplayInfo, size bool) lipgloss.Color {
	var c rgb

	switch {
	case info.Level == 0:
		c = colorRoot
	case info.Percent >= 50: //nolint:mnd // Band limits
		c = colorLarge
	case info.Percent >= 10: //nolint:mnd // Band limits
		c = colorMedium
	default:
		c = colorSmall
	}

	if size {
		c = c.darken()
	}

	return c.color()
}

// painter applies foreground colors, or nothing when colors are disabled.
type painter struct {
	enabled  bool
	renderer *lipgloss.Renderer
}

func newPainter(w io.Writer, enabled bool) painter {
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.TrueColor)

	return painter{enabled: enabled, renderer: renderer}
}

func (p painter) paint(color lipgloss.Color, s string) string {
	if !p.enabled {
		return s
	}

	return p.renderer.NewStyle().Foreground(color).Render(s)
}

// formatSize returns the human readable form of a byte count.
func formatSize(size uint64, binary bool) string {
	if binary {
		return humanize.IBytes(size)
	}

	return humanize.Bytes(size)
}

// formatPercent pads the percentage so that 100% lines up with smaller values.
func formatPercent(percent float64, precision int) string {
	return fmt.Sprintf("%*.*f%%", precision+3, precision, percent) //nolint:mnd // Two digits and a dot
}

// PrintTree outputs the rendered tree, one line per displayed entry.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTree(result *diskusage.Result, volume *disk.UsageStat, format TreeFormat, writer io.Writer) error {
	p := newPainter(writer, format.Color)
	indent := colorIndent.color()

	fmt.Fprintf(writer, "\nAnalyzing: %s\n", result.Path)

	if volume != nil {
		fmt.Fprintf(writer, "Volume: %s, %s used of %s (%.1f%%)\n",
			volume.Fstype,
			formatSize(volume.Used, format.Binary),
			formatSize(volume.Total, format.Binary),
			volume.UsedPercent)
	}

	fmt.Fprintln(writer)

	for item, info := range tree.Render(result.Root, format.Tree) {
		_, err := fmt.Fprintf(writer, "%s %s %s %s %s\n",
			p.paint(indent, info.Indent()),
			p.paint(bandColor(info, false), formatPercent(info.Percent, format.Precision)),
			p.paint(bandColor(info, true), "["+formatSize(item.DiskSize, format.Binary)+"]"),
			p.paint(indent, tree.Spacing),
			item.Name)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(writer, "\nElapsed time: %v\n", result.Elapsed.Round(time.Microsecond))

	if result.Skipped > 0 {
		fmt.Fprintf(writer, "Skipped: %d entries (unreadable or on another filesystem)\n", result.Skipped)
	}

	return nil
}

// jsonNode is a displayed entry in JSON output.
type jsonNode struct {
	Name     string      `json:"name"`
	DiskSize uint64      `json:"disk_size"`
	Percent  float64     `json:"percent"`
	Level    int         `json:"level"`
	Children []*jsonNode `json:"children,omitempty"`
}

// jsonReport is the document written by PrintJSON.
type jsonReport struct {
	Path    string        `json:"path"`
	Files   int64         `json:"files"`
	Dirs    int64         `json:"dirs"`
	Skipped int64         `json:"skipped"`
	Elapsed time.Duration `json:"elapsed"`
	Root    *jsonNode     `json:"root"`
}

// buildJSONTree nests the rendered entries of result.
func buildJSONTree(root *diskusage.Item, cfg tree.Config) *jsonNode {
	var (
		top   *jsonNode
		stack []*jsonNode // stack[level] is the latest node at that level
	)

	for item, info := range tree.Render(root, cfg) {
		node := &jsonNode{Name: item.Name, DiskSize: item.DiskSize, Percent: info.Percent, Level: info.Level}

		if info.Level == 0 {
			top = node
		} else {
			parent := stack[info.Level-1]
			parent.Children = append(parent.Children, node)
		}

		stack = append(stack[:info.Level], node)
	}

	return top
}

// PrintJSON outputs the rendered tree in JSON format.
func PrintJSON(result *diskusage.Result, cfg tree.Config, writer io.Writer) error {
	report := jsonReport{
		Path:    result.Path,
		Files:   result.Files,
		Dirs:    result.Dirs,
		Skipped: result.Skipped,
		Elapsed: result.Elapsed,
		Root:    buildJSONTree(result.Root, cfg),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}
