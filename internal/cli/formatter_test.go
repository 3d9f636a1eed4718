package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/idelchi/mrdu/internal/diskusage"
	"github.com/idelchi/mrdu/internal/tree"
)

func item(name string, size uint64, children ...*diskusage.Item) *diskusage.Item {
	it := &diskusage.Item{Name: name, DiskSize: size}
	if len(children) > 0 {
		it.Children = children
	}

	return it
}

func fixtureResult() *diskusage.Result {
	return &diskusage.Result{
		Path: "tests/test_file",
		Root: item("test_file", 21800,
			item("test_dir_", 5520, item("test_file😄.unicode", 5380), item("note", 140)),
			item("test_dir_d2", 5520, item("test_file_d2", 5380), item("extra", 140)),
			item("test_dir_hidden_file", 5380, item(".test_file", 5380)),
			item("test_file_d1", 5380),
		),
		Files:   6,
		Dirs:    4,
		Elapsed: 1500 * time.Microsecond,
	}
}

func TestPrintTree(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	format := TreeFormat{Tree: tree.Config{MaxDepth: 1, MinPercent: 0.01}, Precision: 2}
	if err := PrintTree(fixtureResult(), nil, format, &buf); err != nil {
		t.Fatalf("PrintTree() error = %v", err)
	}

	want := strings.Join([]string{
		"",
		"Analyzing: tests/test_file",
		"",
		"└── 100.00% [22 kB] ── test_file",
		"    ├── 25.32% [5.5 kB] ── test_dir_",
		"    ├── 25.32% [5.5 kB] ── test_dir_d2",
		"    ├── 24.68% [5.4 kB] ── test_dir_hidden_file",
		"    └── 24.68% [5.4 kB] ── test_file_d1",
		"",
		"Elapsed time: 1.5ms",
		"",
	}, "\n")

	if got := buf.String(); got != want {
		t.Errorf("PrintTree() output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintTreeNested(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	result := fixtureResult()
	result.Skipped = 3

	volume := &disk.UsageStat{Fstype: "ext4", Total: 500_000_000_000, Used: 125_000_000_000, UsedPercent: 25}

	format := TreeFormat{Tree: tree.Config{MaxDepth: 2, MinPercent: 5}, Precision: 1, Binary: false}
	if err := PrintTree(result, volume, format, &buf); err != nil {
		t.Fatalf("PrintTree() error = %v", err)
	}

	out := buf.String()

	for _, want := range []string{
		"Volume: ext4, 125 GB used of 500 GB (25.0%)\n",
		"└── 100.0% [22 kB] ── test_file\n",
		"    ├── 25.3% [5.5 kB] ── test_dir_\n",
		"    │  └── 97.5% [5.4 kB] ── test_file😄.unicode\n",
		"    ├── 24.7% [5.4 kB] ── test_dir_hidden_file\n",
		"    │  └── 100.0% [5.4 kB] ── .test_file\n",
		"    └── 24.7% [5.4 kB] ── test_file_d1\n",
		"Skipped: 3 entries",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// 140 bytes of 5520 is about 2.5%, below the threshold.
	if strings.Contains(out, "note") || strings.Contains(out, "extra") {
		t.Errorf("output contains entries below the threshold:\n%s", out)
	}

	if strings.Contains(out, "\x1b[") {
		t.Errorf("output contains escape sequences with colors disabled")
	}
}

func TestPrintTreeColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	format := TreeFormat{Tree: tree.DefaultConfig(), Precision: 2, Color: true}
	if err := PrintTree(fixtureResult(), nil, format, &buf); err != nil {
		t.Fatalf("PrintTree() error = %v", err)
	}

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("colored output has no escape sequences:\n%s", buf.String())
	}
}

func TestBandColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		info    tree.DisplayInfo
		percent string
		size    string
	}{
		{name: "root", info: tree.Root(), percent: "#fafafa", size: "#7d7dfa"},
		{name: "large", info: tree.DisplayInfo{Level: 1, Percent: 50}, percent: "#ff6464", size: "#803264"},
		{name: "medium", info: tree.DisplayInfo{Level: 2, Percent: 10}, percent: "#ffde48", size: "#806f48"},
		{name: "small", info: tree.DisplayInfo{Level: 1, Percent: 9.99}, percent: "#64ff5a", size: "#32805a"},
	}

	for _, tt := range tests {
		if got := string(bandColor(tt.info, false)); got != tt.percent {
			t.Errorf("%s: percent color = %s, want %s", tt.name, got, tt.percent)
		}

		if got := string(bandColor(tt.info, true)); got != tt.size {
			t.Errorf("%s: size color = %s, want %s", tt.name, got, tt.size)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		percent   float64
		precision int
		want      string
	}{
		{percent: 100, precision: 2, want: "100.00%"},
		{percent: 5.5, precision: 2, want: " 5.50%"},
		{percent: 25.3211, precision: 0, want: " 25%"},
		{percent: 0.123456, precision: 4, want: " 0.1235%"},
	}

	for _, tt := range tests {
		if got := formatPercent(tt.percent, tt.precision); got != tt.want {
			t.Errorf("formatPercent(%v, %d) = %q, want %q", tt.percent, tt.precision, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	if got := formatSize(21800, false); got != "22 kB" {
		t.Errorf("formatSize(21800, false) = %q, want %q", got, "22 kB")
	}

	if got := formatSize(2048, true); got != "2.0 KiB" {
		t.Errorf("formatSize(2048, true) = %q, want %q", got, "2.0 KiB")
	}
}

func TestPrintJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	if err := PrintJSON(fixtureResult(), tree.Config{MaxDepth: 2, MinPercent: 50}, &buf); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}

	var report jsonReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, buf.String())
	}

	if report.Root == nil || report.Root.Name != "test_file" || report.Root.DiskSize != 21800 {
		t.Fatalf("root = %+v, want test_file of 21800 bytes", report.Root)
	}

	if report.Root.Percent != 100 || report.Root.Level != 0 {
		t.Errorf("root percent/level = %v/%d, want 100/0", report.Root.Percent, report.Root.Level)
	}

	if len(report.Root.Children) != 0 {
		t.Errorf("root has %d children, want none above 50%%", len(report.Root.Children))
	}

	if report.Files != 6 || report.Dirs != 4 {
		t.Errorf("files/dirs = %d/%d, want 6/4", report.Files, report.Dirs)
	}
}

func TestBuildJSONTreeNesting(t *testing.T) {
	t.Parallel()

	root := buildJSONTree(fixtureResult().Root, tree.Config{MaxDepth: 2, MinPercent: 0.01})

	if len(root.Children) != 4 {
		t.Fatalf("root has %d children, want 4", len(root.Children))
	}

	first := root.Children[0]
	if first.Name != "test_dir_" || first.Level != 1 || len(first.Children) != 2 {
		t.Fatalf("first child = %+v, want test_dir_ with 2 children", first)
	}

	if got := first.Children[1]; got.Name != "note" || got.Level != 2 {
		t.Errorf("second grandchild = %+v, want note at level 2", got)
	}

	if leaf := root.Children[3]; leaf.Name != "test_file_d1" || leaf.Children != nil {
		t.Errorf("last child = %+v, want leaf test_file_d1", leaf)
	}
}
