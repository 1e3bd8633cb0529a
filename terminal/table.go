package terminal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// FileInfo is one row of a listing.
type FileInfo struct {
	Name     string
	Type     string
	Size     int64
	Modified time.Time
	IsDir    bool
	HasMeta  bool // remote listings carry names only
}

// TableFormatter renders directory listings as aligned tables.
type TableFormatter struct {
	table *tablewriter.Table
}

// NewTableFormatter creates a table formatter writing to stdout.
func NewTableFormatter() *TableFormatter {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Type", "Size", "Modified")
	table.Options(
		tablewriter.WithRendition(tw.Rendition{Borders: tw.Border{Left: tw.Pending, Right: tw.Pending, Top: tw.Pending, Bottom: tw.Pending}}),
		tablewriter.WithPadding(tw.Padding{Left: "\t", Right: "\t"}),
	)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.MaxWidth = 0
		cfg.Header = tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		}
		cfg.Row = tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		}
	})

	return &TableFormatter{table: table}
}

// FormatRemoteListing renders the names returned by LIST. The protocol
// carries no metadata, so only the name and the extension-derived type are
// shown.
func (tf *TableFormatter) FormatRemoteListing(names []string) error {
	files := make([]FileInfo, 0, len(names))
	for _, name := range names {
		files = append(files, FileInfo{Name: name})
	}
	return tf.renderTable(files)
}

// FormatLocalDirectory renders a local directory listing with metadata.
func (tf *TableFormatter) FormatLocalDirectory(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	var files []FileInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		fileType := "file"
		if entry.IsDir() {
			fileType = "dir"
		}
		files = append(files, FileInfo{
			Name:     entry.Name(),
			Type:     fileType,
			Size:     info.Size(),
			Modified: info.ModTime(),
			IsDir:    entry.IsDir(),
			HasMeta:  true,
		})
	}

	return tf.renderTable(files)
}

func (tf *TableFormatter) renderTable(files []FileInfo) error {
	if len(files) == 0 {
		fmt.Println("Directory is empty")
		return nil
	}

	tf.table.Reset()
	tf.table.Header("Name", "Type", "Size", "Modified")

	maxName := nameColumnWidth()
	for _, file := range files {
		name := file.Name
		if file.IsDir {
			name += "/"
		}
		if len(name) > maxName {
			name = name[:maxName-3] + "..."
		}

		fileType := file.Type
		if !file.IsDir {
			if ext := filepath.Ext(file.Name); ext != "" {
				fileType = strings.ToUpper(strings.TrimPrefix(ext, "."))
			}
		}

		size := "-"
		modified := "-"
		if file.HasMeta {
			if !file.IsDir {
				size = formatSize(file.Size)
			}
			modified = file.Modified.Format("Jan 02 15:04")
		}

		tf.table.Append([]string{name, fileType, size, modified})
	}

	return tf.table.Render()
}

// nameColumnWidth derives the name column budget from the terminal width,
// with a fallback when stdout is not a terminal.
func nameColumnWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 50
	}
	if width/2 < 20 {
		return 20
	}
	return width / 2
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
