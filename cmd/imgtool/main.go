// imgtool is a CLI utility for working with GTA IMG archives.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leodutra/bevy-city/pkg/img"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "extract", "x":
		cmdExtract(args)
	case "search", "find":
		cmdSearch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`imgtool - GTA IMG archive utility

Usage:
  imgtool <command> [options]

Commands:
  info <file.img>                    Show archive information
  list <file.img> [pattern]          List files (optional glob pattern)
  extract <file.img> <name> [output] Extract file(s) to directory
  search <file.img> <pattern>        Search files by name pattern

Examples:
  imgtool info gta3.img
  imgtool list gta3.img "*.dff"
  imgtool extract gta3.img law_dtbuild.dff ./output
  imgtool search gta3.img "downtown"`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: imgtool info <file.img>")
		os.Exit(1)
	}

	archive, err := img.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	files := archive.List()

	// Count by extension
	extCount := make(map[string]int)
	var totalSectors uint64
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f))
		if ext == "" {
			ext = "(no ext)"
		}
		extCount[ext]++

		if entry, err := archive.Stat(f); err == nil {
			totalSectors += uint64(entry.Size)
		}
	}

	fmt.Printf("Archive: %s\n", args[0])
	fmt.Printf("Version: %d\n", archive.Version())
	fmt.Printf("Files:   %d\n", len(files))
	fmt.Printf("Size:    %.2f MB\n", float64(totalSectors*img.SectorSize)/(1024*1024))
	fmt.Println()
	fmt.Println("Files by type:")

	// Sort by count
	type extStat struct {
		ext   string
		count int
	}
	var stats []extStat
	for ext, count := range extCount {
		stats = append(stats, extStat{ext, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].count > stats[j].count
	})

	for _, s := range stats {
		fmt.Printf("  %-10s %d\n", s.ext, s.count)
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: imgtool list <file.img> [pattern]")
		os.Exit(1)
	}

	archive, err := img.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	files := archive.List()
	sort.Strings(files)

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, f := range files {
		if pattern != "" {
			matched, _ := filepath.Match(pattern, f)
			if !matched && !strings.Contains(f, pattern) {
				continue
			}
		}
		fmt.Println(f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
}

func cmdExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: imgtool extract <file.img> <name> [output_dir]")
		os.Exit(1)
	}

	imgPath := fs.Arg(0)
	name := fs.Arg(1)
	outputDir := "."
	if fs.NArg() > 2 {
		outputDir = fs.Arg(2)
	}

	archive, err := img.Open(imgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	// Check if it's a pattern
	if strings.Contains(name, "*") {
		extractPattern(archive, name, outputDir)
		return
	}

	// Single file extraction
	if !archive.Contains(name) {
		fmt.Fprintf(os.Stderr, "File not found: %s\n", name)
		os.Exit(1)
	}

	data, err := archive.Read(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	outputPath := filepath.Join(outputDir, filepath.Base(name))
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Extracted: %s (%d bytes)\n", outputPath, len(data))
}

func extractPattern(archive *img.Archive, pattern, outputDir string) {
	files := archive.List()
	pattern = strings.ToLower(pattern)

	extracted := 0
	for _, f := range files {
		matched, _ := filepath.Match(pattern, f)
		if !matched {
			continue
		}

		data, err := archive.Read(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f, err)
			continue
		}

		outputPath := filepath.Join(outputDir, f)
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
			continue
		}

		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
			continue
		}

		fmt.Printf("Extracted: %s\n", outputPath)
		extracted++
	}

	fmt.Fprintf(os.Stderr, "\nExtracted %d files\n", extracted)
}

func cmdSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	limit := fs.Int("n", 50, "Limit results (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: imgtool search <file.img> <pattern>")
		os.Exit(1)
	}

	archive, err := img.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	files := archive.List()
	sort.Strings(files)
	pattern := strings.ToLower(fs.Arg(1))

	count := 0
	for _, f := range files {
		if strings.Contains(f, pattern) {
			fmt.Println(f)
			count++
			if *limit > 0 && count >= *limit {
				fmt.Fprintf(os.Stderr, "\n(showing first %d matches, use -n 0 for all)\n", *limit)
				break
			}
		}
	}

	if count == 0 {
		fmt.Fprintln(os.Stderr, "No files found")
	} else if *limit == 0 || count < *limit {
		fmt.Fprintf(os.Stderr, "\n(%d files found)\n", count)
	}
}
