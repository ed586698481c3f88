// worldtool inspects GTA map placement lists and RenderWare model
// containers, and converts models to glTF.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/leodutra/bevy-city/internal/assets"
	"github.com/leodutra/bevy-city/pkg/export"
	"github.com/leodutra/bevy-city/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "ipl":
		cmdIPL(args)
	case "dff", "info":
		cmdDFF(args)
	case "dump":
		cmdDump(args)
	case "gltf":
		cmdGLTF(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`worldtool - GTA map and model inspector

Usage:
  worldtool <command> [options]

Commands:
  ipl <file.ipl>            Print placement instances
  dff <file.dff>            Print model summary
  dump <file.dff|file.ipl>  Dump the full decoded structure
  gltf <file.dff> [output]  Convert a model to glTF (.gltf or .glb)

Examples:
  worldtool ipl data/maps/downtown/downtown.ipl
  worldtool dff law_dtbuild.dff
  worldtool gltf law_dtbuild.dff law_dtbuild.glb`)
}

func cmdIPL(args []string) {
	fs := flag.NewFlagSet("ipl", flag.ExitOnError)
	skipLOD := fs.Bool("skiplod", false, "Hide LOD instances")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: worldtool ipl <file.ipl>")
		os.Exit(1)
	}

	ipl := parseIPLFile(fs.Arg(0))

	shown := 0
	for _, inst := range ipl.Instances {
		if *skipLOD && assets.IsLODName(inst.ModelName) {
			continue
		}
		fmt.Printf("%-24s interior=%d pos=(%.2f, %.2f, %.2f) scale=(%.2f, %.2f, %.2f)\n",
			inst.ModelName, inst.Interior,
			inst.Position.X(), inst.Position.Y(), inst.Position.Z(),
			inst.Scale.X(), inst.Scale.Y(), inst.Scale.Z())
		shown++
	}

	fmt.Fprintf(os.Stderr, "\n%d instances", shown)
	var names []string
	for name := range ipl.Sections {
		if name != "inst" {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		sort.Strings(names)
		fmt.Fprintf(os.Stderr, ", other sections: %s", strings.Join(names, ", "))
	}
	fmt.Fprintln(os.Stderr)
}

func cmdDFF(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: worldtool dff <file.dff>")
		os.Exit(1)
	}

	model := parseDFFFile(args[0])

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Version:   RenderWare %s\n", model.Version)
	fmt.Printf("Vertices:  %d\n", len(model.Vertices))
	fmt.Printf("Normals:   %d\n", len(model.Normals))
	fmt.Printf("UVs:       %d\n", len(model.UVs))
	fmt.Printf("Prelight:  %d\n", len(model.Prelight))
	fmt.Printf("Triangles: %d\n", len(model.Triangles))
	fmt.Printf("Materials: %d\n", len(model.Materials))
	for i, mat := range model.Materials {
		line := fmt.Sprintf("  [%d] color=#%02x%02x%02x%02x", i, mat.Color.R, mat.Color.G, mat.Color.B, mat.Color.A)
		if mat.Texture != "" {
			line += " texture=" + mat.Texture
		}
		fmt.Println(line)
	}
}

func cmdDump(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: worldtool dump <file.dff|file.ipl>")
		os.Exit(1)
	}

	dumper := spew.ConfigState{Indent: "  ", MaxDepth: 6, DisableMethods: true}

	switch strings.ToLower(filepath.Ext(args[0])) {
	case ".ipl":
		dumper.Dump(parseIPLFile(args[0]))
	default:
		dumper.Dump(parseDFFFile(args[0]))
	}
}

func cmdGLTF(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: worldtool gltf <file.dff> [output]")
		os.Exit(1)
	}

	input := args[0]
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	output := name + ".glb"
	if len(args) > 1 {
		output = args[1]
	}

	model := parseDFFFile(input)

	doc, err := export.BuildDocument(name, model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building document: %v\n", err)
		os.Exit(1)
	}
	if err := export.Save(doc, output); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (%d vertices, %d triangles)\n", output, len(model.Vertices), len(model.Triangles))
}

func parseIPLFile(path string) *formats.IPL {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ipl, err := formats.ParseIPL(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}
	return ipl
}

func parseDFFFile(path string) *formats.Model {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	model, err := formats.ParseDFF(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}
	return model
}
