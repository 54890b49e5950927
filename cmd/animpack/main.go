// Command animpack imports glTF/GLB rig files and bundles them into a single
// packed resource archive that the engine loader can read back at runtime.
//
// Usage:
//
//	animpack -out ./models.pack model1.gltf model2.glb ...
//	animpack -list ./models.pack
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/marrow-engine/marrow/engine/core"
	"github.com/marrow-engine/marrow/engine/loader"
)

var (
	outputPath string
	listPath   string
	tickRate   int
	logLevel   string
)

func parseFlags() {
	flag.StringVar(&outputPath, "out", "./models"+loader.PackExtension,
		"Resource file to store imported models into.")
	flag.StringVar(&listPath, "list", "",
		"Print the manifest of an existing pack and exit.")
	flag.IntVar(&tickRate, "tick-rate", loader.DefaultTickRate,
		"Ticks per second to quantize animation timestamps at during import.")
	flag.StringVar(&logLevel, "log-level", "info",
		"Log verbosity: debug, info, warn, or error.")

	flag.Parse()
}

func main() {
	parseFlags()
	core.SetLogLevel(logLevel)

	if listPath != "" {
		listManifest(listPath)
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "animpack: no input files")
		flag.Usage()
		os.Exit(2)
	}

	l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithTickRate(tickRate))

	imported := make([]*loader.ImportedModel, 0, len(inputs))
	for _, path := range inputs {
		m, err := l.Load(path)
		handleError(err)
		imported = append(imported, &loader.ImportedModel{
			Name:       m.Name(),
			Skeleton:   m.Skeleton(),
			Animations: m.Animations(),
		})
		core.LogInfo("imported model", "path", path, "name", m.Name(),
			"bones", m.BoneCount(), "animations", m.AnimationCount())
	}

	handleError(loader.WritePack(outputPath, imported))
	core.LogInfo("pack written", "path", outputPath, "models", len(imported))
}

func listManifest(path string) {
	manifest, err := loader.ReadManifest(path)
	handleError(err)

	fmt.Printf("%s (version %d, %d models)\n", path, manifest.Version, len(manifest.Entries))
	for _, entry := range manifest.Entries {
		fmt.Printf("  %s  %s\n", entry.ID, entry.Name)
	}
}

func handleError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "animpack: %v\n", err)
		os.Exit(1)
	}
}
