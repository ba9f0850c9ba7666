package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/mask-tools-mcp/internal/config"
	"github.com/ironsheep/mask-tools-mcp/internal/extract"
	"github.com/ironsheep/mask-tools-mcp/internal/imaging"
	"github.com/ironsheep/mask-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("mask-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	logLevel := os.Getenv("MASK_MCP_LOG_LEVEL")
	if logLevel == "debug" {
		log.Printf("Mask MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	if len(os.Args) > 1 && os.Args[1] == "extract" {
		os.Exit(runExtract(os.Args[2:]))
	}

	opts := config.Default()
	if path := os.Getenv("MASK_MCP_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
		opts = loaded
		if logLevel == "debug" {
			log.Printf("Loaded options from %s: %+v", path, opts)
		}
	}

	srv := server.NewWithOptions(opts)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printHelp() {
	fmt.Println("mask-tools-mcp - MCP server for label mask outline extraction")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  mask-mcp [options]                 Run the MCP server on stdin/stdout")
	fmt.Println("  mask-mcp extract [flags] files...  Extract outlines from mask files to JSON")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Extract flags:")
	fmt.Println("  -config FILE            JSON options file (simplify_polygons, grid_resolution)")
	fmt.Println("  -simplify               Simplify polygons")
	fmt.Println("  -grid-resolution N      Grid resolution for simplification (default 1)")
	fmt.Println("  -out DIR                Output directory (default: next to each image)")
	fmt.Println("  -preview                Also write <name>.preview.png overlays")
	fmt.Println("  -preview-scale N        Preview scale factor (default 1)")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  MASK_MCP_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println("  MASK_MCP_CONFIG=FILE        JSON options file for the MCP server")
	fmt.Println()
	fmt.Println("The server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// runExtract implements the extract subcommand and returns the exit code.
func runExtract(args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON options file")
	simplifyFlag := fs.Bool("simplify", false, "simplify polygons")
	grid := fs.Float64("grid-resolution", 0, "grid resolution for simplification")
	outDir := fs.String("out", "", "output directory")
	preview := fs.Bool("preview", false, "write preview overlays")
	previewScale := fs.Float64("preview-scale", 1, "preview scale factor")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Printf("Config error: %v", err)
			return 2
		}
		opts = loaded
	}

	// Flags override the file only when given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "simplify":
			opts.SimplifyPolygons = *simplifyFlag
		case "grid-resolution":
			opts.GridResolution = *grid
		}
	})
	if err := opts.Validate(); err != nil {
		log.Printf("Invalid options: %v", err)
		return 2
	}

	if fs.NArg() == 0 {
		log.Printf("extract: no mask files given")
		return 2
	}

	runner := &extract.Runner{
		Cache:        imaging.NewImageCache(),
		Options:      opts,
		OutDir:       *outDir,
		Preview:      *preview,
		PreviewScale: *previewScale,
	}
	results, failed := runner.Run(fs.Args())

	log.Printf("Extracted %d of %d masks", len(results)-failed, len(results))
	if failed > 0 {
		return 1
	}
	return 0
}
