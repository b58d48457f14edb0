// Package main provides the CLI entry point for cmps.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/lepinkainen/cmps/internal/config"
	"github.com/lepinkainen/cmps/pkg/browse"
	"github.com/lepinkainen/cmps/pkg/compose"
	"github.com/lepinkainen/cmps/pkg/diag"
	"github.com/lepinkainen/cmps/pkg/search"
	"github.com/lepinkainen/cmps/templates"
)

var version = "dev"

// CLI structure
type CLI struct {
	Filename  string `arg:"" optional:"" help:"File to create."`
	Extension string `arg:"" optional:"" help:"Template to use instead of the filename's extension."`

	Show    string `short:"s" placeholder:"EXTENSION" help:"Show the template for EXTENSION and where it comes from."`
	Force   bool   `short:"f" help:"Overwrite files that are not empty."`
	Stdout  bool   `short:"o" help:"Print the template to stdout instead of creating a file. --force and --parents have no effect."`
	Parents bool   `short:"p" help:"Create missing parent directories."`
	Verbose int    `short:"v" type:"counter" help:"Increase verbosity (repeatable)."`
	Format  string `help:"Report format for --show and --list: text, json or yaml."`
	List    bool   `help:"List every available template."`
	Browse  bool   `help:"Browse available templates interactively."`
	Init    bool   `help:"Copy the built-in templates into the user config directory."`
	Config  string `type:"path" help:"Configuration file path."`

	Version kong.VersionFlag `help:"Print version and exit."`
}

// validate rejects flag combinations that name more than one action
func (c *CLI) validate() error {
	hasTarget := c.Filename != "" || c.Extension != ""

	actions := 0
	for _, set := range []bool{c.Show != "", c.List, c.Browse, c.Init} {
		if set {
			actions++
		}
	}

	switch {
	case actions > 1:
		return errors.New("--show, --list, --browse and --init are mutually exclusive")
	case actions == 1 && hasTarget:
		return errors.New("FILENAME and EXTENSION cannot be combined with --show, --list, --browse or --init")
	case actions == 1 && (c.Force || c.Stdout || c.Parents):
		return errors.New("--force, --stdout and --parents only apply when creating a file")
	case actions == 0 && c.Filename == "":
		return errors.New("expected FILENAME")
	}
	return nil
}

// templateExtension returns the explicit extension, or the filename's suffix
func (c *CLI) templateExtension() string {
	if c.Extension != "" {
		return c.Extension
	}
	return deriveExtension(c.Filename)
}

// deriveExtension returns the suffix after the last dot of the file name.
// Dotfiles such as .bashrc have no extension.
func deriveExtension(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return ""
	}
	return ext[1:]
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, search.SystemDirs()))
}

// run parses args, performs the requested action and returns the exit code
func run(args []string, stdout, stderr io.Writer, platform search.PlatformDirs) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("cmps"),
		kong.Description("Create a file and fill it with the default template for its extension."),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version},
	)
	if err != nil {
		fmt.Fprintf(stderr, "cmps: %v\n", err)
		return 1
	}

	if _, err := parser.Parse(args); err != nil {
		fmt.Fprintf(stderr, "cmps: %v\n", err)
		return 1
	}

	// Configure logging level based on verbosity, refined once the config is read
	level := new(slog.LevelVar)
	level.Set(diag.LevelForVerbosity(cli.Verbose))
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: diag.ReplaceLevelName,
	}))
	slog.SetDefault(logger)

	if err := cli.validate(); err != nil {
		logger.Error("Invalid arguments", "error", err)
		return 1
	}

	configPath, load := cli.Config, config.LoadConfigFile
	if configPath == "" {
		configPath, load = config.DefaultPath(platform), config.LoadConfig
	}
	cfg, err := load(configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "path", configPath, "error", err)
		return 1
	}
	level.Set(diag.LevelForVerbosity(cli.Verbose + cfg.Verbosity))

	formatName := cli.Format
	if formatName == "" {
		formatName = cfg.Format
	}
	format, err := search.ParseFormat(formatName)
	if err != nil {
		logger.Error("Invalid arguments", "error", err)
		return 1
	}

	a := &app{
		cli:      &cli,
		format:   format,
		platform: platform,
		stdout:   stdout,
		log:      diag.NewSlog(logger),
	}
	a.resolver = search.NewResolver(search.Discover(cfg.SearchOptions("", platform), a.log), a.log)

	if err := a.dispatch(); err != nil {
		logger.Error(err.Error())
		return 1
	}
	return 0
}

type app struct {
	cli      *CLI
	format   search.Format
	platform search.PlatformDirs
	resolver *search.Resolver
	stdout   io.Writer
	log      diag.Sink
}

func (a *app) dispatch() error {
	switch {
	case a.cli.Init:
		return a.initTemplates()
	case a.cli.List:
		return search.RenderList(a.stdout, a.resolver.List(), a.format)
	case a.cli.Browse:
		return browse.Run(a.resolver.List(), a.resolver, a.stdout)
	case a.cli.Show != "":
		if err := a.resolver.Describe(a.cli.Show).Render(a.stdout, a.format); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	case a.cli.Stdout:
		return a.writeStdout()
	default:
		return a.createFile()
	}
}

func (a *app) createFile() error {
	mode := compose.OverwriteEmptyOnly
	if a.cli.Force {
		mode = compose.Force
	}

	composer := compose.New(a.resolver, a.log)
	composer.Parents = a.cli.Parents

	file, err := composer.Compose(a.cli.Filename, a.cli.templateExtension(), mode)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists and is not empty, use --force to overwrite it", a.cli.Filename)
	}
	if err != nil {
		return err
	}

	if err := file.Close(); err != nil {
		return err
	}

	a.log.Info("Created file", "path", a.cli.Filename)
	return nil
}

func (a *app) writeStdout() error {
	composer := compose.New(a.resolver, a.log)
	if err := composer.WriteTemplate(a.stdout, a.cli.templateExtension()); err != nil {
		return fmt.Errorf("failed to write template to stdout: %w", err)
	}
	return nil
}

func (a *app) initTemplates() error {
	dir, err := a.platform.ConfigDir()
	if err != nil {
		return fmt.Errorf("user config directory unavailable: %w", err)
	}

	target := filepath.Join(dir, search.AppName, search.TemplatesDir)
	copied, err := templates.Bootstrap(target)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Copied %d built-in templates to %s\n", copied, target)
	return nil
}
