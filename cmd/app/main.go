package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/bamboovfx/obsidian-image-manager/internal"
	"github.com/bamboovfx/obsidian-image-manager/internal/organizer"
	pkgconfig "github.com/bamboovfx/obsidian-image-manager/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// organizeOptions turns CLI flags into per-run overrides of the configured
// organize defaults. Only flags the user actually set take effect.
func organizeOptions(cmd *cli.Command) []internal.Option {
	var opts []internal.Option
	override := func(fn func(*organizer.Request)) {
		opts = append(opts, internal.WithOrganizeOverride(fn))
	}

	if cmd.IsSet("prefix") {
		v := cmd.String("prefix")
		override(func(r *organizer.Request) { r.Prefix = v })
	}
	if cmd.IsSet("target") {
		v := cmd.String("target")
		override(func(r *organizer.Request) { r.TargetDir = v })
	}
	if cmd.IsSet("reference") {
		v := cmd.String("reference")
		override(func(r *organizer.Request) { r.ReferenceDir = v })
	}
	if cmd.IsSet("note") {
		v := cmd.String("note")
		override(func(r *organizer.Request) { r.NotePath = v })
	}
	if cmd.IsSet("scoop-root") {
		v := cmd.Bool("scoop-root")
		override(func(r *organizer.Request) { r.ScoopVaultRoot = v })
	}
	if cmd.IsSet("rewrite-scope") {
		v := cmd.String("rewrite-scope")
		override(func(r *organizer.Request) { r.RewriteScope = v })
	}
	if cmd.Bool("dry-run") {
		override(func(r *organizer.Request) { r.DryRun = true })
	}
	return opts
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func organizeAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := append([]internal.Option{internal.WithConfig(cfg)}, organizeOptions(cmd)...)
	report, err := internal.RunOrganize(ctx, opts...)
	if err != nil {
		return fmt.Errorf("organize error: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func main() {
	organizeFlags := []cli.Flag{
		&cli.StringFlag{Name: "prefix", Aliases: []string{"p"}, Usage: "Attachment name prefix"},
		&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "Vault-relative attachment folder"},
		&cli.StringFlag{Name: "reference", Usage: "Folder that seeds the name counter (defaults to target)"},
		&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Only organize images referenced by this note"},
		&cli.BoolFlag{Name: "scoop-root", Usage: "Also collect images lying in the vault root"},
		&cli.StringFlag{Name: "rewrite-scope", Usage: "Reference rewrite scope: vault or note"},
		&cli.BoolFlag{Name: "dry-run", Usage: "Plan without moving or rewriting anything"},
	}

	cmd := &cli.Command{
		Name:  "imgmgr",
		Usage: "Rename and relocate a vault's image attachments and keep Markdown references pointing at them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API, SSE event stream, and vault watcher",
				Action: serveAction,
			},
			{
				Name:   "organize",
				Usage:  "Run one organize pass and print the report as JSON",
				Flags:  organizeFlags,
				Action: organizeAction,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the attachment tools over MCP stdio",
				Action: mcpAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
