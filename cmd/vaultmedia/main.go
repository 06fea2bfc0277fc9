package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	vaultmedia "github.com/goliatone/go-vaultmedia"
	"github.com/goliatone/go-vaultmedia/cmd/vaultmedia/internal/bootstrap"
	convertcmd "github.com/goliatone/go-vaultmedia/internal/commands/convert"
	generatecmd "github.com/goliatone/go-vaultmedia/internal/commands/generate"
	searchcmd "github.com/goliatone/go-vaultmedia/internal/commands/search"
	"github.com/goliatone/go-vaultmedia/internal/vault"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("vaultmedia %s: %v", os.Args[1], err)
	}
}

const usage = `usage: vaultmedia <command> [flags]

commands:
  scan      list local image references in the vault
  migrate   upload local images and rewrite their references
  generate  generate an image from a prompt and store it in the vault
  search    query the stock image catalogue
  import    download a stock image into the vault
  cleanup   prune the generated-image cache`

func run(command string, args []string) error {
	switch command {
	case "scan":
		return runScan(args)
	case "migrate":
		return runMigrate(args)
	case "generate":
		return runGenerate(args)
	case "search":
		return runSearch(args)
	case "import":
		return runImport(args)
	case "cleanup":
		return runCleanup(args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("vaultmedia-scan", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to the vaultmedia config document")
	vaultPath := fs.String("vault", "", "Path to the note vault root")
	scope := fs.String("scope", "", "Folder to scan, relative to the vault root (defaults to the whole vault)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigFile: *configFile,
		VaultPath:  *vaultPath,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	ctx := context.Background()
	refs, err := module.Module.Scanner().Scan(ctx, *scope)
	if err != nil {
		return fmt.Errorf("scan vault: %w", err)
	}

	store := module.Module.Vault()
	seen := map[string]bool{}
	for _, ref := range refs {
		if !seen[ref.DocumentPath] {
			seen[ref.DocumentPath] = true
			fmt.Fprintf(os.Stdout, "%s\n", documentHeading(ctx, store, ref.DocumentPath))
		}
		fmt.Fprintf(os.Stdout, "  %d\t%s\t%s\n", ref.Line, ref.Kind, ref.ReferencedPath)
	}
	fmt.Fprintf(os.Stdout, "%d local image reference(s)\n", len(refs))
	return nil
}

// documentHeading labels a scan group with the note title when the
// frontmatter carries one, falling back to the vault-relative path.
func documentHeading(ctx context.Context, store vaultmedia.Vault, path string) string {
	text, err := store.ReadDocument(ctx, path)
	if err != nil {
		return path
	}
	meta, _, err := vault.ParseMeta(text)
	if err != nil || strings.TrimSpace(meta.Title) == "" {
		return path
	}
	return fmt.Sprintf("%s (%s)", meta.Title, path)
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("vaultmedia-migrate", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to the vaultmedia config document")
	vaultPath := fs.String("vault", "", "Path to the note vault root")
	scope := fs.String("scope", "", "Folder to migrate, relative to the vault root (defaults to the whole vault)")
	dryRun := fs.Bool("dry-run", false, "Scan and report without uploading or rewriting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigFile: *configFile,
		VaultPath:  *vaultPath,
		Migration:  true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	handler := module.Module.MigrateScope()
	cmd := convertcmd.MigrateScopeCommand{
		Scope:  *scope,
		DryRun: *dryRun,
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute migrate command: %w", err)
	}
	fmt.Fprintln(os.Stdout, "migrate command executed successfully")
	return nil
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("vaultmedia-generate", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to the vaultmedia config document")
	vaultPath := fs.String("vault", "", "Path to the note vault root")
	prompt := fs.String("prompt", "", "Prompt describing the image to generate")
	size := fs.String("size", "", "Size preset ID (see presets config)")
	style := fs.String("style", "", "Style preset ID (see presets config)")
	document := fs.String("document", "", "Document whose frontmatter receives the stored path")
	key := fs.String("key", "", "Frontmatter key updated on the target document")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigFile: *configFile,
		VaultPath:  *vaultPath,
		Generation: true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	cmd := generatecmd.GenerateImageCommand{
		Prompt:         *prompt,
		TargetDocument: *document,
		TargetKey:      *key,
	}
	catalog := module.Module.Presets()
	if trimmed := strings.TrimSpace(*size); trimmed != "" {
		preset, err := catalog.SizeByID(trimmed)
		if err != nil {
			return fmt.Errorf("resolve size preset: %w", err)
		}
		cmd.Width = preset.Width
		cmd.Height = preset.Height
	}
	if trimmed := strings.TrimSpace(*style); trimmed != "" {
		preset, err := catalog.StyleByID(trimmed)
		if err != nil {
			return fmt.Errorf("resolve style preset: %w", err)
		}
		cmd.Style = preset.Style
		cmd.StyleID = preset.StyleID
		cmd.Substyle = preset.Substyle
	}

	if err := module.Module.GenerateImage().Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute generate command: %w", err)
	}
	fmt.Fprintln(os.Stdout, "generate command executed successfully")
	return nil
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("vaultmedia-search", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to the vaultmedia config document")
	vaultPath := fs.String("vault", "", "Path to the note vault root")
	term := fs.String("term", "", "Search term")
	page := fs.Int("page", 1, "Result page to fetch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigFile: *configFile,
		VaultPath:  *vaultPath,
		Search:     true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	result, err := module.Module.SearchImages(context.Background(), vaultmedia.SearchRequest{
		Term: *term,
		Page: *page,
	})
	if err != nil {
		return fmt.Errorf("search images: %w", err)
	}
	for _, item := range result.Items {
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", item.ID, item.Title, item.Source.URL)
	}
	fmt.Fprintf(os.Stdout, "page %d/%d, %d total\n", result.Meta.CurrentPage, result.Meta.LastPage, result.Meta.Total)
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("vaultmedia-import", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to the vaultmedia config document")
	vaultPath := fs.String("vault", "", "Path to the note vault root")
	url := fs.String("url", "", "Source URL of the image to import")
	title := fs.String("title", "", "Title used to derive the stored file name")
	fileName := fs.String("file-name", "", "Explicit file name for the stored image")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigFile: *configFile,
		VaultPath:  *vaultPath,
		Search:     true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	cmd := searchcmd.ImportSearchResultCommand{
		SourceURL: *url,
		Title:     *title,
		FileName:  *fileName,
	}
	if err := module.Module.ImportSearchResult().Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute import command: %w", err)
	}
	fmt.Fprintln(os.Stdout, "import command executed successfully")
	return nil
}

func runCleanup(args []string) error {
	fs := flag.NewFlagSet("vaultmedia-cleanup", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to the vaultmedia config document")
	vaultPath := fs.String("vault", "", "Path to the note vault root")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigFile: *configFile,
		VaultPath:  *vaultPath,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	if err := module.Module.CleanupCache().Execute(context.Background(), convertcmd.CleanupCacheCommand{}); err != nil {
		return fmt.Errorf("execute cleanup command: %w", err)
	}
	fmt.Fprintln(os.Stdout, "cleanup command executed successfully")
	return nil
}
