package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"quill/app/repositories"
	"quill/config"

	"github.com/dustin/go-humanize"
)

// HandleCommand runs a store or server subcommand and returns an exit code.
func HandleCommand(args []string, cfg *config.AppConfig) int {
	if len(args) < 1 {
		PrintHelp()
		return 1
	}

	cmd := strings.ToLower(args[0])
	switch cmd {
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := RunAppServer(ctx, cfg); err != nil {
			fmt.Printf("Server error: %v\n", err)
			return 1
		}
		return 0
	case "init":
		return initStore(cfg)
	case "clean":
		return clean(cfg, hasFlag(args[1:], "-y", "--yes"))
	case "stats":
		return stats(cfg)
	case "export":
		if len(args) < 2 {
			fmt.Println("Error: output file path required for export")
			return 1
		}
		return export(cfg, args[1])
	case "import":
		if len(args) < 2 {
			fmt.Println("Error: input file path required for import")
			return 1
		}
		return importPosts(cfg, args[1])
	case "help":
		PrintHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		PrintHelp()
		return 1
	}
}

// PrintHelp prints the command overview.
func PrintHelp() {
	helpText := `Usage: quill <command> [options]

Commands:
  serve                 Run the blog API server
  init                  Initialize an empty post store
  stats                 Show post and like counts
  export <file>         Write every post to a JSON file
  import <file>         Load posts from a JSON file, skipping known ids
  clean [-y|--yes]      Delete the post store
  version               Show version information
  help                  Display this help message

Configuration is read from config.yaml and .env; QUILL_* environment
variables override both.
`
	fmt.Println(helpText)
}

func hasFlag(args []string, names ...string) bool {
	for _, a := range args {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

func storeExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// initStore creates an empty store.
func initStore(cfg *config.AppConfig) int {
	if storeExists(cfg.Storage.Path) {
		fmt.Println("Store already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}

	repo, err := openRepository(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize store: %v\n", err)
		return 1
	}
	defer repo.Close()

	fmt.Printf("Store initialized at %s (%s)\n", cfg.Storage.Path, cfg.Storage.Driver)
	return 0
}

// clean removes the store after confirmation.
func clean(cfg *config.AppConfig, confirmed bool) int {
	path := cfg.Storage.Path
	if !storeExists(path) {
		fmt.Println("Store is already clean (does not exist)")
		return 0
	}

	if !confirmed {
		fmt.Print("Are you sure you want to delete every post? This cannot be undone. [y/N] ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Operation cancelled")
			return 1
		}
	}

	if err := os.RemoveAll(path); err != nil {
		fmt.Printf("Failed to clean store: %v\n", err)
		return 1
	}
	fmt.Println("Store cleaned successfully")
	return 0
}

// stats prints post and like totals and the store's size on disk.
func stats(cfg *config.AppConfig) int {
	repo, err := openRepository(cfg)
	if err != nil {
		fmt.Printf("Failed to open store: %v\n", err)
		return 1
	}
	defer repo.Close()

	count, err := repo.Count()
	if err != nil {
		fmt.Printf("Failed to count posts: %v\n", err)
		return 1
	}
	likes, err := repo.TotalLikes()
	if err != nil {
		fmt.Printf("Failed to count likes: %v\n", err)
		return 1
	}

	fmt.Printf("Posts: %s\n", humanize.Comma(int64(count)))
	fmt.Printf("Likes: %s\n", humanize.Comma(int64(likes)))
	if size, err := diskUsage(cfg.Storage.Path); err == nil {
		fmt.Printf("Size:  %s\n", humanize.Bytes(size))
	}
	return 0
}

// export writes every post to file in the canonical JSON array format.
func export(cfg *config.AppConfig, file string) int {
	repo, err := openRepository(cfg)
	if err != nil {
		fmt.Printf("Failed to open store: %v\n", err)
		return 1
	}
	defer repo.Close()

	posts, err := repo.GetAll()
	if err != nil {
		fmt.Printf("Failed to read posts: %v\n", err)
		return 1
	}
	if err := repositories.WritePostsFile(file, posts); err != nil {
		fmt.Printf("Failed to write %s: %v\n", file, err)
		return 1
	}

	fmt.Printf("Exported %s posts to %s\n", humanize.Comma(int64(len(posts))), file)
	return 0
}

// importPosts loads posts from file into the store, keeping their ids and
// timestamps. Posts whose id is already stored are skipped.
func importPosts(cfg *config.AppConfig, file string) int {
	if !storeExists(file) {
		fmt.Printf("Import file does not exist: %s\n", file)
		return 1
	}

	posts, err := repositories.ReadPostsFile(file)
	if err != nil {
		if errors.Is(err, repositories.ErrCorruptStore) {
			fmt.Printf("Import file is not a valid posts file: %s\n", file)
			return 1
		}
		fmt.Printf("Failed to read %s: %v\n", file, err)
		return 1
	}

	repo, err := openRepository(cfg)
	if err != nil {
		fmt.Printf("Failed to open store: %v\n", err)
		return 1
	}
	defer repo.Close()

	importer, ok := repo.(repositories.Importer)
	if !ok {
		fmt.Printf("The %s store does not support import\n", cfg.Storage.Driver)
		return 1
	}

	imported, err := importer.Import(posts)
	if err != nil {
		fmt.Printf("Failed to import posts: %v\n", err)
		return 1
	}

	fmt.Printf("Imported %d of %d posts from %s\n", imported, len(posts), file)
	return 0
}
