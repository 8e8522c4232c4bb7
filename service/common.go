package service

import (
	"io/fs"
	"path/filepath"

	"quill/app/repositories"
	"quill/app/services"
	"quill/config"
)

// openRepository opens the store named by the configuration.
func openRepository(cfg *config.AppConfig) (repositories.PostRepository, error) {
	return repositories.Open(cfg.Storage.Driver, cfg.Storage.Path)
}

func serviceSettings(cfg *config.AppConfig) services.Settings {
	return services.Settings{
		PostsPerPage:   cfg.Blog.PostsPerPage,
		WordsPerMinute: cfg.Blog.WordsPerMinute,
	}
}

// diskUsage sums the sizes of the regular files under path. path may be
// a single file.
func diskUsage(path string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += uint64(info.Size())
		}
		return nil
	})
	return total, err
}
