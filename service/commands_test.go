package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quill/app/repositories"
	"quill/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(f func()) string {
	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan bool)
	go func() {
		_, _ = io.Copy(&buf, r)
		done <- true
	}()

	f()
	_ = w.Close()
	os.Stdout = oldStdout
	<-done

	return buf.String()
}

func mockStdin(input string, f func()) {
	oldStdin := os.Stdin
	r, w, _ := os.Pipe()
	os.Stdin = r

	// Write input in a goroutine to avoid blocking
	go func() {
		w.Write([]byte(input))
		w.Close()
	}()

	f()

	os.Stdin = oldStdin
}

func testConfig(t *testing.T, driver string) *config.AppConfig {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Driver = driver
	if driver == repositories.DriverBadger {
		cfg.Storage.Path = filepath.Join(t.TempDir(), "badger")
	} else {
		cfg.Storage.Path = filepath.Join(t.TempDir(), "data", "posts.json")
	}
	cfg.Server.Addr = "127.0.0.1:0"
	return &cfg
}

func seed(t *testing.T, cfg *config.AppConfig, titles ...string) []string {
	t.Helper()
	repo, err := repositories.Open(cfg.Storage.Driver, cfg.Storage.Path)
	require.NoError(t, err)
	defer repo.Close()

	var ids []string
	for _, title := range titles {
		id, err := repo.Create(title, "content of "+title, "")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestHandleCommand(t *testing.T) {
	cfg := testConfig(t, repositories.DriverJSON)

	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectedExit   int
	}{
		{
			name:           "no arguments",
			args:           []string{},
			expectedOutput: "Usage: quill <command> [options]\n\nCommands:",
			expectedExit:   1,
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedOutput: "Usage: quill <command> [options]\n\nCommands:",
			expectedExit:   0,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedOutput: "Unknown command: unknown",
			expectedExit:   1,
		},
		{
			name:           "export without file",
			args:           []string{"export"},
			expectedOutput: "Error: output file path required for export",
			expectedExit:   1,
		},
		{
			name:           "import without file",
			args:           []string{"import"},
			expectedOutput: "Error: input file path required for import",
			expectedExit:   1,
		},
		{
			name:           "command is case insensitive",
			args:           []string{"INIT"},
			expectedOutput: "Store initialized at",
			expectedExit:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exitCode int
			output := captureOutput(func() {
				exitCode = HandleCommand(tt.args, cfg)
			})

			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestInitStore(t *testing.T) {
	for _, driver := range []string{repositories.DriverJSON, repositories.DriverBadger} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)

			output := captureOutput(func() {
				assert.Equal(t, 0, initStore(cfg))
			})
			assert.Contains(t, output, "Store initialized at "+cfg.Storage.Path)
			assert.True(t, storeExists(cfg.Storage.Path))

			output = captureOutput(func() {
				assert.Equal(t, 0, initStore(cfg))
			})
			assert.Contains(t, output, "Store already exists")
		})
	}
}

func TestClean(t *testing.T) {
	cfg := testConfig(t, repositories.DriverJSON)

	t.Run("clean non-existent store", func(t *testing.T) {
		output := captureOutput(func() {
			assert.Equal(t, 0, clean(cfg, false))
		})
		assert.Contains(t, output, "Store is already clean")
	})

	t.Run("clean cancelled", func(t *testing.T) {
		seed(t, cfg, "keep me")

		var output string
		mockStdin("n\n", func() {
			output = captureOutput(func() {
				assert.Equal(t, 1, clean(cfg, false))
			})
		})

		assert.Contains(t, output, "Operation cancelled")
		assert.FileExists(t, cfg.Storage.Path)
	})

	t.Run("clean confirmed", func(t *testing.T) {
		var output string
		mockStdin("y\n", func() {
			output = captureOutput(func() {
				assert.Equal(t, 0, clean(cfg, false))
			})
		})

		assert.Contains(t, output, "Store cleaned successfully")
		assert.NoFileExists(t, cfg.Storage.Path)
	})

	t.Run("clean with --yes", func(t *testing.T) {
		seed(t, cfg, "gone")

		output := captureOutput(func() {
			assert.Equal(t, 0, HandleCommand([]string{"clean", "--yes"}, cfg))
		})

		assert.Contains(t, output, "Store cleaned successfully")
		assert.NoFileExists(t, cfg.Storage.Path)
	})
}

func TestStats(t *testing.T) {
	cfg := testConfig(t, repositories.DriverJSON)
	ids := seed(t, cfg, "one", "two")

	repo, err := repositories.Open(cfg.Storage.Driver, cfg.Storage.Path)
	require.NoError(t, err)
	_, err = repo.Like(ids[0])
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	output := captureOutput(func() {
		assert.Equal(t, 0, stats(cfg))
	})

	assert.Contains(t, output, "Posts: 2")
	assert.Contains(t, output, "Likes: 1")
	assert.Contains(t, output, "Size:")
}

func TestStatsCorruptStore(t *testing.T) {
	cfg := testConfig(t, repositories.DriverJSON)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755))
	require.NoError(t, os.WriteFile(cfg.Storage.Path, []byte("{not json"), 0644))

	// Reads degrade to an empty collection
	output := captureOutput(func() {
		assert.Equal(t, 0, stats(cfg))
	})
	assert.Contains(t, output, "Posts: 0")
}

func TestExportImport(t *testing.T) {
	source := testConfig(t, repositories.DriverJSON)
	seed(t, source, "first", "second")
	snapshot := filepath.Join(t.TempDir(), "snapshot.json")

	output := captureOutput(func() {
		assert.Equal(t, 0, export(source, snapshot))
	})
	assert.Contains(t, output, "Exported 2 posts to "+snapshot)

	exported, err := repositories.ReadPostsFile(snapshot)
	require.NoError(t, err)
	require.Len(t, exported, 2)

	target := testConfig(t, repositories.DriverBadger)

	output = captureOutput(func() {
		assert.Equal(t, 0, importPosts(target, snapshot))
	})
	assert.Contains(t, output, "Imported 2 of 2 posts")

	output = captureOutput(func() {
		assert.Equal(t, 0, importPosts(target, snapshot))
	})
	assert.Contains(t, output, "Imported 0 of 2 posts")

	repo, err := repositories.Open(target.Storage.Driver, target.Storage.Path)
	require.NoError(t, err)
	defer repo.Close()

	imported, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, imported, 2)

	created := make(map[string]time.Time)
	for _, p := range imported {
		created[p.ID] = p.CreatedAt.Time
	}
	for _, p := range exported {
		require.Contains(t, created, p.ID)
		assert.True(t, p.CreatedAt.Equal(created[p.ID]))
	}
}

func TestImportErrors(t *testing.T) {
	cfg := testConfig(t, repositories.DriverJSON)
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{"title":`), 0644))

	tests := []struct {
		name           string
		file           string
		expectedOutput string
	}{
		{name: "missing file", file: filepath.Join(dir, "nope.json"), expectedOutput: "Import file does not exist"},
		{name: "corrupt file", file: corrupt, expectedOutput: "Import file is not a valid posts file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureOutput(func() {
				assert.Equal(t, 1, importPosts(cfg, tt.file))
			})
			assert.Contains(t, output, tt.expectedOutput)
		})
	}
}

func TestRunAppServer(t *testing.T) {
	t.Run("stops when context is cancelled", func(t *testing.T) {
		cfg := testConfig(t, repositories.DriverJSON)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- RunAppServer(ctx, cfg) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
		assert.FileExists(t, cfg.Storage.Path)
	})

	t.Run("fails when the store cannot be opened", func(t *testing.T) {
		cfg := testConfig(t, repositories.DriverJSON)
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0644))
		cfg.Storage.Path = filepath.Join(blocker, "posts.json")

		err := RunAppServer(context.Background(), cfg)
		assert.ErrorContains(t, err, "failed to open store")
	})
}
