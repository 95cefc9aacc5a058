package intent

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// ArtifactSet names the embedding model artifacts inside a HuggingFace
// repository. Files keep their in-repo relative paths locally.
type ArtifactSet struct {
	Repo     string
	Revision string
	Files    []string
}

// DefaultArtifactSet is a small general-purpose sentence embedding model.
var DefaultArtifactSet = ArtifactSet{
	Repo:     "sentence-transformers/all-MiniLM-L6-v2",
	Revision: "main",
	Files: []string{
		"onnx/model.onnx",
		"tokenizer.json",
		"config.json",
		"special_tokens_map.json",
		"tokenizer_config.json",
	},
}

// LocalFilesIn maps an artifact directory populated by Download to the
// LocalFiles model source.
func LocalFilesIn(dir string) LocalFiles {
	return LocalFiles{
		Weights:          filepath.Join(dir, "onnx", "model.onnx"),
		Tokenizer:        filepath.Join(dir, "tokenizer.json"),
		Config:           filepath.Join(dir, "config.json"),
		SpecialTokensMap: filepath.Join(dir, "special_tokens_map.json"),
		TokenizerConfig:  filepath.Join(dir, "tokenizer_config.json"),
	}
}

// Downloader fetches embedding model artifacts into a local directory.
type Downloader struct {
	dir    string
	client *http.Client
}

// NewDownloader creates a downloader writing under dir.
func NewDownloader(dir string) *Downloader {
	return &Downloader{dir: dir, client: &http.Client{}}
}

// Download fetches every missing artifact of the set. Existing non-empty
// files are kept.
func (d *Downloader) Download(set ArtifactSet) error {
	for _, name := range set.Files {
		dest := filepath.Join(d.dir, filepath.FromSlash(name))
		if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
			fmt.Printf("✓ %s already exists\n", name)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("create directories for %s: %w", name, err)
		}

		fmt.Printf("Downloading %s...\n", name)
		if err := d.downloadFile(set, name, dest); err != nil {
			os.Remove(dest)
			return fmt.Errorf("download %s: %w", name, err)
		}
		fmt.Printf("✓ Downloaded %s\n", name)
	}
	return nil
}

func (d *Downloader) downloadFile(set ArtifactSet, name, dest string) error {
	url := fmt.Sprintf("https://huggingface.co/%s/resolve/%s/%s", set.Repo, set.Revision, name)

	resp, err := d.client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
