package operations

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/habedi/solekit/pkg/hasher"
	"github.com/habedi/solekit/pkg/pool"
	"github.com/habedi/solekit/shop"
	"github.com/rs/zerolog/log"
)

// Uploader stores one document. *shop.KnowledgeBase satisfies it.
type Uploader interface {
	Upload(ctx context.Context, fileName, title string, r io.Reader) (*shop.KnowledgeDoc, error)
}

// UploadResult is the outcome of uploading a single file.
type UploadResult struct {
	File     string
	Checksum string
	Doc      *shop.KnowledgeDoc
	Err      error
}

// FindDocuments expands paths into uploadable files. Directories are walked
// (recursively if asked); hidden files and unsupported types are skipped.
func FindDocuments(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !isUploadable(info.Name()) {
				return nil, fmt.Errorf("unsupported document type: %s", root)
			}
			files = append(files, root)
			continue
		}
		walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && (!recursive || strings.HasPrefix(d.Name(), ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasPrefix(d.Name(), ".") && isUploadable(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}
	return files, nil
}

func isUploadable(name string) bool {
	_, ok := shop.UploadTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// UploadDocuments checksums and uploads files concurrently. Results come back
// in the order of files. onDone, if set, is called after each file and may
// be called from several goroutines at once.
func UploadDocuments(ctx context.Context, up Uploader, files []string, workers int, algo string, onDone func(UploadResult)) []UploadResult {
	results := make([]UploadResult, len(files))
	indexes := make([]int, len(files))
	for i := range files {
		indexes[i] = i
	}

	pool.Run(ctx, indexes, workers, func(ctx context.Context, i int) error {
		res := uploadOne(ctx, up, files[i], algo)
		results[i] = res
		if onDone != nil {
			onDone(res)
		}
		return res.Err
	})

	for i := range results {
		if results[i].File == "" {
			results[i] = UploadResult{File: files[i], Err: ctx.Err()}
		}
	}
	return results
}

func uploadOne(ctx context.Context, up Uploader, path, algo string) UploadResult {
	res := UploadResult{File: path}
	sum, err := hasher.File(path, algo)
	if err != nil {
		res.Err = fmt.Errorf("failed to hash %s: %w", path, err)
		return res
	}
	res.Checksum = sum

	f, err := os.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer f.Close()

	res.Doc, res.Err = up.Upload(ctx, path, "", f)
	if res.Err != nil {
		log.Error().Err(res.Err).Str("file", path).Msg("Document upload failed")
	} else {
		log.Info().Str("file", path).Str("checksum", sum).Msg("Document uploaded")
	}
	return res
}
