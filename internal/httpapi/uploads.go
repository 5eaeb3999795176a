package httpapi

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"studyquiz/internal/auth"
	"studyquiz/internal/extract"
	"studyquiz/internal/store"
)

const uploadWorkers = 4

var errMissingFields = errors.New("title, category and at least one file are required")

func (s *Server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		abortError(c, http.StatusBadRequest, "invalid multipart form", err)
		return
	}

	title := strings.TrimSpace(firstValue(form, "title"))
	category := strings.TrimSpace(firstValue(form, "category"))
	files := formFiles(form)
	if title == "" || category == "" || len(files) == 0 {
		abortError(c, http.StatusBadRequest, "missing required fields", errMissingFields)
		return
	}
	if len(files) > s.opts.MaxFiles {
		abortError(c, http.StatusBadRequest, "too many files", fmt.Errorf("at most %d files are accepted", s.opts.MaxFiles))
		return
	}
	for _, fh := range files {
		if err := extract.CheckFileName(fh.Filename); err != nil {
			abortError(c, http.StatusBadRequest, "unsupported file", fmt.Errorf("%s: %w", fh.Filename, err))
			return
		}
	}

	id, err := gonanoid.New()
	if err != nil {
		abortError(c, http.StatusInternalServerError, "upload failed", err)
		return
	}
	ctx := c.Request.Context()
	sess := auth.FromContext(ctx)

	stored := make([]store.UploadFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadWorkers)
	for i, fh := range files {
		i, fh := i, fh
		g.Go(func() error {
			f, err := fh.Open()
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", fh.Filename, err)
			}
			defer f.Close()

			name := filepath.Base(fh.Filename)
			contentType := fh.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			url, err := s.blobs.Put(gctx, fmt.Sprintf("%s/%d-%s", id, i, name), f, contentType)
			if err != nil {
				return fmt.Errorf("failed to store %s: %w", fh.Filename, err)
			}
			stored[i] = store.UploadFile{Name: name, Size: fh.Size, ContentType: contentType, URL: url}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("upload failed", "error", err, "upload_id", id)
		abortError(c, http.StatusInternalServerError, "upload failed", err)
		return
	}

	up := &store.Upload{
		ID:          id,
		UID:         sess.UID,
		Title:       title,
		Category:    category,
		Tags:        splitTags(firstValue(form, "tags")),
		Description: strings.TrimSpace(firstValue(form, "description")),
		Files:       stored,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateUpload(ctx, up); err != nil {
		s.log.Error("failed to save upload", "error", err, "upload_id", id)
		abortError(c, http.StatusInternalServerError, "upload failed", err)
		return
	}
	if !sess.Anonymous() {
		_ = s.record(ctx, &store.Activity{
			UID:       sess.UID,
			Kind:      store.ActivityUpload,
			RefID:     id,
			Title:     title,
			Items:     len(stored),
			CreatedAt: up.CreatedAt,
		})
	}
	c.JSON(http.StatusCreated, up)
}

func firstValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// formFiles returns every file sent under a file-* field, ordered by field name
func formFiles(form *multipart.Form) []*multipart.FileHeader {
	var keys []string
	for k := range form.File {
		if strings.HasPrefix(k, "file-") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var out []*multipart.FileHeader
	for _, k := range keys {
		out = append(out, form.File[k]...)
	}
	return out
}

// splitTags accepts a comma separated list and drops blanks and repeats
func splitTags(s string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		t := strings.TrimSpace(part)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}
