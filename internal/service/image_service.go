package service

import (
	"brainer_backend/internal/util"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
)

type ImageUploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// ImageService stores chapter illustrations under images/ keeping the original file name,
// so a chapter can reference /static/images/<name> before or after the upload.
type ImageService struct {
	Storage  *StorageService
	MaxBytes int64
}

func NewImageService(storage *StorageService, maxUploadMB int64) *ImageService {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &ImageService{Storage: storage, MaxBytes: maxUploadMB << 20}
}

func (s *ImageService) Upload(ctx context.Context, originalName string, reader io.Reader, size int64) (*ImageUploadResponse, error) {
	name, err := util.SanitizeFilename(originalName)
	if err != nil {
		return nil, err
	}
	if size > s.MaxBytes {
		return nil, util.ValidationError("file too large", util.FieldError{
			Field:   "file",
			Message: fmt.Sprintf("must be at most %d MB", s.MaxBytes>>20),
		})
	}

	// 先读取头部做 MIME 嗅探，再与剩余内容拼接上传
	head := make([]byte, 3072)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	head = head[:n]
	if n == 0 {
		return nil, util.ValidationError("empty file", util.FieldError{Field: "file", Message: "file is empty"})
	}

	mimeType, err := util.ValidateMimeType(bytes.NewReader(head), []string{util.MimeImage})
	if err != nil {
		return nil, util.ValidationError("only image uploads are accepted", util.FieldError{
			Field:   "file",
			Message: "detected content type " + mimeType,
		})
	}

	key := path.Join(util.ImageDir, name)
	url, err := s.Storage.Upload(ctx, key, io.MultiReader(bytes.NewReader(head), reader), size, mimeType)
	if err != nil {
		return nil, err
	}
	return &ImageUploadResponse{URL: url, Filename: name}, nil
}

// Delete removes an uploaded image; chapters still referencing it will show a broken link.
func (s *ImageService) Delete(ctx context.Context, filename string) error {
	name, err := util.SanitizeFilename(filename)
	if err != nil {
		return err
	}
	err = s.Storage.Delete(ctx, path.Join(util.ImageDir, name))
	if errors.Is(err, ErrObjectNotFound) {
		return util.NotFoundError("image", name)
	}
	return err
}
