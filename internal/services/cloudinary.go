package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Upload folders.
const (
	ProfileImageFolder = "serenify/profiles"
	EmotionImageFolder = "serenify/emotions"
)

// MaxImageBytes caps uploaded images.
const MaxImageBytes = 5 << 20

// Uploader stores an image and returns its public URL.
type Uploader interface {
	UploadImage(ctx context.Context, r io.Reader, folder string) (string, error)
}

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

// UploadImage reads at most MaxImageBytes, rejects anything that does not
// sniff as an image and uploads the rest.
func (s *CloudinaryService) UploadImage(ctx context.Context, r io.Reader, folder string) (string, error) {
	data, err := ReadImage(r)
	if err != nil {
		return "", err
	}
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("failed to upload to Cloudinary: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

// ReadImage reads an upload and checks its size and content type.
func ReadImage(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidEntry)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds 5MB", ErrInvalidEntry)
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, fmt.Errorf("%w: file is not an image", ErrInvalidEntry)
	}
	return data, nil
}
