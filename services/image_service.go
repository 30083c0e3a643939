package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akinalp/mirage/pkg"
)

// maxPromptLength, generate_image prompt'unun karakter sınırı.
// Kandinsky backend'i uzun prompt'larda kalitesiz sonuç üretir.
const maxPromptLength = 60

// avatarPrompt, generate_avatar için sabit prompt.
// Kullanıcıdan prompt ALINMAZ — avatar stili tutarlı kalmalı.
const avatarPrompt = "digital avatar portrait, centered face, vibrant colors"

// allowedImageExtensions, inference endpoint'lerine yüklenebilen uzantılar.
var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ImageResult, backend'den dönen ham cevap.
// JSON endpoint'lerde Body JSON'dır, görüntü endpoint'lerde PNG byte'larıdır.
type ImageResult struct {
	ContentType string
	Body        []byte
}

// ImageService, inference backend'lerine (DeepFace + Kandinsky) proxy.
//
// Gateway'in görevi: kimliği DOĞRULANMIŞ isteği backend'e iletmek.
// Backend'ler iç ağdadır ve kendi kimlik doğrulaması yoktur — dış dünyaya
// tek kapı bu servistir.
type ImageService interface {
	// RecognizeFace, yüz analizi (yaş/cinsiyet/duygu) yapar. JSON döner.
	RecognizeFace(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*ImageResult, error)

	// CompareFaces, iki yüzün aynı kişiye ait olup olmadığını söyler. JSON döner.
	CompareFaces(ctx context.Context, file1 multipart.File, header1 *multipart.FileHeader, file2 multipart.File, header2 *multipart.FileHeader) (*ImageResult, error)

	// CountPeople, görüntüdeki kişi sayısını döner. JSON döner.
	CountPeople(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*ImageResult, error)

	// GenerateImage, prompt'tan görüntü üretir. PNG byte'ları döner.
	GenerateImage(ctx context.Context, prompt string) (*ImageResult, error)

	// GenerateAvatar, yüklenen fotoğraftan sabit prompt'la avatar üretir.
	GenerateAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*ImageResult, error)
}

type imageService struct {
	client       *http.Client
	deepfaceURL  string
	kandinskyURL string
}

// NewImageService, constructor.
//
// Timeout uzundur (120s): inference CPU'da dakikalar değil ama onlarca
// saniye sürebilir. Gateway'in timeout'u backend'inkinden kısa olursa
// istemci hep 500 görür.
func NewImageService(deepfaceURL, kandinskyURL string) ImageService {
	return &imageService{
		client:       &http.Client{Timeout: 120 * time.Second},
		deepfaceURL:  deepfaceURL,
		kandinskyURL: kandinskyURL,
	}
}

func (s *imageService) RecognizeFace(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*ImageResult, error) {
	return s.forwardFiles(ctx, s.deepfaceURL+"/recognize-face", []upload{{"file", file, header}})
}

func (s *imageService) CompareFaces(ctx context.Context, file1 multipart.File, header1 *multipart.FileHeader, file2 multipart.File, header2 *multipart.FileHeader) (*ImageResult, error) {
	return s.forwardFiles(ctx, s.deepfaceURL+"/compare-faces", []upload{
		{"file1", file1, header1},
		{"file2", file2, header2},
	})
}

func (s *imageService) CountPeople(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*ImageResult, error) {
	return s.forwardFiles(ctx, s.deepfaceURL+"/count-people", []upload{{"file", file, header}})
}

func (s *imageService) GenerateImage(ctx context.Context, prompt string) (*ImageResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", pkg.ErrBadRequest)
	}
	if utf8.RuneCountInString(prompt) > maxPromptLength {
		return nil, fmt.Errorf("%w: prompt must be at most %d characters", pkg.ErrBadRequest, maxPromptLength)
	}

	return s.forwardForm(ctx, s.kandinskyURL+"/generate_image", url.Values{"prompt": {prompt}})
}

func (s *imageService) GenerateAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*ImageResult, error) {
	return s.forwardFilesWithFields(ctx, s.kandinskyURL+"/generate_avatar",
		[]upload{{"file", file, header}},
		map[string]string{"prompt": avatarPrompt},
	)
}

// ─── Private Helpers ───

// upload, backend'e iletilecek tek bir multipart dosya parçası.
type upload struct {
	fieldName string
	file      multipart.File
	header    *multipart.FileHeader
}

// validateExtension, dosya uzantısını allow-list'e karşı kontrol eder.
// Uzantı kontrolü istemci beyanına dayanır — backend kendi içinde görüntüyü
// decode ederken gerçek format kontrolünü zaten yapar.
func validateExtension(header *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		return fmt.Errorf("%w: unsupported file extension %q (allowed: jpg, jpeg, png, webp)", pkg.ErrBadRequest, ext)
	}
	return nil
}

func (s *imageService) forwardFiles(ctx context.Context, targetURL string, uploads []upload) (*ImageResult, error) {
	return s.forwardFilesWithFields(ctx, targetURL, uploads, nil)
}

// forwardFilesWithFields, dosya + form alanlarını multipart body olarak
// backend'e POST eder.
//
// Body önce memory'de kurulur: UPLOAD_MAX_SIZE zaten handler'da
// MaxBytesReader ile sınırlandığı için buffer boyutu kontrollüdür.
func (s *imageService) forwardFilesWithFields(ctx context.Context, targetURL string, uploads []upload, fields map[string]string) (*ImageResult, error) {
	for _, u := range uploads {
		if err := validateExtension(u.header); err != nil {
			return nil, err
		}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, u := range uploads {
		part, err := writer.CreateFormFile(u.fieldName, u.header.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
		if _, err := io.Copy(part, u.file); err != nil {
			return nil, fmt.Errorf("failed to read uploaded file: %w", err)
		}
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build backend request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return s.do(req)
}

// forwardForm, urlencoded form body'yi backend'e POST eder.
func (s *imageService) forwardForm(ctx context.Context, targetURL string, form url.Values) (*ImageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build backend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return s.do(req)
}

// do, backend isteğini çalıştırır ve cevabı okur.
//
// Backend hatası (ağ veya 4xx/5xx) istemciye ASLA aynen iletilmez:
// backend'in hata mesajı iç ağ detayı sızdırabilir. Detay loglanır,
// istemci opak 500 görür.
func (s *imageService) do(req *http.Request) (*ImageResult, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[image] backend request failed: %v", err)
		return nil, fmt.Errorf("%w: inference backend unreachable", pkg.ErrInternal)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[image] failed to read backend response: %v", err)
		return nil, fmt.Errorf("%w: inference backend error", pkg.ErrInternal)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[image] backend returned %d: %.200s", resp.StatusCode, data)
		return nil, fmt.Errorf("%w: inference backend error", pkg.ErrInternal)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &ImageResult{ContentType: contentType, Body: data}, nil
}
