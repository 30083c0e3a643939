package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/akinalp/mirage/pkg"
	"github.com/akinalp/mirage/services"
)

// ImageHandler, inference proxy endpoint'lerini yöneten struct.
//
// Bu handler'lar dosyayı DİSKE YAZMAZ — multipart stream backend'e
// iletilir, cevap istemciye geri akıtılır. Gateway sadece kimlik ve
// girdi doğrulaması yapar.
type ImageHandler struct {
	imageService services.ImageService
	maxBodySize  int64
}

// NewImageHandler, constructor.
// maxBodySize: multipart body üst sınırı (UPLOAD_MAX_SIZE).
func NewImageHandler(imageService services.ImageService, maxBodySize int64) *ImageHandler {
	return &ImageHandler{imageService: imageService, maxBodySize: maxBodySize}
}

// RecognizeFace godoc
// POST /api/image/recognize-face
// Multipart: file (jpg/jpeg/png/webp). DeepFace JSON cevabı aynen döner.
func (h *ImageHandler) RecognizeFace(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.parseSingleFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.imageService.RecognizeFace(r.Context(), file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	writeResult(w, result)
}

// CompareFaces godoc
// POST /api/image/compare-faces
// Multipart: file1 + file2. İki yüzün benzerlik sonucu JSON döner.
func (h *ImageHandler) CompareFaces(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r) {
		return
	}

	file1, header1, err := r.FormFile("file1")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "file1 is required")
		return
	}
	defer file1.Close()

	file2, header2, err := r.FormFile("file2")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "file2 is required")
		return
	}
	defer file2.Close()

	result, err := h.imageService.CompareFaces(r.Context(), file1, header1, file2, header2)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	writeResult(w, result)
}

// CountPeople godoc
// POST /api/image/count-people
// Multipart: file. Görüntüdeki kişi sayısı JSON döner.
func (h *ImageHandler) CountPeople(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.parseSingleFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.imageService.CountPeople(r.Context(), file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	writeResult(w, result)
}

// GenerateImage godoc
// POST /api/image/generate_image
// Form: prompt (en fazla 60 karakter). Kandinsky'den dönen PNG
// byte'ları değiştirilmeden istemciye akıtılır.
func (h *ImageHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid form body")
		return
	}

	result, err := h.imageService.GenerateImage(r.Context(), r.PostFormValue("prompt"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	writeResult(w, result)
}

// GenerateAvatar godoc
// POST /api/image/generate_avatar
// Multipart: file. Prompt istemciden ALINMAZ — sabit avatar prompt'u
// kullanılır, stil tüm kullanıcılarda tutarlı kalır.
func (h *ImageHandler) GenerateAvatar(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.parseSingleFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.imageService.GenerateAvatar(r.Context(), file, header)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	writeResult(w, result)
}

// ─── Private Helpers ───

// parseMultipart, body limitini uygular ve multipart form'u parse eder.
// Hata yazıldıysa false döner.
func (h *ImageHandler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	// 10MB'a kadar memory'de tutulur, fazlası temp dosyaya taşar
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			pkg.ErrorWithMessage(w, http.StatusRequestEntityTooLarge, "uploaded file is too large")
			return false
		}
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid multipart body")
		return false
	}

	return true
}

// parseSingleFile, "file" alanını taşıyan tek dosyalı multipart istekleri
// için ortak parse yolu.
func (h *ImageHandler) parseSingleFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if !h.parseMultipart(w, r) {
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "file is required")
		return nil, nil, false
	}

	return file, header, true
}

// writeResult, backend cevabını Content-Type'ı ile birlikte istemciye yazar.
func writeResult(w http.ResponseWriter, result *services.ImageResult) {
	w.Header().Set("Content-Type", result.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Body)
}
