package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSON, başarılı bir yanıt gönderir. Veri olduğu gibi serialize edilir —
// endpoint'lerin body şekilleri API kontratında sabitlenmiştir
// (ör: POST /login → {"access_token": "...", "token_type": "bearer"}),
// bu yüzden ekstra bir wrapper struct kullanmıyoruz.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// Error, hata yanıtı gönderir.
// Domain error'ları otomatik olarak uygun HTTP status code'a çevrilir.
//
// Güvenlik: 5xx yanıtlarında error'ın iç metni client'a SIZDIRILMAZ —
// her zaman jenerik "Server Error" döner. Gerçek sebep log'a yazılır
// (çağıran taraf loglamaktan sorumludur). 4xx yanıtlarında ise mesaj
// kullanıcıya yöneliktir ve olduğu gibi döner.
func Error(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "Server Error"
	}

	ErrorWithMessage(w, status, message)
}

// ErrorWithMessage, özel mesajlı hata yanıtı gönderir.
// Body formatı tüm hata yanıtlarında aynıdır: {"detail": "..."}.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]string{"detail": message}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode error response", http.StatusInternalServerError)
	}
}

// Unauthenticated, 401 yanıtı gönderir ve bearer auth challenge header'ını ekler.
//
// WWW-Authenticate: Bearer — RFC 6750'ye göre korumalı bir kaynağa
// geçersiz/eksik token ile erişildiğinde server bu header ile
// client'a hangi auth şemasının beklendiğini bildirir.
func Unauthenticated(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	ErrorWithMessage(w, http.StatusUnauthorized, message)
}

// mapErrorToStatus, domain error'ları HTTP status code'larına eşler.
// errors.Is() kullanarak error chain'ini kontrol eder —
// wrap edilmiş error'lar da doğru match eder.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		// ErrStoreUnavailable, ErrInternal ve sınıflandırılmamış her şey → 500
		return http.StatusInternalServerError
	}
}
