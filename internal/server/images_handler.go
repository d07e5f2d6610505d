package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zenitmed/siteapi/internal/models"
	"github.com/zenitmed/siteapi/internal/store"
)

const maxImageBytes = 10 << 20 // 10MiB

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	img, err := s.stores.Images.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		log.Error().Err(err).Str("id", id.String()).Msg("failed to load image")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	// Image ids are immutable, so the blob can be cached indefinitely.
	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(img.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Файл слишком большой или форма повреждена")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Файл не передан")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeError(w, http.StatusBadRequest, "Файл слишком большой")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		writeError(w, http.StatusBadRequest, "Допустимы только изображения")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		log.Error().Err(err).Msg("failed to read uploaded image")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	if len(data) > maxImageBytes {
		writeError(w, http.StatusBadRequest, "Файл слишком большой")
		return
	}

	img := &models.Image{
		Filename: header.Filename,
		MimeType: mimeType,
		Data:     data,
		Size:     int64(len(data)),
	}

	if err := s.stores.Images.Create(r.Context(), img); err != nil {
		log.Error().Err(err).Msg("failed to store image")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":  img.ID,
		"url": "/api/images/" + img.ID.String(),
	})
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	if err := s.stores.Images.Delete(r.Context(), id); err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("failed to delete image")
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
