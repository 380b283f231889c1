package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GoArmGo/Weplash/internal/auth"
	"github.com/GoArmGo/Weplash/internal/domain"
	"github.com/GoArmGo/Weplash/internal/feed"
	"github.com/GoArmGo/Weplash/internal/metrics"
	"github.com/GoArmGo/Weplash/internal/usecase"
)

const multipartMemory = 8 << 20

// PhotoHandler обрабатывает ленту, карточки фото, загрузку и коллекции
type PhotoHandler struct {
	photos        usecase.PhotoUseCase
	uploadLimiter chan struct{}
	maxUploadSize int64
	logger        *slog.Logger
}

// NewPhotoHandler — uploadConcurrency ограничивает число одновременных загрузок
func NewPhotoHandler(photos usecase.PhotoUseCase, uploadConcurrency int, maxUploadSize int64, logger *slog.Logger) *PhotoHandler {
	if uploadConcurrency <= 0 {
		uploadConcurrency = 1
	}
	return &PhotoHandler{
		photos:        photos,
		uploadLimiter: make(chan struct{}, uploadConcurrency),
		maxUploadSize: maxUploadSize,
		logger:        logger.With("component", "photo_handler"),
	}
}

type downloadsResponse struct {
	Downloads int `json:"downloads"`
}

type collectionIDResponse struct {
	CollectionID uint `json:"collection_id"`
}

type likeRequest struct {
	PhotoID uint `json:"photo_id"`
}

type collectionPhotoRequest struct {
	PhotoID      uint `json:"photo_id"`
	CollectionID uint `json:"collection_id"`
}

type createCollectionRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Private     bool    `json:"private"`
	PhotoID     *uint   `json:"photo_id"`
}

// Feed — GET /photo
func (h *PhotoHandler) Feed(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	params, err := feed.ParseParams(r.URL.Query())
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	items, err := h.photos.Feed(r.Context(), params, viewer)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	if items == nil {
		items = []domain.FeedItem{}
	}
	respondWithJSON(w, http.StatusOK, dataResponse{Data: items}, h.logger)
}

// ColorFeed — GET /photo/back
func (h *PhotoHandler) ColorFeed(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	params, err := feed.ParseParams(r.URL.Query())
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	items, err := h.photos.ColorFeed(r.Context(), params, viewer)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	if items == nil {
		items = []domain.ColorItem{}
	}
	respondWithJSON(w, http.StatusOK, dataResponse{Data: items}, h.logger)
}

// Details — GET /photo/{photo_id}
func (h *PhotoHandler) Details(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	photoID, err := parseID(chi.URLParam(r, "photo_id"), domain.ErrInvalidPhoto)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	details, err := h.photos.PhotoDetails(r.Context(), photoID, viewer)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, details, h.logger)
}

// Download — POST /photo/{photo_id}/download
func (h *PhotoHandler) Download(w http.ResponseWriter, r *http.Request) {
	photoID, err := parseID(chi.URLParam(r, "photo_id"), domain.ErrInvalidPhoto)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	downloads, err := h.photos.Download(r.Context(), photoID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, downloadsResponse{Downloads: downloads}, h.logger)
}

// RelatedPhotos — GET /photo/related-photo/{photo_id}
func (h *PhotoHandler) RelatedPhotos(w http.ResponseWriter, r *http.Request) {
	photoID, err := parseID(chi.URLParam(r, "photo_id"), domain.ErrInvalidPhoto)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	related, err := h.photos.RelatedPhotos(r.Context(), photoID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, related, h.logger)
}

// RelatedCollections — GET /photo/related-collection/{photo_id}
func (h *PhotoHandler) RelatedCollections(w http.ResponseWriter, r *http.Request) {
	photoID, err := parseID(chi.URLParam(r, "photo_id"), domain.ErrInvalidPhoto)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	collections, err := h.photos.RelatedCollections(r.Context(), photoID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	if collections == nil {
		collections = []domain.RelatedCollection{}
	}
	respondWithJSON(w, http.StatusOK, dataResponse{Data: collections}, h.logger)
}

// SearchHashTags — GET /photo/search
func (h *PhotoHandler) SearchHashTags(w http.ResponseWriter, r *http.Request) {
	names, err := h.photos.SearchHashTags(r.Context())
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	if names == nil {
		names = []string{}
	}
	respondWithJSON(w, http.StatusOK, dataResponse{Data: names}, h.logger)
}

// UserCard — GET /photo/user-card/{user_name}
func (h *PhotoHandler) UserCard(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	card, err := h.photos.UserCard(r.Context(), chi.URLParam(r, "user_name"), viewer)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, dataResponse{Data: card}, h.logger)
}

// Upload — POST /photo/upload, multipart с полями image, location, category
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	if viewer.IsAnonymous() {
		respondWithAppError(w, r, domain.ErrUnauthorized, h.logger)
		return
	}

	// Ограничиваем количество одновременных загрузок
	select {
	case h.uploadLimiter <- struct{}{}:
		defer func() { <-h.uploadLimiter }()
	default:
		metrics.RecordRejectedUpload()
		respondWithAppError(w, r, domain.ErrTooManyUploads, h.logger)
		return
	}

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithAppError(w, r, domain.ErrValue, h.logger)
			return
		}
		respondWithAppError(w, r, domain.ErrKey, h.logger)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	in := usecase.UploadInput{
		Location: r.FormValue("location"),
		Category: r.FormValue("category"),
	}
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		in.File = file
		in.FileName = header.Filename
		in.ContentType = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
	default:
		respondWithAppError(w, r, err, h.logger)
		return
	}

	photo, err := h.photos.Upload(r.Context(), viewer, in)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	h.logger.Info("photo uploaded", "photo_id", photo.ID)
	w.WriteHeader(http.StatusOK)
}

// ToggleLike — PATCH /photo/like
func (h *PhotoHandler) ToggleLike(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	if viewer.IsAnonymous() {
		respondWithAppError(w, r, domain.ErrUnauthorized, h.logger)
		return
	}

	var req likeRequest
	if err := decodeJSON(r, &req, "photo_id"); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	status, err := h.photos.ToggleLike(r.Context(), viewer, req.PhotoID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, statusResponse{Status: status}, h.logger)
}

// ToggleCollectionPhoto — POST /photo/add
func (h *PhotoHandler) ToggleCollectionPhoto(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	if viewer.IsAnonymous() {
		respondWithAppError(w, r, domain.ErrUnauthorized, h.logger)
		return
	}

	var req collectionPhotoRequest
	if err := decodeJSON(r, &req, "photo_id", "collection_id"); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	status, err := h.photos.ToggleCollectionPhoto(r.Context(), viewer, req.CollectionID, req.PhotoID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, statusResponse{Status: status}, h.logger)
}

// CreateCollection — POST /photo/create
func (h *PhotoHandler) CreateCollection(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	if viewer.IsAnonymous() {
		respondWithAppError(w, r, domain.ErrUnauthorized, h.logger)
		return
	}

	var req createCollectionRequest
	if err := decodeJSON(r, &req, "name"); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	id, err := h.photos.CreateCollection(r.Context(), viewer, usecase.CreateCollectionInput{
		Name:        req.Name,
		Description: req.Description,
		Private:     req.Private,
		PhotoID:     req.PhotoID,
	})
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, collectionIDResponse{CollectionID: id}, h.logger)
}

// Collections — GET /photo/collections?photo_id=
func (h *PhotoHandler) Collections(w http.ResponseWriter, r *http.Request, viewer auth.Viewer) {
	var photoID *uint
	if raw := r.URL.Query().Get("photo_id"); raw != "" {
		id, err := parseID(raw, domain.ErrInvalidPhoto)
		if err != nil {
			respondWithAppError(w, r, err, h.logger)
			return
		}
		photoID = &id
	}

	collections, err := h.photos.ViewerCollections(r.Context(), viewer, photoID)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	if collections == nil {
		collections = []domain.CollectionSummary{}
	}
	respondWithJSON(w, http.StatusOK, dataResponse{Data: collections}, h.logger)
}
