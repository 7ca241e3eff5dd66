package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/carecam/internal/database"
	"github.com/kozaktomas/carecam/internal/emotion"
)

// SnapshotsHandler exposes stored emotion snapshots
type SnapshotsHandler struct {
	catalog *emotion.Catalog
	log     logrus.FieldLogger
}

// NewSnapshotsHandler creates a new snapshots handler
func NewSnapshotsHandler(catalog *emotion.Catalog, log logrus.FieldLogger) *SnapshotsHandler {
	return &SnapshotsHandler{catalog: catalog, log: log}
}

// SnapshotListResponse is one page of snapshot metadata
type SnapshotListResponse struct {
	Snapshots []database.EmotionSnapshot `json:"snapshots"`
	Total     int                        `json:"total"`
	Limit     int                        `json:"limit"`
	Offset    int                        `json:"offset"`
}

// List returns snapshot metadata, newest first
func (h *SnapshotsHandler) List(w http.ResponseWriter, r *http.Request) {
	reader, err := database.GetSnapshotReader(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	limit, offset := parsePagination(r)
	filter := database.SnapshotFilter{
		Emotion: h.catalog.Normalize(r.URL.Query().Get("emotion")),
		Limit:   limit,
		Offset:  offset,
	}

	snapshots, err := reader.ListSnapshots(r.Context(), filter)
	if err != nil {
		h.log.WithError(err).Error("failed to list snapshots")
		respondError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	total, err := reader.CountSnapshots(r.Context(), filter)
	if err != nil {
		h.log.WithError(err).Error("failed to count snapshots")
		respondError(w, http.StatusInternalServerError, "failed to count snapshots")
		return
	}
	if snapshots == nil {
		snapshots = []database.EmotionSnapshot{}
	}

	respondJSON(w, http.StatusOK, SnapshotListResponse{
		Snapshots: snapshots,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	})
}

// Stats returns snapshot totals per emotion
func (h *SnapshotsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	reader, err := database.GetSnapshotReader(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	counts, err := reader.CountByEmotion(r.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to count snapshots by emotion")
		respondError(w, http.StatusInternalServerError, "failed to count snapshots")
		return
	}
	if counts == nil {
		counts = []database.EmotionCount{}
	}
	respondJSON(w, http.StatusOK, counts)
}

// Get returns the metadata of one snapshot
func (h *SnapshotsHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// Image returns the JPEG payload of one snapshot
func (h *SnapshotsHandler) Image(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(snapshot.Image)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", snapshot.Filename))
	w.Header().Set("Cache-Control", "private, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(snapshot.Image)
}

func (h *SnapshotsHandler) lookup(w http.ResponseWriter, r *http.Request) (*database.EmotionSnapshot, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing snapshot ID")
		return nil, false
	}

	reader, err := database.GetSnapshotReader(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}

	snapshot, err := reader.GetSnapshot(r.Context(), id)
	if err != nil {
		h.log.WithError(err).WithField("id", sanitizeForLog(id)).Error("failed to get snapshot")
		respondError(w, http.StatusInternalServerError, "failed to get snapshot")
		return nil, false
	}
	if snapshot == nil {
		respondError(w, http.StatusNotFound, "snapshot not found")
		return nil, false
	}
	return snapshot, true
}
