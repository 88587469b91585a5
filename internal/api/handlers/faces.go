package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/sentinel/internal/faceid"
	"github.com/your-org/sentinel/internal/models"
	"github.com/your-org/sentinel/internal/storage"
	"github.com/your-org/sentinel/pkg/dto"
)

type FaceHandler struct {
	db      *storage.PostgresStore
	minio   *storage.MinIOStore
	matcher *faceid.Matcher
	// EmbedFn extracts a face embedding from image bytes.
	// Set after the ONNX embedder is initialized; nil disables image search.
	EmbedFn func(imageData []byte) ([]float32, error)
}

func NewFaceHandler(db *storage.PostgresStore, minio *storage.MinIOStore, matcher *faceid.Matcher) *FaceHandler {
	return &FaceHandler{db: db, minio: minio, matcher: matcher}
}

func (h *FaceHandler) respond(c *gin.Context, res *faceid.MatchResult) {
	resp := dto.FaceSearchResponse{Confident: res.Confident}
	if res.Match != nil {
		resp.FaceID = res.Match.FaceID
		resp.EntityID = res.Match.EntityID
		resp.Distance = res.Match.Distance
	}
	c.JSON(http.StatusOK, resp)
}

// SearchByEmbedding finds the nearest enrolled face for a raw 512-dim
// vector. Distances at or above the threshold report no confident match.
func (h *FaceHandler) SearchByEmbedding(c *gin.Context) {
	var req dto.FaceSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Embedding) != models.EmbeddingDim {
		c.JSON(http.StatusBadRequest, gin.H{"error": "embedding must have 512 dimensions"})
		return
	}

	res, err := h.matcher.Match(c.Request.Context(), req.Embedding)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, res)
}

// SearchByImage accepts a multipart face image, embeds it and matches.
func (h *FaceHandler) SearchByImage(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read image failed"})
		return
	}

	if h.EmbedFn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "face embedder not initialized"})
		return
	}

	embedding, err := h.EmbedFn(imageData)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to embed face: " + err.Error()})
		return
	}

	res, err := h.matcher.Match(c.Request.Context(), embedding)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, res)
}

// Snapshot streams a CCTV frame's stored image.
func (h *FaceHandler) Snapshot(c *gin.Context) {
	frame, err := h.db.GetCCTVFrame(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if frame == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "frame not found"})
		return
	}

	key := storage.FrameKey(frame.FrameID)
	if frame.SnapshotKey != nil && *frame.SnapshotKey != "" {
		key = *frame.SnapshotKey
	}
	data, err := h.minio.GetObject(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not available"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}
