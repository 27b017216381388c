package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "quantifi/internal/errors"
)

// allowedImageExts limits uploads to common web image formats.
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadHandler handles profile image uploads. Files land in dir, which the
// router serves statically under /uploads.
type UploadHandler struct {
	dir string
}

// NewUploadHandler creates a new UploadHandler storing files in dir.
func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{dir: dir}
}

// Image stores an uploaded profile image
// @Summary     Upload a profile image
// @Description Upload an image file (jpg, jpeg, png, webp) and get back its public URL
// @Tags        auth
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       image formData file true "Image file"
// @Success     200 {object} map[string]string "imageUrl of the stored file"
// @Failure     400 {object} ErrorResponse "Missing file or unsupported format"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/upload-image [post]
func (h *UploadHandler) Image(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "No image file uploaded"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Only .jpg, .jpeg, .png and .webp files are allowed"))
		return
	}

	// Random filename so uploads never collide or overwrite each other.
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(h.dir, name)); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	c.JSON(http.StatusOK, gin.H{
		"imageUrl": fmt.Sprintf("%s://%s/uploads/%s", scheme, c.Request.Host, name),
	})
}
