package dto

import "github.com/noah-isme/academic-records-api/internal/models"

// BoletaExportRequest captures POST /groups/:id/boletas/export payload.
type BoletaExportRequest struct {
	Type   models.ExportType   `json:"type" validate:"required,oneof=boletas boletas_finales"`
	Format models.ExportFormat `json:"format" validate:"required,oneof=csv pdf xlsx"`
	Notify bool                `json:"notify"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
