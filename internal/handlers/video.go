package handlers

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/accrandomash-cloud/Tiktokkk/internal/errs"
	"github.com/accrandomash-cloud/Tiktokkk/internal/pipeline"
	"github.com/accrandomash-cloud/Tiktokkk/internal/storage"
	"github.com/accrandomash-cloud/Tiktokkk/internal/types"
)

const downloadName = "generated_video.mp4"

// VideoHandler handles video generation requests
type VideoHandler struct {
	pipeline *pipeline.Pipeline
	history  *storage.HistoryDB   // optional
	drive    *storage.DriveClient // optional
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(p *pipeline.Pipeline, history *storage.HistoryDB, drive *storage.DriveClient) *VideoHandler {
	return &VideoHandler{
		pipeline: p,
		history:  history,
		drive:    drive,
	}
}

// VideoRequest represents the request body
type VideoRequest struct {
	Prompt string   `json:"prompt"`
	Links  []string `json:"links"`
}

// Handle processes one video generation request synchronously and streams
// the finished file back.
func (h *VideoHandler) Handle(c *fiber.Ctx) error {
	var req VideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	job := &types.Job{
		ID:    uuid.New().String(),
		Text:  req.Prompt,
		Links: req.Links,
	}

	started := time.Now()
	outputPath, ws, err := h.pipeline.Run(c.Context(), job)
	if err != nil {
		if errs.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		log.Printf("Job %s failed: %v", job.ID, err)
		h.record(types.JobRecord{
			JobID:       job.ID,
			Prompt:      req.Prompt,
			LinkCount:   len(req.Links),
			Status:      types.StatusFailed,
			Error:       err.Error(),
			DurationSec: time.Since(started).Seconds(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	info, statErr := os.Stat(outputPath)
	if statErr != nil {
		ws.Cleanup()
		log.Printf("Job %s produced no readable output: %v", job.ID, statErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read generated video",
		})
	}
	outputBytes := info.Size()

	h.record(types.JobRecord{
		JobID:       job.ID,
		Prompt:      req.Prompt,
		LinkCount:   len(req.Links),
		Status:      types.StatusCompleted,
		DurationSec: time.Since(started).Seconds(),
		OutputBytes: outputBytes,
	})

	if h.drive != nil {
		if url, err := h.drive.UploadVideo(job.ID, outputPath); err != nil {
			log.Printf("WARNING: Google Drive archive failed for job %s: %v", job.ID, err)
		} else {
			log.Printf("Job %s archived to Drive: %s", job.ID, url)
		}
	}

	// Hold the file open, then tear the workspace down; the open
	// descriptor keeps the bytes alive until streaming finishes.
	f, err := os.Open(outputPath)
	if err != nil {
		ws.Cleanup()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to open generated video",
		})
	}
	ws.Cleanup()

	c.Set(fiber.HeaderContentType, "video/mp4")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+downloadName+`"`)
	return c.SendStream(f, int(outputBytes))
}

// record saves a history row; failures are logged, never surfaced
func (h *VideoHandler) record(rec types.JobRecord) {
	if h.history == nil {
		return
	}
	if err := h.history.SaveJob(rec); err != nil {
		log.Printf("Failed to save job history: %v", err)
	}
}
