package handler

import (
	"notesweb/repository"
	"notesweb/usecase"
	"notesweb/utils"

	"github.com/gin-gonic/gin"
)

// Stats answers with note counts for the same filter the list page takes.
func (h *NotesHandler) Stats(c *gin.Context) {
	stats, err := h.notesService.Stats(c.Request.Context(), FilterFromQuery(c))
	if err != nil {
		utils.Logger.WithError(err).WithField("status", repository.StatusCode(err)).Warn("Error fetching note stats")
		utils.UpstreamError(c, upstreamStatus(err), usecase.UserMessage(err))
		return
	}
	utils.Success(c, stats)
}
