package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacetravelling/cmd/api/dto"
	"spacetravelling/cmd/api/event/dispatcher"
	"spacetravelling/cmd/internal/logger"
)

// RevalidateHandler godoc
// @Summary      Content webhook
// @Description  Schedule regeneration of the named posts (every page when uids is empty)
// @Tags         build
// @Accept       json
// @Produce      json
// @Param        X-Revalidate-Secret  header  string                  true   "Webhook secret"
// @Param        body                 body    dto.RevalidateRequest   false  "Changed post uids"
// @Success      202  {object}  dto.MessageResponseDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      502  {object}  dto.ErrorResponseDTO
// @Router       /api/revalidate [post]
func RevalidateHandler(publisher *dispatcher.EventDispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RevalidateRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request"})
				return
			}
		}

		evt, err := publisher.PublishContentChanged(c.Request.Context(), "webhook", req.UIDs)
		if err != nil {
			logger.ErrorWithFields("revalidate publish failed", logger.Fields{
				"event_id": evt.ID,
				"error":    err.Error(),
			})
			c.JSON(http.StatusBadGateway, dto.ErrorResponseDTO{Error: "publish_failed"})
			return
		}

		logger.InfoWithFields("revalidation scheduled", logger.Fields{
			"event_id": evt.ID,
			"uids":     req.UIDs,
		})
		c.JSON(http.StatusAccepted, dto.MessageResponseDTO{Message: "revalidation scheduled"})
	}
}
