package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"spacetravelling/cmd/api/dto"
	"spacetravelling/cmd/api/services"
)

// preview 쿠키 유효 시간(초). 에디터가 다시 preview 링크를 열면 갱신된다.
const previewCookieMaxAge = 30 * 60

// PreviewHandler godoc
// @Summary      Enter preview mode
// @Description  Store the draft ref in the preview cookie and redirect to the previewed post
// @Tags         preview
// @Param        token       query  string  true  "Draft ref"
// @Param        documentId  query  string  true  "Previewed document id"
// @Success      307
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /api/preview [get]
func PreviewHandler(posts *services.PostService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		documentID := c.Query("documentId")
		if token == "" || documentID == "" {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "missing_preview_params"})
			return
		}

		uid, err := posts.ResolvePreviewUID(c.Request.Context(), documentID, token)
		if err != nil {
			writeError(c, "preview", err)
			return
		}

		c.SetCookie(cookieName, token, previewCookieMaxAge, "/", "", false, true)
		c.Redirect(http.StatusTemporaryRedirect, "/post/"+url.PathEscape(uid))
	}
}

// ExitPreviewHandler godoc
// @Summary      Exit preview mode
// @Description  Clear the preview cookie and redirect to the home page
// @Tags         preview
// @Success      307
// @Router       /api/exit-preview [get]
func ExitPreviewHandler(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(cookieName, "", -1, "/", "", false, true)
		c.Redirect(http.StatusTemporaryRedirect, "/")
	}
}
