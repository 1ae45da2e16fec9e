package labels

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes expects r to be guarded by the assets/manage capability.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/assets/labels.csv", h.Export)
}

// Export godoc
// @Summary  ラベル印刷用 CSV
// @Tags     staff
// @Produce  text/csv
// @Param    category query int    false "category id"
// @Param    location query int    false "location id"
// @Param    encoding query string false "utf8 | sjis"
// @Security BearerAuth
// @Router   /staff/assets/labels.csv [get]
func (h *Handler) Export(c *gin.Context) {
	f := Filter{
		CategoryID: httpx.OptionalID(c.Query("category")),
		LocationID: httpx.OptionalID(c.Query("location")),
	}
	// 途中で失敗しても JSON エラーを返せるようにバッファしてから書く
	var buf bytes.Buffer
	if _, err := h.svc.Export(c.Request.Context(), f, Encoding(c.Query("encoding")), &buf); err != nil {
		apierr.Respond(c, err)
		return
	}
	charset := "utf-8"
	if Encoding(c.Query("encoding")) == EncodingSJIS {
		charset = "shift_jis"
	}
	c.Header("Content-Disposition", `attachment; filename="asset-labels.csv"`)
	c.Data(http.StatusOK, "text/csv; charset="+charset, buf.Bytes())
}
