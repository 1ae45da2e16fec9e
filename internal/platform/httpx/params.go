package httpx

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"SIMAPRO-backend/internal/platform/apierr"
)

// Page は一覧系 API のページング
type Page struct {
	Limit  int
	Offset int
	Order  string // asc / desc
}

const maxLimit = 200

// MaxOffset を超える offset は丸める。int の桁あふれで負の OFFSET を作らない
const MaxOffset = 1 << 30

// PageFrom は limit/offset/order を読む。範囲外は既定値に丸める
func PageFrom(c *gin.Context, defLimit int) Page {
	p := Page{
		Limit:  AtoiDef(c.Query("limit"), defLimit),
		Offset: AtoiDef(c.Query("offset"), 0),
		Order:  c.DefaultQuery("order", "desc"),
	}
	if p.Limit <= 0 || p.Limit > maxLimit {
		p.Limit = defLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Offset > MaxOffset {
		p.Offset = MaxOffset
	}
	if p.Order != "asc" {
		p.Order = "desc"
	}
	return p
}

// PageOffset は 1 始まりの page を丸めて offset と一緒に返す
func PageOffset(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if maxPage := MaxOffset/perPage + 1; page > maxPage {
		page = maxPage
	}
	return page, (page - 1) * perPage
}

func AtoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}

func NextOffset(total int64, p Page) int {
	n := p.Offset + p.Limit
	if n >= int(total) {
		return 0
	}
	return n
}

// OptionalID は不正な値を未指定として扱う
func OptionalID(s string) *uint64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return nil
	}
	return &n
}

// PathID はパスパラメータ name を読み、不正なら 400 を書いて false を返す
func PathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, name+" must be a number"))
		return 0, false
	}
	return id, true
}

// BindJSON は失敗時に 400 を書いて false を返す
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return false
	}
	return true
}
