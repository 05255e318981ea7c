// Site HTTP handlers.
//
// This file serves what the Mini App and operators load directly:
//   - GET /                  (Mini App index.html or a welcome text)
//   - GET /api/menu          (menu document)
//   - GET /api/menu/search   (ranked menu items)
//   - GET /menu_qr           (PNG QR code of the Mini App URL)
//   - GET /health            (liveness)
package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/sushi-order-bot/internal/menu"
	"github.com/tbourn/sushi-order-bot/internal/services"
	"github.com/tbourn/sushi-order-bot/internal/utils"
)

const welcomeText = "Sushi order bot is running. Open the menu from the Telegram bot."

// MenuNotFound is the fixed body returned when the menu file is absent.
type MenuNotFound struct {
	Error string `json:"error" example:"Menu file not found"`
}

// SearchMenuResponse lists menu items ranked by relevance.
type SearchMenuResponse struct {
	Items []menu.Result `json:"items"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp int64  `json:"timestamp" example:"1700000000"`
}

// Index godoc
// @ID          index
// @Summary     Mini App entry page
// @Description Serves PUBLIC_DIR/index.html, or a plain welcome text when no build is deployed.
// @Tags        Site
// @Produce     html
// @Success     200  {string} string
// @Router      / [get]
func (h *Handlers) Index(c *gin.Context) {
	if h.site.PublicDir != "" {
		p := filepath.Join(h.site.PublicDir, "index.html")
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			c.File(p)
			return
		}
	}
	c.String(http.StatusOK, welcomeText)
}

// Menu godoc
// @ID          getMenu
// @Summary     Menu document
// @Description Returns the menu JSON exactly as stored in MENU_PATH.
// @Tags        Menu
// @Produce     json
// @Success     200  {object} object
// @Failure     404  {object} handlers.MenuNotFound  "Menu file not found"
// @Failure     500  {object} handlers.ErrorResponse "Menu unreadable"
// @Router      /api/menu [get]
func (h *Handlers) Menu(c *gin.Context) {
	raw, err := h.catalog.Raw()
	if err != nil {
		h.menuError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// SearchMenu godoc
// @ID          searchMenu
// @Summary     Search the menu
// @Description Ranks menu items by word overlap between the query and each item's name, description and category.
// @Tags        Menu
// @Produce     json
// @Param       q      query  string  true   "Search text"  example(salmon roll)
// @Param       limit  query  int     false  "Max results"  minimum(1) maximum(50) default(5)
// @Success     200  {object} handlers.SearchMenuResponse
// @Failure     400  {object} handlers.ErrorResponse "Empty query"
// @Failure     404  {object} handlers.MenuNotFound  "Menu file not found"
// @Failure     500  {object} handlers.ErrorResponse "Menu unreadable"
// @Router      /api/menu/search [get]
func (h *Handlers) SearchMenu(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q is required")
		return
	}
	limit := utils.ClampInt(utils.AtoiDefault(c.Query("limit"), 5), 1, 50)

	items, err := h.catalog.Search(q, limit)
	if err != nil {
		h.menuError(c, err)
		return
	}
	if items == nil {
		items = []menu.Result{}
	}
	ok(c, http.StatusOK, SearchMenuResponse{Items: items})
}

// MenuQR godoc
// @ID          menuQR
// @Summary     Mini App QR code
// @Description PNG QR code of the Mini App URL, for table stands and flyers.
// @Tags        Site
// @Produce     png
// @Param       size  query  int  false  "Edge length in pixels"  minimum(128) maximum(1024) default(256)
// @Success     200  {file}   binary
// @Failure     404  {object} handlers.ErrorResponse "No Mini App URL configured"
// @Router      /menu_qr [get]
func (h *Handlers) MenuQR(c *gin.Context) {
	target := services.NormalizeWebAppURL(h.site.WebAppURL)
	if target == "" {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "web app url not configured")
		return
	}
	writeQR(c, target)
}

// Health godoc
// @ID          health
// @Summary     Liveness probe
// @Tags        Site
// @Produce     json
// @Success     200  {object} handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{Status: "ok", Timestamp: h.now().Unix()})
}

func (h *Handlers) menuError(c *gin.Context, err error) {
	if errors.Is(err, menu.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, MenuNotFound{Error: "Menu file not found"})
		return
	}
	fail(c, http.StatusInternalServerError, ErrCodeMenuUnavailable, "menu unavailable")
}
