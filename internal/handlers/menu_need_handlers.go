package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"menu_needs_backend/internal/exporter"
	"menu_needs_backend/internal/models"
	"menu_needs_backend/internal/services"
	"menu_needs_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const filterDateLayout = "2006-01-02"

// MenuNeedHandler holds the menu need service.
type MenuNeedHandler struct {
	needService services.MenuNeedService
}

// NewMenuNeedHandler creates a new MenuNeedHandler.
func NewMenuNeedHandler(s services.MenuNeedService) *MenuNeedHandler {
	return &MenuNeedHandler{needService: s}
}

// PreviewNeeds computes the needs of a scope without persisting them.
func (h *MenuNeedHandler) PreviewNeeds(c *gin.Context) {
	var scope models.Scope
	if err := c.ShouldBindJSON(&scope); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload.", err.Error())
		return
	}

	preview, err := h.needService.Preview(c.Request.Context(), scope)
	if err != nil {
		h.respondServiceError(c, err, "PreviewNeeds", "Failed to preview menu needs.")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// GenerateNeeds replaces the stored needs of a scope with a fresh computation.
func (h *MenuNeedHandler) GenerateNeeds(c *gin.Context) {
	var scope models.Scope
	if err := c.ShouldBindJSON(&scope); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload.", err.Error())
		return
	}

	userID, ok := actingUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "missing user id"))
		return
	}

	result, err := h.needService.Generate(c.Request.Context(), scope, userID)
	if err != nil {
		h.respondServiceError(c, err, "GenerateNeeds", "Failed to generate menu needs.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListNeeds returns a filtered, sorted page of stored needs.
func (h *MenuNeedHandler) ListNeeds(c *gin.Context) {
	filters, err := parseNeedFilters(c)
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid filter.", err.Error())
		return
	}

	params := models.NeedListParams{Sort: c.Query("sort"), Order: c.Query("order")}
	if params.Page, err = parseOptionalPositiveInt(c, "page"); err != nil {
		utils.RespondValidationFailed(c, "Invalid page format.", err.Error())
		return
	}
	if params.Limit, err = parseOptionalPositiveInt(c, "limit"); err != nil {
		utils.RespondValidationFailed(c, "Invalid limit format.", err.Error())
		return
	}

	page, err := h.needService.List(c.Request.Context(), filters, params)
	if err != nil {
		h.respondServiceError(c, err, "ListNeeds", "Failed to fetch menu needs.")
		return
	}
	c.JSON(http.StatusOK, page)
}

// ExportNeeds returns the labelled report rows as JSON or as an .xlsx attachment.
func (h *MenuNeedHandler) ExportNeeds(c *gin.Context) {
	filters, err := parseNeedFilters(c)
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid filter.", err.Error())
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "xlsx" {
		utils.RespondValidationFailed(c, "Invalid export format.", "format must be json or xlsx")
		return
	}

	rows, err := h.needService.Export(c.Request.Context(), filters)
	if err != nil {
		h.respondServiceError(c, err, "ExportNeeds", "Failed to export menu needs.")
		return
	}

	if format == "json" {
		c.JSON(http.StatusOK, rows)
		return
	}

	data, err := exporter.WriteNeedsWorkbook(rows)
	if err != nil {
		utils.LogError(err, "ExportNeeds: building workbook")
		utils.RespondInternalError(c, "Failed to build export file.")
		return
	}
	filename := fmt.Sprintf("necessidades_cardapio_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, exporter.XLSXContentType, data)
}

// DeleteNeed deletes a single need by id.
func (h *MenuNeedHandler) DeleteNeed(c *gin.Context) {
	idStr := c.Param("id")
	id, err := utils.StrToPositiveInt64(idStr)
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid need ID format.", err.Error())
		return
	}

	affected, err := h.needService.Delete(c.Request.Context(), &id, nil)
	if err != nil {
		h.respondServiceError(c, err, "DeleteNeed", "Failed to delete menu need.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows_affected": affected})
}

// DeleteNeedsByScope deletes every need of the scope in the request body.
func (h *MenuNeedHandler) DeleteNeedsByScope(c *gin.Context) {
	var scope models.Scope
	if err := c.ShouldBindJSON(&scope); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload.", err.Error())
		return
	}

	affected, err := h.needService.Delete(c.Request.Context(), nil, &scope)
	if err != nil {
		h.respondServiceError(c, err, "DeleteNeedsByScope", "Failed to delete menu needs.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows_affected": affected})
}

func (h *MenuNeedHandler) respondServiceError(c *gin.Context, err error, op, fallback string) {
	switch {
	case errors.Is(err, services.ErrMenuNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Menu not found.", err.Error()))
	case errors.Is(err, services.ErrNoUnitsInScope):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No units found for the selected scope.", err.Error()))
	case errors.Is(err, services.ErrInvalidArgument):
		utils.RespondValidationFailed(c, "Invalid request.", err.Error())
	default:
		utils.LogError(err, op+": Error from menu need service")
		utils.RespondInternalError(c, fallback)
	}
}

func actingUserID(c *gin.Context) (int64, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := raw.(int64)
	return userID, ok && userID > 0
}

// parseNeedFilters rejects malformed values instead of silently dropping them.
func parseNeedFilters(c *gin.Context) (models.NeedFilters, error) {
	var filters models.NeedFilters
	ids := []struct {
		key  string
		dest **int64
	}{
		{"cardapio_id", &filters.CardapioID},
		{"filial_id", &filters.FilialID},
		{"centro_custo_id", &filters.CentroCustoID},
		{"contrato_id", &filters.ContratoID},
		{"produto_comercial_id", &filters.ProdutoComercialID},
		{"unidade_id", &filters.UnidadeID},
		{"periodo_atendimento_id", &filters.PeriodoAtendimentoID},
		{"produto_id", &filters.ProdutoID},
	}
	for _, f := range ids {
		raw := c.Query(f.key)
		if raw == "" {
			continue
		}
		v, err := utils.StrToPositiveInt64(raw)
		if err != nil {
			return filters, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dest = &v
	}

	dates := []struct {
		key  string
		dest **time.Time
	}{
		{"data_inicio", &filters.DataInicio},
		{"data_fim", &filters.DataFim},
	}
	for _, d := range dates {
		raw := c.Query(d.key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(filterDateLayout, raw)
		if err != nil {
			return filters, fmt.Errorf("%s: expected YYYY-MM-DD", d.key)
		}
		*d.dest = &t
	}
	return filters, nil
}

func parseOptionalPositiveInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}
