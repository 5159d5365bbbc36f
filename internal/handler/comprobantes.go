package handler

import (
	"net/http"

	"facturador/internal/apierror"
	"facturador/internal/dto"
	"facturador/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ComprobantesHandler struct{ svc service.ComprobanteService }

func NewComprobantesHandler(svc service.ComprobanteService) *ComprobantesHandler {
	return &ComprobantesHandler{svc: svc}
}

// Crear godoc
// @Summary Crea un comprobante y encola su autorización fiscal
// @Tags comprobantes
// @Accept json
// @Produce json
// @Param body body dto.CrearComprobanteRequest true "Comprobante"
// @Success 202 {object} dto.EncolarResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/comprobantes [post]
func (h *ComprobantesHandler) Crear(c *gin.Context) {
	var req dto.CrearComprobanteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	// 202: authorization happens asynchronously in the worker.
	c.JSON(http.StatusAccepted, resp)
}

func (h *ComprobantesHandler) Listar(c *gin.Context) {
	var filter dto.ComprobanteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar comprobantes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprobantesHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Comprobante no encontrado"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF streams the factura file.
func (h *ComprobantesHandler) PDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	path, err := h.svc.ObtenerPDFPath(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.FileAttachment(path, "factura.pdf")
}

func (h *ComprobantesHandler) Reintentar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Reintentar(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
