package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jcabrerapy/concilia-be/internal/domain"
	"github.com/jcabrerapy/concilia-be/internal/service"
	"github.com/jcabrerapy/concilia-be/pkg/logger"
)

type ReconciliationHandler struct {
	service service.ReconciliationService
	logger  *logger.Logger
}

func NewReconciliationHandler(svc service.ReconciliationService, log *logger.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{
		service: svc,
		logger:  log,
	}
}

// Create accepts one reconciliation tuple as a multipart form: the
// statement export, the two check registries and the opening balance.
func (h *ReconciliationHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	h.logger.Info(ctx, "Handling reconciliation request")

	openingBalance := c.FormValue("opening_balance")
	if openingBalance == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "opening_balance is required",
		})
	}

	statement, statementName, err := formFile(c, "statement")
	if err != nil {
		return badFile(c, "statement")
	}
	defer statement.Close()

	vista, _, err := formFile(c, "vista")
	if err != nil {
		return badFile(c, "vista")
	}
	defer vista.Close()

	deferred, _, err := formFile(c, "deferred")
	if err != nil {
		return badFile(c, "deferred")
	}
	defer deferred.Close()

	runID, err := h.service.CreateRun(ctx, service.RunRequest{
		OpeningBalance: openingBalance,
		Statement:      statement,
		StatementName:  statementName,
		Vista:          vista,
		Deferred:       deferred,
	})
	if err != nil {
		var missing *domain.MissingColumnError
		if errors.As(err, &missing) {
			h.logger.Warn(ctx, "Structural input failure",
				"input", missing.Input,
				"column", missing.Column,
			)
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":  missing.Error(),
				"input":  missing.Input,
				"column": missing.Column,
			})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
		}

		h.logger.Error(ctx, "Failed to create run",
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create reconciliation run",
		})
	}

	h.logger.Info(ctx, "Run accepted",
		"run_id", runID,
	)

	return c.JSON(http.StatusAccepted, map[string]string{
		"run_id": runID,
		"status": string(domain.RunStatusProcessing),
	})
}

func (h *ReconciliationHandler) GetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("id")

	run, err := h.service.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "run not found",
			})
		}

		h.logger.Error(ctx, "Failed to get run",
			"run_id", runID,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get run",
		})
	}

	return c.JSON(http.StatusOK, run)
}

func (h *ReconciliationHandler) GetResult(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("id")

	result, err := h.service.GetResult(ctx, runID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRunNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "run not found",
			})
		case errors.Is(err, domain.ErrResultNotReady):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "reconciliation still processing",
			})
		case errors.Is(err, domain.ErrRunFailed):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "reconciliation failed",
			})
		}

		h.logger.Error(ctx, "Failed to get result",
			"run_id", runID,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get result",
		})
	}

	return c.JSON(http.StatusOK, result)
}

func (h *ReconciliationHandler) GetChecks(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("id")

	list := domain.CheckListKind(c.QueryParam("list"))
	switch list {
	case domain.CheckListVista, domain.CheckListDeferred, domain.CheckListUnregistered:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "list must be vista, deferred or unregistered",
		})
	}

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage, err := strconv.Atoi(c.QueryParam("per_page"))
	if err != nil || perPage < 1 {
		perPage = 10
	}

	checks, total, err := h.service.GetCheckDetails(ctx, runID, list, page, perPage)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRunNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "run not found",
			})
		case errors.Is(err, domain.ErrResultNotReady):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "reconciliation still processing",
			})
		case errors.Is(err, domain.ErrRunFailed):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "reconciliation failed",
			})
		}

		h.logger.Error(ctx, "Failed to get checks",
			"run_id", runID,
			"list", list,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to get checks",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"run_id":   runID,
		"list":     list,
		"items":    checks,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

func formFile(c echo.Context, field string) (multipart.File, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	return f, fh.Filename, nil
}

func badFile(c echo.Context, field string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{
		"error": field + " file is required",
	})
}
