package request

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"librarymanagement/model"
	rs "librarymanagement/service/request"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Create a borrowing request
// @Summary      Create borrowing request
// @Description  Borrow up to 5 distinct books, at most 3 requests per calendar month
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        payload  body  model.CreateRequestReq  true  "Book ids to borrow"
// @Success      201  {object}  model.RequestView
// @Failure      400  {object}  map[string]any "no books, too many books, unknown book or user"
// @Failure      409  {object}  map[string]any "book not available"
// @Failure      429  {object}  map[string]any "monthly limit reached"
// @Router       /api/my-requests [post]
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	uid, _ := c.Get("user_id").(int64)

	view, err := h.Svc.Create(c.Request().Context(), uid, req.BookIDs)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNonExistentUser, rs.ErrNoBooksProvided, rs.ErrTooManyBooks, rs.ErrNonExistentBook:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		case rs.ErrMonthlyLimit:
			return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "monthly borrowing limit reached"})
		case rs.ErrBookNotAvailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
		default:
			h.Log.Error("request create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, view)
}

// GET /api/my-requests/:id
func (h *Controller) GetMine(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	view, err := h.Svc.GetMyByID(c.Request().Context(), id, uid)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrowing request not found"})
		case rs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("request get mine", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, view)
}

// GET /api/my-requests
func (h *Controller) ListMine(c echo.Context) error {
	page, size, err := parsePaging(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.ListForUser(c.Request().Context(), uid, page, size)
	if err != nil {
		h.Log.Error("request list mine", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GET /api/my-allowance
func (h *Controller) MyAllowance(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.MyAllowance(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("allowance", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GET /api/requests/:id
func (h *Controller) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	view, err := h.Svc.GetByID(c.Request().Context(), id)
	if err != nil {
		if rs.Code(err) == rs.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrowing request not found"})
		}
		h.Log.Error("request get", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, view)
}

// GET /api/requests
func (h *Controller) ListAll(c echo.Context) error {
	page, size, err := parsePaging(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	out, err := h.Svc.ListAll(c.Request().Context(), page, size)
	if err != nil {
		h.Log.Error("request list all", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// POST /api/requests/:id/approve
func (h *Controller) Approve(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Approve(c.Request().Context(), id, uid); err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrowing request not found"})
		case rs.ErrNonExistentUser:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		case rs.ErrAlreadySettled:
			return c.JSON(http.StatusConflict, echo.Map{"message": "request already settled"})
		default:
			h.Log.Error("request approve", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "approved"})
}

// POST /api/requests/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	if err := h.Svc.Reject(c.Request().Context(), id); err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrowing request not found"})
		case rs.ErrAlreadySettled:
			return c.JSON(http.StatusConflict, echo.Map{"message": "request already settled"})
		default:
			h.Log.Error("request reject", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "rejected"})
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func parsePaging(c echo.Context) (int64, int64, error) {
	page := int64(1)
	size := int64(10)
	if v := c.QueryParam("pageNumber"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return 0, 0, errors.New("invalid pageNumber")
		}
		page = n
	}
	if v := c.QueryParam("pageSize"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > 100 {
			return 0, 0, errors.New("invalid pageSize")
		}
		size = n
	}
	return page, size, nil
}
