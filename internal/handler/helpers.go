package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"attendance/internal/apierror"
	"attendance/internal/middleware"
	"attendance/internal/model"
	"attendance/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// statusFor maps the service error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidPrecondition):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Unclassified errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		id := c.GetString(middleware.RequestIDKey)
		log.Error().
			Err(err).
			Str("request_id", id).
			Str("route", c.FullPath()).
			Msg("request failed")
		c.JSON(status, apierror.Internal(id))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, apierror.New("Insufficient permissions"))
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return 0, false
	}
	return id, true
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

const dateLayout = "2006-01-02"

// dateRange reads start_date and end_date (YYYY-MM-DD). end defaults to today
// and start to the first day of end's month.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("end_date must be YYYY-MM-DD"))
			return time.Time{}, time.Time{}, false
		}
		end = t
	}
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("start_date must be YYYY-MM-DD"))
			return time.Time{}, time.Time{}, false
		}
		start = t
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, apierror.New("end_date must not be before start_date"))
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// isStaffManager reports whether the caller may see everything, cost included.
func isStaffManager(claims *middleware.JWTClaims) bool {
	return claims.HasRole(model.RoleManager, model.RoleAdministrator)
}

// isClientOnly reports whether the caller is a client without staff roles.
func isClientOnly(claims *middleware.JWTClaims) bool {
	return claims.HasRole(model.RoleClient) &&
		!claims.HasRole(model.RoleAdministrator, model.RoleManager, model.RoleCrewBoss, model.RoleEmployee)
}
