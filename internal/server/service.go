package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ThiagoRGoveia/plan-fact/internal/chart"
	"github.com/ThiagoRGoveia/plan-fact/internal/database"
	"github.com/ThiagoRGoveia/plan-fact/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

type ChartService struct {
	DBManager database.DBManager
	validate  *validator.Validate
}

func NewChartService(dbManager database.DBManager) *ChartService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ChartService{DBManager: dbManager, validate: validate}
}

func (h *ChartService) CreateFileVersion(w http.ResponseWriter, r *http.Request) {
	var req CreateFileVersionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	fv, err := h.DBManager.InsertFileVersion(r.Context(), req.Version, req.FileName)
	if err != nil {
		if errors.Is(err, database.ErrAlreadyExists) {
			writeError(w, r, http.StatusConflict, fmt.Sprintf("file version %q already exists", req.Version))
			return
		}
		writeStoreError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int("id", fv.ID).Str("version", fv.Version).Msg("file version created")
	writeJSON(w, r, http.StatusOK, fv)
}

func (h *ChartService) CreateValue(w http.ResponseWriter, r *http.Request) {
	var req CreateValueRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	date, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid 'date' format, use YYYY-MM-DD")
		return
	}

	value := models.Value{
		ProjectID:     req.ProjectID,
		FileVersionID: req.FileVersionID,
		Date:          date,
		Plan:          *req.Plan,
		Fact:          *req.Fact,
	}
	if _, err := h.DBManager.InsertValue(r.Context(), value); err != nil {
		writeStoreError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, SuccessResponse{Success: true})
}

// GetChartData sums plan or fact per date for one file version and calendar
// year. An unknown version yields an empty mapping.
func (h *ChartService) GetChartData(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := ChartDataQuery{
		Version:   params.Get("version"),
		ValueType: params.Get("value_type"),
	}

	yearStr := params.Get("year")
	if yearStr == "" {
		writeError(w, r, http.StatusBadRequest, "query parameter 'year' is required")
		return
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid 'year', expected an integer")
		return
	}
	query.Year = year

	if err := h.validate.Struct(query); err != nil {
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}
	valueType, err := models.ParseValueType(query.ValueType)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	response := ChartDataResponse{Data: models.ChartData{}}

	fv, err := h.DBManager.GetFileVersionByVersion(r.Context(), query.Version)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, r, http.StatusOK, response)
			return
		}
		writeStoreError(w, r, err)
		return
	}

	from, to := chart.YearRange(query.Year)
	values, err := h.DBManager.GetValuesForChart(r.Context(), fv.ID, from, to)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	response.Data = chart.Aggregate(values, valueType)
	writeJSON(w, r, http.StatusOK, response)
}

func (h *ChartService) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DBManager.Ping(r.Context()); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("database ping failed")
		writeError(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// decodeAndValidate reads a JSON body into dst and validates it, writing a 400
// and returning false when either step fails.
func (h *ChartService) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, decodeMessage(err))
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "request body must contain a single JSON object")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("invalid type for field '%s', expected %s", typeErr.Field, typeErr.Type)
	}
	return "invalid request body"
}

func validationMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request"
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field '%s' is required", fe.Field()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be a date in YYYY-MM-DD format", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s=%s'", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}
