package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
	"github.com/penguin789456/rfid-attendance-system/internal/core/department"
	"github.com/penguin789456/rfid-attendance-system/internal/core/employee"
	"github.com/penguin789456/rfid-attendance-system/internal/core/ruleconfig"
	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
)

const dateLayout = "2006-01-02"

// Scanner は打刻を処理するエンジンの抽象です。
type Scanner interface {
	ProcessScan(ctx context.Context, in attendance.ScanInput) (*attendance.Outcome, error)
}

// ConfigLister は部門の規則スナップショット履歴を返します。
type ConfigLister interface {
	List(ctx context.Context, departmentID string) ([]*ruleconfig.RequiredConfig, error)
}

// Deps は Handler の依存関係です。
type Deps struct {
	Scanner         Scanner
	Attendance      attendance.UseCase
	Departments     department.UseCase
	Employees       employee.UseCase
	Schedules       schedule.UseCase
	Configs         ConfigLister
	DefaultDeviceID string
	// Now は event_time が省略された打刻の時刻を返します。既定は time.Now です。
	Now func() time.Time
}

// Handler は REST API のハンドラ群です。
type Handler struct {
	scanner         Scanner
	attendance      attendance.UseCase
	departments     department.UseCase
	employees       employee.UseCase
	schedules       schedule.UseCase
	configs         ConfigLister
	defaultDeviceID string
	now             func() time.Time
	validate        *validator.Validate
}

// NewHandler は Handler を生成します。
func NewHandler(deps Deps) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Handler{
		scanner:         deps.Scanner,
		attendance:      deps.Attendance,
		departments:     deps.Departments,
		employees:       deps.Employees,
		schedules:       deps.Schedules,
		configs:         deps.Configs,
		defaultDeviceID: deps.DefaultDeviceID,
		now:             now,
		validate:        v,
	}
}

// Health は死活監視用のエンドポイントです。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorResponse はエラー応答の本文です。
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("rest: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError はドメインエラーを対応する HTTP ステータスで返します。
func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("rest: internal error: %v", err)
		writeError(w, status, "internal error", nil)
		return
	}
	writeError(w, status, http.StatusText(status), err)
}

// decode はリクエスト本文を dst へ読み込み、validate タグで検証します。
// 失敗した場合は応答を書き込み false を返します。
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return false
		}
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: fields})
		return false
	}
	return true
}

type pageQuery struct {
	size  int
	token string
}

func parsePageQuery(r *http.Request) (pageQuery, error) {
	q := r.URL.Query()
	page := pageQuery{token: q.Get("page_token")}
	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return page, fmt.Errorf("page_size: %w", err)
		}
		page.size = size
	}
	return page, nil
}

func parseBoolQuery(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &t, nil
}

func parseTimeQuery(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &t, nil
}
