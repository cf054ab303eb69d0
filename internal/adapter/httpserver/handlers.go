package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fairyhunter13/resume-matcher/internal/config"
	"github.com/fairyhunter13/resume-matcher/internal/domain"
	"github.com/fairyhunter13/resume-matcher/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg      config.Config
	Resumes  domain.ResumeRepository
	Analyzer *usecase.AnalyzeService
	Feedback *usecase.FeedbackService
	Ranker   *usecase.RankService
	DBCheck  func(ctx context.Context) error
}

// NewServer constructs a Server with all dependencies wired.
func NewServer(cfg config.Config, resumes domain.ResumeRepository, analyzer *usecase.AnalyzeService, feedback *usecase.FeedbackService, ranker *usecase.RankService, dbCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Resumes: resumes, Analyzer: analyzer, Feedback: feedback, Ranker: ranker, DBCheck: dbCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// allowedExt enforces an allowlist for uploads: .txt, .pdf, .docx.
func allowedExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".txt") || strings.HasSuffix(n, ".pdf") || strings.HasSuffix(n, ".docx")
}

func allowedMIME(m string) bool {
	m = strings.ToLower(m)
	if strings.HasPrefix(m, "text/plain") {
		return true
	}
	return m == "application/pdf" || m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// ResumeUploadHandler registers a candidate resume: multipart upload with an
// email identity, stored on disk and recorded by reference URL.
func (s *Server) ResumeUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code: "INVALID_ARGUMENT", Message: "payload too large",
					Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		if err := getValidator().Var(email, "required,email"); err != nil {
			writeError(w, r, fmt.Errorf("%w: valid email required", domain.ErrInvalidArgument), map[string]string{"field": "email"})
			return
		}

		file, header, err := r.FormFile("resume")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: resume file required", domain.ErrInvalidArgument), map[string]string{"field": "resume"})
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: resume read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if !allowedExt(header.Filename) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "unsupported media type (extension)",
				Details: map[string]any{"filename": header.Filename},
			}})
			return
		}
		mt := mimetype.Detect(data)
		if !allowedMIME(mt.String()) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "unsupported media type (content)",
				Details: map[string]any{"mime": mt.String(), "filename": header.Filename},
			}})
			return
		}

		id := uuid.New().String()
		storedName := id + strings.ToLower(filepath.Ext(header.Filename))
		if err := os.MkdirAll(s.Cfg.UploadDir, 0o750); err != nil {
			writeError(w, r, fmt.Errorf("op=upload.mkdir: %w", err), nil)
			return
		}
		if err := os.WriteFile(filepath.Join(s.Cfg.UploadDir, storedName), data, 0o640); err != nil {
			writeError(w, r, fmt.Errorf("op=upload.write: %w", err), nil)
			return
		}

		fileURL := strings.TrimRight(s.Cfg.PublicBaseURL, "/") + "/files/" + storedName
		created, err := s.Resumes.Create(r.Context(), domain.Resume{
			ID:       id,
			Email:    strings.ToLower(email),
			FileURL:  fileURL,
			DriveURL: strings.TrimSpace(r.FormValue("drive_url")),
			Filename: header.Filename,
			MIME:     mt.String(),
			Size:     int64(len(data)),
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": created, "fileUrl": fileURL})
	}
}

// FileHandler serves stored resume files back by name.
func (s *Server) FileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" || name != filepath.Base(name) {
			writeError(w, r, fmt.Errorf("%w: bad file name", domain.ErrInvalidArgument), nil)
			return
		}
		http.ServeFile(w, r, filepath.Join(s.Cfg.UploadDir, name))
	}
}

type analyzeRequest struct {
	ResumeID    string `json:"resume_id"`
	ResumeText  string `json:"resume_text"`
	JDText      string `json:"jd_text" validate:"required,max=20000"`
	CompanyName string `json:"company_name" validate:"max=200"`
	CompanyURL  string `json:"company_url" validate:"omitempty,url"`
}

// resolve runs the analysis for a request referencing either a stored resume
// or inline text.
func (s *Server) resolve(ctx context.Context, req analyzeRequest) (domain.Analysis, error) {
	opts := usecase.AnalyzeOptions{CompanyName: req.CompanyName, CompanyURL: req.CompanyURL}
	if req.ResumeID != "" {
		res, err := s.Resumes.Get(ctx, req.ResumeID)
		if err != nil {
			return domain.Analysis{}, err
		}
		return s.Analyzer.AnalyzeStored(ctx, res.FileURL, req.JDText, opts)
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		return domain.Analysis{}, fmt.Errorf("%w: resume_id or resume_text required", domain.ErrInvalidArgument)
	}
	return s.Analyzer.AnalyzeText(ctx, req.ResumeText, req.JDText, opts), nil
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, req *analyzeRequest) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
		return false
	}
	if err := getValidator().Struct(*req); err != nil {
		verrs := map[string]string{}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
		return false
	}
	return true
}

// AnalyzeHandler scores a resume against a requirement text and returns the
// full analysis shape.
func (s *Server) AnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		a, err := s.resolve(r.Context(), req)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// FeedbackHandler runs the analysis and composes the feedback report.
func (s *Server) FeedbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		a, err := s.resolve(r.Context(), req)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		report := s.Feedback.Generate(r.Context(), a)
		writeJSON(w, http.StatusOK, report)
	}
}

// TopMatchesHandler ranks all stored resumes against a requirement text.
// Protected by the recruiter guard at the router.
func (s *Server) TopMatchesHandler() http.HandlerFunc {
	type request struct {
		JDText string `json:"jd_text" validate:"required,max=20000"`
		Limit  int    `json:"limit" validate:"min=0,max=100"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), nil)
			return
		}
		ranked, err := s.Ranker.TopMatches(r.Context(), req.JDText, req.Limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"totalCandidates": len(ranked), "matches": ranked})
	}
}

// ReadyzHandler probes the database and reports readiness.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 1)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		ok := true
		for _, c := range checks {
			if !c.OK {
				ok = false
				break
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
