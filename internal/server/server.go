//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/peertrade/peertrade/internal/apperr"
	"github.com/peertrade/peertrade/internal/identity"
	"github.com/peertrade/peertrade/internal/repository"
	"github.com/peertrade/peertrade/internal/service"
)

// Core is the business surface the HTTP layer exposes. All route shapes here
// are plumbing; the contract lives in the service package.
type Core interface {
	CreateRequest(ctx context.Context, ownerID string, in service.NewRequest) (*repository.Request, error)
	GetRequest(ctx context.Context, requestID string) (*service.RequestDetail, error)
	SearchOpenRequests(ctx context.Context, callerID, category, keyword string) ([]*repository.Request, error)
	CloseRequest(ctx context.Context, callerID, requestID string) error
	FlagInappropriate(ctx context.Context, callerID, requestID string) error

	CreateResponse(ctx context.Context, responderID string, in service.NewResponse) (*repository.Response, error)
	UpdateResponse(ctx context.Context, callerID, responseID string, in service.UpdateResponseInput) (*repository.Response, error)

	GetTransaction(ctx context.Context, callerID, transactionID string) (*repository.Transaction, error)
	GenerateExchangeCode(ctx context.Context, callerID, transactionID string) (string, time.Time, error)
	GenerateReturnCode(ctx context.Context, callerID, transactionID string) (string, time.Time, error)
	EnterExchangeCode(ctx context.Context, callerID, transactionID, code string) (*repository.Transaction, error)
	EnterReturnCode(ctx context.Context, callerID, transactionID, code string) (*repository.Transaction, error)
	CreateExchangeOverride(ctx context.Context, callerID, transactionID string, proposedTime *time.Time) (*repository.Transaction, error)
	CreateReturnOverride(ctx context.Context, callerID, transactionID string, proposedTime *time.Time) (*repository.Transaction, error)
	RespondToExchangeOverride(ctx context.Context, callerID, transactionID string, accept bool) (*repository.Transaction, error)
	RespondToReturnOverride(ctx context.Context, callerID, transactionID string, accept bool) (*repository.Transaction, error)
	VerifyPrice(ctx context.Context, callerID, transactionID string, overridePrice *int64) (*repository.Transaction, error)
	CancelTransaction(ctx context.Context, callerID, transactionID, reason string) error
}

type UserRepo interface {
	ValidateUser(ctx context.Context, username, password string) (string, error)
}

type Server struct {
	core         Core
	userRepo     UserRepo
	verifier     identity.Verifier
	logger       *zap.Logger
	server       *http.Server
	AuditManager *AuditManager
}

func New(core Core, userRepo UserRepo, verifier identity.Verifier, logger *zap.Logger) *Server {
	return &Server{
		core:         core,
		userRepo:     userRepo,
		verifier:     verifier,
		logger:       logger,
		AuditManager: NewAuditManager(2, 5, 500*time.Millisecond, logger),
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.AuditManager.Start(ctx)

	s.logger.Info("server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.AuditManager.Shutdown(ctx)
	s.logger.Info("server shutdown completed")
	return nil
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /requests", s.handleCreateRequest)
	mux.HandleFunc("GET /requests", s.handleSearchRequests)
	mux.HandleFunc("GET /requests/{id}", s.handleGetRequest)
	mux.HandleFunc("POST /requests/{id}/close", s.handleCloseRequest)
	mux.HandleFunc("POST /requests/{id}/flag", s.handleFlagRequest)

	mux.HandleFunc("POST /responses", s.handleCreateResponse)
	mux.HandleFunc("PATCH /responses/{id}", s.handleUpdateResponse)

	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("POST /transactions/{id}/exchange-code", s.handleGenerateExchangeCode)
	mux.HandleFunc("POST /transactions/{id}/exchange-code/enter", s.handleEnterExchangeCode)
	mux.HandleFunc("POST /transactions/{id}/return-code", s.handleGenerateReturnCode)
	mux.HandleFunc("POST /transactions/{id}/return-code/enter", s.handleEnterReturnCode)
	mux.HandleFunc("POST /transactions/{id}/exchange-override", s.handleCreateExchangeOverride)
	mux.HandleFunc("POST /transactions/{id}/exchange-override/respond", s.handleRespondExchangeOverride)
	mux.HandleFunc("POST /transactions/{id}/return-override", s.handleCreateReturnOverride)
	mux.HandleFunc("POST /transactions/{id}/return-override/respond", s.handleRespondReturnOverride)
	mux.HandleFunc("POST /transactions/{id}/price", s.handleVerifyPrice)
	mux.HandleFunc("POST /transactions/{id}/cancel", s.handleCancelTransaction)

	authed := s.auditLogMiddleware(s.basicAuthMiddleware(mux))

	root := http.NewServeMux()
	root.Handle("/metrics", promhttp.Handler())
	root.HandleFunc("POST /auth/social", s.handleSocialAuth)
	root.Handle("/", authed)
	return root
}

type contextKey string

const userIDKey contextKey = "user_id"

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID, err := s.userRepo.ValidateUser(r.Context(), username, password)
		if err != nil || userID == "" {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondAppError maps the error taxonomy onto HTTP statuses. Internal detail
// never leaks; the generic message from apperr.Message is all a client sees.
func (s *Server) respondAppError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindBadRequest, apperr.KindIllegalArgument:
		status = http.StatusBadRequest
	case apperr.KindUnauthorized, apperr.KindCredentialExpired:
		status = http.StatusUnauthorized
	case apperr.KindNotAllowed:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("internal error", zap.Error(err))
	}
	respondError(w, status, apperr.Message(err))
}
