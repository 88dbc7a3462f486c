package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/peertrade/peertrade/internal/identity"
	"github.com/peertrade/peertrade/internal/repository"
	"github.com/peertrade/peertrade/internal/service"
)

type createRequestDTO struct {
	Type        string    `json:"type"`
	ItemName    string    `json:"item_name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ExpireDate  time.Time `json:"expire_date"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var dto createRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := s.core.CreateRequest(r.Context(), callerID(r), service.NewRequest{
		Type:        repository.RequestType(dto.Type),
		ItemName:    dto.ItemName,
		Description: dto.Description,
		Category:    dto.Category,
		ExpireDate:  dto.ExpireDate,
	})
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	detail, err := s.core.GetRequest(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSearchRequests(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	keyword := r.URL.Query().Get("keyword")

	requests, err := s.core.SearchOpenRequests(r.Context(), callerID(r), category, keyword)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

func (s *Server) handleCloseRequest(w http.ResponseWriter, r *http.Request) {
	if err := s.core.CloseRequest(r.Context(), callerID(r), r.PathValue("id")); err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleFlagRequest(w http.ResponseWriter, r *http.Request) {
	if err := s.core.FlagInappropriate(r.Context(), callerID(r), r.PathValue("id")); err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "flagged"})
}

type createResponseDTO struct {
	RequestID        string     `json:"request_id"`
	Message          string     `json:"message"`
	OfferPrice       int64      `json:"offer_price"`
	PriceType        string     `json:"price_type"`
	ExchangeLocation string     `json:"exchange_location"`
	ReturnLocation   string     `json:"return_location"`
	ExchangeTime     *time.Time `json:"exchange_time,omitempty"`
	ReturnTime       *time.Time `json:"return_time,omitempty"`
}

func (s *Server) handleCreateResponse(w http.ResponseWriter, r *http.Request) {
	var dto createResponseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.core.CreateResponse(r.Context(), callerID(r), service.NewResponse{
		RequestID:        dto.RequestID,
		Message:          dto.Message,
		OfferPrice:       dto.OfferPrice,
		PriceType:        repository.PriceType(dto.PriceType),
		ExchangeLocation: dto.ExchangeLocation,
		ReturnLocation:   dto.ReturnLocation,
		ExchangeTime:     dto.ExchangeTime,
		ReturnTime:       dto.ReturnTime,
	})
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

type updateResponseDTO struct {
	BuyerStatus      *string    `json:"buyer_status,omitempty"`
	SellerStatus     *string    `json:"seller_status,omitempty"`
	Message          *string    `json:"message,omitempty"`
	OfferPrice       *int64     `json:"offer_price,omitempty"`
	PriceType        *string    `json:"price_type,omitempty"`
	ExchangeLocation *string    `json:"exchange_location,omitempty"`
	ReturnLocation   *string    `json:"return_location,omitempty"`
	ExchangeTime     *time.Time `json:"exchange_time,omitempty"`
	ReturnTime       *time.Time `json:"return_time,omitempty"`
}

func (s *Server) handleUpdateResponse(w http.ResponseWriter, r *http.Request) {
	var dto updateResponseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.UpdateResponseInput{
		Message:          dto.Message,
		OfferPrice:       dto.OfferPrice,
		ExchangeLocation: dto.ExchangeLocation,
		ReturnLocation:   dto.ReturnLocation,
		ExchangeTime:     dto.ExchangeTime,
		ReturnTime:       dto.ReturnTime,
	}
	if dto.BuyerStatus != nil {
		bs := repository.BuyerStatus(*dto.BuyerStatus)
		in.BuyerStatus = &bs
	}
	if dto.SellerStatus != nil {
		ss := repository.SellerStatus(*dto.SellerStatus)
		in.SellerStatus = &ss
	}
	if dto.PriceType != nil {
		pt := repository.PriceType(*dto.PriceType)
		in.PriceType = &pt
	}

	resp, err := s.core.UpdateResponse(r.Context(), callerID(r), r.PathValue("id"), in)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.core.GetTransaction(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

type codeDTO struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleGenerateExchangeCode(w http.ResponseWriter, r *http.Request) {
	code, expires, err := s.core.GenerateExchangeCode(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, codeDTO{Code: code, ExpiresAt: expires})
}

func (s *Server) handleGenerateReturnCode(w http.ResponseWriter, r *http.Request) {
	code, expires, err := s.core.GenerateReturnCode(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, codeDTO{Code: code, ExpiresAt: expires})
}

type enterCodeDTO struct {
	Code string `json:"code"`
}

func (s *Server) handleEnterExchangeCode(w http.ResponseWriter, r *http.Request) {
	var dto enterCodeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.core.EnterExchangeCode(r.Context(), callerID(r), r.PathValue("id"), dto.Code)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

func (s *Server) handleEnterReturnCode(w http.ResponseWriter, r *http.Request) {
	var dto enterCodeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.core.EnterReturnCode(r.Context(), callerID(r), r.PathValue("id"), dto.Code)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

type overrideDTO struct {
	ProposedTime *time.Time `json:"proposed_time"`
}

func (s *Server) handleCreateExchangeOverride(w http.ResponseWriter, r *http.Request) {
	var dto overrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.core.CreateExchangeOverride(r.Context(), callerID(r), r.PathValue("id"), dto.ProposedTime)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleCreateReturnOverride(w http.ResponseWriter, r *http.Request) {
	var dto overrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.core.CreateReturnOverride(r.Context(), callerID(r), r.PathValue("id"), dto.ProposedTime)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

type respondOverrideDTO struct {
	Accept bool `json:"accept"`
}

func (s *Server) handleRespondExchangeOverride(w http.ResponseWriter, r *http.Request) {
	var dto respondOverrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.core.RespondToExchangeOverride(r.Context(), callerID(r), r.PathValue("id"), dto.Accept)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

func (s *Server) handleRespondReturnOverride(w http.ResponseWriter, r *http.Request) {
	var dto respondOverrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.core.RespondToReturnOverride(r.Context(), callerID(r), r.PathValue("id"), dto.Accept)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

type verifyPriceDTO struct {
	OverridePrice *int64 `json:"override_price,omitempty"`
}

func (s *Server) handleVerifyPrice(w http.ResponseWriter, r *http.Request) {
	var dto verifyPriceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.core.VerifyPrice(r.Context(), callerID(r), r.PathValue("id"), dto.OverridePrice)
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

type cancelDTO struct {
	Reason string `json:"reason"`
}

func (s *Server) handleCancelTransaction(w http.ResponseWriter, r *http.Request) {
	var dto cancelDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.core.CancelTransaction(r.Context(), callerID(r), r.PathValue("id"), dto.Reason); err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

type socialAuthDTO struct {
	Method string `json:"method"`
	Token  string `json:"token"`
}

// handleSocialAuth validates a third-party token and returns the verified
// profile. Account provisioning off that profile is out of this handler.
func (s *Server) handleSocialAuth(w http.ResponseWriter, r *http.Request) {
	var dto socialAuthDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := s.verifier.Verify(r.Context(), dto.Token, identity.Method(dto.Method))
	if err != nil {
		s.respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
