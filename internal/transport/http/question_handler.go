package http

import (
	"net/http"

	"mcq-service/internal/app"
	"mcq-service/internal/auth"
	"mcq-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// mutationResponse carries the touched record (when there is one) together
// with the caller-visible collection as it stood right after the change.
type mutationResponse struct {
	Question  *domain.Question  `json:"question,omitempty"`
	Questions []domain.Question `json:"questions"`
	Version   uint64            `json:"version"`
}

type listResponse struct {
	Questions []domain.Question `json:"questions"`
	Version   uint64            `json:"version"`
}

type publishRequest struct {
	IsPublished *bool `json:"isPublished"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type QuestionHandler struct {
	service *app.QuestionService
}

func NewQuestionHandler(service *app.QuestionService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.List(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Questions: snap.Questions, Version: snap.Version})
}

func (h *QuestionHandler) Published(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Published(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Questions: questions})
}

func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Get(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft domain.Draft
	if err := decodeJSON(r, w, &draft); err != nil {
		writeServiceError(w, r, err)
		return
	}
	q, snap, err := h.service.Create(r.Context(), auth.PrincipalFrom(r.Context()), draft)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mutationResponse{Question: &q, Questions: snap.Questions, Version: snap.Version})
}

func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.Patch
	if err := decodeJSON(r, w, &patch); err != nil {
		writeServiceError(w, r, err)
		return
	}
	q, snap, err := h.service.Update(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Question: &q, Questions: snap.Questions, Version: snap.Version})
}

func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Delete(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Questions: snap.Questions, Version: snap.Version})
}

func (h *QuestionHandler) SetPublished(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.IsPublished == nil {
		writeError(w, http.StatusBadRequest, "isPublished is required")
		return
	}
	q, snap, err := h.service.SetPublished(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), *req.IsPublished)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Question: &q, Questions: snap.Questions, Version: snap.Version})
}

func (h *QuestionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	submission, err := h.service.SubmitAnswer(r.Context(), auth.PrincipalFrom(r.Context()), chi.URLParam(r, "id"), req.Answer)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submission)
}

func (h *QuestionHandler) Answers(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.Answers(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answers": history})
}
