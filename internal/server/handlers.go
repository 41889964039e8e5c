package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ai-meal-shopper/internal/app"
	"ai-meal-shopper/internal/logger"
	"ai-meal-shopper/internal/planner"
	"ai-meal-shopper/internal/shared"
	"ai-meal-shopper/internal/shopping"
)

const weekStartLayout = "2006-01-02"

// MealPlanRequest is a meal plan as posted by clients.
type MealPlanRequest struct {
	WeekStart   string                      `json:"week_start" validate:"omitempty,datetime=2006-01-02"`
	WeeklyMeals map[string]planner.DayMeals `json:"weeklyMeals" validate:"required,min=1"`
}

// ShoppingListRequest carries the optional budget of a generation. Zero
// selects the configured default.
type ShoppingListRequest struct {
	WeeklyBudget float64 `json:"weekly_budget" validate:"omitempty,gt=0"`
}

// InlineShoppingListRequest generates a list for a plan that is not stored.
type InlineShoppingListRequest struct {
	WeeklyBudget float64         `json:"weekly_budget" validate:"omitempty,gt=0"`
	Plan         MealPlanRequest `json:"plan"`
}

type importPlanResponse struct {
	ID int64 `json:"id"`
}

type shoppingListResponse struct {
	*shopping.ShoppingList
	Budget shopping.BudgetStatus `json:"budget"`
}

func (req MealPlanRequest) toMealPlan(userID string) (*planner.MealPlan, error) {
	plan := &planner.MealPlan{
		UserID:      userID,
		WeeklyMeals: make(map[planner.Day]planner.DayMeals, len(req.WeeklyMeals)),
	}
	if req.WeekStart != "" {
		ws, err := time.Parse(weekStartLayout, req.WeekStart)
		if err != nil {
			return nil, fmt.Errorf("invalid week_start: %w", err)
		}
		plan.WeekStart = ws
	}
	for day, meals := range req.WeeklyMeals {
		plan.WeeklyMeals[planner.Day(day)] = meals
	}
	return planner.Normalize(plan)
}

func (s *Server) handleImportPlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req MealPlanRequest
	if err := decodeAndValidate(w, r, &req, false); err != nil {
		return
	}
	plan, err := req.toMealPlan(userID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.service.ImportPlan(r.Context(), plan)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, importPlanResponse{ID: id})
}

func parsePlanID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	planID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || planID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid meal plan id")
		return 0, false
	}
	return planID, true
}

func (s *Server) handleGenerateForPlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	planID, ok := parsePlanID(w, r)
	if !ok {
		return
	}

	var req ShoppingListRequest
	if err := decodeAndValidate(w, r, &req, true); err != nil {
		return
	}

	list, err := s.service.GenerateShoppingList(r.Context(), userID, planID, req.WeeklyBudget)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newShoppingListResponse(list))
}

func (s *Server) handleLatestListForPlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	planID, ok := parsePlanID(w, r)
	if !ok {
		return
	}

	list, err := s.service.LatestListForPlan(r.Context(), userID, planID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newShoppingListResponse(list))
}

func (s *Server) handleGenerateInline(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req InlineShoppingListRequest
	if err := decodeAndValidate(w, r, &req, false); err != nil {
		return
	}
	plan, err := req.Plan.toMealPlan(userID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.service.GenerateFromPlan(r.Context(), plan, req.WeeklyBudget)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newShoppingListResponse(list))
}

func (s *Server) handleGetShoppingList(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	list, err := s.service.GetShoppingList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	// Lists of other users are reported as missing.
	if list.UserID != userID {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	respondJSON(w, http.StatusOK, newShoppingListResponse(list))
}

func newShoppingListResponse(list *shopping.ShoppingList) shoppingListResponse {
	return shoppingListResponse{ShoppingList: list, Budget: list.Budget()}
}

// decodeAndValidate decodes a JSON body into req and validates it. When it
// returns an error the response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return err
		}
	}

	if err := getValidator().Struct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  "invalid request",
			Fields: FormatValidationError(err),
		})
		return err
	}
	return nil
}

func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, shopping.ErrInvalidBudget),
		errors.Is(err, app.ErrEmptyPlan),
		errors.Is(err, planner.ErrMissingWeeklyMeals):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.FromContext(r.Context()).Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
