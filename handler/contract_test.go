package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stagelink/backend/config"
	"github.com/stagelink/backend/service"
)

// discardMailer accepts every send without delivering anything
type discardMailer struct{}

func (discardMailer) Send(context.Context, service.Email) error { return nil }

func putJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("PUT", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newContractRouter() *gin.Engine {
	store := service.NewMemoryStore(&config.StoreConfig{})
	contracts := service.NewContractService(store)
	emails := service.NewContractEmailService(discardMailer{}, &config.ReminderConfig{})
	handler := NewContractHandler(contracts, emails)

	router := gin.New()
	router.POST("/contracts", handler.Create)
	router.GET("/contracts", handler.List)
	router.GET("/contracts/:id", handler.Get)
	router.PUT("/contracts/:id/status", handler.UpdateStatus)
	router.PUT("/contracts/:id", handler.Update)
	return router
}

func createContract(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := postJSON(t, router, "/contracts", map[string]any{
		"title":           "Friday Night Jazz",
		"artist_id":       "artist-1",
		"artist_name":     "Maya Reyes",
		"artist_email":    "maya@example.com",
		"venue_id":        "venue-1",
		"venue_name":      "The Basement",
		"venue_email":     "booking@basement.example.com",
		"event_date":      time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
		"event_venue":     "The Basement, Amsterdam",
		"performance_fee": 1500,
		"payment_terms":   "50% deposit",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var result service.ContractResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.ContractID == "" {
		t.Fatal("Expected a contract ID")
	}
	return result.ContractID
}

func TestContractCreateAndGet(t *testing.T) {
	router := newContractRouter()
	id := createContract(t, router)

	w := getJSON(t, router, "/contracts/"+id)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var response struct {
		Contract struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Status string `json:"status"`
		} `json:"contract"`
		Expired bool `json:"expired"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Contract.Title != "Friday Night Jazz" {
		t.Errorf("Unexpected title: %s", response.Contract.Title)
	}
	if response.Contract.Status != "draft" {
		t.Errorf("Expected draft, got %s", response.Contract.Status)
	}
	if response.Expired {
		t.Error("Future contract must not be flagged expired")
	}
}

func TestContractCreateIncompleteDraft(t *testing.T) {
	router := newContractRouter()

	w := postJSON(t, router, "/contracts", map[string]any{"title": "Untitled"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Incomplete data should still create a draft, got %d", w.Code)
	}
	var result service.ContractResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if len(result.Errors) == 0 {
		t.Error("Expected validation errors in response")
	}
	if result.ContractID == "" {
		t.Error("Expected a contract ID for the draft")
	}
}

func TestContractGetNotFound(t *testing.T) {
	router := newContractRouter()

	w := getJSON(t, router, "/contracts/does-not-exist")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestContractList(t *testing.T) {
	router := newContractRouter()
	createContract(t, router)
	createContract(t, router)

	w := getJSON(t, router, "/contracts")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var response struct {
		Count int `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Count != 2 {
		t.Errorf("Expected 2 contracts, got %d", response.Count)
	}
}

func TestContractUpdateStatus(t *testing.T) {
	router := newContractRouter()
	id := createContract(t, router)

	w := putJSON(t, router, "/contracts/"+id+"/status", map[string]string{"status": "pending_signatures"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// Backward transition is a conflict
	w = putJSON(t, router, "/contracts/"+id+"/status", map[string]string{"status": "draft"})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}

	// Unknown contract
	w = putJSON(t, router, "/contracts/missing/status", map[string]string{"status": "signed"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestContractUpdateDetails(t *testing.T) {
	router := newContractRouter()
	id := createContract(t, router)

	w := putJSON(t, router, "/contracts/"+id, map[string]any{
		"title":           "Friday Night Jazz (extended)",
		"performance_fee": 1750,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var contract struct {
		Title          string  `json:"title"`
		PerformanceFee float64 `json:"performance_fee"`
	}
	json.Unmarshal(w.Body.Bytes(), &contract)
	if contract.Title != "Friday Night Jazz (extended)" {
		t.Errorf("Title not updated: %s", contract.Title)
	}
	if contract.PerformanceFee != 1750 {
		t.Errorf("Fee not updated: %v", contract.PerformanceFee)
	}
}
