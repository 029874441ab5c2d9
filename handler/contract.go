package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stagelink/backend/service"
)

type ContractHandler struct {
	contracts *service.ContractService
	emails    *service.ContractEmailService
}

func NewContractHandler(contracts *service.ContractService, emails *service.ContractEmailService) *ContractHandler {
	return &ContractHandler{contracts: contracts, emails: emails}
}

// Create generates a contract from booking data. Incomplete input still
// produces a draft; the validation findings ride along in the response.
func (h *ContractHandler) Create(c *gin.Context) {
	var data service.ContractData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.contracts.GenerateContract(c.Request.Context(), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contract: " + err.Error()})
		return
	}

	// Notify both parties; a failed send never fails the creation.
	contract, err := h.contracts.GetContract(c.Request.Context(), result.ContractID)
	if err == nil {
		h.emails.SendContractCreatedNotification(c.Request.Context(), service.NotificationFromContract(contract))
	}

	c.JSON(http.StatusCreated, result)
}

// List returns all contracts
func (h *ContractHandler) List(c *gin.Context) {
	contracts, err := h.contracts.ListContracts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contracts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": contracts,
		"count":     len(contracts),
	})
}

// Get returns a single contract, flagging lazy expiry
func (h *ContractHandler) Get(c *gin.Context) {
	id := c.Param("id")
	contract, err := h.contracts.GetContract(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contract"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contract": contract,
		"expired":  contract.IsExpired(time.Now()),
	})
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus applies a lifecycle transition
func (h *ContractHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	contract, err := h.contracts.UpdateContractStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contract)
}

// Update patches contract fields, enforcing event-date immutability once
// any signature exists
func (h *ContractHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var patch service.ContractPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	contract, err := h.contracts.UpdateContractDetails(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contract)
}
