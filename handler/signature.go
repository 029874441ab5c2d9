package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stagelink/backend/service"
)

type SignatureHandler struct {
	signatures *service.SignatureService
}

func NewSignatureHandler(signatures *service.SignatureService) *SignatureHandler {
	return &SignatureHandler{signatures: signatures}
}

// Capture handles signature capture from the signing form. Validation
// failures come back as 200 with an errors field so the form can render
// them field by field.
func (h *SignatureHandler) Capture(c *gin.Context) {
	var data service.SignatureData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.signatures.CaptureAndVerifySignature(c.Request.Context(), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to capture signature: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type ReissueRequest struct {
	ContractID string `json:"contract_id" binding:"required"`
	SignerRole string `json:"signer_role" binding:"required"`
}

// Reissue mints a new certificate for an existing signature
func (h *SignatureHandler) Reissue(c *gin.Context) {
	var req ReissueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.signatures.GenerateSignatureCertificate(c.Request.Context(), req.ContractID, req.SignerRole)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Signature not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue certificate: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Verify checks that a certificate exists and is live
func (h *SignatureHandler) Verify(c *gin.Context) {
	number := c.Param("number")
	valid := h.signatures.VerifyCertificate(c.Request.Context(), number)

	c.JSON(http.StatusOK, gin.H{
		"certificate_number": number,
		"valid":              valid,
	})
}

// Authenticity runs the tamper check against the stored signature payload
func (h *SignatureHandler) Authenticity(c *gin.Context) {
	number := c.Param("number")
	authentic := h.signatures.ValidateCertificateAuthenticity(c.Request.Context(), number)

	c.JSON(http.StatusOK, gin.H{
		"certificate_number": number,
		"authentic":          authentic,
	})
}

// AuditTrail returns the certificate's audit entries in creation order
func (h *SignatureHandler) AuditTrail(c *gin.Context) {
	number := c.Param("number")
	entries, err := h.signatures.GetAuditTrail(c.Request.Context(), number)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit trail"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"certificate_number": number,
		"entries":            entries,
	})
}

// Details returns the full certificate read model
func (h *SignatureHandler) Details(c *gin.Context) {
	number := c.Param("number")
	details, err := h.signatures.GetCertificateDetails(c.Request.Context(), number)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Certificate not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load certificate"})
		return
	}

	c.JSON(http.StatusOK, details)
}
