package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/services"
)

// sniffLen is the number of leading bytes http.DetectContentType considers.
const sniffLen = 512

// ReceiptHandler serves stored receipt files.
type ReceiptHandler struct {
	receiptService services.ReceiptServicer
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptService services.ReceiptServicer) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// GetReceipt streams a receipt with a content type sniffed from its bytes.
// @Summary     Fetch a receipt
// @Description Download the raw bytes of a stored receipt
// @Tags        receipts
// @Produce     octet-stream
// @Param       filename path string true "Stored receipt filename"
// @Success     200 {file} file "Receipt content"
// @Failure     400 {object} ErrorResponse "Invalid filename"
// @Failure     404 {object} ErrorResponse "Receipt not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /receipts/{filename} [get]
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.receiptService.OpenReceipt(c.Request.Context(), c.Param("filename"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer receipt.Content.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(receipt.Content, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	if _, err := receipt.Content.Seek(0, io.SeekStart); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Type", http.DetectContentType(head[:n]))
	http.ServeContent(c.Writer, c.Request, receipt.Name, receipt.ModTime, receipt.Content)
}
