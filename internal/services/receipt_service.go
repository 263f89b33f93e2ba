package services

import (
	"context"
	"errors"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/receipts"
)

// receiptService serves stored receipt files.
type receiptService struct {
	store *receipts.Store
}

// NewReceiptService creates a new ReceiptServicer.
func NewReceiptService(store *receipts.Store) ReceiptServicer {
	return &receiptService{store: store}
}

// OpenReceipt opens the named receipt for streaming.
func (s *receiptService) OpenReceipt(_ context.Context, name string) (*Receipt, error) {
	f, err := s.store.Open(name)
	if err != nil {
		switch {
		case errors.Is(err, receipts.ErrInvalidName):
			return nil, apperrors.ErrInvalidReceiptName
		case errors.Is(err, receipts.ErrNotFound):
			return nil, apperrors.ErrReceiptNotFound
		default:
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, apperrors.ErrReceiptNotFound
	}

	return &Receipt{Name: name, Content: f, ModTime: info.ModTime()}, nil
}
