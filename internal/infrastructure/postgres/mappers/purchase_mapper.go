package mappers

import (
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/models"
)

func ToDomainOffer(model *models.OfferModel) *domain.Offer {
	return &domain.Offer{
		ID:             model.ID,
		OwnerID:        model.OwnerID,
		GroupID:        model.GroupID,
		Title:          model.Title,
		SlotsTotal:     model.SlotsTotal,
		SlotsAvailable: model.SlotsAvailable,
		PricePerSlot:   model.PricePerSlot,
		Status:         domain.OfferStatus(model.Status),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func ToDomainPurchase(model *models.PurchaseModel) *domain.Purchase {
	return &domain.Purchase{
		ID:                model.ID,
		UserID:            model.UserID,
		OfferID:           model.OfferID,
		Status:            domain.PurchaseStatus(model.Status),
		AccessProvided:    model.AccessProvided,
		AccessConfirmed:   model.AccessConfirmed,
		AccessConfirmedAt: model.AccessConfirmedAt,
		SlotsDecremented:  model.SlotsDecremented,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
		CompletedAt:       model.CompletedAt,
	}
}

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:           model.ID,
		BuyerID:      model.BuyerID,
		SellerID:     model.SellerID,
		OfferID:      model.OfferID,
		PurchaseID:   model.PurchaseID,
		Amount:       model.Amount,
		PlatformFee:  model.PlatformFee,
		SellerAmount: model.SellerAmount,
		Status:       domain.TransactionStatus(model.Status),
		PaymentID:    model.PaymentID,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func ToGORMTransaction(tx *domain.Transaction) *models.TransactionModel {
	return &models.TransactionModel{
		ID:           tx.ID,
		BuyerID:      tx.BuyerID,
		SellerID:     tx.SellerID,
		OfferID:      tx.OfferID,
		PurchaseID:   tx.PurchaseID,
		Amount:       tx.Amount,
		PlatformFee:  tx.PlatformFee,
		SellerAmount: tx.SellerAmount,
		Status:       string(tx.Status),
		PaymentID:    tx.PaymentID,
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}
