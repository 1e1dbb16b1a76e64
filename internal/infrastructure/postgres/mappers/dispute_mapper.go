package mappers

import (
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/models"
)

func ToDomainDispute(model *models.DisputeModel) *domain.Dispute {
	return &domain.Dispute{
		ID:                 model.ID,
		ReporterID:         model.ReporterID,
		ReportedEntityType: model.ReportedEntityType,
		ReportedEntityID:   model.ReportedEntityID,
		TransactionID:      model.TransactionID,
		PurchaseID:         model.PurchaseID,
		DisputeType:        model.DisputeType,
		Description:        model.Description,
		Status:             domain.DisputeStatus(model.Status),
		ResolutionDeadline: model.ResolutionDeadline,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func ToGORMDispute(dispute *domain.Dispute) *models.DisputeModel {
	return &models.DisputeModel{
		ID:                 dispute.ID,
		ReporterID:         dispute.ReporterID,
		ReportedEntityType: dispute.ReportedEntityType,
		ReportedEntityID:   dispute.ReportedEntityID,
		TransactionID:      dispute.TransactionID,
		PurchaseID:         dispute.PurchaseID,
		DisputeType:        dispute.DisputeType,
		Description:        dispute.Description,
		Status:             string(dispute.Status),
		ResolutionDeadline: dispute.ResolutionDeadline,
		CreatedAt:          dispute.CreatedAt,
		UpdatedAt:          dispute.UpdatedAt,
	}
}
