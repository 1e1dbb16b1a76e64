package disputedto

import "github.com/LavaJover/shvark-slot-service/internal/domain"

type OpenDisputeInput struct {
	Purchase    *domain.Purchase
	Transaction *domain.Transaction
	ReporterID  string
	Description string
}
