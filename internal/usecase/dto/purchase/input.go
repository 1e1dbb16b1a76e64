package purchasedto

type ConfirmAccessInput struct {
	PurchaseID  string
	UserID      string
	IsWorking   bool
	Description string
}
