package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	Quotes() QuoteRepository
	Credit() CreditRepository
	Audit() AuditRepository
}
