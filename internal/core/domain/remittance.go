package domain

// DeliveryMethod is how a remittance reaches its beneficiary.
type DeliveryMethod string

const (
	DeliveryCashPickup   DeliveryMethod = "CASH_PICKUP"
	DeliveryBankAccount  DeliveryMethod = "BANK_ACCOUNT"
	DeliveryMobileWallet DeliveryMethod = "MOBILE_WALLET"
)

// RemittanceStatus is the partner-side lifecycle of a remittance intent. It
// is independent of the ledger transaction status; the ledger only cares that
// funds moved into or out of the in-transit account.
type RemittanceStatus string

const (
	RemittanceInitiated RemittanceStatus = "INITIATED"
	RemittanceInTransit RemittanceStatus = "IN_TRANSIT"
	RemittanceDelivered RemittanceStatus = "DELIVERED"
	RemittanceFailed    RemittanceStatus = "FAILED"
)

// RemittanceIntent is created alongside a REMITTANCE_SEND transaction. It is
// not part of double entry; partner adapters outside the core drive its
// lifecycle. Sender and beneficiary details are snapshots taken at creation.
type RemittanceIntent struct {
	IntentID         string           `json:"intentID"` // Primary key (UUID)
	TenantID         string           `json:"tenantID"`
	TransactionID    string           `json:"transactionID"` // FK to the remittance_send transaction
	SenderName       string           `json:"senderName"`
	SenderPhone      string           `json:"senderPhone"`
	BeneficiaryName  string           `json:"beneficiaryName"`
	BeneficiaryPhone string           `json:"beneficiaryPhone"`
	DeliveryMethod   DeliveryMethod   `json:"deliveryMethod"`
	TrackingCode     string           `json:"trackingCode"`
	PartnerRef       *string          `json:"partnerRef"`
	Status           RemittanceStatus `json:"status"`
	AuditFields
}
