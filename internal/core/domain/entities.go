package domain

import (
	"encoding/json"
	"time"
)

// BillStatus represents the lifecycle state of a pawn bill
type BillStatus string

const (
	BillActive   BillStatus = "active"
	BillReleased BillStatus = "released"
	BillCleared  BillStatus = "cleared"
)

// Valid reports whether s is a known bill status
func (s BillStatus) Valid() bool {
	switch s {
	case BillActive, BillReleased, BillCleared:
		return true
	}
	return false
}

// MetalType represents the metal of a pledged ornament
type MetalType string

const (
	MetalGold   MetalType = "gold"
	MetalSilver MetalType = "silver"
)

func (m MetalType) Valid() bool {
	return m == MetalGold || m == MetalSilver
}

// AccountType represents a ledger account kind
type AccountType string

const (
	AccountCash AccountType = "cash"
	AccountBank AccountType = "bank"
)

func (a AccountType) Valid() bool {
	return a == AccountCash || a == AccountBank
}

// TransactionType classifies ledger entries
type TransactionType string

const (
	TxBillCreated  TransactionType = "bill_created"
	TxInterestPaid TransactionType = "interest_paid"
	TxExtraAmount  TransactionType = "extra_amount"
	TxBillModified TransactionType = "bill_modified"
	TxBillReleased TransactionType = "bill_released"
	TxBillCleared  TransactionType = "bill_cleared"
)

// Customer represents a pawn shop customer
type Customer struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Village              string    `json:"village"`
	PhoneNumber          string    `json:"phoneNumber"`
	FatherHusbandName    string    `json:"fatherHusbandName"`
	FatherHusbandVillage string    `json:"fatherHusbandVillage"`
	Image                string    `json:"image,omitempty"`
	Description          string    `json:"description,omitempty"`
	Email                string    `json:"email,omitempty"`
	IDProofType          string    `json:"idProofType,omitempty"`
	IDProofNum           string    `json:"idProofNum,omitempty"`
	IDProofImage         string    `json:"idProofImage,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

// Bill represents a loan against pledged ornaments.
//
// CustomerName is a snapshot taken at creation time. Renaming a customer
// later does not rewrite historical bills or transactions; the audit trail
// keeps the name the record was written under.
type Bill struct {
	ID               string     `json:"id"`
	BillID           string     `json:"billId"`
	CustomerID       string     `json:"customerId"`
	CustomerName     string     `json:"customerName"`
	Amount           float64    `json:"amount"`
	InterestRate     float64    `json:"interestRate"`
	Status           BillStatus `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	ReleasedAt       *time.Time `json:"releasedAt,omitempty"`
	ClearedAt        *time.Time `json:"clearedAt,omitempty"`
	ReleaseImage     string     `json:"releaseImage,omitempty"`
	TotalInterest    float64    `json:"totalInterestPaid"`
	ExtraAmountPaid  float64    `json:"extraAmountPaid"`
	ReleaseAccountID string     `json:"releaseAccountId,omitempty"`
}

// TotalDue is the outstanding amount on the bill. Computed, never stored.
func (b *Bill) TotalDue() float64 {
	return b.Amount + b.TotalInterest - b.ExtraAmountPaid
}

// OrnamentKind distinguishes a pledged item from a reusable catalog template
type OrnamentKind string

const (
	OrnamentPledged  OrnamentKind = "pledged"
	OrnamentTemplate OrnamentKind = "template"
)

// templateSentinel is the billId value the legacy persisted layout uses to
// mark catalog templates. Kept on the wire for compatibility; never exposed
// through the domain type.
const templateSentinel = "TEMPLATE"

// Ornament is a pledged item attached to a bill, or a reusable catalog
// template when Kind is OrnamentTemplate (BillID empty).
type Ornament struct {
	ID          string       `json:"id"`
	Kind        OrnamentKind `json:"-"`
	BillID      string       `json:"billId"`
	Name        string       `json:"name"`
	Type        MetalType    `json:"type,omitempty"`
	GrossWeight float64      `json:"grossWeight"`
	NetWeight   float64      `json:"netWeight"`
	Interest    float64      `json:"interest"`
	Image       string       `json:"image,omitempty"`
}

func (o *Ornament) IsTemplate() bool {
	return o.Kind == OrnamentTemplate
}

type ornamentJSON struct {
	ID          string    `json:"id"`
	BillID      string    `json:"billId"`
	Name        string    `json:"name"`
	Type        MetalType `json:"type,omitempty"`
	GrossWeight float64   `json:"grossWeight"`
	NetWeight   float64   `json:"netWeight"`
	Interest    float64   `json:"interest"`
	Image       string    `json:"image,omitempty"`
}

// MarshalJSON writes templates with the legacy "TEMPLATE" billId so persisted
// data stays readable by earlier versions of the application.
func (o Ornament) MarshalJSON() ([]byte, error) {
	out := ornamentJSON{
		ID:          o.ID,
		BillID:      o.BillID,
		Name:        o.Name,
		Type:        o.Type,
		GrossWeight: o.GrossWeight,
		NetWeight:   o.NetWeight,
		Interest:    o.Interest,
		Image:       o.Image,
	}
	if o.Kind == OrnamentTemplate {
		out.BillID = templateSentinel
	}
	return json.Marshal(out)
}

// UnmarshalJSON maps the legacy sentinel back onto the template kind.
func (o *Ornament) UnmarshalJSON(data []byte) error {
	var in ornamentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	o.ID = in.ID
	o.Name = in.Name
	o.Type = in.Type
	o.GrossWeight = in.GrossWeight
	o.NetWeight = in.NetWeight
	o.Interest = in.Interest
	o.Image = in.Image
	if in.BillID == templateSentinel {
		o.Kind = OrnamentTemplate
		o.BillID = ""
	} else {
		o.Kind = OrnamentPledged
		o.BillID = in.BillID
	}
	return nil
}

// Account is a cash or bank ledger account. Balance is persisted for layout
// compatibility but the authoritative figure is derived from the transaction
// ledger (see query layer).
type Account struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Balance   float64     `json:"balance"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Transaction is an immutable ledger entry recording a financial event tied
// to a bill. Append-only: every mutation that moves money or changes a bill's
// state writes one, and all reporting derives from this collection.
//
// BillID holds the bill's external identifier (the number printed on the
// paper bill), not the internal record id.
type Transaction struct {
	ID           string          `json:"id"`
	BillID       string          `json:"billId"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date"`
	AccountID    string          `json:"accountId,omitempty"`
}
