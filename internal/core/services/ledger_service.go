package services

import (
	"context"
	"fmt"
	"math"

	"pawnbook/internal/adapters/persistence/store"
	"pawnbook/internal/core/domain"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// LedgerService owns every mutation of the five ledger collections. A bill
// state change and its audit transaction always travel through here together;
// the earlier UI scattered the transaction appends across its dialogs, which
// made it possible to record one without the other.
type LedgerService struct {
	store    *store.Store
	validate *validator.Validate
	log      *zap.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(st *store.Store, log *zap.Logger) *LedgerService {
	return &LedgerService{
		store:    st,
		validate: validator.New(),
		log:      log,
	}
}

func (s *LedgerService) checkInput(input any) error {
	if err := s.validate.Struct(input); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return domain.Invalid(errs[0].Field(), "failed rule "+errs[0].Tag())
		}
		return domain.Invalid("input", err.Error())
	}
	return nil
}

// checkAmount rejects the NaN/Inf values the legacy application let flow
// into stored fields and every downstream sum.
func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.Invalid(field, "must be a finite number")
	}
	if v < 0 {
		return domain.Invalid(field, "must not be negative")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Customers

// CreateCustomerInput represents create customer input
type CreateCustomerInput struct {
	Name                 string `json:"name" validate:"required"`
	Village              string `json:"village" validate:"required"`
	PhoneNumber          string `json:"phoneNumber" validate:"required"`
	FatherHusbandName    string `json:"fatherHusbandName" validate:"required"`
	FatherHusbandVillage string `json:"fatherHusbandVillage" validate:"required"`
	Image                string `json:"image,omitempty"`
	Description          string `json:"description,omitempty"`
	Email                string `json:"email,omitempty" validate:"omitempty,email"`
	IDProofType          string `json:"idProofType,omitempty"`
	IDProofNum           string `json:"idProofNum,omitempty"`
	IDProofImage         string `json:"idProofImage,omitempty"`
}

// CreateCustomer validates and appends a new customer.
func (s *LedgerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*domain.Customer, error) {
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	c, err := s.store.AddCustomer(ctx, domain.Customer{
		Name:                 input.Name,
		Village:              input.Village,
		PhoneNumber:          input.PhoneNumber,
		FatherHusbandName:    input.FatherHusbandName,
		FatherHusbandVillage: input.FatherHusbandVillage,
		Image:                input.Image,
		Description:          input.Description,
		Email:                input.Email,
		IDProofType:          input.IDProofType,
		IDProofNum:           input.IDProofNum,
		IDProofImage:         input.IDProofImage,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("customer created", zap.String("id", c.ID), zap.String("name", c.Name))
	return &c, nil
}

// UpdateCustomerInput carries a partial update; nil fields are left alone.
type UpdateCustomerInput struct {
	Name                 *string `json:"name,omitempty"`
	Village              *string `json:"village,omitempty"`
	PhoneNumber          *string `json:"phoneNumber,omitempty"`
	FatherHusbandName    *string `json:"fatherHusbandName,omitempty"`
	FatherHusbandVillage *string `json:"fatherHusbandVillage,omitempty"`
	Image                *string `json:"image,omitempty"`
	Description          *string `json:"description,omitempty"`
	Email                *string `json:"email,omitempty"`
	IDProofType          *string `json:"idProofType,omitempty"`
	IDProofNum           *string `json:"idProofNum,omitempty"`
	IDProofImage         *string `json:"idProofImage,omitempty"`
}

// UpdateCustomer merges partial fields into the matching customer. A rename
// does not touch historical bills or transactions; those keep their snapshot.
func (s *LedgerService) UpdateCustomer(ctx context.Context, id string, input *UpdateCustomerInput) (*domain.Customer, error) {
	c, err := s.store.UpdateCustomer(ctx, id, func(c *domain.Customer) {
		setIf(&c.Name, input.Name)
		setIf(&c.Village, input.Village)
		setIf(&c.PhoneNumber, input.PhoneNumber)
		setIf(&c.FatherHusbandName, input.FatherHusbandName)
		setIf(&c.FatherHusbandVillage, input.FatherHusbandVillage)
		setIf(&c.Image, input.Image)
		setIf(&c.Description, input.Description)
		setIf(&c.Email, input.Email)
		setIf(&c.IDProofType, input.IDProofType)
		setIf(&c.IDProofNum, input.IDProofNum)
		setIf(&c.IDProofImage, input.IDProofImage)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ---------------------------------------------------------------------------
// Bills

// OrnamentInput is one pledged item row on a bill, or a catalog template.
type OrnamentInput struct {
	Name        string  `json:"name" validate:"required"`
	Type        string  `json:"type,omitempty"`
	GrossWeight float64 `json:"grossWeight" validate:"required,gt=0"`
	NetWeight   float64 `json:"netWeight" validate:"required,gt=0"`
	Interest    float64 `json:"interest" validate:"gte=0"`
	Image       string  `json:"image,omitempty"`
}

func (in *OrnamentInput) check() error {
	if err := checkAmount("grossWeight", in.GrossWeight); err != nil {
		return err
	}
	if err := checkAmount("netWeight", in.NetWeight); err != nil {
		return err
	}
	if in.GrossWeight < in.NetWeight {
		return domain.Invalid("grossWeight", "must be at least the net weight")
	}
	if in.Type != "" && !domain.MetalType(in.Type).Valid() {
		return domain.Invalid("type", "must be gold or silver")
	}
	return nil
}

// CreateBillInput represents create bill input
type CreateBillInput struct {
	BillID       string          `json:"billId" validate:"required"`
	CustomerID   string          `json:"customerId" validate:"required"`
	Amount       float64         `json:"amount" validate:"required,gt=0"`
	InterestRate float64         `json:"interestRate" validate:"gte=0"`
	Ornaments    []OrnamentInput `json:"ornaments" validate:"required,min=1,dive"`
}

// CreateBill creates a bill with its pledged ornament rows and records the
// bill_created transaction. The customer's name is snapshotted onto the bill
// and the transaction.
func (s *LedgerService) CreateBill(ctx context.Context, input *CreateBillInput) (*domain.Bill, []domain.Ornament, error) {
	if err := s.checkInput(input); err != nil {
		return nil, nil, err
	}
	if err := checkAmount("amount", input.Amount); err != nil {
		return nil, nil, err
	}
	if err := checkAmount("interestRate", input.InterestRate); err != nil {
		return nil, nil, err
	}
	for i := range input.Ornaments {
		if err := input.Ornaments[i].check(); err != nil {
			return nil, nil, err
		}
	}

	customer, err := s.store.CustomerByID(input.CustomerID)
	if err != nil {
		return nil, nil, err
	}

	bill, err := s.store.AddBill(ctx, domain.Bill{
		BillID:       input.BillID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Amount:       input.Amount,
		InterestRate: input.InterestRate,
	})
	if err != nil {
		return nil, nil, err
	}

	rows := make([]domain.Ornament, len(input.Ornaments))
	for i, o := range input.Ornaments {
		rows[i] = domain.Ornament{
			Kind:        domain.OrnamentPledged,
			BillID:      bill.BillID,
			Name:        o.Name,
			Type:        domain.MetalType(o.Type),
			GrossWeight: o.GrossWeight,
			NetWeight:   o.NetWeight,
			Interest:    o.Interest,
			Image:       o.Image,
		}
	}
	ornaments, err := s.store.AddOrnaments(ctx, rows)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.store.AppendTransaction(ctx, domain.Transaction{
		BillID:       bill.BillID,
		CustomerID:   bill.CustomerID,
		CustomerName: bill.CustomerName,
		Type:         domain.TxBillCreated,
		Amount:       bill.Amount,
		Description:  fmt.Sprintf("Bill %s created", bill.BillID),
	}); err != nil {
		// The bill is already persisted; the ledger entry is not. There is no
		// cross-collection rollback, so surface the failure loudly.
		s.log.Error("bill persisted without its ledger entry",
			zap.String("billId", bill.BillID), zap.Error(err))
		return nil, nil, err
	}

	s.log.Info("bill created",
		zap.String("billId", bill.BillID),
		zap.String("customer", bill.CustomerName),
		zap.Float64("amount", bill.Amount),
	)
	return &bill, ornaments, nil
}

// UpdateBillInput carries bookkeeping edits to a bill. Status and the payment
// counters are not reachable from here; they move only through the dedicated
// operations below.
type UpdateBillInput struct {
	BillID       *string  `json:"billId,omitempty"`
	Amount       *float64 `json:"amount,omitempty"`
	InterestRate *float64 `json:"interestRate,omitempty"`
}

// UpdateBill merges partial fields and records a bill_modified transaction
// when a financial field changed.
func (s *LedgerService) UpdateBill(ctx context.Context, id string, input *UpdateBillInput) (*domain.Bill, error) {
	if input.Amount != nil {
		if err := checkAmount("amount", *input.Amount); err != nil {
			return nil, err
		}
	}
	if input.InterestRate != nil {
		if err := checkAmount("interestRate", *input.InterestRate); err != nil {
			return nil, err
		}
	}

	before, err := s.store.BillByID(id)
	if err != nil {
		return nil, err
	}

	bill, err := s.store.UpdateBill(ctx, id, func(b *domain.Bill) {
		setIf(&b.BillID, input.BillID)
		if input.Amount != nil {
			b.Amount = *input.Amount
		}
		if input.InterestRate != nil {
			b.InterestRate = *input.InterestRate
		}
	})
	if err != nil {
		return nil, err
	}

	if bill.Amount != before.Amount || bill.InterestRate != before.InterestRate {
		if _, err := s.store.AppendTransaction(ctx, domain.Transaction{
			BillID:       bill.BillID,
			CustomerID:   bill.CustomerID,
			CustomerName: bill.CustomerName,
			Type:         domain.TxBillModified,
			Amount:       bill.Amount,
			Description:  fmt.Sprintf("Bill #%s modified", bill.BillID),
		}); err != nil {
			return nil, err
		}
	}
	return &bill, nil
}

// PaymentInput represents an interest or extra payment against a bill.
type PaymentInput struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	AccountID string  `json:"accountId,omitempty"`
}

func (s *LedgerService) checkPayment(input *PaymentInput) error {
	if err := s.checkInput(input); err != nil {
		return err
	}
	if err := checkAmount("amount", input.Amount); err != nil {
		return err
	}
	if input.AccountID != "" {
		if _, err := s.store.AccountByID(input.AccountID); err != nil {
			return err
		}
	}
	return nil
}

// RecordInterestPayment adds to the bill's running interest total and appends
// an interest_paid transaction. Active bills only.
func (s *LedgerService) RecordInterestPayment(ctx context.Context, billID string, input *PaymentInput) (*domain.Bill, error) {
	if err := s.checkPayment(input); err != nil {
		return nil, err
	}

	bill, err := s.store.BillByID(billID)
	if err != nil {
		return nil, err
	}
	if bill.Status != domain.BillActive {
		return nil, domain.ErrBillNotActive
	}

	bill, err = s.store.UpdateBill(ctx, billID, func(b *domain.Bill) {
		b.TotalInterest += input.Amount
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AppendTransaction(ctx, domain.Transaction{
		BillID:       bill.BillID,
		CustomerID:   bill.CustomerID,
		CustomerName: bill.CustomerName,
		Type:         domain.TxInterestPaid,
		Amount:       input.Amount,
		Description:  fmt.Sprintf("Interest payment for Bill #%s", bill.BillID),
		AccountID:    input.AccountID,
	}); err != nil {
		return nil, err
	}

	return &bill, nil
}

// RecordExtraPayment adds to the bill's extra-amount total and appends an
// extra_amount transaction. Active bills only.
func (s *LedgerService) RecordExtraPayment(ctx context.Context, billID string, input *PaymentInput) (*domain.Bill, error) {
	if err := s.checkPayment(input); err != nil {
		return nil, err
	}

	bill, err := s.store.BillByID(billID)
	if err != nil {
		return nil, err
	}
	if bill.Status != domain.BillActive {
		return nil, domain.ErrBillNotActive
	}

	bill, err = s.store.UpdateBill(ctx, billID, func(b *domain.Bill) {
		b.ExtraAmountPaid += input.Amount
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AppendTransaction(ctx, domain.Transaction{
		BillID:       bill.BillID,
		CustomerID:   bill.CustomerID,
		CustomerName: bill.CustomerName,
		Type:         domain.TxExtraAmount,
		Amount:       input.Amount,
		Description:  fmt.Sprintf("Extra amount payment for Bill #%s", bill.BillID),
		AccountID:    input.AccountID,
	}); err != nil {
		return nil, err
	}

	return &bill, nil
}

// ReleaseInput represents release input. The photograph of the returned
// ornaments is mandatory; it is the shop's proof of handover.
type ReleaseInput struct {
	ReleaseImage string `json:"releaseImage" validate:"required"`
	AccountID    string `json:"accountId,omitempty"`
}

// ReleaseBill moves an active bill to released, stamps releasedAt and the
// release image, and appends a bill_released transaction. One-way; there is
// no path back to active.
func (s *LedgerService) ReleaseBill(ctx context.Context, billID string, input *ReleaseInput) (*domain.Bill, error) {
	if input.ReleaseImage == "" {
		return nil, domain.ErrReleaseImage
	}
	if input.AccountID != "" {
		if _, err := s.store.AccountByID(input.AccountID); err != nil {
			return nil, err
		}
	}

	bill, err := s.store.BillByID(billID)
	if err != nil {
		return nil, err
	}
	if bill.Status != domain.BillActive {
		return nil, domain.ErrBillNotActive
	}

	bill, err = s.store.UpdateBill(ctx, billID, func(b *domain.Bill) {
		now := s.store.Clock()()
		b.Status = domain.BillReleased
		b.ReleasedAt = &now
		b.ReleaseImage = input.ReleaseImage
		b.ReleaseAccountID = input.AccountID
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AppendTransaction(ctx, domain.Transaction{
		BillID:       bill.BillID,
		CustomerID:   bill.CustomerID,
		CustomerName: bill.CustomerName,
		Type:         domain.TxBillReleased,
		Amount:       bill.Amount,
		Description:  fmt.Sprintf("Bill #%s released", bill.BillID),
		AccountID:    input.AccountID,
	}); err != nil {
		return nil, err
	}

	s.log.Info("bill released", zap.String("billId", bill.BillID))
	return &bill, nil
}

// ClearBill moves a released bill to cleared and appends a bill_cleared
// transaction. Terminal state.
func (s *LedgerService) ClearBill(ctx context.Context, billID string) (*domain.Bill, error) {
	bill, err := s.store.BillByID(billID)
	if err != nil {
		return nil, err
	}
	if bill.Status != domain.BillReleased {
		return nil, domain.ErrBillNotReleased
	}

	bill, err = s.store.UpdateBill(ctx, billID, func(b *domain.Bill) {
		now := s.store.Clock()()
		b.Status = domain.BillCleared
		b.ClearedAt = &now
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AppendTransaction(ctx, domain.Transaction{
		BillID:       bill.BillID,
		CustomerID:   bill.CustomerID,
		CustomerName: bill.CustomerName,
		Type:         domain.TxBillCleared,
		Amount:       bill.Amount,
		Description:  fmt.Sprintf("Bill #%s cleared", bill.BillID),
	}); err != nil {
		return nil, err
	}

	s.log.Info("bill cleared", zap.String("billId", bill.BillID))
	return &bill, nil
}

// ---------------------------------------------------------------------------
// Ornaments

// CreateOrnamentTemplate adds a reusable catalog entry not tied to any bill.
func (s *LedgerService) CreateOrnamentTemplate(ctx context.Context, input *OrnamentInput) (*domain.Ornament, error) {
	if err := s.checkInput(input); err != nil {
		return nil, err
	}
	if err := input.check(); err != nil {
		return nil, err
	}

	added, err := s.store.AddOrnaments(ctx, []domain.Ornament{{
		Kind:        domain.OrnamentTemplate,
		Name:        input.Name,
		Type:        domain.MetalType(input.Type),
		GrossWeight: input.GrossWeight,
		NetWeight:   input.NetWeight,
		Interest:    input.Interest,
		Image:       input.Image,
	}})
	if err != nil {
		return nil, err
	}
	return &added[0], nil
}

// UpdateOrnamentInput carries a partial ornament update.
type UpdateOrnamentInput struct {
	Name        *string  `json:"name,omitempty"`
	Type        *string  `json:"type,omitempty"`
	GrossWeight *float64 `json:"grossWeight,omitempty"`
	NetWeight   *float64 `json:"netWeight,omitempty"`
	Interest    *float64 `json:"interest,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

// UpdateOrnament merges partial fields, re-checking the weight invariant
// against the resulting record.
func (s *LedgerService) UpdateOrnament(ctx context.Context, id string, input *UpdateOrnamentInput) (*domain.Ornament, error) {
	current, err := s.store.OrnamentByID(id)
	if err != nil {
		return nil, err
	}

	gross, net := current.GrossWeight, current.NetWeight
	if input.GrossWeight != nil {
		if err := checkAmount("grossWeight", *input.GrossWeight); err != nil {
			return nil, err
		}
		gross = *input.GrossWeight
	}
	if input.NetWeight != nil {
		if err := checkAmount("netWeight", *input.NetWeight); err != nil {
			return nil, err
		}
		net = *input.NetWeight
	}
	if gross < net {
		return nil, domain.Invalid("grossWeight", "must be at least the net weight")
	}
	if input.Type != nil && *input.Type != "" && !domain.MetalType(*input.Type).Valid() {
		return nil, domain.Invalid("type", "must be gold or silver")
	}

	o, err := s.store.UpdateOrnament(ctx, id, func(o *domain.Ornament) {
		setIf(&o.Name, input.Name)
		if input.Type != nil {
			o.Type = domain.MetalType(*input.Type)
		}
		if input.GrossWeight != nil {
			o.GrossWeight = *input.GrossWeight
		}
		if input.NetWeight != nil {
			o.NetWeight = *input.NetWeight
		}
		setIf(&o.Interest, input.Interest)
		setIf(&o.Image, input.Image)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ---------------------------------------------------------------------------
// Accounts

// CreateAccountInput represents create account input
type CreateAccountInput struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=cash bank"`
}

// CreateAccount adds a cash or bank account. Balance always starts at zero;
// the spendable figure is derived from the transaction ledger.
func (s *LedgerService) CreateAccount(ctx context.Context, input *CreateAccountInput) (*domain.Account, error) {
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	a, err := s.store.AddAccount(ctx, domain.Account{
		Name: input.Name,
		Type: domain.AccountType(input.Type),
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAccountInput carries a partial account update.
type UpdateAccountInput struct {
	Name *string `json:"name,omitempty"`
	Type *string `json:"type,omitempty"`
}

// UpdateAccount merges partial fields into the matching account.
func (s *LedgerService) UpdateAccount(ctx context.Context, id string, input *UpdateAccountInput) (*domain.Account, error) {
	if input.Type != nil && !domain.AccountType(*input.Type).Valid() {
		return nil, domain.Invalid("type", "must be cash or bank")
	}

	a, err := s.store.UpdateAccount(ctx, id, func(a *domain.Account) {
		setIf(&a.Name, input.Name)
		if input.Type != nil {
			a.Type = domain.AccountType(*input.Type)
		}
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
