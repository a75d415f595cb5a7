// Package builder maps raw sheet rows onto canonical Guide and Settlement records.
package builder

import (
	"errors"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/models"
	"github.com/ssmgcode/cargo-expreso-control/internal/normalize"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/classifier"
)

type Options struct {
	IncludeGuideType bool
}

type Builder struct {
	opts Options
}

func New(opts Options) *Builder {
	return &Builder{opts: opts}
}

// BuildGuide normalizes a general sheet row. Newly built guides are always unpaid.
func (b *Builder) BuildGuide(row domain.Row) (*models.Guide, error) {
	if err := requireFields(row, GuideColumns); err != nil {
		return nil, err
	}
	f := row.Fields

	id, err := trackingID(ColTrackingID, f[ColTrackingID])
	if err != nil {
		return nil, err
	}
	date, err := normalize.Date(ColDate, f[ColDate])
	if err != nil {
		return nil, err
	}
	creditCode, err := normalize.CreditCode(ColCreditCode, f[ColCreditCode])
	if err != nil {
		return nil, err
	}
	receivedDate, err := optionalDate(ColReceivedDate, f[ColReceivedDate])
	if err != nil {
		return nil, err
	}

	guide := &models.Guide{
		ID:           id,
		Date:         date,
		Sender:       normalize.Name(f[ColSender], "-"),
		Addressee:    normalize.Name(f[ColAddressee], " "),
		Reference1:   normalize.OptionalText(f[ColReference1]),
		Reference2:   normalize.OptionalText(f[ColReference2]),
		CreditCode:   creditCode,
		Status:       normalize.LowerText(f[ColStatus]),
		Reason:       normalize.OptionalText(f[ColReason]),
		Destination:  normalize.Text(f[ColDestination]),
		ReceivedBy:   normalize.Name(f[ColReceivedBy], " "),
		ReceivedDate: receivedDate,
		ReceivedTime: normalize.Text(f[ColReceivedTime]),
		Paid:         false,
	}
	if b.opts.IncludeGuideType {
		guide.GuideType = classifier.GuideType(id)
	}
	return guide, nil
}

// BuildSettlement normalizes a settlement sheet row. The commission percentage
// is validated here so that a built settlement can always be checked.
func (b *Builder) BuildSettlement(row domain.Row) (*models.Settlement, error) {
	if err := requireFields(row, SettlementColumns); err != nil {
		return nil, err
	}
	f := row.Fields

	id, err := trackingID(ColSettlementID, f[ColSettlementID])
	if err != nil {
		return nil, err
	}
	pieces, err := normalize.Integer(ColPieces, f[ColPieces])
	if err != nil {
		return nil, err
	}
	cod, err := normalize.Amount(ColCODAmount, f[ColCODAmount])
	if err != nil {
		return nil, err
	}
	cash, err := normalize.Amount(ColCash, f[ColCash])
	if err != nil {
		return nil, err
	}
	commission := normalize.Text(f[ColCommission])
	if _, err := normalize.Percentage(commission); err != nil {
		return nil, withField(err, ColCommission)
	}
	commissionValue, err := normalize.Amount(ColCommissionValue, f[ColCommissionValue])
	if err != nil {
		return nil, err
	}
	settled, err := normalize.Amount(ColSettledAmount, f[ColSettledAmount])
	if err != nil {
		return nil, err
	}

	return &models.Settlement{
		ID:              id,
		Pieces:          pieces,
		Status:          normalize.Text(f[ColSettlementState]),
		CODAmount:       cod,
		Cash:            cash,
		Commission:      commission,
		CommissionValue: commissionValue,
		SettledAmount:   settled,
		Operation:       normalize.Text(f[ColOperation]),
		Authorization:   normalize.Text(f[ColAuthorization]),
		AccountNumber:   normalize.Text(f[ColAccountNumber]),
	}, nil
}

func requireFields(row domain.Row, columns []string) error {
	for _, col := range columns {
		if _, ok := row.Get(col); !ok {
			return &domain.SchemaError{Field: col}
		}
	}
	return nil
}

func trackingID(field string, raw any) (string, error) {
	id := normalize.Text(raw)
	if id == "" {
		return "", &domain.FormatError{Field: field, Value: raw, Reason: "blank tracking number"}
	}
	return id, nil
}

// optionalDate accepts a blank cell for guides that were never delivered.
func optionalDate(field string, raw any) (string, error) {
	if normalize.Text(raw) == "" {
		return "", nil
	}
	return normalize.Date(field, raw)
}

func withField(err error, field string) error {
	var fe *domain.FormatError
	if errors.As(err, &fe) && fe.Field == "" {
		return &domain.FormatError{Field: field, Value: fe.Value, Reason: fe.Reason}
	}
	return err
}
