package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"talentflow/internal/common"
	"talentflow/internal/domain/offer"
)

type OfferRepository struct {
	db *sql.DB
}

func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `id, candidate_id, template_code, designation, currency, annual_ctc, fixed_pay, variable_pay, joining_date, status, decline_note, letter_overrides, created_at, updated_at`

func (r *OfferRepository) Create(ctx context.Context, o offer.Offer) (*offer.Offer, error) {
	o.ID = common.NewUUID()
	o.Status = offer.StatusDraft
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	overrides, err := marshalOverrides(o.LetterOverrides)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO offers (id, candidate_id, template_code, designation, currency, annual_ctc, fixed_pay, variable_pay, joining_date, status, decline_note, letter_overrides, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID, o.CandidateID, o.TemplateCode, o.Designation, o.Currency, o.AnnualCTC, o.FixedPay, o.VariablePay, o.JoiningDate, o.Status, o.DeclineNote, overrides, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isConstraintConflict(err) {
			return nil, common.NewError(common.CodeConflict, "candidate already has an open offer", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create offer", err)
	}
	return &o, nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id common.UUID) (*offer.Offer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	return scanOffer(row)
}

func (r *OfferRepository) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]offer.Offer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+offerColumns+` FROM offers WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list offers", err)
	}
	defer rows.Close()
	var items []offer.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *o)
	}
	return items, nil
}

func (r *OfferRepository) FindOpenByCandidate(ctx context.Context, candidateID common.UUID) (*offer.Offer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+offerColumns+` FROM offers
		WHERE candidate_id = $1 AND status NOT IN ('accepted', 'declined')`, candidateID)
	return scanOffer(row)
}

func (r *OfferRepository) Update(ctx context.Context, o offer.Offer) (*offer.Offer, error) {
	overrides, err := marshalOverrides(o.LetterOverrides)
	if err != nil {
		return nil, err
	}
	result, err := r.db.ExecContext(ctx, `UPDATE offers
		SET template_code = $1, designation = $2, currency = $3, annual_ctc = $4, fixed_pay = $5, variable_pay = $6, joining_date = $7, letter_overrides = $8, updated_at = $9
		WHERE id = $10 AND status = 'draft'`,
		o.TemplateCode, o.Designation, o.Currency, o.AnnualCTC, o.FixedPay, o.VariablePay, o.JoiningDate, overrides, time.Now().UTC(), o.ID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update offer", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update offer", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, o.ID); err != nil {
			return nil, err
		}
		return nil, common.NewError(common.CodeConflict, "offer is no longer editable", nil)
	}
	return r.GetByID(ctx, o.ID)
}

func (r *OfferRepository) UpdateStatus(ctx context.Context, id common.UUID, from, to offer.Status, note string) (*offer.Offer, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE offers SET status = $1, decline_note = $2, updated_at = $3 WHERE id = $4 AND status = $5`,
		to, note, time.Now().UTC(), id, from)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update offer status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update offer status", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, common.NewError(common.CodeConflict, "offer status changed concurrently", nil)
	}
	return r.GetByID(ctx, id)
}

func marshalOverrides(overrides map[string]string) ([]byte, error) {
	if overrides == nil {
		overrides = map[string]string{}
	}
	raw, err := json.Marshal(overrides)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode letter overrides", err)
	}
	return raw, nil
}

func scanOffer(row rowScanner) (*offer.Offer, error) {
	var o offer.Offer
	var joining sql.NullTime
	var overrides []byte
	if err := row.Scan(&o.ID, &o.CandidateID, &o.TemplateCode, &o.Designation, &o.Currency, &o.AnnualCTC, &o.FixedPay, &o.VariablePay, &joining, &o.Status, &o.DeclineNote, &overrides, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "offer not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load offer", err)
	}
	if joining.Valid {
		t := joining.Time
		o.JoiningDate = &t
	}
	if len(overrides) > 0 {
		if err := json.Unmarshal(overrides, &o.LetterOverrides); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to decode letter overrides", err)
		}
	}
	return &o, nil
}
