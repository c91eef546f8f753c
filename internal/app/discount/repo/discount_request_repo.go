package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/models/m_discount_request"
)

// DiscountRequestRepo implements DiscountRequestRepository for Spanner.
type DiscountRequestRepo struct {
	client *spanner.Client
	model  *m_discount_request.Model
}

// NewDiscountRequestRepo creates a new DiscountRequestRepo.
func NewDiscountRequestRepo(client *spanner.Client) contracts.DiscountRequestRepository {
	return &DiscountRequestRepo{
		client: client,
		model:  m_discount_request.NewModel(),
	}
}

// InsertMut creates a mutation for inserting a new request.
func (r *DiscountRequestRepo) InsertMut(req *domain.DiscountRequest) *spanner.Mutation {
	return r.model.InsertMut(domainToData(req))
}

// UpdateMut creates a mutation for the edited fields (only dirty fields).
func (r *DiscountRequestRepo) UpdateMut(req *domain.DiscountRequest) *spanner.Mutation {
	return r.model.UpdateMut(req.ID(), editedColumns(req))
}

// editedColumns maps dirty editable fields to column values. Decision fields
// are written by DecisionStmt instead.
func editedColumns(req *domain.DiscountRequest) map[string]interface{} {
	changes := req.Changes()
	data := domainToData(req)
	updates := make(map[string]interface{})

	if changes.Dirty(domain.FieldProductID) {
		updates[m_discount_request.ProductID] = data.ProductID
	}
	if changes.Dirty(domain.FieldScope) {
		updates[m_discount_request.IsGlobal] = data.IsGlobal
		updates[m_discount_request.PatientID] = data.PatientID
	}
	if changes.Dirty(domain.FieldPercentage) {
		updates[m_discount_request.DiscountPercentage] = data.DiscountPercentage
	}
	if changes.Dirty(domain.FieldReason) {
		updates[m_discount_request.Reason] = data.Reason
	}
	if changes.Dirty(domain.FieldExpiryDate) {
		updates[m_discount_request.ExpiryDate] = data.ExpiryDate
	}

	return updates
}

// PendingGuard returns a statement that only matches a pending request.
func (r *DiscountRequestRepo) PendingGuard(requestID string) spanner.Statement {
	return r.model.PendingLockStmt(requestID)
}

// DecisionStmt returns the conditional update recording the decision.
func (r *DiscountRequestRepo) DecisionStmt(req *domain.DiscountRequest) spanner.Statement {
	return r.model.DecideStmt(domainToData(req))
}

// GetByID retrieves a request by ID, reconstructing the domain aggregate.
func (r *DiscountRequestRepo) GetByID(ctx context.Context, requestID string) (*domain.DiscountRequest, error) {
	return readRequest(ctx, r.client.Single(), requestID)
}

type rowReader interface {
	ReadRow(ctx context.Context, table string, key spanner.Key, columns []string) (*spanner.Row, error)
}

func readRequest(ctx context.Context, rtx rowReader, requestID string) (*domain.DiscountRequest, error) {
	row, err := rtx.ReadRow(ctx, m_discount_request.TableName, spanner.Key{requestID}, m_discount_request.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrDiscountRequestNotFound
		}
		return nil, fmt.Errorf("failed to read discount request: %w", err)
	}
	return rowToDomain(row)
}
