package repo

import (
	"context"
	"fmt"
	"strconv"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/models/m_discount_request"
	"github.com/light-bringer/optics-discounts/internal/pkg/query"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// ReadModelImpl implements ReadModel for Spanner.
type ReadModelImpl struct {
	client *spanner.Client
}

// NewReadModel creates a new ReadModel implementation.
func NewReadModel(client *spanner.Client) contracts.ReadModel {
	return &ReadModelImpl{
		client: client,
	}
}

// GetByID retrieves a single request.
func (rm *ReadModelImpl) GetByID(ctx context.Context, requestID string) (*domain.DiscountRequest, error) {
	return readRequest(ctx, rm.client.Single(), requestID)
}

// ActiveStatement builds the query for requests active on filter.Today.
func ActiveStatement(filter contracts.ActiveFilter) spanner.Statement {
	q := query.From(m_discount_request.TableName).
		Select(m_discount_request.Columns...).
		Where(query.Eq(m_discount_request.Status, string(domain.StatusApproved))).
		Where(query.Or(
			query.IsNull(m_discount_request.ExpiryDate),
			query.Gte(m_discount_request.ExpiryDate, filter.Today),
		))

	if filter.ProductID != "" {
		q = q.Where(query.Eq(m_discount_request.ProductID, filter.ProductID))
	}
	if filter.PatientID != "" {
		q = q.Where(query.Or(
			query.Eq(m_discount_request.IsGlobal, true),
			query.Eq(m_discount_request.PatientID, filter.PatientID),
		))
	}

	return q.OrderBy(m_discount_request.DecidedAt, query.Desc).
		OrderBy(m_discount_request.RequestID, query.Asc).
		Build()
}

// ListActive returns active requests, most recently decided first.
func (rm *ReadModelImpl) ListActive(ctx context.Context, filter contracts.ActiveFilter) ([]*domain.DiscountRequest, error) {
	return rm.collect(ctx, rm.client.Single(), ActiveStatement(filter))
}

// listQuery applies the list filter without pagination.
func listQuery(filter *contracts.ListFilter) *query.Builder {
	q := query.From(m_discount_request.TableName).Select(m_discount_request.Columns...)

	if filter.Status != "" {
		q = q.Where(query.Eq(m_discount_request.Status, filter.Status))
	}
	if filter.ProductID != "" {
		q = q.Where(query.Eq(m_discount_request.ProductID, filter.ProductID))
	}
	if filter.PatientID != "" {
		q = q.Where(query.Eq(m_discount_request.PatientID, filter.PatientID))
	}
	if filter.RequestedBy != "" {
		q = q.Where(query.Eq(m_discount_request.RequestedBy, filter.RequestedBy))
	}
	return q
}

// List returns a page of requests. The page token is the row offset of the
// next page.
func (rm *ReadModelImpl) List(ctx context.Context, filter *contracts.ListFilter) (*contracts.ListResult, error) {
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	offset, err := parsePageToken(filter.PageToken)
	if err != nil {
		return nil, err
	}

	base := listQuery(filter)

	// Both reads share one snapshot so the count matches the page.
	ro := rm.client.ReadOnlyTransaction()
	defer ro.Close()

	var total int64
	countIter := ro.Query(ctx, base.Count().Build())
	err = countIter.Do(func(row *spanner.Row) error {
		return row.Columns(&total)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count discount requests: %w", err)
	}

	stmt := base.
		OrderBy(m_discount_request.CreatedAt, query.Desc).
		OrderBy(m_discount_request.RequestID, query.Asc).
		Limit(int64(pageSize)).
		Offset(offset).
		Build()

	requests, err := rm.collect(ctx, ro, stmt)
	if err != nil {
		return nil, err
	}

	result := &contracts.ListResult{
		Requests:   requests,
		TotalCount: total,
	}
	if next := offset + int64(len(requests)); len(requests) > 0 && next < total {
		result.NextPageToken = strconv.FormatInt(next, 10)
	}
	return result, nil
}

type queryRunner interface {
	Query(ctx context.Context, statement spanner.Statement) *spanner.RowIterator
}

func (rm *ReadModelImpl) collect(ctx context.Context, txn queryRunner, stmt spanner.Statement) ([]*domain.DiscountRequest, error) {
	iter := txn.Query(ctx, stmt)
	defer iter.Stop()

	requests := make([]*domain.DiscountRequest, 0)
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate discount requests: %w", err)
		}

		req, err := rowToDomain(row)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, nil
}

func parsePageToken(token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	offset, err := strconv.ParseInt(token, 10, 64)
	if err != nil || offset < 0 {
		return 0, domain.FieldError("page_token", "invalid page token")
	}
	return offset, nil
}
