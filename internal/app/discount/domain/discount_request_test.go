package domain

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	testToday = civil.DateOf(testNow)

	admin     = Actor{UserID: "admin-1", Role: RoleAdmin}
	requester = Actor{UserID: "user-1", Role: RoleUser}
	stranger  = Actor{UserID: "user-2", Role: RoleUser}

	selfService = ApprovalPolicy{SelfServiceEnabled: true}
	adminOnly   = ApprovalPolicy{}
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func validParams() NewRequestParams {
	return NewRequestParams{
		ID:          "req-1",
		ProductID:   "prod-1",
		PatientID:   strPtr("pat-1"),
		Percentage:  "10",
		Reason:      "loyal customer",
		RequestedBy: requester.UserID,
	}
}

func newPending(t *testing.T) *DiscountRequest {
	t.Helper()
	r, err := NewDiscountRequest(validParams(), testToday, testNow)
	require.NoError(t, err)
	return r
}

func TestNewDiscountRequest(t *testing.T) {
	t.Run("creates pending request with event", func(t *testing.T) {
		r := newPending(t)

		assert.Equal(t, StatusPending, r.Status())
		assert.Equal(t, "pat-1", r.Scope().PatientID())
		assert.Equal(t, "10.00", r.Percentage().String())
		assert.Equal(t, testNow, r.CreatedAt())
		assert.Nil(t, r.DecidedAt())
		assert.Empty(t, r.ApprovedBy())
		assert.True(t, r.Changes().Dirty(FieldStatus))

		require.Len(t, r.DomainEvents(), 1)
		assert.Equal(t, EventRequestCreated, r.DomainEvents()[0].EventType())
		assert.Equal(t, "req-1", r.DomainEvents()[0].AggregateID())
	})

	t.Run("global forces patient to null", func(t *testing.T) {
		p := validParams()
		p.IsGlobal = true
		p.PatientID = strPtr("pat-99")

		r, err := NewDiscountRequest(p, testToday, testNow)
		require.NoError(t, err)
		assert.True(t, r.Scope().IsGlobal())
		assert.Empty(t, r.Scope().PatientID())

		created := r.DomainEvents()[0].(*DiscountRequestCreatedEvent)
		assert.Nil(t, created.PatientID)
		assert.True(t, created.IsGlobal)
	})

	t.Run("expiry today is allowed", func(t *testing.T) {
		p := validParams()
		p.ExpiryDate = &testToday
		r, err := NewDiscountRequest(p, testToday, testNow)
		require.NoError(t, err)
		assert.Equal(t, testToday, *r.ExpiryDate())
	})

	invalid := []struct {
		name   string
		mutate func(*NewRequestParams)
		field  string
	}{
		{"zero percentage", func(p *NewRequestParams) { p.Percentage = "0" }, "discount_percentage"},
		{"percentage above 100", func(p *NewRequestParams) { p.Percentage = "100.5" }, "discount_percentage"},
		{"negative percentage", func(p *NewRequestParams) { p.Percentage = "-1" }, "discount_percentage"},
		{"missing product", func(p *NewRequestParams) { p.ProductID = "" }, "product_id"},
		{"non global without patient", func(p *NewRequestParams) { p.PatientID = nil }, "patient_id"},
		{"past expiry", func(p *NewRequestParams) {
			d := testToday.AddDays(-1)
			p.ExpiryDate = &d
		}, "expiry_date"},
		{"reason too long", func(p *NewRequestParams) {
			b := make([]byte, MaxReasonLength+1)
			for i := range b {
				b[i] = 'x'
			}
			p.Reason = string(b)
		}, "reason"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)

			r, err := NewDiscountRequest(p, testToday, testNow)
			assert.Nil(t, r)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	t.Run("collects every invalid field", func(t *testing.T) {
		p := validParams()
		p.ProductID = ""
		p.Percentage = "0"

		_, err := NewDiscountRequest(p, testToday, testNow)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)
	})
}

func TestDiscountRequest_Update(t *testing.T) {
	t.Run("requester edits pending request", func(t *testing.T) {
		r := ReconstructDiscountRequest(newPending(t).Snapshot())
		later := testNow.Add(time.Hour)

		err := r.Update(requester, RequestPatch{Percentage: strPtr("15"), Reason: strPtr("updated")}, testToday, later)
		require.NoError(t, err)

		assert.Equal(t, "15.00", r.Percentage().String())
		assert.Equal(t, "updated", r.Reason())
		assert.Equal(t, later, r.UpdatedAt())
		last := r.DomainEvents()[len(r.DomainEvents())-1].(*DiscountRequestUpdatedEvent)
		assert.Equal(t, EventRequestUpdated, last.EventType())
		assert.Equal(t, []string{FieldPercentage, FieldReason}, last.ChangedFields)
	})

	t.Run("admin may edit anyone's request", func(t *testing.T) {
		r := ReconstructDiscountRequest(newPending(t).Snapshot())
		require.NoError(t, r.Update(admin, RequestPatch{IsGlobal: boolPtr(true)}, testToday, testNow))
		assert.True(t, r.Scope().IsGlobal())
		assert.True(t, r.Changes().Dirty(FieldScope))
	})

	t.Run("switching to patient scope needs a patient", func(t *testing.T) {
		p := validParams()
		p.IsGlobal = true
		r, err := NewDiscountRequest(p, testToday, testNow)
		require.NoError(t, err)
		r = ReconstructDiscountRequest(r.Snapshot())

		err = r.Update(requester, RequestPatch{IsGlobal: boolPtr(false)}, testToday, testNow)
		assert.ErrorIs(t, err, ErrValidation)
		assert.True(t, r.Scope().IsGlobal())

		require.NoError(t, r.Update(requester, RequestPatch{IsGlobal: boolPtr(false), PatientID: strPtr("pat-5")}, testToday, testNow))
		assert.Equal(t, "pat-5", r.Scope().PatientID())
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		r := newPending(t)
		err := r.Update(stranger, RequestPatch{Percentage: strPtr("20")}, testToday, testNow)
		assert.ErrorIs(t, err, ErrNotRequestOwner)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, "10.00", r.Percentage().String())
	})

	t.Run("decided request is not editable", func(t *testing.T) {
		r := newPending(t)
		require.NoError(t, r.Approve(admin, "", adminOnly, testNow))

		err := r.Update(requester, RequestPatch{Percentage: strPtr("20")}, testToday, testNow)
		assert.ErrorIs(t, err, ErrRequestNotEditable)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("invalid patch leaves request untouched", func(t *testing.T) {
		r := ReconstructDiscountRequest(newPending(t).Snapshot())
		err := r.Update(requester, RequestPatch{Percentage: strPtr("0"), Reason: strPtr("new")}, testToday, testNow)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "10.00", r.Percentage().String())
		assert.Equal(t, "loyal customer", r.Reason())
		assert.False(t, r.Changes().HasChanges())
	})

	t.Run("no-op patch records nothing", func(t *testing.T) {
		r := ReconstructDiscountRequest(newPending(t).Snapshot())
		require.NoError(t, r.Update(requester, RequestPatch{Percentage: strPtr("10.00")}, testToday, testNow))
		assert.False(t, r.Changes().HasChanges())
		assert.Empty(t, r.DomainEvents())
	})

	t.Run("clear expiry", func(t *testing.T) {
		p := validParams()
		d := testToday.AddDays(30)
		p.ExpiryDate = &d
		r, err := NewDiscountRequest(p, testToday, testNow)
		require.NoError(t, err)
		r = ReconstructDiscountRequest(r.Snapshot())

		require.NoError(t, r.Update(requester, RequestPatch{ClearExpiry: true}, testToday, testNow))
		assert.Nil(t, r.ExpiryDate())
		assert.True(t, r.Changes().Dirty(FieldExpiryDate))
	})
}

func TestDiscountRequest_Decide(t *testing.T) {
	t.Run("admin approves", func(t *testing.T) {
		r := newPending(t)
		require.NoError(t, r.Approve(admin, "ok", adminOnly, testNow))

		assert.Equal(t, StatusApproved, r.Status())
		assert.Equal(t, admin.UserID, r.ApprovedBy())
		assert.Equal(t, "ok", r.ApprovalNotes())
		require.NotNil(t, r.DecidedAt())
		assert.Equal(t, testNow, *r.DecidedAt())
		last := r.DomainEvents()[len(r.DomainEvents())-1]
		assert.Equal(t, EventRequestApproved, last.EventType())
	})

	t.Run("admin rejects", func(t *testing.T) {
		r := newPending(t)
		require.NoError(t, r.Reject(admin, "", adminOnly, testNow))
		assert.Equal(t, StatusRejected, r.Status())
		assert.Equal(t, EventRequestRejected, r.DomainEvents()[len(r.DomainEvents())-1].EventType())
	})

	t.Run("requester self-service on patient scope", func(t *testing.T) {
		r := newPending(t)
		require.NoError(t, r.Approve(requester, "", selfService, testNow))
		assert.Equal(t, requester.UserID, r.ApprovedBy())
	})

	t.Run("self-service disabled", func(t *testing.T) {
		r := newPending(t)
		assert.ErrorIs(t, r.Approve(requester, "", adminOnly, testNow), ErrNotAllowedToDecide)
		assert.Equal(t, StatusPending, r.Status())
	})

	t.Run("self-service never covers global requests", func(t *testing.T) {
		p := validParams()
		p.IsGlobal = true
		r, err := NewDiscountRequest(p, testToday, testNow)
		require.NoError(t, err)
		assert.ErrorIs(t, r.Approve(requester, "", selfService, testNow), ErrForbidden)
	})

	t.Run("stranger cannot decide", func(t *testing.T) {
		r := newPending(t)
		assert.ErrorIs(t, r.Reject(stranger, "", selfService, testNow), ErrForbidden)
	})

	t.Run("notes too long", func(t *testing.T) {
		r := newPending(t)
		notes := make([]rune, MaxApprovalNotesLength+1)
		for i := range notes {
			notes[i] = 'n'
		}
		err := r.Approve(admin, string(notes), adminOnly, testNow)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, StatusPending, r.Status())
	})

	terminal := []struct {
		name   string
		first  func(*DiscountRequest) error
		second func(*DiscountRequest) error
		status RequestStatus
	}{
		{"approve twice",
			func(r *DiscountRequest) error { return r.Approve(admin, "", adminOnly, testNow) },
			func(r *DiscountRequest) error { return r.Approve(admin, "", adminOnly, testNow.Add(time.Hour)) },
			StatusApproved},
		{"reject after approve",
			func(r *DiscountRequest) error { return r.Approve(admin, "", adminOnly, testNow) },
			func(r *DiscountRequest) error { return r.Reject(admin, "", adminOnly, testNow.Add(time.Hour)) },
			StatusApproved},
		{"approve after reject",
			func(r *DiscountRequest) error { return r.Reject(admin, "", adminOnly, testNow) },
			func(r *DiscountRequest) error { return r.Approve(admin, "", adminOnly, testNow.Add(time.Hour)) },
			StatusRejected},
		{"conflict is reported before authorization",
			func(r *DiscountRequest) error { return r.Approve(admin, "", adminOnly, testNow) },
			func(r *DiscountRequest) error { return r.Reject(stranger, "", adminOnly, testNow.Add(time.Hour)) },
			StatusApproved},
	}

	for _, tt := range terminal {
		t.Run(tt.name, func(t *testing.T) {
			r := newPending(t)
			require.NoError(t, tt.first(r))
			before := r.Snapshot()

			err := tt.second(r)
			assert.ErrorIs(t, err, ErrAlreadyDecided)
			assert.ErrorIs(t, err, ErrConflict)
			assert.Equal(t, tt.status, r.Status())
			assert.Equal(t, before, r.Snapshot())
		})
	}
}

func TestDiscountRequest_IsActiveOn(t *testing.T) {
	expiry := testToday.AddDays(5)
	r := ReconstructDiscountRequest(RequestSnapshot{
		ID:         "req-1",
		ProductID:  "prod-1",
		Percentage: mustPercentage(t, "10"),
		Status:     StatusApproved,
		ExpiryDate: &expiry,
	})

	assert.True(t, r.IsActiveOn(testToday))
	assert.True(t, r.IsActiveOn(expiry), "expiry day is inclusive")
	assert.False(t, r.IsActiveOn(expiry.AddDays(1)))

	pending := ReconstructDiscountRequest(RequestSnapshot{ID: "req-2", Status: StatusPending})
	assert.False(t, pending.IsActiveOn(testToday))

	rejected := ReconstructDiscountRequest(RequestSnapshot{ID: "req-3", Status: StatusRejected})
	assert.False(t, rejected.IsActiveOn(testToday))

	forever := ReconstructDiscountRequest(RequestSnapshot{ID: "req-4", Status: StatusApproved})
	assert.True(t, forever.IsActiveOn(testToday.AddDays(10000)))
}

func TestParseRequestStatus(t *testing.T) {
	st, err := ParseRequestStatus("Approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, st)

	_, err = ParseRequestStatus("archived")
	assert.ErrorIs(t, err, ErrValidation)
}
