package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"crewplanner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	events      map[string]*domain.Event
	invitations map[string][]*domain.Invitation
	responses   map[string][]*domain.AvailabilityResponse
	upserted    []*domain.AvailabilityResponse
	upsertErr   error
	listInvErr  error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:      make(map[string]*domain.Event),
		invitations: make(map[string][]*domain.Invitation),
		responses:   make(map[string][]*domain.AvailabilityResponse),
	}
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListInvitations(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	if f.listInvErr != nil {
		return nil, f.listInvErr
	}
	return f.invitations[eventID], nil
}

func (f *fakeEventRepo) ListAvailability(ctx context.Context, eventID string) ([]*domain.AvailabilityResponse, error) {
	return f.responses[eventID], nil
}

func (f *fakeEventRepo) IsInvited(ctx context.Context, eventID, userID string) (bool, error) {
	for _, inv := range f.invitations[eventID] {
		if inv.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) UpsertAvailability(ctx context.Context, resp *domain.AvailabilityResponse) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, resp)
	f.responses[resp.EventID] = append(f.responses[resp.EventID], resp)
	return nil
}

func (f *fakeEventRepo) invite(eventID string, userIDs ...string) {
	for _, id := range userIDs {
		f.invitations[eventID] = append(f.invitations[eventID], &domain.Invitation{EventID: eventID, UserID: id})
	}
}

func (f *fakeEventRepo) respond(eventID, userID string) {
	f.responses[eventID] = append(f.responses[eventID], &domain.AvailabilityResponse{
		EventID: eventID,
		UserID:  userID,
		Status:  domain.Available,
	})
}

// fakeReminderRepo is an in-memory ReminderRepository for tests.
type fakeReminderRepo struct {
	rules      []*domain.ReminderRule
	claimed    map[string]bool // ruleID -> sent
	released   []string
	logs       map[string][]string // eventID -> userIDs
	listErr    error
	claimErr   error
	appendErr  error
	claimDeny  bool // if set, Claim reports the rule already taken
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{
		claimed: make(map[string]bool),
		logs:    make(map[string][]string),
	}
}

func (f *fakeReminderRepo) ListPending(ctx context.Context) ([]*domain.ReminderRule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.ReminderRule
	for _, r := range f.rules {
		if !r.Sent && !f.claimed[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderRepo) Claim(ctx context.Context, ruleID string, sentAt time.Time) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if f.claimDeny || f.claimed[ruleID] {
		return false, nil
	}
	f.claimed[ruleID] = true
	return true, nil
}

func (f *fakeReminderRepo) Release(ctx context.Context, ruleID string) error {
	delete(f.claimed, ruleID)
	f.released = append(f.released, ruleID)
	return nil
}

func (f *fakeReminderRepo) AppendLogs(ctx context.Context, eventID string, userIDs []string, sentAt time.Time) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.logs[eventID] = append(f.logs[eventID], userIDs...)
	return nil
}

func (f *fakeReminderRepo) CountLogs(ctx context.Context, eventID, userID string) (int, error) {
	count := 0
	for _, id := range f.logs[eventID] {
		if id == userID {
			count++
		}
	}
	return count, nil
}

// fakeNotificationService records dispatched fan-outs.
type fakeNotificationService struct {
	dispatched []*domain.Fanout
	err        error
}

func (f *fakeNotificationService) Dispatch(ctx context.Context, fo *domain.Fanout) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, fo)
	return nil
}

// fakeEmailService records reminder sends; other methods no-op.
type fakeEmailService struct {
	reminders     []*domain.ReminderEmailData
	reminderUsers [][]string
	reminderErr   error
}

func (f *fakeEmailService) SendEventInvite(ctx context.Context, data *domain.EventInviteEmailData, userIDs []string) error {
	return nil
}

func (f *fakeEmailService) SendReminder(ctx context.Context, data *domain.ReminderEmailData, userIDs []string) error {
	if f.reminderErr != nil {
		return f.reminderErr
	}
	f.reminders = append(f.reminders, data)
	f.reminderUsers = append(f.reminderUsers, userIDs)
	return nil
}

func (f *fakeEmailService) SendTaskAssigned(ctx context.Context, data *domain.TaskAssignedEmailData, userID string) error {
	return nil
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	return nil
}

// fakeRoleProvider answers from a fixed map.
type fakeRoleProvider struct {
	roles map[string]domain.Role
	err   error
}

func (f *fakeRoleProvider) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	if f.err != nil {
		return "", f.err
	}
	if r, ok := f.roles[userID]; ok {
		return r, nil
	}
	return "", domain.ErrMemberNotFound
}

func (f *fakeRoleProvider) ListIDsByRole(ctx context.Context, role domain.Role) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	// Deterministic order for assertions.
	var ids []string
	for _, id := range []string{"user-1", "user-2", "user-3", "admin-1", "admin-2"} {
		if f.roles[id] == role {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func TestReminderService_RunSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	eventDate := now.AddDate(0, 0, 5)
	created := now.AddDate(0, 0, -3)

	newEvent := func() *domain.Event {
		return &domain.Event{
			ID:        "ev-1",
			Type:      domain.EventCompetition,
			Title:     "Regatta",
			Date:      eventDate,
			CreatedBy: "admin-1",
			CreatedAt: created,
		}
	}

	tests := []struct {
		name     string
		setup    func(er *fakeEventRepo, rr *fakeReminderRepo)
		notifErr error
		emailErr error
		want     domain.SweepResult
		assert   func(t *testing.T, rr *fakeReminderRepo, ns *fakeNotificationService, es *fakeEmailService)
	}{
		{
			name: "due rule dispatches to non-responders",
			setup: func(er *fakeEventRepo, rr *fakeReminderRepo) {
				er.events["ev-1"] = newEvent()
				er.invite("ev-1", "user-1", "user-2", "user-3")
				er.respond("ev-1", "user-2")
				rr.rules = []*domain.ReminderRule{
					{ID: "rule-1", EventID: "ev-1", OffsetKind: domain.OffsetAfterCreation, OffsetDays: 2, CreatedAt: created},
				}
			},
			want: domain.SweepResult{Processed: 1, Sent: 1},
			assert: func(t *testing.T, rr *fakeReminderRepo, ns *fakeNotificationService, es *fakeEmailService) {
				require.Len(t, ns.dispatched, 1)
				assert.Equal(t, []string{"user-1", "user-3"}, ns.dispatched[0].UserIDs)
				assert.Equal(t, domain.NotificationReminder, ns.dispatched[0].Type)
				assert.Equal(t, "ev-1", ns.dispatched[0].ReferenceID)
				require.NotNil(t, ns.dispatched[0].Push)
				assert.Equal(t, "reminder-ev-1", ns.dispatched[0].Push.Tag)
				assert.True(t, rr.claimed["rule-1"])
				assert.Equal(t, []string{"user-1", "user-3"}, rr.logs["ev-1"])
				require.Len(t, es.reminders, 1)
				assert.Equal(t, "Regatta", es.reminders[0].Title)
			},
		},
		{
			name: "not yet due stays pending",
			setup: func(er *fakeEventRepo, rr *fakeReminderRepo) {
				er.events["ev-1"] = newEvent()
				er.invite("ev-1", "user-1")
				rr.rules = []*domain.ReminderRule{
					{ID: "rule-1", EventID: "ev-1", OffsetKind: domain.OffsetAfterCreation, OffsetDays: 30, CreatedAt: created},
				}
			},
			want: domain.SweepResult{Processed: 1, Sent: 0},
			assert: func(t *testing.T, rr *fakeReminderRepo, ns *fakeNotificationService, es *fakeEmailService) {
				assert.Empty(t, ns.dispatched)
				assert.False(t, rr.claimed["rule-1"])
			},
		},
		{
			name: "everyone responded claims without dispatching",
			setup: func(er *fakeEventRepo, rr *fakeReminderRepo) {
				er.events["ev-1"] = newEvent()
				er.invite("ev-1", "user-1", "user-2")
				er.respond("ev-1", "user-1")
				er.respond("ev-1", "user-2")
				rr.rules = []*domain.ReminderRule{
					{ID: "rule-1", EventID: "ev-1", OffsetKind: domain.OffsetAfterCreation, OffsetDays: 1, CreatedAt: created},
				}
			},
			want: domain.SweepResult{Processed: 1, Sent: 0},
			assert: func(t *testing.T, rr *fakeReminderRepo, ns *fakeNotificationService, es *fakeEmailService) {
				assert.Empty(t, ns.dispatched)
				assert.True(t, rr.claimed["rule-1"], "rule should be claimed so it never fires again")
				assert.Empty(t, rr.logs["ev-1"])
			},
		},
		{
			name: "past event is claimed as moot",
			setup: func(er *fakeEventRepo, rr *fakeReminderRepo) {
				e := newEvent()
				e.Date = now.AddDate(0, 0, -1)
				er.events["ev-1"] = e
				er.invite("ev-1", "user-1")
				rr.rules = []*domain.ReminderRule{
					{ID: "rule-1", EventID: "ev-1", OffsetKind: domain.OffsetAfterCreation, OffsetDays: 1, CreatedAt: created},
				}
			},
			want: domain.SweepResult{Processed: 1, Sent: 0},
			assert: func(t *testing.T, rr *fakeReminderRepo, ns *fakeNotificationService, es *fakeEmailService) {
				assert.Empty(t, ns.dispatched)
				assert.True(t, rr.claimed["rule-1"])
			},
		},
		{
			name: "lost claim skips dispatch",
			setup: func(er *fakeEventRepo, rr *fakeReminderRepo) {
				er.events["ev-1"] = newEvent()
				er.invite("ev-1", "user-1")
				rr.claimDeny = true
				rr.rules = []*domain.ReminderRule{
					{ID: "rule-1", EventID: "ev-1", OffsetKind: domain.OffsetAfterCreation, OffsetDays: 1, CreatedAt: created},
				}
			},
			want: domain.SweepResult{Processed: 1, Sent: 0},
			assert: func(t *testing.T, rr *fakeReminderRepo, ns *fakeNotificationService, es *fakeEmailService) {
				assert.Empty(t, ns.dispatched)
				assert.Empty(t, es.reminders)
			},
		},
		{
			name: "in-app failure releases the claim",
			setup: func(er *fakeEventRepo, rr *fakeReminderRepo) {
				er.events["ev-1"] = newEvent()
				er.invite("ev-1", "user-1")
				rr.rules = []*domain.ReminderRule{
					{ID: "rule-1", EventID: "ev-1", OffsetKind: domain.OffsetAfterCreation, OffsetDays: 1, CreatedAt: created},
				}
			},
			notifErr: errors.New("db down"),
			want:     domain.SweepResult{Processed: 1, Sent: 0},
			assert: func(t *testing.T, rr *fakeReminderRepo, ns *fakeNotificationService, es *fakeEmailService) {
				assert.Equal(t, []string{"rule-1"}, rr.released)
				assert.False(t, rr.claimed["rule-1"])
				assert.Empty(t, es.reminders)
			},
		},
		{
			name: "email failure keeps the claim and counts as sent",
			setup: func(er *fakeEventRepo, rr *fakeReminderRepo) {
				er.events["ev-1"] = newEvent()
				er.invite("ev-1", "user-1")
				rr.rules = []*domain.ReminderRule{
					{ID: "rule-1", EventID: "ev-1", OffsetKind: domain.OffsetAfterCreation, OffsetDays: 1, CreatedAt: created},
				}
			},
			emailErr: errors.New("smtp down"),
			want:     domain.SweepResult{Processed: 1, Sent: 1},
			assert: func(t *testing.T, rr *fakeReminderRepo, ns *fakeNotificationService, es *fakeEmailService) {
				require.Len(t, ns.dispatched, 1)
				assert.True(t, rr.claimed["rule-1"])
				assert.Empty(t, rr.released)
			},
		},
		{
			name: "missing event isolates the failure",
			setup: func(er *fakeEventRepo, rr *fakeReminderRepo) {
				er.events["ev-1"] = newEvent()
				er.invite("ev-1", "user-1")
				rr.rules = []*domain.ReminderRule{
					{ID: "rule-broken", EventID: "ev-gone", OffsetKind: domain.OffsetAfterCreation, OffsetDays: 1, CreatedAt: created},
					{ID: "rule-1", EventID: "ev-1", OffsetKind: domain.OffsetAfterCreation, OffsetDays: 1, CreatedAt: created},
				}
			},
			want: domain.SweepResult{Processed: 2, Sent: 1},
			assert: func(t *testing.T, rr *fakeReminderRepo, ns *fakeNotificationService, es *fakeEmailService) {
				require.Len(t, ns.dispatched, 1)
				assert.True(t, rr.claimed["rule-1"])
				assert.False(t, rr.claimed["rule-broken"])
			},
		},
		{
			name: "before-deadline rule falls back to the event date",
			setup: func(er *fakeEventRepo, rr *fakeReminderRepo) {
				er.events["ev-1"] = newEvent() // no availability deadline
				er.invite("ev-1", "user-1")
				// eventDate - 5 days == now: due right at the boundary.
				rr.rules = []*domain.ReminderRule{
					{ID: "rule-1", EventID: "ev-1", OffsetKind: domain.OffsetBeforeDeadline, OffsetDays: 5, CreatedAt: created},
				}
			},
			want: domain.SweepResult{Processed: 1, Sent: 1},
			assert: func(t *testing.T, rr *fakeReminderRepo, ns *fakeNotificationService, es *fakeEmailService) {
				require.Len(t, ns.dispatched, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er := newFakeEventRepo()
			rr := newFakeReminderRepo()
			tt.setup(er, rr)
			ns := &fakeNotificationService{err: tt.notifErr}
			es := &fakeEmailService{reminderErr: tt.emailErr}
			audience := NewAudienceResolver(er, &fakeRoleProvider{})

			svc := NewReminderService(rr, er, audience, ns, es, testLogger())
			got, err := svc.RunSweep(ctx, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			tt.assert(t, rr, ns, es)
		})
	}
}

func TestReminderService_RunSweep_ListError(t *testing.T) {
	rr := newFakeReminderRepo()
	rr.listErr = errors.New("db down")
	er := newFakeEventRepo()
	svc := NewReminderService(rr, er, NewAudienceResolver(er, &fakeRoleProvider{}), &fakeNotificationService{}, &fakeEmailService{}, testLogger())

	_, err := svc.RunSweep(context.Background(), time.Now())
	require.Error(t, err)
}

func TestReminderService_RunSweep_Idempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	er := newFakeEventRepo()
	er.events["ev-1"] = &domain.Event{
		ID:        "ev-1",
		Title:     "Training",
		Date:      now.AddDate(0, 0, 3),
		CreatedBy: "admin-1",
		CreatedAt: now.AddDate(0, 0, -2),
	}
	er.invite("ev-1", "user-1", "user-2")
	rr := newFakeReminderRepo()
	rr.rules = []*domain.ReminderRule{
		{ID: "rule-1", EventID: "ev-1", OffsetKind: domain.OffsetAfterCreation, OffsetDays: 1, CreatedAt: now.AddDate(0, 0, -2)},
	}
	ns := &fakeNotificationService{}
	svc := NewReminderService(rr, er, NewAudienceResolver(er, &fakeRoleProvider{}), ns, &fakeEmailService{}, testLogger())

	first, err := svc.RunSweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, domain.SweepResult{Processed: 1, Sent: 1}, first)

	// Second trigger: the rule is claimed, nothing more goes out.
	second, err := svc.RunSweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, domain.SweepResult{Processed: 0, Sent: 0}, second)
	assert.Len(t, ns.dispatched, 1)
	assert.Equal(t, []string{"user-1", "user-2"}, rr.logs["ev-1"])
}
