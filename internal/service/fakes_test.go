package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/repository"
)

type push struct {
	userID  string
	event   string
	payload any
}

// fakeNotifier records every push instead of delivering it.
type fakeNotifier struct {
	mu         sync.Mutex
	pushes     []push
	broadcasts []push
}

func (n *fakeNotifier) Notify(userID, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, push{userID, event, payload})
}

func (n *fakeNotifier) NotifyMany(userIDs []string, event string, payload any) {
	for _, id := range userIDs {
		n.Notify(id, event, payload)
	}
}

func (n *fakeNotifier) Broadcast(event string, payload any) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts = append(n.broadcasts, push{"", event, payload})
	return 0
}

func (n *fakeNotifier) sent(event string) []push {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []push
	for _, p := range n.pushes {
		if p.event == event {
			out = append(out, p)
		}
	}
	return out
}

type email struct{ to, subject string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email{to, subject})
	return m.err
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var (
	employerE1 = domain.User{ID: "E1", Name: "Eve", Email: "eve@example.com", Role: domain.RoleEmployer}
	employerE2 = domain.User{ID: "E2", Name: "Ed", Email: "ed@example.com", Role: domain.RoleEmployer}
	seekerS1   = domain.User{ID: "S1", Name: "Sam", Email: "sam@example.com", Role: domain.RoleJobSeeker}
	seekerS2   = domain.User{ID: "S2", Name: "Sue", Email: "sue@example.com", Role: domain.RoleJobSeeker}
)

func seedJob(t *testing.T, jobs *repository.MockJobRepository, id, company string) {
	t.Helper()
	now := time.Now().UTC()
	err := jobs.Create(context.Background(), &domain.Job{
		ID: id, Title: "Job " + id, Company: company, JobType: domain.JobTypeFullTime,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}
}
