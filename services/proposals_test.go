package services

import (
	"context"
	"errors"
	"testing"

	"projecthub/models"
	"projecthub/testutil"

	"go.uber.org/zap"
)

func TestProposalCreateOnePerProject(t *testing.T) {
	f := newProjectFixture(t)
	project := f.create(t, "member@example.com")
	proposals := NewProposals(f.db, f.access, zap.NewNop())
	ctx := context.Background()

	in := NewProposal{ProjectID: project.ID, Judul: "Budget", Deskripsi: "Q1", FileURL: "http://localhost/files/a.pdf"}

	if _, err := proposals.Create(ctx, f.outsider.ID, in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider: expected ErrForbidden, got %v", err)
	}

	created, err := proposals.Create(ctx, f.member.ID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != models.ProposalPending {
		t.Fatalf("new proposal should be PENDING, got %s", created.Status)
	}

	if _, err := proposals.Create(ctx, f.owner.ID, in); !errors.Is(err, ErrDuplicateProposal) {
		t.Fatalf("second proposal: expected ErrDuplicateProposal, got %v", err)
	}

	got, err := proposals.GetForProject(ctx, f.owner.ID, project.ID)
	if err != nil || got.ID != created.ID {
		t.Fatalf("get: %+v, %v", got, err)
	}
	if _, err := proposals.GetForProject(ctx, f.outsider.ID, project.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider get: expected ErrForbidden, got %v", err)
	}
}

func TestProposalRequiresFile(t *testing.T) {
	f := newProjectFixture(t)
	project := f.create(t)
	proposals := NewProposals(f.db, f.access, zap.NewNop())

	_, err := proposals.Create(context.Background(), f.owner.ID, NewProposal{ProjectID: project.ID, Judul: "No file"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProposalStatusIsAdminOnly(t *testing.T) {
	f := newProjectFixture(t)
	admin := testutil.CreateUser(t, f.db, "admin@example.com", models.RoleAdmin)
	project := f.create(t)
	proposals := NewProposals(f.db, f.access, zap.NewNop())
	ctx := context.Background()

	if _, err := proposals.SetStatus(ctx, admin, project.ID, models.ProposalApproved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("no proposal yet: expected ErrNotFound, got %v", err)
	}

	if _, err := proposals.Create(ctx, f.owner.ID, NewProposal{ProjectID: project.ID, Judul: "Plan", FileURL: "http://x/p.pdf"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := proposals.SetStatus(ctx, f.owner, project.ID, models.ProposalApproved); !errors.Is(err, ErrForbidden) {
		t.Fatalf("owner: expected ErrForbidden, got %v", err)
	}
	if _, err := proposals.SetStatus(ctx, admin, project.ID, "MAYBE"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad status: expected ErrValidation, got %v", err)
	}

	for _, status := range []models.ProposalStatus{models.ProposalApproved, models.ProposalRejected, models.ProposalPending} {
		updated, err := proposals.SetStatus(ctx, admin, project.ID, status)
		if err != nil {
			t.Fatalf("set %s: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected %s, got %s", status, updated.Status)
		}
	}
}

func TestProposalListAndCount(t *testing.T) {
	f := newProjectFixture(t)
	admin := testutil.CreateUser(t, f.db, "admin@example.com", models.RoleAdmin)
	proposals := NewProposals(f.db, f.access, zap.NewNop())
	ctx := context.Background()

	if _, err := proposals.ListForUser(ctx, f.member.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty list: expected ErrNotFound, got %v", err)
	}

	first := f.create(t, "member@example.com")
	second := f.create(t)
	for _, p := range []*models.Project{first, second} {
		if _, err := proposals.Create(ctx, f.owner.ID, NewProposal{ProjectID: p.ID, Judul: p.NamaProject, FileURL: "http://x/p.pdf"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := proposals.SetStatus(ctx, admin, second.ID, models.ProposalApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	mine, err := proposals.ListForUser(ctx, f.member.ID)
	if err != nil || len(mine) != 1 || mine[0].ProjectID != first.ID {
		t.Fatalf("member list: %+v, %v", mine, err)
	}
	owned, _ := proposals.ListForUser(ctx, f.owner.ID)
	if len(owned) != 2 {
		t.Fatalf("owner should see two proposals, got %d", len(owned))
	}

	cases := map[models.ProposalStatus]int64{
		"":                      2,
		models.ProposalPending:  1,
		models.ProposalApproved: 1,
		models.ProposalRejected: 0,
	}
	for status, want := range cases {
		got, err := proposals.Count(ctx, admin, status)
		if err != nil {
			t.Fatalf("count %q: %v", status, err)
		}
		if got != want {
			t.Fatalf("count %q: want %d, got %d", status, want, got)
		}
	}

	if _, err := proposals.Count(ctx, f.owner, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin count: expected ErrForbidden, got %v", err)
	}
	if _, err := proposals.Count(ctx, admin, "DRAFT"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad filter: expected ErrValidation, got %v", err)
	}
}
