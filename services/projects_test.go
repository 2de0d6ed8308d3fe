package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"projecthub/models"
	"projecthub/testutil"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu      sync.Mutex
	invited []string
	err     error
}

func (n *recordingNotifier) NotifyInvited(ctx context.Context, invitee models.User, project models.Project) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invited = append(n.invited, invitee.Email)
	return n.err
}

type projectFixture struct {
	db       *gorm.DB
	projects *Projects
	access   *Access
	notifier *recordingNotifier
	owner    *models.User
	member   *models.User
	outsider *models.User
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()
	db := testutil.NewDB(t)
	access := NewAccess(db)
	notifier := &recordingNotifier{}
	return &projectFixture{
		db:       db,
		projects: NewProjects(db, access, notifier, zap.NewNop()),
		access:   access,
		notifier: notifier,
		owner:    testutil.CreateUser(t, db, "owner@example.com", models.RoleUser),
		member:   testutil.CreateUser(t, db, "member@example.com", models.RoleUser),
		outsider: testutil.CreateUser(t, db, "outsider@example.com", models.RoleUser),
	}
}

func (f *projectFixture) create(t *testing.T, emails ...string) *models.Project {
	t.Helper()
	project, err := f.projects.Create(context.Background(), f.owner.ID, NewProject{
		NamaProject:   "Apollo",
		Deskripsi:     "Moon landing programme",
		Object:        "rocket",
		Collaborators: emails,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

func (f *projectFixture) rows(t *testing.T, projectID uint) []models.ProjectCollaborator {
	t.Helper()
	var rows []models.ProjectCollaborator
	if err := f.db.Where("project_id = ?", projectID).Order("id").Find(&rows).Error; err != nil {
		t.Fatalf("load rows: %v", err)
	}
	return rows
}

func TestCreateProjectOwnerAndInvites(t *testing.T) {
	f := newProjectFixture(t)
	project := f.create(t, "MEMBER@example.com", "member@example.com", "ghost@example.com", "owner@example.com")

	if project.InviteCode == "" {
		t.Fatalf("expected invite code")
	}
	if project.IsFinish {
		t.Fatalf("new project must not be finished")
	}

	rows := f.rows(t, project.ID)
	if len(rows) != 2 {
		t.Fatalf("expected owner + one invitee, got %d rows", len(rows))
	}
	owners := 0
	for _, row := range rows {
		if row.IsOwner {
			owners++
			if row.UserID != f.owner.ID || row.Status != models.CollaboratorCompleted {
				t.Fatalf("unexpected owner row: %+v", row)
			}
			continue
		}
		if row.UserID != f.member.ID || row.Status != models.CollaboratorPending {
			t.Fatalf("unexpected invitee row: %+v", row)
		}
	}
	if owners != 1 {
		t.Fatalf("expected exactly one owner row, got %d", owners)
	}

	if len(f.notifier.invited) != 1 || f.notifier.invited[0] != "member@example.com" {
		t.Fatalf("expected member to be notified, got %v", f.notifier.invited)
	}
}

func TestCreateProjectNotifierFailureIsNotFatal(t *testing.T) {
	f := newProjectFixture(t)
	f.notifier.err = errors.New("smtp down")

	project := f.create(t, "member@example.com")
	if len(f.rows(t, project.ID)) != 2 {
		t.Fatalf("expected collaborator rows to be committed")
	}
}

func TestInviteCodesAreUnique(t *testing.T) {
	f := newProjectFixture(t)
	a := f.create(t)
	b := f.create(t)
	if a.InviteCode == b.InviteCode {
		t.Fatalf("invite codes collide: %s", a.InviteCode)
	}
}

func TestJoinByInviteCode(t *testing.T) {
	f := newProjectFixture(t)
	project := f.create(t)
	ctx := context.Background()

	if _, err := f.projects.JoinByInviteCode(ctx, f.member.ID, "does-not-exist"); !errors.Is(err, ErrInvalidInviteCode) {
		t.Fatalf("expected ErrInvalidInviteCode, got %v", err)
	}

	joined, err := f.projects.JoinByInviteCode(ctx, f.member.ID, project.InviteCode)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.ID != project.ID {
		t.Fatalf("joined wrong project %d", joined.ID)
	}

	role, err := f.access.RoleFor(ctx, f.member.ID, project.ID)
	if err != nil || role != RoleMember {
		t.Fatalf("expected member role, got %v (%v)", role, err)
	}

	for _, user := range []*models.User{f.member, f.owner} {
		if _, err := f.projects.JoinByInviteCode(ctx, user.ID, project.InviteCode); !errors.Is(err, ErrAlreadyCollaborator) {
			t.Fatalf("user %d: expected ErrAlreadyCollaborator, got %v", user.ID, err)
		}
	}

	rows := f.rows(t, project.ID)
	if rows[1].Status != models.CollaboratorPending {
		t.Fatalf("joined row should be PENDING, got %s", rows[1].Status)
	}
}

func TestAddCollaborators(t *testing.T) {
	f := newProjectFixture(t)
	project := f.create(t)
	ctx := context.Background()

	if _, err := f.projects.AddCollaborators(ctx, f.member.ID, project.ID, []string{"outsider@example.com"}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("non-owner: expected ErrNotOwner, got %v", err)
	}

	result, err := f.projects.AddCollaborators(ctx, f.owner.ID, project.ID,
		[]string{"member@example.com", "ghost@example.com", "owner@example.com"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(result.Added) != 1 || result.Added[0] != "member@example.com" {
		t.Fatalf("unexpected added list %v", result.Added)
	}
	if len(result.Failed) != 1 || result.Failed[0] != "ghost@example.com" {
		t.Fatalf("unexpected failed list %v", result.Failed)
	}

	again, err := f.projects.AddCollaborators(ctx, f.owner.ID, project.ID, []string{"member@example.com"})
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(again.Added) != 0 || len(again.Failed) != 0 {
		t.Fatalf("existing collaborator should be skipped silently, got %+v", again)
	}

	rows := f.rows(t, project.ID)
	if len(rows) != 2 || rows[1].Status != models.CollaboratorCompleted {
		t.Fatalf("expected member as COMPLETED collaborator, got %+v", rows)
	}

	if _, err := f.projects.AddCollaborators(ctx, f.owner.ID, project.ID, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty list: expected ErrValidation, got %v", err)
	}
}

func TestAddCollaboratorsRollsBackOnFailure(t *testing.T) {
	f := newProjectFixture(t)
	project := f.create(t)
	ctx := context.Background()

	errInsert := errors.New("insert failed")
	inserts := 0
	err := f.db.Callback().Create().Before("gorm:create").Register("test:fail_second_collaborator", func(db *gorm.DB) {
		if db.Statement.Table != "project_collaborators" {
			return
		}
		inserts++
		if inserts == 2 {
			db.AddError(errInsert)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = f.projects.AddCollaborators(ctx, f.owner.ID, project.ID, []string{"member@example.com", "outsider@example.com"})
	if !errors.Is(err, errInsert) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if inserts != 2 {
		t.Fatalf("expected two insert attempts, got %d", inserts)
	}

	rows := f.rows(t, project.ID)
	if len(rows) != 1 || !rows[0].IsOwner {
		t.Fatalf("expected only the owner row after rollback, got %+v", rows)
	}
	if len(f.notifier.invited) != 0 {
		t.Fatalf("no one should be notified after rollback, got %v", f.notifier.invited)
	}
}

func TestListProjects(t *testing.T) {
	f := newProjectFixture(t)
	first := f.create(t, "member@example.com")
	second := f.create(t)
	ctx := context.Background()

	owned, err := f.projects.List(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(owned) != 2 || owned[0].ID != second.ID || owned[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", owned)
	}

	memberOf, _ := f.projects.List(ctx, f.member.ID)
	if len(memberOf) != 1 || memberOf[0].ID != first.ID {
		t.Fatalf("member should see only the first project, got %+v", memberOf)
	}

	none, _ := f.projects.List(ctx, f.outsider.ID)
	if len(none) != 0 {
		t.Fatalf("outsider should see nothing, got %d", len(none))
	}
}

func TestProjectDetails(t *testing.T) {
	f := newProjectFixture(t)
	project := f.create(t, "member@example.com")
	ctx := context.Background()

	details, err := f.projects.Details(ctx, f.member.ID, project.ID)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if len(details.Collaborators) != 2 || details.Collaborators[0].User == nil {
		t.Fatalf("expected collaborators joined with users, got %+v", details.Collaborators)
	}
	if details.Collaborators[0].User.Email != "owner@example.com" {
		t.Fatalf("unexpected first collaborator %s", details.Collaborators[0].User.Email)
	}

	if _, err := f.projects.Details(ctx, f.outsider.ID, project.ID); !errors.Is(err, ErrNotACollaborator) {
		t.Fatalf("outsider: expected ErrNotACollaborator, got %v", err)
	}
	if _, err := f.projects.Details(ctx, f.owner.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing project: expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProject(t *testing.T) {
	f := newProjectFixture(t)
	project := f.create(t, "member@example.com")
	ctx := context.Background()

	finished := true
	name := "Apollo 11"
	patch := models.ProjectPatch{NamaProject: &name, IsFinish: &finished}

	if _, err := f.projects.Update(ctx, f.member.ID, project.ID, patch); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("member: expected ErrNotOwner, got %v", err)
	}
	if _, err := f.projects.Update(ctx, f.owner.ID, project.ID, models.ProjectPatch{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty patch: expected ErrValidation, got %v", err)
	}

	updated, err := f.projects.Update(ctx, f.owner.ID, project.ID, patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.NamaProject != "Apollo 11" || !updated.IsFinish || updated.Deskripsi != project.Deskripsi {
		t.Fatalf("unexpected update result %+v", updated)
	}
}

func TestDeleteProject(t *testing.T) {
	f := newProjectFixture(t)
	project := f.create(t, "member@example.com")
	ctx := context.Background()

	tasks := NewTasks(f.db, f.access, zap.NewNop())
	if _, err := tasks.Create(ctx, f.member.ID, NewTask{ProjectID: project.ID, Deskripsi: "write the plan", PenanggungJawab: "member"}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	proposals := NewProposals(f.db, f.access, zap.NewNop())
	if _, err := proposals.Create(ctx, f.owner.ID, NewProposal{ProjectID: project.ID, Judul: "Plan", FileURL: "http://files/plan.pdf"}); err != nil {
		t.Fatalf("create proposal: %v", err)
	}

	if err := f.projects.Delete(ctx, f.member.ID, project.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("member: expected ErrNotOwner, got %v", err)
	}

	if err := f.projects.Delete(ctx, f.owner.ID, project.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, model := range []interface{}{&models.Project{}, &models.ProjectCollaborator{}, &models.Task{}, &models.Proposal{}} {
		var count int64
		f.db.Model(model).Count(&count)
		if count != 0 {
			t.Fatalf("%T rows left after delete: %d", model, count)
		}
	}

	if _, err := f.projects.Details(ctx, f.owner.ID, project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteProjectRollsBackOnFailure(t *testing.T) {
	f := newProjectFixture(t)
	project := f.create(t, "member@example.com")
	ctx := context.Background()

	tasks := NewTasks(f.db, f.access, zap.NewNop())
	if _, err := tasks.Create(ctx, f.owner.ID, NewTask{ProjectID: project.ID, Deskripsi: "write the plan", PenanggungJawab: "owner"}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	proposals := NewProposals(f.db, f.access, zap.NewNop())
	if _, err := proposals.Create(ctx, f.owner.ID, NewProposal{ProjectID: project.ID, Judul: "Plan", FileURL: "http://files/plan.pdf"}); err != nil {
		t.Fatalf("create proposal: %v", err)
	}

	errDelete := errors.New("delete failed")
	err := f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_project_delete", func(db *gorm.DB) {
		if db.Statement.Table == "projects" {
			db.AddError(errDelete)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if err := f.projects.Delete(ctx, f.owner.ID, project.ID); !errors.Is(err, errDelete) {
		t.Fatalf("expected delete error, got %v", err)
	}

	checks := []struct {
		model interface{}
		where string
		want  int64
	}{
		{&models.Project{}, "id = ?", 1},
		{&models.ProjectCollaborator{}, "project_id = ?", 2},
		{&models.Task{}, "project_id = ?", 1},
		{&models.Proposal{}, "project_id = ?", 1},
	}
	for _, c := range checks {
		var count int64
		if err := f.db.Model(c.model).Where(c.where, project.ID).Count(&count).Error; err != nil {
			t.Fatalf("count %T rows: %v", c.model, err)
		}
		if count != c.want {
			t.Fatalf("%T rows after failed delete: expected %d, got %d", c.model, c.want, count)
		}
	}
}
