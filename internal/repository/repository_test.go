package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"paperarchive/internal/model"
	"paperarchive/internal/testutil"
)

func newTestDB(t *testing.T) *gorm.DB {
	return testutil.NewDB(t)
}

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *PaperRepository, id, title string, year, sem int, branch model.Branch, qt model.QuestionType, uploadedOffset time.Duration) model.QuestionPaper {
	t.Helper()
	p := model.QuestionPaper{
		ID:           id,
		Title:        title,
		Year:         year,
		Semester:     sem,
		Branch:       branch,
		QuestionType: qt,
		FileName:     id + ".pdf",
		FileURL:      "https://cdn.example.com/question-papers/" + id + ".pdf",
		ObjectRef:    "question-papers/" + id + ".pdf",
		UploadedAt:   base.Add(uploadedOffset),
		UpdatedAt:    base.Add(uploadedOffset),
	}
	if err := repo.Create(context.Background(), &p); err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
	return p
}

func ids(papers []model.QuestionPaper) []string {
	out := make([]string, 0, len(papers))
	for _, p := range papers {
		out = append(out, p.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPaperRepositoryGetByID(t *testing.T) {
	repo := NewPaperRepository(newTestDB(t))
	ctx := context.Background()
	want := seed(t, repo, "p1", "Data Structures", 2024, 3, model.BranchCSE, model.QuestionTypeSemester, 0)

	got, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("expected paper")
	}
	if got.Title != want.Title || got.ObjectRef != want.ObjectRef || !got.UploadedAt.Equal(want.UploadedAt) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	missing, err := repo.GetByID(ctx, "nope")
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing id, got %+v", missing)
	}
}

func TestPaperRepositoryListOrderAndFilter(t *testing.T) {
	repo := NewPaperRepository(newTestDB(t))
	ctx := context.Background()
	seed(t, repo, "a", "Old CSE", 2023, 5, model.BranchCSE, model.QuestionTypeSemester, 0)
	seed(t, repo, "b", "New IT", 2024, 2, model.BranchIT, model.QuestionTypeInternal, time.Hour)
	seed(t, repo, "c", "New CSE sem 6 early", 2024, 6, model.BranchCSE, model.QuestionTypeInternal, 2*time.Hour)
	seed(t, repo, "d", "New CSE sem 6 late", 2024, 6, model.BranchCSE, model.QuestionTypeSemester, 3*time.Hour)

	all, err := repo.List(ctx, PaperFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := []string{"d", "c", "b", "a"}; !equalIDs(ids(all), want) {
		t.Errorf("List order = %v, want %v", ids(all), want)
	}

	cse := model.BranchCSE
	onlyCSE, err := repo.List(ctx, PaperFilter{Branch: &cse})
	if err != nil {
		t.Fatalf("List CSE: %v", err)
	}
	if want := []string{"d", "c", "a"}; !equalIDs(ids(onlyCSE), want) {
		t.Errorf("List CSE = %v, want %v", ids(onlyCSE), want)
	}

	year, sem := 2024, 6
	internal := model.QuestionTypeInternal
	narrow, err := repo.List(ctx, PaperFilter{Year: &year, Semester: &sem, QuestionType: &internal})
	if err != nil {
		t.Fatalf("List narrow: %v", err)
	}
	if want := []string{"c"}; !equalIDs(ids(narrow), want) {
		t.Errorf("List narrow = %v, want %v", ids(narrow), want)
	}
}

func TestPaperRepositorySearch(t *testing.T) {
	repo := NewPaperRepository(newTestDB(t))
	ctx := context.Background()
	seed(t, repo, "lin", "Linear Algebra Mid-Sem", 2022, 1, model.BranchCSE, model.QuestionTypeInternal, 0)
	seed(t, repo, "alg", "ALGEBRA Internal Test", 2021, 2, model.BranchIT, model.QuestionTypeInternal, time.Hour)
	seed(t, repo, "calc", "Calculus Basics", 2024, 1, model.BranchCSE, model.QuestionTypeSemester, 2*time.Hour)
	seed(t, repo, "pct", "100% Pass_Guide", 2024, 1, model.BranchME, model.QuestionTypeSemester, 3*time.Hour)

	got, err := repo.Search(ctx, PaperFilter{TitleContains: "algebra"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if want := []string{"alg", "lin"}; !equalIDs(ids(got), want) {
		t.Errorf("Search algebra = %v, want %v", ids(got), want)
	}

	cse := model.BranchCSE
	got, err = repo.Search(ctx, PaperFilter{TitleContains: "algebra", Branch: &cse})
	if err != nil {
		t.Fatalf("Search with branch: %v", err)
	}
	if want := []string{"lin"}; !equalIDs(ids(got), want) {
		t.Errorf("Search algebra CSE = %v, want %v", ids(got), want)
	}

	got, err = repo.Search(ctx, PaperFilter{TitleContains: "%"})
	if err != nil {
		t.Fatalf("Search %%: %v", err)
	}
	if want := []string{"pct"}; !equalIDs(ids(got), want) {
		t.Errorf("Search %% = %v, want %v (wildcards must be literal)", ids(got), want)
	}

	got, err = repo.Search(ctx, PaperFilter{})
	if err != nil {
		t.Fatalf("Search all: %v", err)
	}
	if want := []string{"pct", "calc", "alg", "lin"}; !equalIDs(ids(got), want) {
		t.Errorf("Search all = %v, want %v", ids(got), want)
	}
}

func TestPaperRepositorySearchNonASCIITitle(t *testing.T) {
	repo := NewPaperRepository(newTestDB(t))
	ctx := context.Background()
	seed(t, repo, "umlaut", "Ärztliche Grundlagen", 2024, 1, model.BranchCSE, model.QuestionTypeInternal, 0)
	seed(t, repo, "plain", "Arithmetic", 2024, 1, model.BranchCSE, model.QuestionTypeInternal, time.Hour)

	got, err := repo.Search(ctx, PaperFilter{TitleContains: "Ärzt"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if want := []string{"umlaut"}; !equalIDs(ids(got), want) {
		t.Errorf("Search Ärzt = %v, want %v", ids(got), want)
	}

	got, err = repo.Search(ctx, PaperFilter{TitleContains: "GRUNDLAGEN"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if want := []string{"umlaut"}; !equalIDs(ids(got), want) {
		t.Errorf("Search GRUNDLAGEN = %v, want %v", ids(got), want)
	}
}

func TestPaperRepositoryUpdateDescriptionKeepsFile(t *testing.T) {
	repo := NewPaperRepository(newTestDB(t))
	ctx := context.Background()
	orig := seed(t, repo, "p1", "Draft", 2023, 1, model.BranchCSE, model.QuestionTypeInternal, 0)

	edited := orig
	edited.Title = "Final"
	edited.Year = 2024
	edited.Semester = 2
	edited.Branch = model.BranchEE
	edited.QuestionType = model.QuestionTypeSemester
	edited.FileURL = "https://evil.example.com/x.pdf"
	edited.ObjectRef = "other"
	edited.UpdatedAt = base.Add(time.Hour)
	if err := repo.UpdateDescription(ctx, &edited); err != nil {
		t.Fatalf("UpdateDescription: %v", err)
	}

	got, err := repo.GetByID(ctx, "p1")
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v %v", got, err)
	}
	if got.Title != "Final" || got.Year != 2024 || got.Semester != 2 || got.Branch != model.BranchEE || got.QuestionType != model.QuestionTypeSemester {
		t.Errorf("descriptive fields not updated: %+v", got)
	}
	if got.FileURL != orig.FileURL || got.ObjectRef != orig.ObjectRef {
		t.Errorf("file binding changed: %+v", got)
	}
	if !got.UploadedAt.Equal(orig.UploadedAt) {
		t.Errorf("uploadedAt changed: %v", got.UploadedAt)
	}
	if !got.UpdatedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("updatedAt = %v", got.UpdatedAt)
	}
}

func TestPaperRepositoryDeleteByID(t *testing.T) {
	repo := NewPaperRepository(newTestDB(t))
	ctx := context.Background()
	seed(t, repo, "p1", "Doomed", 2023, 1, model.BranchCSE, model.QuestionTypeInternal, 0)

	deleted, err := repo.DeleteByID(ctx, "p1")
	if err != nil || !deleted {
		t.Fatalf("DeleteByID = %v, %v", deleted, err)
	}
	deleted, err = repo.DeleteByID(ctx, "p1")
	if err != nil || deleted {
		t.Fatalf("second DeleteByID = %v, %v", deleted, err)
	}
}

func TestAuditRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	for i, action := range []model.PaperAction{model.PaperActionCreated, model.PaperActionUpdated} {
		entry := &model.PaperAuditEntry{
			PaperID:    "p1",
			Action:     action,
			Actor:      "admin@college.edu",
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	entries, err := repo.ListByPaperID(ctx, "p1")
	if err != nil {
		t.Fatalf("ListByPaperID: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != model.PaperActionCreated || entries[1].Action != model.PaperActionUpdated {
		t.Errorf("entries = %+v", entries)
	}
}
