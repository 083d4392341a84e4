package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"paperarchive/internal/model"
	"paperarchive/internal/objectstore"
	"paperarchive/internal/pkg/pdfinspect"
	"paperarchive/internal/repository"
)

type PaperStore interface {
	Create(ctx context.Context, paper *model.QuestionPaper) error
	GetByID(ctx context.Context, id string) (*model.QuestionPaper, error)
	List(ctx context.Context, filter repository.PaperFilter) ([]model.QuestionPaper, error)
	Search(ctx context.Context, filter repository.PaperFilter) ([]model.QuestionPaper, error)
	UpdateDescription(ctx context.Context, paper *model.QuestionPaper) error
	DeleteByID(ctx context.Context, id string) (bool, error)
}

type ObjectStore interface {
	Store(ctx context.Context, content []byte, hints objectstore.ObjectHints) (objectstore.StoredObject, error)
	Remove(ctx context.Context, ref string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.PaperEvent) error
}

// PaperFields are the descriptive, editable attributes of a paper as the
// caller supplied them. Enumerations stay raw strings until validated.
type PaperFields struct {
	Title        string `validate:"required,max=256"`
	Year         int    `validate:"required,min=2000,max=2100"`
	Semester     int    `validate:"required,min=1,max=8"`
	Branch       string `validate:"required"`
	QuestionType string `validate:"required"`
}

type CreateInput struct {
	Fields    PaperFields
	Object    objectstore.StoredObject
	FileName  string
	PageCount int
	Actor     string
}

type UploadInput struct {
	Fields   PaperFields
	FileName string
	Content  []byte
	Actor    string
}

type UpdateInput struct {
	ID     string
	Fields PaperFields
	Actor  string
}

type ListFilter struct {
	Year         *int
	Semester     *int
	Branch       *model.Branch
	QuestionType *model.QuestionType
}

type SearchQuery struct {
	Text         string
	Year         *int
	Branch       *model.Branch
	QuestionType *model.QuestionType
}

type CatalogService struct {
	store     PaperStore
	objects   ObjectStore
	publisher EventPublisher
	validate  *validator.Validate
	now       func() time.Time
}

type CatalogOption func(*CatalogService)

func WithEventPublisher(p EventPublisher) CatalogOption {
	return func(s *CatalogService) { s.publisher = p }
}

func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(s *CatalogService) { s.now = now }
}

func NewCatalogService(store PaperStore, objects ObjectStore, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		store:    store,
		objects:  objects,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload validates the description, checks the file is a PDF, stores it and
// records the paper, in that order. A record failure after a successful store
// leaves the object behind.
func (s *CatalogService) Upload(ctx context.Context, input UploadInput) (*model.QuestionPaper, error) {
	if _, err := s.validateFields(input.Fields); err != nil {
		return nil, err
	}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}
	pages, err := pdfinspect.PageCount(input.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	stored, err := s.objects.Store(ctx, input.Content, objectstore.ObjectHints{FileName: fileName})
	if err != nil {
		return nil, err
	}

	paper, err := s.Create(ctx, CreateInput{
		Fields:    input.Fields,
		Object:    stored,
		FileName:  fileName,
		PageCount: pages,
		Actor:     input.Actor,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"object_ref": stored.Ref,
			"file_name":  fileName,
		}).WithError(err).Warn("paper record not created, stored object left orphaned")
		return nil, err
	}
	return paper, nil
}

func (s *CatalogService) Create(ctx context.Context, input CreateInput) (*model.QuestionPaper, error) {
	fields, err := s.validateFields(input.Fields)
	if err != nil {
		return nil, err
	}
	if input.Object.Ref == "" || input.Object.URL == "" {
		return nil, fmt.Errorf("%w: stored object reference is required", ErrValidation)
	}

	now := s.timestamp()
	paper := &model.QuestionPaper{
		ID:           uuid.NewString(),
		Title:        fields.Title,
		Year:         fields.Year,
		Semester:     fields.Semester,
		Branch:       fields.Branch,
		QuestionType: fields.QuestionType,
		FileName:     strings.TrimSpace(input.FileName),
		FileURL:      input.Object.URL,
		ObjectRef:    input.Object.Ref,
		PageCount:    input.PageCount,
		UploadedAt:   now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, paper); err != nil {
		return nil, err
	}

	s.publish(ctx, paper, model.PaperActionCreated, input.Actor)
	return paper, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*model.QuestionPaper, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrPaperNotFound
	}
	paper, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, ErrPaperNotFound
	}
	return paper, nil
}

func (s *CatalogService) List(ctx context.Context, filter ListFilter) ([]model.QuestionPaper, error) {
	return s.store.List(ctx, repository.PaperFilter{
		Year:         filter.Year,
		Semester:     filter.Semester,
		Branch:       filter.Branch,
		QuestionType: filter.QuestionType,
	})
}

func (s *CatalogService) Search(ctx context.Context, query SearchQuery) ([]model.QuestionPaper, error) {
	return s.store.Search(ctx, repository.PaperFilter{
		TitleContains: strings.TrimSpace(query.Text),
		Year:          query.Year,
		Branch:        query.Branch,
		QuestionType:  query.QuestionType,
	})
}

// Update rewrites the descriptive fields only. The stored file, id and
// upload time are never touched.
func (s *CatalogService) Update(ctx context.Context, input UpdateInput) (*model.QuestionPaper, error) {
	fields, err := s.validateFields(input.Fields)
	if err != nil {
		return nil, err
	}
	paper, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	updatedAt := s.timestamp()
	if updatedAt.Before(paper.UpdatedAt) {
		updatedAt = paper.UpdatedAt
	}
	paper.Title = fields.Title
	paper.Year = fields.Year
	paper.Semester = fields.Semester
	paper.Branch = fields.Branch
	paper.QuestionType = fields.QuestionType
	paper.UpdatedAt = updatedAt

	if err := s.store.UpdateDescription(ctx, paper); err != nil {
		return nil, err
	}

	s.publish(ctx, paper, model.PaperActionUpdated, input.Actor)
	return paper, nil
}

// Delete removes the stored object before the record. An unknown id returns
// ErrPaperNotFound without contacting the object store.
func (s *CatalogService) Delete(ctx context.Context, id, actor string) error {
	paper, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.objects.Remove(ctx, paper.ObjectRef); err != nil {
		return err
	}

	deleted, err := s.store.DeleteByID(ctx, paper.ID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"paper_id":   paper.ID,
			"object_ref": paper.ObjectRef,
		}).WithError(err).Error("stored object removed but paper record remains")
		return err
	}
	if !deleted {
		// a concurrent delete won the race
		return ErrPaperNotFound
	}

	s.publish(ctx, paper, model.PaperActionDeleted, actor)
	return nil
}

type checkedFields struct {
	Title        string
	Year         int
	Semester     int
	Branch       model.Branch
	QuestionType model.QuestionType
}

func (s *CatalogService) validateFields(in PaperFields) (checkedFields, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validate.Struct(in); err != nil {
		return checkedFields{}, fmt.Errorf("%w: %s", ErrValidation, describeValidation(err))
	}
	branch, err := model.ParseBranch(in.Branch)
	if err != nil {
		return checkedFields{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	questionType, err := model.ParseQuestionType(in.QuestionType)
	if err != nil {
		return checkedFields{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return checkedFields{
		Title:        in.Title,
		Year:         in.Year,
		Semester:     in.Semester,
		Branch:       branch,
		QuestionType: questionType,
	}, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", field, boundWord(fe.Tag()), fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func boundWord(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func (s *CatalogService) timestamp() time.Time {
	// datetime(3) in MySQL keeps milliseconds
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *CatalogService) publish(ctx context.Context, paper *model.QuestionPaper, action model.PaperAction, actor string) {
	if s.publisher == nil {
		return
	}
	event := model.PaperEvent{
		PaperID:    paper.ID,
		Action:     action,
		Actor:      actor,
		Title:      paper.Title,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"paper_id": paper.ID,
			"action":   action,
		}).WithError(err).Warn("publish paper event failed")
	}
}

// ParseListFilter turns raw query values into a filter. Empty values leave
// the field unconstrained; malformed values are validation errors.
func ParseListFilter(year, semester, branch, questionType string) (ListFilter, error) {
	var f ListFilter
	var err error
	if f.Year, err = parseOptionalInt("year", year); err != nil {
		return ListFilter{}, err
	}
	if f.Semester, err = parseOptionalInt("semester", semester); err != nil {
		return ListFilter{}, err
	}
	if f.Semester != nil && !model.ValidSemester(*f.Semester) {
		return ListFilter{}, fmt.Errorf("%w: semester must be between %d and %d", ErrValidation, model.MinSemester, model.MaxSemester)
	}
	if f.Branch, err = parseOptionalBranch(branch); err != nil {
		return ListFilter{}, err
	}
	if f.QuestionType, err = parseOptionalQuestionType(questionType); err != nil {
		return ListFilter{}, err
	}
	return f, nil
}

func ParseSearchQuery(text, year, branch, questionType string) (SearchQuery, error) {
	q := SearchQuery{Text: strings.TrimSpace(text)}
	var err error
	if q.Year, err = parseOptionalInt("year", year); err != nil {
		return SearchQuery{}, err
	}
	if q.Branch, err = parseOptionalBranch(branch); err != nil {
		return SearchQuery{}, err
	}
	if q.QuestionType, err = parseOptionalQuestionType(questionType); err != nil {
		return SearchQuery{}, err
	}
	return q, nil
}

func parseOptionalInt(name, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", ErrValidation, name)
	}
	return &v, nil
}

func parseOptionalBranch(raw string) (*model.Branch, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	b, err := model.ParseBranch(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return &b, nil
}

func parseOptionalQuestionType(raw string) (*model.QuestionType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	q, err := model.ParseQuestionType(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return &q, nil
}
