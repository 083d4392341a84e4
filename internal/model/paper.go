package model

import (
	"fmt"
	"strings"
	"time"
)

type Branch string

const (
	BranchCSE Branch = "CSE"
	BranchIT  Branch = "IT"
	BranchECE Branch = "ECE"
	BranchEE  Branch = "EE"
	BranchME  Branch = "ME"
	BranchCE  Branch = "CE"
)

type QuestionType string

const (
	QuestionTypeInternal QuestionType = "INTERNAL"
	QuestionTypeSemester QuestionType = "SEMESTER"
)

const (
	MinSemester = 1
	MaxSemester = 8
	MinYear     = 2000
	MaxYear     = 2100
)

var branchLabels = map[Branch]string{
	BranchCSE: "Computer Science Engineering",
	BranchIT:  "Information Technology",
	BranchECE: "Electronics & Communication Engineering",
	BranchEE:  "Electrical Engineering",
	BranchME:  "Mechanical Engineering",
	BranchCE:  "Civil Engineering",
}

var questionTypeLabels = map[QuestionType]string{
	QuestionTypeInternal: "Internal Exam",
	QuestionTypeSemester: "Semester Exam",
}

// Branches returns the closed set in display order.
func Branches() []Branch {
	return []Branch{BranchCSE, BranchIT, BranchECE, BranchEE, BranchME, BranchCE}
}

func QuestionTypes() []QuestionType {
	return []QuestionType{QuestionTypeInternal, QuestionTypeSemester}
}

func (b Branch) Valid() bool {
	_, ok := branchLabels[b]
	return ok
}

func (b Branch) Label() string {
	return branchLabels[b]
}

func (q QuestionType) Valid() bool {
	_, ok := questionTypeLabels[q]
	return ok
}

func (q QuestionType) Label() string {
	return questionTypeLabels[q]
}

// ParseBranch accepts a branch code in any letter case.
func ParseBranch(raw string) (Branch, error) {
	b := Branch(strings.ToUpper(strings.TrimSpace(raw)))
	if !b.Valid() {
		return "", fmt.Errorf("unknown branch %q", raw)
	}
	return b, nil
}

func ParseQuestionType(raw string) (QuestionType, error) {
	q := QuestionType(strings.ToUpper(strings.TrimSpace(raw)))
	if !q.Valid() {
		return "", fmt.Errorf("unknown question type %q", raw)
	}
	return q, nil
}

func ValidSemester(semester int) bool {
	return semester >= MinSemester && semester <= MaxSemester
}

func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// QuestionPaper is the only persisted catalog entity. FileURL and ObjectRef
// are written once at upload and never updated.
type QuestionPaper struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	Title        string       `gorm:"size:256;not null" json:"title"`
	Year         int          `gorm:"not null;index:idx_papers_curriculum,priority:1" json:"year"`
	Semester     int          `gorm:"not null;index:idx_papers_curriculum,priority:2" json:"semester"`
	Branch       Branch       `gorm:"size:8;not null;index" json:"branch"`
	QuestionType QuestionType `gorm:"size:16;not null;index" json:"questionType"`
	FileName     string       `gorm:"size:255;not null" json:"fileName"`
	FileURL      string       `gorm:"size:1024;not null" json:"fileUrl"`
	ObjectRef    string       `gorm:"size:512;not null" json:"-"`
	PageCount    int          `gorm:"not null;default:0" json:"pageCount"`
	UploadedAt   time.Time    `gorm:"not null;index" json:"uploadedAt"`
	UpdatedAt    time.Time    `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

func (QuestionPaper) TableName() string {
	return "question_papers"
}
