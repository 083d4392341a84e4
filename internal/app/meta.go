package app

import (
	"time"

	"paperarchive/internal/model"
)

const recentYears = 5

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type CatalogMeta struct {
	Branches      []Option `json:"branches"`
	QuestionTypes []Option `json:"questionTypes"`
	Semesters     []int    `json:"semesters"`
	Years         []int    `json:"years"`
}

// Meta lists the closed sets and the recent years offered as filters.
func Meta(now time.Time) CatalogMeta {
	meta := CatalogMeta{}
	for _, b := range model.Branches() {
		meta.Branches = append(meta.Branches, Option{Value: string(b), Label: b.Label()})
	}
	for _, q := range model.QuestionTypes() {
		meta.QuestionTypes = append(meta.QuestionTypes, Option{Value: string(q), Label: q.Label()})
	}
	for s := model.MinSemester; s <= model.MaxSemester; s++ {
		meta.Semesters = append(meta.Semesters, s)
	}
	for i := 0; i < recentYears; i++ {
		meta.Years = append(meta.Years, now.Year()-i)
	}
	return meta
}
