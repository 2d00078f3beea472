package reconcile

import (
	"selectclass/internal/models"
)

// Kind separates courses from lectures; the two have different net rules.
type Kind string

const (
	KindCourse  Kind = "cursos"
	KindLecture Kind = "palestras"
)

const lectureModel = "Palestra"

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindCourse, "":
		return KindCourse, true
	case KindLecture:
		return KindLecture, true
	default:
		return "", false
	}
}

// Classifier decides a booking's kind from the configured templates.
type Classifier struct {
	courses  map[string]models.CourseType
	lectures map[string]struct{}
}

func NewClassifier(courses []models.CourseType, lectures []models.LectureModel) Classifier {
	c := Classifier{
		courses:  make(map[string]models.CourseType, len(courses)),
		lectures: make(map[string]struct{}, len(lectures)),
	}

	for _, ct := range courses {
		// first template wins, as a name lookup over the list would
		if _, ok := c.courses[ct.Name]; !ok {
			c.courses[ct.Name] = ct
		}
	}

	for _, lm := range lectures {
		c.lectures[lm.Name] = struct{}{}
	}

	return c
}

// Kind is lecture when the booking's course template is a "Palestra" model,
// its title is Palestra or Workshop, or a lecture model carries its title.
func (c Classifier) Kind(b models.Booking) Kind {
	if ct, ok := c.courses[b.Title]; ok && ct.Model == lectureModel {
		return KindLecture
	}

	if b.Title == "Palestra" || b.Title == "Workshop" {
		return KindLecture
	}

	if _, ok := c.lectures[b.Title]; ok {
		return KindLecture
	}

	return KindCourse
}

// EffectiveValue falls back to the course template's default value when the
// booking has no value of its own.
func (c Classifier) EffectiveValue(b models.Booking) float64 {
	if v := b.Value.Float64(); v != 0 {
		return v
	}

	if ct, ok := c.courses[b.Title]; ok {
		return ct.DefaultValue.Float64()
	}

	return 0
}

// Course returns the template registered under name.
func (c Classifier) Course(name string) (models.CourseType, bool) {
	ct, ok := c.courses[name]
	return ct, ok
}
