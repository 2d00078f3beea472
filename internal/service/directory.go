package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"selectclass/api"
	"selectclass/internal/analytics"
	"selectclass/internal/models"
	"selectclass/internal/state"
	"selectclass/internal/storage/remote"
	"selectclass/pkg/response"
)

// #### students ####

func (s *Service) ListStudents(query string) []models.Student {
	return analytics.New(s.state.Snapshot(), s.opts.Location).Students(query)
}

// SaveStudent creates a student when id is empty and overwrites it otherwise.
func (s *Service) SaveStudent(ctx context.Context, id string, req *api.StudentRequest) (*models.Student, error) {
	const op = "service.SaveStudent"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("name", "is required"))
	}

	st := models.Student{
		ID:        id,
		Name:      name,
		Phone:     strings.TrimSpace(req.Phone),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		CreatedAt: models.NewTimestamp(s.now()),
	}

	path := remote.Join(remote.PathStudents, id)
	if id == "" {
		st.ID = s.newID()
		path = remote.Join(remote.PathStudents, st.ID)
	} else {
		var cur models.Student
		found, err := s.store.Get(ctx, path, &cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		if !cur.CreatedAt.IsZero() {
			st.CreatedAt = cur.CreatedAt
		}
	}

	if err := s.store.Put(ctx, path, st); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.Students = upsert(sn.Students, st, studentKey)
	})

	return &st, nil
}

func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	const op = "service.DeleteStudent"

	if err := s.store.Delete(ctx, remote.Join(remote.PathStudents, id)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.Students = without(sn.Students, id, studentKey)
	})

	return nil
}

// #### courses ####

func (s *Service) ListCourses() []models.CourseType {
	return s.state.Snapshot().CourseTypes
}

func (s *Service) SaveCourse(ctx context.Context, id string, req *api.CourseTypeRequest) (*models.CourseType, error) {
	const op = "service.SaveCourse"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("name", "is required"))
	}
	if req.DefaultValue < 0 {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("defaultValue", "must not be negative"))
	}

	snap := s.state.Snapshot()

	ct := models.CourseType{
		ID:               id,
		Name:             name,
		Model:            req.Model,
		DefaultValue:     req.DefaultValue,
		DefaultTime:      req.DefaultTime,
		DefaultDuration:  req.DefaultDuration,
		DefaultMaterials: req.DefaultMaterials,
		Order:            len(snap.CourseTypes),
	}

	if id == "" {
		ct.ID = s.newID()
	} else {
		var cur models.CourseType
		found, err := s.store.Get(ctx, remote.Join(remote.PathCourses, id), &cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		ct.Order = cur.Order
	}

	if req.Order != nil {
		ct.Order = *req.Order
	}

	if err := s.store.Put(ctx, remote.Join(remote.PathCourses, ct.ID), ct); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		list := upsert(sn.CourseTypes, ct, courseKey)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
		sn.CourseTypes = list
	})

	return &ct, nil
}

func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	const op = "service.DeleteCourse"

	if err := s.store.Delete(ctx, remote.Join(remote.PathCourses, id)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.CourseTypes = without(sn.CourseTypes, id, courseKey)
	})

	return nil
}

// #### lecture models ####

const defaultLectureType = "Palestra"

func (s *Service) ListLectures() []models.LectureModel {
	return s.state.Snapshot().LectureModels
}

func (s *Service) AddLecture(ctx context.Context, req *api.LectureModelRequest) (*models.LectureModel, error) {
	const op = "service.AddLecture"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("name", "is required"))
	}

	lm := models.LectureModel{
		ID:    s.newID(),
		Name:  name,
		Type:  strings.TrimSpace(req.Type),
		Order: len(s.state.Snapshot().LectureModels),
	}
	if lm.Type == "" {
		lm.Type = defaultLectureType
	}

	if err := s.store.Put(ctx, remote.Join(remote.PathLectureModels, lm.ID), lm); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.LectureModels = upsert(sn.LectureModels, lm, lectureKey)
	})

	return &lm, nil
}

// RemoveLecture deletes a lecture model from the current and the legacy
// collection.
func (s *Service) RemoveLecture(ctx context.Context, id string) error {
	const op = "service.RemoveLecture"

	if err := s.store.Delete(ctx, remote.Join(remote.PathLectureModels, id)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.deleteOrPark(ctx, remote.Join(remote.PathLegacyLecture, id))

	s.published(func(sn *state.Snapshot) {
		sn.LectureModels = without(sn.LectureModels, id, lectureKey)
	})

	return nil
}

// ReorderLectures sets each model's order to its position in ids. Models not
// named keep their relative order after the named ones.
func (s *Service) ReorderLectures(ctx context.Context, ids []string) ([]models.LectureModel, error) {
	const op = "service.ReorderLectures"

	current := s.state.Snapshot().LectureModels

	byID := make(map[string]models.LectureModel, len(current))
	for _, lm := range current {
		byID[lm.ID] = lm
	}

	seen := make(map[string]struct{}, len(ids))
	ordered := make([]models.LectureModel, 0, len(current))
	for _, id := range ids {
		lm, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%s: %s: %w", op, id, response.ErrNotFound)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%s: %w", op, response.Invalid("ids", "duplicate id "+id))
		}
		seen[id] = struct{}{}
		ordered = append(ordered, lm)
	}

	for _, lm := range current {
		if _, ok := seen[lm.ID]; !ok {
			ordered = append(ordered, lm)
		}
	}

	for i := range ordered {
		ordered[i].Order = i
		if err := s.store.Put(ctx, remote.Join(remote.PathLectureModels, ordered[i].ID), ordered[i]); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.published(func(sn *state.Snapshot) {
		sn.LectureModels = ordered
	})

	return ordered, nil
}
