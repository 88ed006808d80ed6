package ledger

import (
	"context"
	"strings"
	"time"
)

// ProjectService is plain CRUD over projects. Projects are a non-owning
// reference target for time entries; deleting a project never cascades
// into entries.
type ProjectService struct {
	store ProjectStore
}

func NewProjectService(store ProjectStore) *ProjectService {
	return &ProjectService{store: store}
}

func (s *ProjectService) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	project := &Project{
		Name:        name,
		Description: description,
		Active:      true,
	}
	if err := s.store.InsertProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id int64, name, description string, active bool) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	project, err := s.store.ProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil || project.IsDeleted() {
		return nil, &ProjectNotFoundError{ProjectID: id}
	}

	project.Name = name
	project.Description = description
	project.Active = active
	now := time.Now().UTC()
	project.UpdatedAt = &now

	if err := s.store.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id int64) error {
	project, err := s.store.ProjectByID(ctx, id)
	if err != nil {
		return err
	}
	if project == nil || project.IsDeleted() {
		return &ProjectNotFoundError{ProjectID: id}
	}
	return s.store.SoftDeleteProject(ctx, id)
}

func (s *ProjectService) ProjectByID(ctx context.Context, id int64) (*Project, error) {
	return s.store.ProjectByID(ctx, id)
}

func (s *ProjectService) ProjectByName(ctx context.Context, name string) (*Project, error) {
	return s.store.ProjectByName(ctx, strings.TrimSpace(name))
}

func (s *ProjectService) ListProjects(ctx context.Context, includeDeleted bool) ([]Project, error) {
	return s.store.ListProjects(ctx, includeDeleted)
}

// ActiveProjects returns non-deleted projects with the active flag set.
func (s *ProjectService) ActiveProjects(ctx context.Context) ([]Project, error) {
	all, err := s.store.ListProjects(ctx, false)
	if err != nil {
		return nil, err
	}
	active := make([]Project, 0, len(all))
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

// FindOrCreateProject returns the non-deleted project matching name
// (case-insensitive), creating it when absent. Used by CSV import.
func (s *ProjectService) FindOrCreateProject(ctx context.Context, name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	existing, err := s.store.ProjectByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.CreateProject(ctx, name, "")
}
