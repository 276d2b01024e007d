package mapper

import (
	"jobportal-be/internal/entity"
	"jobportal-be/internal/model"
)

type ApplicationMapper struct{}

func NewApplicationMapper() *ApplicationMapper {
	return &ApplicationMapper{}
}

func (m *ApplicationMapper) ToEntity(a *model.JobApplication) *entity.JobApplication {
	if a == nil {
		return nil
	}
	return &entity.JobApplication{
		Id:         a.Id,
		UserId:     a.UserId,
		FullName:   a.FullName,
		Email:      a.Email,
		Phone:      a.Phone,
		Position:   entity.Position(a.Position),
		Experience: a.Experience,
		Expertise:  a.Expertise,
		FeedKey:    a.FeedKey,
		CreatedAt:  a.CreatedAt,
	}
}

func (m *ApplicationMapper) ToModel(a *entity.JobApplication) *model.JobApplication {
	if a == nil {
		return nil
	}
	return &model.JobApplication{
		Id:         a.Id,
		UserId:     a.UserId,
		FullName:   a.FullName,
		Email:      a.Email,
		Phone:      a.Phone,
		Position:   string(a.Position),
		Experience: a.Experience,
		Expertise:  a.Expertise,
		FeedKey:    a.FeedKey,
		CreatedAt:  a.CreatedAt,
	}
}

func (m *ApplicationMapper) ToEntities(apps []*model.JobApplication) []*entity.JobApplication {
	entities := make([]*entity.JobApplication, len(apps))
	for i, a := range apps {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
