package implementation

import (
	"context"
	"errors"

	"jobportal-be/internal/entity"
	"jobportal-be/internal/mapper"
	"jobportal-be/internal/model"
	"jobportal-be/internal/repository/contract"
	"jobportal-be/internal/repository/scope"
	"jobportal-be/internal/repository/specification"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ApplicationMapper
}

func NewApplicationRepository(db *gorm.DB) contract.ApplicationRepository {
	return &ApplicationRepositoryImpl{
		db:     db,
		mapper: mapper.NewApplicationMapper(),
	}
}

func (r *ApplicationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ApplicationRepositoryImpl) Create(ctx context.Context, app *entity.JobApplication, rawPayload []byte) error {
	m := r.mapper.ToModel(app)
	m.RawPayload = datatypes.JSON(rawPayload)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*app = *r.mapper.ToEntity(m)
	return nil
}

func (r *ApplicationRepositoryImpl) UpdateFeedKey(ctx context.Context, id string, feedKey string) error {
	return r.db.WithContext(ctx).Model(&model.JobApplication{}).Where("id = ?", id).Update("feed_key", feedKey).Error
}

func (r *ApplicationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JobApplication, error) {
	var m model.JobApplication
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ApplicationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JobApplication, error) {
	var models []*model.JobApplication
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ApplicationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.JobApplication{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ApplicationRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.JobApplication{}).Error
}
