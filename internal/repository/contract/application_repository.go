package contract

import (
	"context"

	"jobportal-be/internal/entity"
	"jobportal-be/internal/repository/specification"
)

type ApplicationRepository interface {
	// Create inserts the submission under its caller-assigned ID together
	// with the raw form payload.
	Create(ctx context.Context, app *entity.JobApplication, rawPayload []byte) error
	UpdateFeedKey(ctx context.Context, id string, feedKey string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JobApplication, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JobApplication, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, id string) error
}
